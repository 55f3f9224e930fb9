package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the invoice generation instruments. All methods are safe on
// a nil receiver.
type Metrics struct {
	invoicesGenerated   metric.Int64Counter
	generationFailures  metric.Int64Counter
	persistenceFailures metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
	llmLatency          metric.Float64Histogram
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "promptinvoice"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.invoicesGenerated, "promptinvoice_invoices_generated_total", "Invoices generated and calculated."},
		{&m.generationFailures, "promptinvoice_generation_failures_total", "Failed generations by error kind."},
		{&m.persistenceFailures, "promptinvoice_persistence_failures_total", "Generated invoices that could not be saved."},
		{&m.rateLimitDenied, "promptinvoice_rate_limit_denied_total", "Requests refused by the generation guard."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	latency, err := meter.Float64Histogram("promptinvoice_llm_request_duration_seconds",
		metric.WithDescription("Language model round trip."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.25, 0.5, 1, 2, 4, 8, 15, 30, 60),
	)
	if err != nil {
		return nil, err
	}
	m.llmLatency = latency

	return m, nil
}

func (m *Metrics) RecordInvoiceGenerated(ctx context.Context, provider, taxType string) {
	if m == nil {
		return
	}
	m.invoicesGenerated.Add(ctx, 1, attrs("provider", provider, "tax_type", taxType))
}

func (m *Metrics) RecordGenerationFailure(ctx context.Context, provider, kind string) {
	if m == nil {
		return
	}
	m.generationFailures.Add(ctx, 1, attrs("provider", provider, "kind", kind))
}

func (m *Metrics) RecordPersistenceFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.persistenceFailures.Add(ctx, 1)
}

// RecordRateLimitDenied counts a refusal; reason is token_bucket or in_progress.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, attrs("endpoint", endpoint, "reason", reason))
}

func (m *Metrics) ObserveLLMLatency(ctx context.Context, provider string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.Record(ctx, elapsed.Seconds(), attrs("provider", provider))
}

// attrs builds a filtered attribute option from key/value pairs.
func attrs(kv ...string) metric.MeasurementOption {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, attribute.String(kv[i], strings.TrimSpace(kv[i+1])))
	}
	return metric.WithAttributes(FilterAttributes(out...)...)
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"provider": {},
	"tax_type": {},
	"kind":     {},
	"endpoint": {},
	"reason":   {},
}

// FilterAttributes strips labels outside the allow list so user ids and
// invoice numbers never become metric dimensions.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
