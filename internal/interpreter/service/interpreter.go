package service

import (
	"context"
	"errors"
	"strings"
	"time"

	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/promptinvoice/internal/observability/metrics"
	"github.com/smallbiznis/promptinvoice/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	timeoutMessage  = "The invoice generator took too long to respond. Please try again."
	fallbackMessage = "Failed to generate invoice. Please try again."
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Client  interpreterdomain.Client
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	client  interpreterdomain.Client
	metrics *obsmetrics.Metrics
	tracer  trace.Tracer
}

func New(p Params) interpreterdomain.Interpreter {
	return &Service{
		log:     p.Log.Named("interpreter.service"),
		client:  p.Client,
		metrics: p.Metrics,
		tracer:  otel.Tracer("promptinvoice/interpreter"),
	}
}

// Interpret asks the configured model for a draft invoice. It never retries.
func (s *Service) Interpret(ctx context.Context, prompt string) (invoicedomain.Draft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return invoicedomain.Draft{}, invoicedomain.NewValidationError(invoicedomain.FieldError{
			Field:   "prompt",
			Code:    "required",
			Message: "prompt is required",
		})
	}

	provider := s.client.Provider()
	ctx, span := s.tracer.Start(ctx, "interpreter.interpret",
		trace.WithAttributes(tracing.SafeAttributes(
			attribute.String("llm.provider", provider),
			attribute.String("llm.model", s.client.Model()),
		)...),
	)
	defer span.End()

	start := time.Now()
	content, err := s.client.Complete(ctx, interpreterdomain.CompletionRequest{
		Model:        s.client.Model(),
		System:       SystemInstruction,
		User:         prompt,
		JSONResponse: true,
	})
	s.metrics.ObserveLLMLatency(ctx, provider, time.Since(start))
	if err != nil {
		err = classify(ctx, err)
		s.fail(span, err)
		return invoicedomain.Draft{}, err
	}

	draft, err := ParseDraft(content)
	if err != nil {
		s.log.Warn("model returned unparseable content",
			zap.String("provider", provider),
			zap.Int("content_length", len(content)),
			zap.Error(err),
		)
		s.fail(span, err)
		return invoicedomain.Draft{}, err
	}

	span.SetAttributes(tracing.SafeAttributes(attribute.Int("invoice.item_count", len(draft.Items)))...)
	return draft, nil
}

func (s *Service) fail(span trace.Span, err error) {
	span.RecordError(tracing.SafeError(err))
	span.SetAttributes(tracing.SafeAttributes(attribute.String("error.kind", invoicedomain.KindName(err)))...)
	span.SetStatus(codes.Error, invoicedomain.KindName(err))
}

func classify(ctx context.Context, err error) error {
	var derr *invoicedomain.Error
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return invoicedomain.NewUpstreamError(invoicedomain.CodeTimeout, timeoutMessage, err)
	}
	return invoicedomain.NewUpstreamError("", fallbackMessage, err)
}
