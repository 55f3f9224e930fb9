package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/promptinvoice/internal/clock"
	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/invoice/format"
	"github.com/smallbiznis/promptinvoice/internal/invoice/render"
	"github.com/smallbiznis/promptinvoice/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/promptinvoice/internal/observability/metrics"
	profiledomain "github.com/smallbiznis/promptinvoice/internal/profile/domain"
	"github.com/smallbiznis/promptinvoice/internal/providers/pdf"
	"github.com/smallbiznis/promptinvoice/internal/ratelimit"
	taxdomain "github.com/smallbiznis/promptinvoice/internal/tax/domain"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	dateLayout = "2006-01-02"

	rateLimitEndpoint = "generate"
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Cfg         config.Config
	Settings    *config.InvoiceSettingsHolder
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        invoicedomain.Repository
	Interpreter interpreterdomain.Interpreter
	Calculator  taxdomain.Calculator
	Renderer    render.Renderer
	PDF         pdf.Provider
	Guard       ratelimit.Guard
	Profiles    profiledomain.Service `optional:"true"`
	Metrics     *obsmetrics.Metrics   `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	settings    *config.InvoiceSettingsHolder
	clock       clock.Clock
	genID       *snowflake.Node
	repo        invoicedomain.Repository
	interpreter interpreterdomain.Interpreter
	calculator  taxdomain.Calculator
	renderer    render.Renderer
	pdf         pdf.Provider
	guard       ratelimit.Guard
	profiles    profiledomain.Service
	metrics     *obsmetrics.Metrics

	provider string
	timeout  time.Duration
}

func NewService(p ServiceParam) invoicedomain.Service {
	settings := p.Settings
	if settings == nil {
		settings = config.NewStaticInvoiceSettings(config.DefaultInvoiceSettings())
	}

	return &Service{
		log:         p.Log.Named("invoice.service"),
		settings:    settings,
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		interpreter: p.Interpreter,
		calculator:  p.Calculator,
		renderer:    p.Renderer,
		pdf:         p.PDF,
		guard:       p.Guard,
		profiles:    p.Profiles,
		metrics:     p.Metrics,
		provider:    p.Cfg.LLM.Provider,
		timeout:     p.Cfg.LLM.GenerationTimeout,
	}
}

// Generate interprets the prompt, computes taxes and stores the result. A
// failed save does not fail the call: the computed invoice is returned with
// Saved=false.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return invoicedomain.GenerateResult{}, errUserRequired()
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return invoicedomain.GenerateResult{}, invoicedomain.NewValidationError(invoicedomain.FieldError{
			Field: "prompt", Code: "required", Message: "prompt is required",
		})
	}

	log := logger.WithContext(ctx, s.log)

	release, ok, err := s.guard.Acquire(ctx, userID)
	if err != nil {
		return invoicedomain.GenerateResult{}, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !ok {
		s.metrics.RecordRateLimitDenied(ctx, rateLimitEndpoint, "in_progress")
		return invoicedomain.GenerateResult{}, invoicedomain.ErrGenerationInProgress
	}
	defer release()

	allowance, err := s.guard.Allow(ctx, userID)
	if err != nil {
		return invoicedomain.GenerateResult{}, fmt.Errorf("check generation rate limit: %w", err)
	}
	if !allowance.Allowed {
		s.metrics.RecordRateLimitDenied(ctx, rateLimitEndpoint, "token_bucket")
		log.Warn("invoice generation rate limited", zap.Duration("retry_after", allowance.RetryAfter))
		return invoicedomain.GenerateResult{}, &invoicedomain.RateLimitError{RetryAfter: allowance.RetryAfter}
	}

	company := s.resolveCompany(ctx, log, userID, req.Company)

	draft, err := s.interpret(ctx, req.Prompt)
	if err != nil {
		s.metrics.RecordGenerationFailure(ctx, s.provider, invoicedomain.KindName(err))
		log.Warn("invoice interpretation failed", zap.String("kind", invoicedomain.KindName(err)), zap.Error(err))
		return invoicedomain.GenerateResult{}, err
	}

	if company != nil {
		draft.Company = *company
	}
	if err := s.fillHeader(ctx, userID, &draft); err != nil {
		return invoicedomain.GenerateResult{}, err
	}

	inv, err := s.calculator.Calculate(draft)
	if err != nil {
		s.metrics.RecordGenerationFailure(ctx, s.provider, invoicedomain.KindName(err))
		log.Warn("invoice calculation failed", zap.Error(err))
		return invoicedomain.GenerateResult{}, err
	}
	s.metrics.RecordInvoiceGenerated(ctx, s.provider, string(inv.TaxType()))

	result := invoicedomain.GenerateResult{Invoice: inv}
	record, err := s.persist(ctx, userID, inv)
	if err != nil {
		s.metrics.RecordPersistenceFailure(ctx)
		log.Error("failed to save generated invoice",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Bool("duplicate_number", errors.Is(err, invoicedomain.ErrDuplicateNumber)),
			zap.Error(err),
		)
		result.SaveError = err
		return result, nil
	}

	result.Saved = true
	result.RecordID = record.ID.String()
	log.Info("invoice generated",
		zap.String("record_id", result.RecordID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("tax_type", string(inv.TaxType())),
		zap.Int("items", len(inv.Items)),
	)
	return result, nil
}

func (s *Service) interpret(ctx context.Context, prompt string) (invoicedomain.Draft, error) {
	if s.timeout <= 0 {
		return s.interpreter.Interpret(ctx, prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.interpreter.Interpret(ctx, prompt)
}

// resolveCompany picks the issuing company: the request override, then the
// stored profile. nil keeps whatever the model extracted.
func (s *Service) resolveCompany(ctx context.Context, log *zap.Logger, userID string, override *invoicedomain.CompanyProfile) *invoicedomain.CompanyProfile {
	if override != nil {
		company := *override
		return &company
	}
	if s.profiles == nil {
		return nil
	}

	company, err := s.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		return &company
	case errors.Is(err, invoicedomain.ErrNotFound):
		return nil
	default:
		log.Warn("failed to load company profile", zap.Error(err))
		return nil
	}
}

// fillHeader supplies the invoice number and dates the prompt left out.
func (s *Service) fillHeader(ctx context.Context, userID string, draft *invoicedomain.Draft) error {
	settings := s.settings.Get()
	now := s.clock.Now()

	issued := now
	if draft.Date == "" {
		draft.Date = now.Format(dateLayout)
	} else if parsed, err := time.Parse(dateLayout, draft.Date); err == nil {
		issued = parsed
	}
	if draft.DueDate == "" {
		draft.DueDate = issued.AddDate(0, 0, settings.DueDays).Format(dateLayout)
	}

	if draft.InvoiceNumber != "" {
		return nil
	}
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	number, err := format.InvoiceNumber(settings.NumberTemplate, now, count+1)
	if err != nil {
		return fmt.Errorf("build invoice number: %w", err)
	}
	draft.InvoiceNumber = number
	return nil
}

func (s *Service) persist(ctx context.Context, userID string, inv invoicedomain.Invoice) (*invoicedomain.Record, error) {
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encode invoice: %w", err)
	}

	record := &invoicedomain.Record{
		ID:            s.genID.Generate(),
		UserID:        userID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.Client.Name,
		TotalAmount:   format.Round(inv.Total),
		InvoiceData:   datatypes.JSON(payload),
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) (invoicedomain.ListResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return invoicedomain.ListResponse{}, errUserRequired()
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		if err := checkPageToken(token); err != nil {
			return invoicedomain.ListResponse{}, err
		}
	}

	records, err := s.repo.List(ctx, req.UserID, req.Pagination)
	if err != nil {
		return invoicedomain.ListResponse{}, err
	}

	page, info := pagination.BuildCursorPageInfo(records, req.Size(), func(r *invoicedomain.Record) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: r.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	resp := invoicedomain.ListResponse{
		PageInfo: info,
		Invoices: make([]invoicedomain.Summary, 0, len(page)),
	}
	for _, r := range page {
		resp.Invoices = append(resp.Invoices, invoicedomain.Summary{
			ID:            r.ID.String(),
			InvoiceNumber: r.InvoiceNumber,
			ClientName:    r.ClientName,
			TotalAmount:   r.TotalAmount,
			CreatedAt:     r.CreatedAt,
		})
	}
	return resp, nil
}

// errUserRequired guards every user-scoped query; the store's struct
// conditions would otherwise drop a blank user id and match all rows.
func errUserRequired() error {
	return invoicedomain.NewValidationError(invoicedomain.FieldError{
		Field: "user_id", Code: "required", Message: "user is required",
	})
}

func checkPageToken(token string) error {
	invalid := invoicedomain.NewValidationError(invoicedomain.FieldError{
		Field: "page_token", Code: "invalid", Message: "page token is invalid",
	})
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return invalid
	}
	if _, err := snowflake.ParseString(cursor.ID); err != nil {
		return invalid
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, invoiceNumber string) (invoicedomain.Invoice, error) {
	if strings.TrimSpace(userID) == "" {
		return invoicedomain.Invoice{}, errUserRequired()
	}
	record, err := s.repo.FindByNumber(ctx, userID, invoiceNumber)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if record == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	var inv invoicedomain.Invoice
	if err := json.Unmarshal(record.InvoiceData, &inv); err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("decode stored invoice %s: %w", record.ID, err)
	}
	return inv, nil
}

func (s *Service) Render(ctx context.Context, userID, invoiceNumber string, f invoicedomain.RenderFormat) (invoicedomain.Document, error) {
	if !validFormat(f) {
		return invoicedomain.Document{}, invoicedomain.ErrInvalidFormat
	}
	inv, err := s.Get(ctx, userID, invoiceNumber)
	if err != nil {
		return invoicedomain.Document{}, err
	}
	return s.render(ctx, inv, f)
}

// RenderInvoice recomputes the posted invoice before rendering so the
// document never shows totals the calculator would not produce.
func (s *Service) RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, f invoicedomain.RenderFormat) (invoicedomain.Document, error) {
	if !validFormat(f) {
		return invoicedomain.Document{}, invoicedomain.ErrInvalidFormat
	}
	computed, err := s.calculator.Calculate(inv.Draft())
	if err != nil {
		return invoicedomain.Document{}, err
	}
	return s.render(ctx, computed, f)
}

func validFormat(f invoicedomain.RenderFormat) bool {
	return f == invoicedomain.RenderFormatHTML || f == invoicedomain.RenderFormatPDF
}

func (s *Service) render(ctx context.Context, inv invoicedomain.Invoice, f invoicedomain.RenderFormat) (invoicedomain.Document, error) {
	switch f {
	case invoicedomain.RenderFormatHTML:
		body, err := s.renderer.RenderHTML(inv)
		if err != nil {
			return invoicedomain.Document{}, fmt.Errorf("render html: %w", err)
		}
		return invoicedomain.Document{
			Filename:    format.Filename(inv.InvoiceNumber, "html"),
			ContentType: "text/html; charset=utf-8",
			Body:        body,
		}, nil
	case invoicedomain.RenderFormatPDF:
		body, err := s.pdf.GenerateInvoice(ctx, inv)
		if err != nil {
			return invoicedomain.Document{}, fmt.Errorf("render pdf: %w", err)
		}
		return invoicedomain.Document{
			Filename:    format.Filename(inv.InvoiceNumber, "pdf"),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return invoicedomain.Document{}, invoicedomain.ErrInvalidFormat
	}
}
