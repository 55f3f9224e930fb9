package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	authservice "github.com/smallbiznis/promptinvoice/internal/auth/service"
	"github.com/smallbiznis/promptinvoice/internal/config"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/observability"
	"github.com/smallbiznis/promptinvoice/internal/reference"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (authdomain.Principal, error) {
	userID, ok := f[token]
	if !ok {
		return authdomain.Principal{}, authdomain.ErrInvalidToken
	}
	return authdomain.Principal{UserID: userID}, nil
}

type fakeInvoiceService struct {
	generateReq invoicedomain.GenerateRequest
	generateRes invoicedomain.GenerateResult
	generateErr error

	listReq invoicedomain.ListRequest
	listRes invoicedomain.ListResponse

	invoices map[string]invoicedomain.Invoice
	rendered invoicedomain.Invoice
}

func (f *fakeInvoiceService) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResult, error) {
	f.generateReq = req
	return f.generateRes, f.generateErr
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListRequest) (invoicedomain.ListResponse, error) {
	f.listReq = req
	return f.listRes, nil
}

func (f *fakeInvoiceService) Get(ctx context.Context, userID, invoiceNumber string) (invoicedomain.Invoice, error) {
	inv, ok := f.invoices[userID+"/"+invoiceNumber]
	if !ok {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvoiceService) Render(ctx context.Context, userID, invoiceNumber string, format invoicedomain.RenderFormat) (invoicedomain.Document, error) {
	inv, err := f.Get(ctx, userID, invoiceNumber)
	if err != nil {
		return invoicedomain.Document{}, err
	}
	return f.RenderInvoice(ctx, inv, format)
}

func (f *fakeInvoiceService) RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, format invoicedomain.RenderFormat) (invoicedomain.Document, error) {
	f.rendered = inv
	switch format {
	case invoicedomain.RenderFormatPDF:
		return invoicedomain.Document{Filename: "invoice-" + inv.InvoiceNumber + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
	case invoicedomain.RenderFormatHTML:
		return invoicedomain.Document{Filename: "invoice-" + inv.InvoiceNumber + ".html", ContentType: "text/html; charset=utf-8", Body: []byte("<html></html>")}, nil
	default:
		return invoicedomain.Document{}, invoicedomain.ErrInvalidFormat
	}
}

type fakeProfileService struct {
	saved  map[string]invoicedomain.CompanyProfile
	userID string
}

func (f *fakeProfileService) Get(ctx context.Context, userID string) (invoicedomain.CompanyProfile, error) {
	f.userID = userID
	p, ok := f.saved[userID]
	if !ok {
		return invoicedomain.CompanyProfile{}, invoicedomain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileService) Save(ctx context.Context, userID string, company invoicedomain.CompanyProfile) (invoicedomain.CompanyProfile, error) {
	if company.Name == "" {
		return invoicedomain.CompanyProfile{}, invoicedomain.NewValidationError(invoicedomain.FieldError{
			Field: "name", Code: "required", Message: "Company name is required",
		})
	}
	if f.saved == nil {
		f.saved = map[string]invoicedomain.CompanyProfile{}
	}
	f.saved[userID] = company
	return company, nil
}

func newTestEngine(t *testing.T, verifier authdomain.Verifier, invoices *fakeInvoiceService, profiles *fakeProfileService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := NewEngine(observability.Config{Environment: "test"}, nil)
	s := NewServer(ServerParams{
		Gin:        r,
		Verifier:   verifier,
		InvoiceSvc: invoices,
		ProfileSvc: profiles,
		Refrepo:    reference.NewRepository(),
	})
	s.RegisterAPIRoutes()
	return r
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func sampleInvoice(number string) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		InvoiceNumber: number,
		Date:          "2024-03-01",
		DueDate:       "2024-03-31",
		Company:       invoicedomain.CompanyProfile{Name: "Acme Works", State: "Karnataka"},
		Client:        invoicedomain.ClientInfo{Name: "Globex", State: "Karnataka"},
		Total:         decimal.NewFromInt(354000),
	}
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t, fakeVerifier{}, &fakeInvoiceService{}, &fakeProfileService{})
	rec := doRequest(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, &fakeInvoiceService{}, &fakeProfileService{})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic Zm9vOmJhcg=="},
		{"empty bearer", "Bearer "},
		{"unknown token", "Bearer nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/reference/states", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeError(t, rec).Type)
		})
	}
}

func TestAuthRequired_JWT(t *testing.T) {
	verifier, err := authservice.NewJWTVerifier(config.Config{AuthJWTSecret: "s3cret"}, zap.NewNop())
	require.NoError(t, err)
	profiles := &fakeProfileService{}
	r := newTestEngine(t, verifier, &fakeInvoiceService{}, profiles)

	token, err := authservice.Sign("s3cret", "user-9", time.Minute)
	require.NoError(t, err)

	rec := doRequest(r, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user-9", profiles.userID)

	expired, err := authservice.Sign("s3cret", "user-9", -time.Hour)
	require.NoError(t, err)
	rec = doRequest(r, http.MethodGet, "/api/profile", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateInvoice(t *testing.T) {
	invoices := &fakeInvoiceService{
		generateRes: invoicedomain.GenerateResult{
			Invoice:  sampleInvoice("INV-20240301-0001"),
			RecordID: "42",
			Saved:    true,
		},
	}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodPost, "/api/invoices/generate", "good", map[string]any{
		"prompt":  "Invoice Globex for 40 hours of consulting at 7500",
		"company": map[string]string{"name": "Override Ltd", "state": "Goa"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Saved)
	assert.Equal(t, "42", resp.RecordID)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, "INV-20240301-0001", resp.Data.InvoiceNumber)
	assert.True(t, resp.Data.Total.Equal(decimal.NewFromInt(354000)))

	assert.Equal(t, "user-1", invoices.generateReq.UserID)
	assert.Equal(t, "Invoice Globex for 40 hours of consulting at 7500", invoices.generateReq.Prompt)
	require.NotNil(t, invoices.generateReq.Company)
	assert.Equal(t, "Goa", invoices.generateReq.Company.State)
}

func TestGenerateInvoice_Unsaved(t *testing.T) {
	invoices := &fakeInvoiceService{
		generateRes: invoicedomain.GenerateResult{
			Invoice:   sampleInvoice("INV-1"),
			SaveError: errors.New("db down"),
		},
	}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodPost, "/api/invoices/generate", "good", map[string]string{"prompt": "x"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Saved)
	assert.Equal(t, saveFailedWarning, resp.Warning)
	assert.Equal(t, "INV-1", resp.Data.InvoiceNumber)
}

func TestGenerateInvoice_DuplicateNumberWarning(t *testing.T) {
	invoices := &fakeInvoiceService{
		generateRes: invoicedomain.GenerateResult{
			Invoice:   sampleInvoice("INV-1"),
			SaveError: fmt.Errorf("%w: INV-1", invoicedomain.ErrDuplicateNumber),
		},
	}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodPost, "/api/invoices/generate", "good", map[string]string{"prompt": "x"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Saved)
	assert.Equal(t, duplicateNumberWarning, resp.Warning)
}

func TestGenerateInvoice_MalformedBody(t *testing.T) {
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, &fakeInvoiceService{}, &fakeProfileService{})

	rec := doRequest(r, http.MethodPost, "/api/invoices/generate", "good", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "request", payload.Errors[0].Field)
}

func TestGenerateInvoice_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		status     int
		errType    string
		message    string
		retryAfter string
	}{
		{
			name: "validation",
			err: invoicedomain.NewValidationError(invoicedomain.FieldError{
				Field: "client.state", Code: "required", Message: "Client state is required",
			}),
			status:  http.StatusBadRequest,
			errType: "validation_error",
			message: "Client state is required",
		},
		{
			name:    "in progress",
			err:     invoicedomain.ErrGenerationInProgress,
			status:  http.StatusConflict,
			errType: "generation_in_progress",
		},
		{
			name:       "rate limited",
			err:        &invoicedomain.RateLimitError{RetryAfter: 4200 * time.Millisecond},
			status:     http.StatusTooManyRequests,
			errType:    "rate_limited",
			message:    "Too many invoices generated. Please wait a moment and try again.",
			retryAfter: "5",
		},
		{
			name:    "parse",
			err:     invoicedomain.NewParseError("Failed to parse the generated invoice data. Please try again.", errors.New("eof")),
			status:  http.StatusBadGateway,
			errType: "parse_error",
			message: "Failed to parse the generated invoice data. Please try again.",
		},
		{
			name:    "upstream",
			err:     invoicedomain.NewUpstreamError(invoicedomain.CodeInvalidAPIKey, "Invalid OpenAI API key.", nil),
			status:  http.StatusBadGateway,
			errType: "upstream_error",
			message: "Invalid OpenAI API key.",
		},
		{
			name:    "configuration",
			err:     invoicedomain.NewConfigurationError("OpenAI API key is not configured."),
			status:  http.StatusServiceUnavailable,
			errType: "configuration_error",
			message: "OpenAI API key is not configured.",
		},
		{
			name:    "unexpected",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			errType: "internal_error",
			message: "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoices := &fakeInvoiceService{generateErr: tc.err}
			r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

			rec := doRequest(r, http.MethodPost, "/api/invoices/generate", "good", map[string]string{"prompt": "x"})
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.retryAfter, rec.Header().Get("Retry-After"))

			payload := decodeError(t, rec)
			assert.Equal(t, tc.errType, payload.Type)
			if tc.message != "" {
				assert.Equal(t, tc.message, payload.Message)
			}
			if tc.name == "validation" {
				require.Len(t, payload.Errors, 1)
				assert.Equal(t, "client.state", payload.Errors[0].Field)
			}
		})
	}
}

func TestListInvoices(t *testing.T) {
	invoices := &fakeInvoiceService{
		listRes: invoicedomain.ListResponse{
			PageInfo: pagination.PageInfo{NextPageToken: "abc", HasMore: true},
			Invoices: []invoicedomain.Summary{{ID: "7", InvoiceNumber: "INV-7", ClientName: "Globex"}},
		},
	}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodGet, "/api/invoices?page_size=5&page_token=tok", "good", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data          []invoicedomain.Summary `json:"data"`
		NextPageToken string                  `json:"next_page_token"`
		HasMore       bool                    `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "INV-7", resp.Data[0].InvoiceNumber)
	assert.Equal(t, "abc", resp.NextPageToken)
	assert.True(t, resp.HasMore)

	assert.Equal(t, "user-1", invoices.listReq.UserID)
	assert.Equal(t, 5, invoices.listReq.PageSize)
	assert.Equal(t, "tok", invoices.listReq.PageToken)
}

func TestGetAndDownloadInvoice(t *testing.T) {
	invoices := &fakeInvoiceService{
		invoices: map[string]invoicedomain.Invoice{
			"user-1/INV-1": sampleInvoice("INV-1"),
		},
	}
	r := newTestEngine(t, fakeVerifier{"one": "user-1", "two": "user-2"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodGet, "/api/invoices/INV-1", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoiceNumber":"INV-1"`)

	rec = doRequest(r, http.MethodGet, "/api/invoices/INV-1", "two", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)

	rec = doRequest(r, http.MethodGet, "/api/invoices/INV-1/pdf", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-INV-1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())

	rec = doRequest(r, http.MethodGet, "/api/invoices/INV-1/html", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestGetInvoiceWithSlashedNumber(t *testing.T) {
	invoices := &fakeInvoiceService{
		invoices: map[string]invoicedomain.Invoice{
			"user-1/INV/2024/001": sampleInvoice("INV/2024/001"),
		},
	}
	r := newTestEngine(t, fakeVerifier{"one": "user-1"}, invoices, &fakeProfileService{})

	rec := doRequest(r, http.MethodGet, "/api/invoices/INV%2F2024%2F001", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoiceNumber":"INV/2024/001"`)

	rec = doRequest(r, http.MethodGet, "/api/invoices/INV%2F2024%2F001/pdf", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = doRequest(r, http.MethodGet, "/api/invoices/INV%2F2024%2F001/html", "one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INV/2024/001", invoices.rendered.InvoiceNumber)
}

func TestRenderInvoice(t *testing.T) {
	invoices := &fakeInvoiceService{}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, invoices, &fakeProfileService{})

	body := `{"invoiceNumber":"INV-9","items":[{"description":"Design","quantity":"2","price":"1500.50","taxRate":"18"}]}`
	rec := doRequest(r, http.MethodPost, "/api/invoices/render?format=HTML", "good", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INV-9", invoices.rendered.InvoiceNumber)
	require.Len(t, invoices.rendered.Items, 1)
	assert.True(t, invoices.rendered.Items[0].Price.Equal(decimal.RequireFromString("1500.50")))

	rec = doRequest(r, http.MethodPost, "/api/invoices/render", "good", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = doRequest(r, http.MethodPost, "/api/invoices/render?format=docx", "good", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "format", payload.Errors[0].Field)
}

func TestProfileRoutes(t *testing.T) {
	profiles := &fakeProfileService{}
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, &fakeInvoiceService{}, profiles)

	rec := doRequest(r, http.MethodGet, "/api/profile", "good", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(r, http.MethodPut, "/api/profile", "good", map[string]string{"email": "a@b.in"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Company name is required", decodeError(t, rec).Message)

	rec = doRequest(r, http.MethodPut, "/api/profile", "good", map[string]string{"name": "Acme Works", "state": "Karnataka"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/profile", "good", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Acme Works"`)
}

func TestListStates(t *testing.T) {
	r := newTestEngine(t, fakeVerifier{"good": "user-1"}, &fakeInvoiceService{}, &fakeProfileService{})

	rec := doRequest(r, http.MethodGet, "/api/reference/states", "good", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Karnataka"`)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(invoicedomain.NewUpstreamError(invoicedomain.CodeTimeout, "timed out", nil))
	assert.Equal(t, "upstream", errType)
	assert.Equal(t, invoicedomain.CodeTimeout, code)

	errType, _ = classifyErrorForLog(authdomain.ErrTokenExpired)
	assert.Equal(t, "unauthorized", errType)

	errType, _ = classifyErrorForLog(invalidRequestError())
	assert.Equal(t, "validation_error", errType)
}
