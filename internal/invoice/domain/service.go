package domain

import (
	"context"

	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
)

type GenerateRequest struct {
	UserID string
	Prompt string
	// Company overrides the stored profile when set.
	Company *CompanyProfile
}

// GenerateResult always carries the computed invoice. Saved is false when the
// record could not be written; SaveError then holds the cause.
type GenerateResult struct {
	Invoice   Invoice
	RecordID  string
	Saved     bool
	SaveError error
}

type ListRequest struct {
	UserID string
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Invoices []Summary `json:"invoices"`
}

type RenderFormat string

const (
	RenderFormatHTML RenderFormat = "html"
	RenderFormatPDF  RenderFormat = "pdf"
)

// Document is a rendered invoice ready for download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, userID, invoiceNumber string) (Invoice, error)
	Render(ctx context.Context, userID, invoiceNumber string, format RenderFormat) (Document, error)
	RenderInvoice(ctx context.Context, inv Invoice, format RenderFormat) (Document, error)
}
