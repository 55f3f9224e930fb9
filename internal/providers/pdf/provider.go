package pdf

import (
	"context"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"go.uber.org/fx"
)

// Provider renders computed invoices as PDF documents.
type Provider interface {
	GenerateInvoice(ctx context.Context, inv invoicedomain.Invoice) ([]byte, error)
}

var Module = fx.Module("pdf.provider",
	fx.Provide(New),
)
