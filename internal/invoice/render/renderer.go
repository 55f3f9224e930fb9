package render

import invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"

// Renderer produces the printable HTML form of an invoice.
type Renderer interface {
	RenderHTML(inv invoicedomain.Invoice) ([]byte, error)
}
