package domain

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

// DefaultRatePercent applies to items whose rate is absent or zero.
var DefaultRatePercent = decimal.NewFromInt(18)

// Calculator turns a draft into a fully computed invoice. Implementations are
// pure: the same draft always yields the same invoice.
type Calculator interface {
	Calculate(draft invoicedomain.Draft) (invoicedomain.Invoice, error)
}
