package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/promptinvoice/internal/config"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	refdomain "github.com/smallbiznis/promptinvoice/internal/reference/domain"
	taxdomain "github.com/smallbiznis/promptinvoice/internal/tax/domain"
	"go.uber.org/fx"
)

var (
	halfPercent = decimal.New(5, -3) // 1/200
	onePercent  = decimal.New(1, -2) // 1/100
)

type CalculatorParam struct {
	fx.In

	Settings *config.InvoiceSettingsHolder `optional:"true"`
}

type calculator struct {
	settings *config.InvoiceSettingsHolder
}

func NewCalculator(p CalculatorParam) taxdomain.Calculator {
	return &calculator{settings: p.Settings}
}

func (c *calculator) Calculate(draft invoicedomain.Draft) (invoicedomain.Invoice, error) {
	rate := taxdomain.DefaultRatePercent
	if c.settings != nil {
		rate = c.settings.Get().DefaultRate()
	}
	return Calculate(draft, rate)
}

// Calculate applies GST to every item of draft and aggregates the totals.
// Jurisdiction is decided once for the whole invoice: CGST and SGST when the
// company and client share a state, IGST otherwise. Arithmetic is exact;
// rounding is left to presentation.
func Calculate(draft invoicedomain.Draft, defaultRate decimal.Decimal) (invoicedomain.Invoice, error) {
	if fields := validate(draft); len(fields) > 0 {
		return invoicedomain.Invoice{}, invoicedomain.NewValidationError(fields...)
	}

	taxType := invoicedomain.TaxTypeIGST
	if refdomain.SameState(draft.Company.State, draft.Client.State) {
		taxType = invoicedomain.TaxTypeGST
	}

	company := draft.Company
	company.State = refdomain.Canonical(company.State)
	client := draft.Client
	client.State = refdomain.Canonical(client.State)

	inv := invoicedomain.Invoice{
		InvoiceNumber: strings.TrimSpace(draft.InvoiceNumber),
		Date:          strings.TrimSpace(draft.Date),
		DueDate:       strings.TrimSpace(draft.DueDate),
		Company:       company,
		Client:        client,
		Items:         make([]invoicedomain.LineItem, 0, len(draft.Items)),
		Subtotal:      decimal.Zero,
		CGSTTotal:     decimal.Zero,
		SGSTTotal:     decimal.Zero,
		IGSTTotal:     decimal.Zero,
	}

	for _, src := range draft.Items {
		item := computeItem(src, taxType, resolveRate(src.TaxRate, defaultRate))
		inv.Items = append(inv.Items, item)

		inv.Subtotal = inv.Subtotal.Add(item.Amount)
		inv.CGSTTotal = inv.CGSTTotal.Add(item.CGST)
		inv.SGSTTotal = inv.SGSTTotal.Add(item.SGST)
		inv.IGSTTotal = inv.IGSTTotal.Add(item.IGST)
	}

	inv.TotalTax = inv.CGSTTotal.Add(inv.SGSTTotal).Add(inv.IGSTTotal)
	inv.Total = inv.Subtotal.Add(inv.TotalTax)

	return inv, nil
}

func computeItem(src invoicedomain.DraftItem, taxType invoicedomain.TaxType, rate decimal.Decimal) invoicedomain.LineItem {
	amount := src.Quantity.Mul(src.Price)
	item := invoicedomain.LineItem{
		Description: strings.TrimSpace(src.Description),
		Quantity:    src.Quantity,
		Price:       src.Price,
		Amount:      amount,
		TaxRate:     rate,
		TaxType:     taxType,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		IGST:        decimal.Zero,
	}

	switch taxType {
	case invoicedomain.TaxTypeGST:
		half := amount.Mul(rate).Mul(halfPercent)
		item.CGST = half
		item.SGST = half
		item.TotalTaxAmount = half.Add(half)
	default:
		item.IGST = amount.Mul(rate).Mul(onePercent)
		item.TotalTaxAmount = item.IGST
	}

	return item
}

func resolveRate(rate *decimal.Decimal, defaultRate decimal.Decimal) decimal.Decimal {
	if rate == nil || rate.IsZero() {
		return defaultRate
	}
	return *rate
}

func validate(draft invoicedomain.Draft) []invoicedomain.FieldError {
	var fields []invoicedomain.FieldError
	if strings.TrimSpace(draft.Company.State) == "" {
		fields = append(fields, invoicedomain.FieldError{
			Field:   "company.state",
			Code:    "required",
			Message: "company state is required to determine the tax jurisdiction",
		})
	}
	if strings.TrimSpace(draft.Client.State) == "" {
		fields = append(fields, invoicedomain.FieldError{
			Field:   "client.state",
			Code:    "required",
			Message: "client state is required to determine the tax jurisdiction",
		})
	}

	for i, item := range draft.Items {
		if !item.Quantity.IsPositive() {
			fields = append(fields, invoicedomain.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Code:    "must_be_positive",
				Message: fmt.Sprintf("item %d quantity must be greater than zero", i+1),
			})
		}
		if item.Price.IsNegative() {
			fields = append(fields, invoicedomain.FieldError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Code:    "must_not_be_negative",
				Message: fmt.Sprintf("item %d price cannot be negative", i+1),
			})
		}
		if item.TaxRate != nil && item.TaxRate.IsNegative() {
			fields = append(fields, invoicedomain.FieldError{
				Field:   fmt.Sprintf("items[%d].taxRate", i),
				Code:    "must_not_be_negative",
				Message: fmt.Sprintf("item %d tax rate cannot be negative", i+1),
			})
		}
	}

	return fields
}
