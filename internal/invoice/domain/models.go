// Package domain holds the invoice model shared by the interpreter, the tax
// calculator, persistence and rendering.
package domain

import (
	"github.com/shopspring/decimal"
	refdomain "github.com/smallbiznis/promptinvoice/internal/reference/domain"
)

// TaxType is the GST treatment applied to a line item.
type TaxType string

const (
	// TaxTypeGST splits the rate into equal CGST and SGST halves (intrastate).
	TaxTypeGST TaxType = "gst"
	// TaxTypeIGST applies the full rate as IGST (interstate).
	TaxTypeIGST TaxType = "igst"
)

// CompanyProfile identifies the issuing party.
type CompanyProfile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Logo    string `json:"logo,omitempty"`
	State   string `json:"state"`
}

// ClientInfo identifies the billed party.
type ClientInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	State   string `json:"state"`
}

type LineItem struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Amount         decimal.Decimal `json:"amount"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxType        TaxType         `json:"taxType"`
	CGST           decimal.Decimal `json:"cgst"`
	SGST           decimal.Decimal `json:"sgst"`
	IGST           decimal.Decimal `json:"igst"`
	TotalTaxAmount decimal.Decimal `json:"totalTaxAmount"`
}

// Invoice is a fully computed invoice. Values are produced by the tax
// calculator and are not modified afterwards.
type Invoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Date          string          `json:"date"`
	DueDate       string          `json:"dueDate"`
	Company       CompanyProfile  `json:"company"`
	Client        ClientInfo      `json:"client"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CGSTTotal     decimal.Decimal `json:"cgstTotal"`
	SGSTTotal     decimal.Decimal `json:"sgstTotal"`
	IGSTTotal     decimal.Decimal `json:"igstTotal"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	Total         decimal.Decimal `json:"total"`
}

// TaxType reports the invoice-wide treatment. Every item shares it.
func (inv Invoice) TaxType() TaxType {
	if len(inv.Items) > 0 {
		return inv.Items[0].TaxType
	}
	if refdomain.SameState(inv.Company.State, inv.Client.State) {
		return TaxTypeGST
	}
	return TaxTypeIGST
}

// Draft converts a computed invoice back into calculator input, keeping each
// item's rate.
func (inv Invoice) Draft() Draft {
	items := make([]DraftItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		rate := item.TaxRate
		items = append(items, DraftItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			TaxRate:     &rate,
			TaxType:     item.TaxType,
		})
	}
	return Draft{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Company:       inv.Company,
		Client:        inv.Client,
		Items:         items,
	}
}

// Draft is the interpreter output. Tax fields on its items are hints only.
type Draft struct {
	InvoiceNumber string
	Date          string
	DueDate       string
	Company       CompanyProfile
	Client        ClientInfo
	Items         []DraftItem
}

type DraftItem struct {
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	// TaxRate is nil when the model did not supply one.
	TaxRate *decimal.Decimal
	TaxType TaxType
}
