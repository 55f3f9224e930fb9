package render

import (
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/invoice/format"
)

const footerNote = "Thank you for your business!"

// View is the presentation form of an invoice shared by the HTML and PDF
// renderers. Money values are rounded and grouped for display.
type View struct {
	Number     string
	Date       string
	DueDate    string
	Company    invoicedomain.CompanyProfile
	Client     invoicedomain.ClientInfo
	Intrastate bool
	Items      []ItemView

	Subtotal      string
	CGSTTotal     string
	SGSTTotal     string
	IGSTTotal     string
	TotalTax      string
	Total         string
	AmountInWords string
	Footer        string
}

type ItemView struct {
	Description string
	Quantity    string
	Price       string
	Amount      string
	TaxRate     string
	CGST        string
	SGST        string
	IGST        string
	Total       string
}

// NewView formats inv using symbol as the currency prefix.
func NewView(inv invoicedomain.Invoice, symbol string) View {
	items := make([]ItemView, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, ItemView{
			Description: item.Description,
			Quantity:    format.Quantity(item.Quantity),
			Price:       format.Money(item.Price, symbol),
			Amount:      format.Money(item.Amount, symbol),
			TaxRate:     format.Percent(item.TaxRate),
			CGST:        format.Money(item.CGST, symbol),
			SGST:        format.Money(item.SGST, symbol),
			IGST:        format.Money(item.IGST, symbol),
			Total:       format.Money(item.Amount.Add(item.TotalTaxAmount), symbol),
		})
	}

	return View{
		Number:        inv.InvoiceNumber,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Company:       inv.Company,
		Client:        inv.Client,
		Intrastate:    inv.TaxType() == invoicedomain.TaxTypeGST,
		Items:         items,
		Subtotal:      format.Money(inv.Subtotal, symbol),
		CGSTTotal:     format.Money(inv.CGSTTotal, symbol),
		SGSTTotal:     format.Money(inv.SGSTTotal, symbol),
		IGSTTotal:     format.Money(inv.IGSTTotal, symbol),
		TotalTax:      format.Money(inv.TotalTax, symbol),
		Total:         format.Money(inv.Total, symbol),
		AmountInWords: format.AmountInWords(inv.Total),
		Footer:        footerNote,
	}
}
