package render

import (
	"testing"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice(taxType invoicedomain.TaxType) invoicedomain.Invoice {
	amount := decimal.NewFromInt(300000)
	item := invoicedomain.LineItem{
		Description:    "Consulting <hours>",
		Quantity:       decimal.NewFromInt(40),
		Price:          decimal.NewFromInt(7500),
		Amount:         amount,
		TaxRate:        decimal.NewFromInt(18),
		TaxType:        taxType,
		CGST:           decimal.Zero,
		SGST:           decimal.Zero,
		IGST:           decimal.Zero,
		TotalTaxAmount: decimal.NewFromInt(54000),
	}
	inv := invoicedomain.Invoice{
		InvoiceNumber: "INV-20240301-0001",
		Date:          "2024-03-01",
		DueDate:       "2024-03-31",
		Company:       invoicedomain.CompanyProfile{Name: "Acme Works", State: "Karnataka", Logo: "javascript:alert(1)"},
		Client:        invoicedomain.ClientInfo{Name: "Globex", State: "Maharashtra"},
		Subtotal:      amount,
		TotalTax:      decimal.NewFromInt(54000),
		Total:         decimal.NewFromInt(354000),
	}
	if taxType == invoicedomain.TaxTypeGST {
		item.CGST = decimal.NewFromInt(27000)
		item.SGST = decimal.NewFromInt(27000)
		inv.CGSTTotal, inv.SGSTTotal = item.CGST, item.SGST
		inv.Client.State = "Karnataka"
	} else {
		item.IGST = decimal.NewFromInt(54000)
		inv.IGSTTotal = item.IGST
	}
	inv.Items = []invoicedomain.LineItem{item}
	return inv
}

func TestRenderHTML_Intrastate(t *testing.T) {
	out, err := NewRenderer().RenderHTML(sampleInvoice(invoicedomain.TaxTypeGST))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "TAX INVOICE")
	assert.Contains(t, html, "#INV-20240301-0001")
	assert.Contains(t, html, "<th class=\"num\">CGST</th>")
	assert.Contains(t, html, "<th class=\"num\">SGST</th>")
	assert.NotContains(t, html, "<th class=\"num\">IGST</th>")
	assert.Contains(t, html, "₹27,000.00")
	assert.Contains(t, html, "₹3,54,000.00")
	assert.Contains(t, html, "Rupees Three Lakh Fifty")
	assert.Contains(t, html, "Consulting &lt;hours&gt;")
	assert.NotContains(t, html, "javascript:")
}

func TestRenderHTML_Interstate(t *testing.T) {
	out, err := NewRenderer().RenderHTML(sampleInvoice(invoicedomain.TaxTypeIGST))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<th class=\"num\">IGST</th>")
	assert.NotContains(t, html, "<th class=\"num\">CGST</th>")
	assert.Contains(t, html, "State: Maharashtra")
	assert.Contains(t, html, "₹54,000.00")
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/logo.png", safeURL(" https://example.com/logo.png "))
	assert.Equal(t, "", safeURL("javascript:alert(1)"))
	assert.Equal(t, "", safeURL("/relative.png"))
}
