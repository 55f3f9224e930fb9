package render

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/invoice/format"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en-IN">
<head>
  <meta charset="utf-8" />
  <title>Tax Invoice {{.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: Helvetica, Arial, sans-serif;
      font-size: 12px;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 900px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      padding-bottom: 20px;
      margin-bottom: 32px;
      border-bottom: 1px solid #e5e7eb;
    }
    .logo { max-height: 48px; margin-bottom: 10px; }
    h1 { margin: 0 0 4px; font-size: 30px; color: #1e40af; }
    .muted { color: #6b7280; font-size: 11px; }
    .parties { display: flex; justify-content: space-between; margin-bottom: 28px; }
    .party h2 { margin: 0 0 8px; font-size: 13px; color: #374151; }
    .party .name { font-size: 15px; font-weight: 600; margin-bottom: 4px; }
    .party p { margin: 0 0 2px; color: #4b5563; }
    table { width: 100%; border-collapse: collapse; margin: 24px 0; }
    th {
      background: #f9fafb;
      color: #6b7280;
      font-size: 10px;
      text-align: left;
      padding: 8px;
      border-bottom: 1px solid #e5e7eb;
    }
    td { padding: 8px; border-bottom: 1px solid #e5e7eb; vertical-align: top; }
    .num { text-align: right; white-space: nowrap; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .total-row { display: flex; width: 280px; justify-content: space-between; padding: 4px 0; }
    .total-row .label { color: #6b7280; }
    .grand { font-size: 16px; color: #1e40af; font-weight: 700; border-top: 1px solid #e5e7eb; margin-top: 6px; padding-top: 8px; }
    .words { margin-top: 12px; font-style: italic; color: #374151; }
    .footer {
      margin-top: 48px;
      padding-top: 16px;
      border-top: 1px solid #e5e7eb;
      text-align: center;
      color: #9ca3af;
      font-size: 10px;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        {{with safeURL .Company.Logo}}<img class="logo" src="{{.}}" alt="Company logo">{{end}}
        <h1>TAX INVOICE</h1>
        <div class="muted">#{{.Number}}</div>
      </div>
      <div class="muted" style="text-align: right;">
        <div>Issue Date: {{.Date}}</div>
        <div>Due Date: {{.DueDate}}</div>
      </div>
    </div>

    <div class="parties">
      <div class="party">
        <h2>FROM</h2>
        <div class="name">{{.Company.Name}}</div>
        <p>{{.Company.Address}}</p>
        <p>{{.Company.Email}}</p>
        {{if .Company.Phone}}<p>{{.Company.Phone}}</p>{{end}}
        <p>State: {{.Company.State}}</p>
      </div>
      <div class="party">
        <h2>TO</h2>
        <div class="name">{{.Client.Name}}</div>
        <p>{{.Client.Address}}</p>
        <p>{{.Client.Email}}</p>
        <p>State: {{.Client.State}}</p>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 30%;">DESCRIPTION</th>
          <th class="num">QTY</th>
          <th class="num">PRICE</th>
          <th class="num">AMOUNT</th>
          <th class="num">TAX RATE</th>
          {{if .Intrastate}}
          <th class="num">CGST</th>
          <th class="num">SGST</th>
          {{else}}
          <th class="num">IGST</th>
          {{end}}
          <th class="num">TOTAL</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Description}}</td>
          <td class="num">{{.Quantity}}</td>
          <td class="num">{{.Price}}</td>
          <td class="num">{{.Amount}}</td>
          <td class="num">{{.TaxRate}}</td>
          {{if $.Intrastate}}
          <td class="num">{{.CGST}}</td>
          <td class="num">{{.SGST}}</td>
          {{else}}
          <td class="num">{{.IGST}}</td>
          {{end}}
          <td class="num">{{.Total}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row"><span class="label">Subtotal</span><span class="num">{{.Subtotal}}</span></div>
      {{if .Intrastate}}
      <div class="total-row"><span class="label">CGST</span><span class="num">{{.CGSTTotal}}</span></div>
      <div class="total-row"><span class="label">SGST</span><span class="num">{{.SGSTTotal}}</span></div>
      {{else}}
      <div class="total-row"><span class="label">IGST</span><span class="num">{{.IGSTTotal}}</span></div>
      {{end}}
      <div class="total-row grand"><span>Total</span><span class="num">{{.Total}}</span></div>
      <div class="words">{{.AmountInWords}}</div>
    </div>

    <div class="footer">{{.Footer}}</div>
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"safeURL": safeURL,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(inv invoicedomain.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, NewView(inv, format.RupeeSymbol)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// safeURL keeps only absolute http(s) logo links.
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
