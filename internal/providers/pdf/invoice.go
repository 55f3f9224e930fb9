package pdf

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/invoice/format"
	"github.com/smallbiznis/promptinvoice/internal/invoice/render"
)

var (
	primary = &props.Color{Red: 30, Green: 64, Blue: 175}
	muted   = &props.Color{Red: 107, Green: 114, Blue: 128}
)

type column struct {
	size  int
	title string
	value func(render.ItemView) string
	align align.Type
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

// GenerateInvoice lays out the TAX INVOICE on A4. Amounts use the "Rs."
// prefix since the built-in fonts have no rupee glyph.
func (p *PDFProvider) GenerateInvoice(ctx context.Context, inv invoicedomain.Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := render.NewView(inv, format.RupeeText)

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if logo, ext, ok := decodeLogo(view.Company.Logo); ok {
		m.AddRow(20,
			image.NewFromBytesCol(3, logo, ext, props.Rect{Percent: 80}),
			col.New(9),
		)
	}

	m.AddRow(14,
		text.NewCol(6, "TAX INVOICE", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
			Color: primary,
		}),
		col.New(6).Add(
			text.New("Invoice #: "+view.Number, props.Text{Align: align.Right, Size: 9}),
			text.New("Date: "+view.Date, props.Text{Top: 4, Align: align.Right, Size: 9}),
			text.New("Due Date: "+view.DueDate, props.Text{Top: 8, Align: align.Right, Size: 9}),
		),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(32,
		col.New(6).Add(partyLines("FROM",
			view.Company.Name,
			view.Company.Address,
			view.Company.Email,
			view.Company.Phone,
			stateLine(view.Company.State),
		)...),
		col.New(6).Add(partyLines("TO",
			view.Client.Name,
			view.Client.Address,
			view.Client.Email,
			stateLine(view.Client.State),
		)...),
	)

	columns := itemColumns(view.Intrastate)
	header := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		header = append(header, text.NewCol(c.size, c.title, props.Text{
			Style: fontstyle.Bold,
			Size:  8,
			Align: c.align,
		}))
	}
	m.AddRow(8, header...)
	m.AddRow(2, line.NewCol(12))

	for _, item := range view.Items {
		cells := make([]core.Col, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, text.NewCol(c.size, c.value(item), props.Text{Size: 8, Align: c.align}))
		}
		m.AddRow(9, cells...)
	}
	m.AddRow(2, line.NewCol(12))

	totals := [][2]string{{"Subtotal", view.Subtotal}}
	if view.Intrastate {
		totals = append(totals, [2]string{"CGST", view.CGSTTotal}, [2]string{"SGST", view.SGSTTotal})
	} else {
		totals = append(totals, [2]string{"IGST", view.IGSTTotal})
	}
	totals = append(totals, [2]string{"Total Tax", view.TotalTax})
	for _, row := range totals {
		m.AddRow(6,
			col.New(7),
			text.NewCol(2, row[0], props.Text{Size: 9}),
			text.NewCol(3, row[1], props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(7),
		text.NewCol(2, "Total", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(3, view.Total, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(12, "Amount in words: "+view.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic, Top: 3}),
	)
	m.AddRow(12,
		text.NewCol(12, view.Footer, props.Text{Size: 9, Align: align.Center, Color: muted, Top: 6}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func itemColumns(intrastate bool) []column {
	cols := []column{
		{size: 3, title: "DESCRIPTION", value: func(i render.ItemView) string { return i.Description }, align: align.Left},
		{size: 1, title: "QTY", value: func(i render.ItemView) string { return i.Quantity }, align: align.Right},
		{size: 2, title: "PRICE", value: func(i render.ItemView) string { return i.Price }, align: align.Right},
		{size: 2, title: "AMOUNT", value: func(i render.ItemView) string { return i.Amount }, align: align.Right},
		{size: 1, title: "TAX RATE", value: func(i render.ItemView) string { return i.TaxRate }, align: align.Right},
	}
	if intrastate {
		cols = append(cols,
			column{size: 1, title: "CGST", value: func(i render.ItemView) string { return i.CGST }, align: align.Right},
			column{size: 1, title: "SGST", value: func(i render.ItemView) string { return i.SGST }, align: align.Right},
		)
	} else {
		cols = append(cols,
			column{size: 2, title: "IGST", value: func(i render.ItemView) string { return i.IGST }, align: align.Right},
		)
	}
	return append(cols, column{size: 1, title: "TOTAL", value: func(i render.ItemView) string { return i.Total }, align: align.Right})
}

func partyLines(title string, lines ...string) []core.Component {
	components := []core.Component{
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: muted}),
	}
	top := 5.0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		components = append(components, text.New(l, props.Text{Top: top, Size: 9}))
		top += 4.5
	}
	return components
}

func stateLine(state string) string {
	if strings.TrimSpace(state) == "" {
		return ""
	}
	return "State: " + state
}

// decodeLogo accepts base64 data URIs for PNG and JPEG images. Remote URLs are
// not fetched.
func decodeLogo(raw string) ([]byte, extension.Type, bool) {
	raw = strings.TrimSpace(raw)
	meta, payload, found := strings.Cut(raw, ",")
	if !found || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}

	var ext extension.Type
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:image/"), ";base64") {
	case "png":
		ext = extension.Png
	case "jpeg", "jpg":
		ext = extension.Jpg
	default:
		return nil, "", false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	return data, ext, true
}

