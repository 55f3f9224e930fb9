package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

const parseFailureMessage = "Failed to parse the generated invoice data. Please try again."

type wireParty struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	State   string `json:"state"`
}

type wireItem struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       decimal.Decimal  `json:"price"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	TaxType     string           `json:"taxType"`
}

type wireDraft struct {
	InvoiceNumber string      `json:"invoiceNumber"`
	Date          string      `json:"date"`
	DueDate       string      `json:"dueDate"`
	Company       wireParty   `json:"company"`
	Client        *wireParty  `json:"client"`
	Items         *[]wireItem `json:"items"`
}

// ParseDraft decodes model output into a draft. Markdown fences and any text
// around the outermost JSON object are ignored. Amount and tax figures in the
// payload are discarded; only the tax rate and type survive as hints.
func ParseDraft(content string) (invoicedomain.Draft, error) {
	raw, err := extractObject(content)
	if err != nil {
		return invoicedomain.Draft{}, invoicedomain.NewParseError(parseFailureMessage, err)
	}

	var wire wireDraft
	if err := json.Unmarshal(raw, &wire); err != nil {
		return invoicedomain.Draft{}, invoicedomain.NewParseError(parseFailureMessage, err)
	}
	// An empty items array is allowed; a missing one is not.
	if wire.Items == nil {
		return invoicedomain.Draft{}, invoicedomain.NewParseError(parseFailureMessage, errors.New("response has no items"))
	}
	if wire.Client == nil {
		return invoicedomain.Draft{}, invoicedomain.NewParseError(parseFailureMessage, errors.New("response has no client"))
	}
	items := *wire.Items

	draft := invoicedomain.Draft{
		InvoiceNumber: strings.TrimSpace(wire.InvoiceNumber),
		Date:          strings.TrimSpace(wire.Date),
		DueDate:       strings.TrimSpace(wire.DueDate),
		Company: invoicedomain.CompanyProfile{
			Name:    strings.TrimSpace(wire.Company.Name),
			Address: strings.TrimSpace(wire.Company.Address),
			Email:   strings.TrimSpace(wire.Company.Email),
			Phone:   strings.TrimSpace(wire.Company.Phone),
			State:   strings.TrimSpace(wire.Company.State),
		},
		Client: invoicedomain.ClientInfo{
			Name:    strings.TrimSpace(wire.Client.Name),
			Address: strings.TrimSpace(wire.Client.Address),
			Email:   strings.TrimSpace(wire.Client.Email),
			State:   strings.TrimSpace(wire.Client.State),
		},
		Items: make([]invoicedomain.DraftItem, 0, len(items)),
	}

	for _, item := range items {
		draft.Items = append(draft.Items, invoicedomain.DraftItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			Price:       item.Price,
			TaxRate:     item.TaxRate,
			TaxType:     parseTaxType(item.TaxType),
		})
	}

	return draft, nil
}

func extractObject(content string) ([]byte, error) {
	trimmed := bytes.TrimSpace([]byte(content))
	if len(trimmed) == 0 {
		return nil, errors.New("empty response")
	}
	start := bytes.IndexByte(trimmed, '{')
	end := bytes.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return nil, errors.New("response contains no JSON object")
	}
	return trimmed[start : end+1], nil
}

func parseTaxType(raw string) invoicedomain.TaxType {
	switch invoicedomain.TaxType(strings.ToLower(strings.TrimSpace(raw))) {
	case invoicedomain.TaxTypeGST:
		return invoicedomain.TaxTypeGST
	case invoicedomain.TaxTypeIGST:
		return invoicedomain.TaxTypeIGST
	default:
		return ""
	}
}
