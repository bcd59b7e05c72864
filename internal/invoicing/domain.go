package invoicing

import "strings"

// Rule field names recognised on a LineItem.
const (
	FieldDescription = "descricao"
	FieldCode        = "codigo"
)

// Summary is the aggregate revenue for a reporting window.
type Summary struct {
	Count          int
	TotalValue     float64
	AverageValue   float64
	Items          []LineItem
	ItemsAvailable bool
}

// LineItem is one product line of the itemised sales breakdown.
type LineItem struct {
	Code        string
	Description string
	Quantity    float64
	Value       float64
}

// Field returns the text of the named field. Unknown names report false.
func (i LineItem) Field(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FieldDescription:
		return i.Description, true
	case FieldCode:
		return i.Code, true
	default:
		return "", false
	}
}

// Invoice is an issued outbound NF-e in summary form.
type Invoice struct {
	ID       string  `json:"id"`
	Date     string  `json:"data"`
	Customer string  `json:"cliente"`
	Document string  `json:"documento"`
	Total    float64 `json:"valorTotal"`
	Status   string  `json:"status"`
}
