// Package goals models the monthly sales goals, reads them from the goal
// store and evaluates progress against invoicing figures.
package goals

import "strings"

// Kind tags what a goal measures.
type Kind string

const (
	KindTotalRevenue Kind = "FATURAMENTO_TOTAL"
	KindEnredoShare  Kind = "ENREDO_SHARE"
	KindCookies      Kind = "COOKIES"
	KindAguas        Kind = "AGUAS"
)

// CanonicalOrder is the slot order goals are reported in.
var CanonicalOrder = []Kind{KindTotalRevenue, KindEnredoShare, KindCookies, KindAguas}

var defaultTitles = map[Kind]string{
	KindTotalRevenue: "Faturamento total",
	KindEnredoShare:  "Participação Enredo",
	KindCookies:      "Cookies",
	KindAguas:        "Águas",
}

// DefaultTitle returns the display title used when the store has none.
func (k Kind) DefaultTitle() string {
	if title, ok := defaultTitles[k]; ok {
		return title
	}
	return string(k)
}

// Metric tells how a component accumulates its realised value.
type Metric string

const (
	MetricMonetary   Metric = "VALOR"
	MetricQuantity   Metric = "QTD"
	MetricPercentage Metric = "PERCENTUAL"
)

// ParseMetric normalises the store's metric label, accepting the English
// aliases as well.
func ParseMetric(s string) Metric {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VALOR", "MONETARY":
		return MetricMonetary
	case "QTD", "QUANTIDADE", "QUANTITY":
		return MetricQuantity
	case "PERCENTUAL", "PERCENTAGE":
		return MetricPercentage
	default:
		return Metric(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// Rule selects line items whose Field contains any of Patterns.
type Rule struct {
	Field    string
	Patterns []string
}

func (r *Rule) usable() bool {
	if r == nil || strings.TrimSpace(r.Field) == "" {
		return false
	}
	for _, p := range r.Patterns {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Component is one measurable facet of a goal.
type Component struct {
	ID     int64
	Metric Metric
	Target float64
	Rule   *Rule
}

// Goal is a monthly target configured in the goal store.
type Goal struct {
	ID         int64
	Month      string
	Kind       Kind
	Title      string
	Components []Component
}
