package goals

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/painel-vendas/painel/internal/invoicing"
)

// Inputs carries the invoicing figures a goal set is evaluated against.
type Inputs struct {
	TotalValue     float64
	Items          []invoicing.LineItem
	ItemsAvailable bool
}

// Indicator is the derived progress of a single component.
type Indicator struct {
	Target     float64
	Realized   float64
	Percentage float64
	Difference float64
	Shortfall  float64
	Attained   bool
}

// NewIndicator derives progress figures. Non-finite inputs count as zero.
func NewIndicator(target, realized float64) Indicator {
	target = Finite(target)
	realized = Finite(realized)
	pct := 0.0
	if target > 0 {
		pct = Finite(realized / target * 100)
	}
	return Indicator{
		Target:     target,
		Realized:   realized,
		Percentage: pct,
		Difference: realized - target,
		Shortfall:  math.Max(0, target-realized),
		Attained:   realized >= target,
	}
}

// Finite maps NaN and ±Inf to zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ComponentResult pairs a component with its indicator. Share components
// also report the ratio's numerator and denominator.
type ComponentResult struct {
	Component   Component
	Indicator   Indicator
	Numerator   *float64
	Denominator *float64
}

// Evaluation is the outcome for one goal slot.
type Evaluation struct {
	Goal       Goal
	Configured bool
	Computable bool
	Attained   bool
	Components []ComponentResult
}

// Evaluate computes every goal against in and returns them in canonical
// kind order. Canonical kinds missing from goals get an unconfigured
// placeholder for month; other kinds follow in their given order.
//
// Matching is per component: an item counts at most once toward a
// component, but may count toward several components of the same goal
// and toward other goals.
func Evaluate(goals []Goal, month string, in Inputs) []Evaluation {
	m := matcher{upper: cases.Upper(language.BrazilianPortuguese)}

	byKind := make(map[Kind][]Goal, len(goals))
	var extra []Goal
	for _, g := range goals {
		if isCanonical(g.Kind) {
			byKind[g.Kind] = append(byKind[g.Kind], g)
			continue
		}
		extra = append(extra, g)
	}

	out := make([]Evaluation, 0, len(CanonicalOrder)+len(extra))
	for _, kind := range CanonicalOrder {
		found := byKind[kind]
		if len(found) == 0 {
			out = append(out, placeholder(kind, month))
			continue
		}
		for _, g := range found {
			out = append(out, m.evaluate(g, in))
		}
	}
	for _, g := range extra {
		out = append(out, m.evaluate(g, in))
	}
	return out
}

func isCanonical(k Kind) bool {
	for _, c := range CanonicalOrder {
		if c == k {
			return true
		}
	}
	return false
}

func placeholder(kind Kind, month string) Evaluation {
	return Evaluation{
		Goal: Goal{
			Month:      month,
			Kind:       kind,
			Title:      kind.DefaultTitle(),
			Components: []Component{},
		},
		Components: []ComponentResult{},
	}
}

type matcher struct {
	upper cases.Caser
}

func (m matcher) evaluate(g Goal, in Inputs) Evaluation {
	if g.Title == "" {
		g.Title = g.Kind.DefaultTitle()
	}
	ev := Evaluation{
		Goal:       g,
		Configured: true,
		Computable: true,
		Components: make([]ComponentResult, 0, len(g.Components)),
	}

	total := Finite(in.TotalValue)
	if g.Kind != KindTotalRevenue && !in.ItemsAvailable {
		ev.Computable = false
	}

	for _, c := range g.Components {
		var res ComponentResult
		switch {
		case g.Kind == KindTotalRevenue:
			res = ComponentResult{Component: c, Indicator: NewIndicator(c.Target, total)}
		case !in.ItemsAvailable:
			res = ComponentResult{Component: c, Indicator: NewIndicator(c.Target, 0)}
		case !c.Rule.usable():
			ev.Computable = false
			res = ComponentResult{Component: c, Indicator: NewIndicator(c.Target, 0)}
		case c.Metric == MetricPercentage:
			matched := m.sum(c, in.Items)
			ratio := 0.0
			if total > 0 {
				ratio = matched / total
			}
			res = ComponentResult{
				Component:   c,
				Indicator:   NewIndicator(c.Target, ratio),
				Numerator:   &matched,
				Denominator: &total,
			}
		default:
			res = ComponentResult{Component: c, Indicator: NewIndicator(c.Target, m.sum(c, in.Items))}
		}
		ev.Components = append(ev.Components, res)
	}

	ev.Attained = ev.Computable && len(ev.Components) > 0
	for _, res := range ev.Components {
		if !res.Indicator.Attained {
			ev.Attained = false
			break
		}
	}
	return ev
}

// sum accumulates the matching items: quantities for QTD, values otherwise.
func (m matcher) sum(c Component, items []invoicing.LineItem) float64 {
	patterns := make([]string, 0, len(c.Rule.Patterns))
	for _, p := range c.Rule.Patterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, m.upper.String(p))
		}
	}

	acc := decimal.Zero
	for _, item := range items {
		text, ok := item.Field(c.Rule.Field)
		if !ok || !m.matches(text, patterns) {
			continue
		}
		if c.Metric == MetricQuantity {
			acc = acc.Add(decimal.NewFromFloat(Finite(item.Quantity)))
		} else {
			acc = acc.Add(decimal.NewFromFloat(Finite(item.Value)))
		}
	}
	return acc.InexactFloat64()
}

func (m matcher) matches(text string, patterns []string) bool {
	text = m.upper.String(text)
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
