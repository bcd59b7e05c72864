// Package sales assembles the dashboard reports from the invoicing gateway
// and the goal store.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/painel-vendas/painel/internal/dates"
	"github.com/painel-vendas/painel/internal/goals"
	"github.com/painel-vendas/painel/internal/invoicing"
	"github.com/painel-vendas/painel/internal/platform/httpx"
)

// MissingItemsNotice is reported when the invoicing service returned no
// itemised breakdown, so per-category goals could not be computed.
const MissingItemsNotice = "Detalhamento de itens indisponível no faturamento; metas por categoria não puderam ser calculadas."

// Gateway is the subset of the invoicing client used by the service.
type Gateway interface {
	Summary(ctx context.Context, window dates.Window, detailed bool) (invoicing.Summary, error)
	ListInvoices(ctx context.Context, window dates.Window) ([]invoicing.Invoice, error)
}

// Service builds the report payloads.
type Service struct {
	gateway Gateway
	store   goals.Store
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(gateway Gateway, store goals.Store) *Service {
	return &Service{gateway: gateway, store: store, now: time.Now}
}

// WithClock overrides the clock used to resolve default windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveWindow fills missing bounds from a seven-day window. The window
// ends today, or on DataFim when only the end is given.
func (s *Service) ResolveWindow(q WindowQuery) (dates.Window, error) {
	anchor := s.now()
	if q.DataFim != "" && q.DataInicio == "" {
		end, err := dates.ParseISO(q.DataFim)
		if err != nil {
			return dates.Window{}, httpx.ValidationError{Field: "dataFim", Reason: "parâmetro dataFim inválido"}
		}
		anchor = end
	}
	window := dates.DefaultWindow(anchor)
	if q.DataInicio != "" {
		window.Start = q.DataInicio
	}
	if q.DataFim != "" {
		window.End = q.DataFim
	}
	if err := window.Validate(); err != nil {
		return dates.Window{}, httpx.ValidationError{Field: "dataInicio", Reason: "dataInicio deve ser anterior ou igual a dataFim"}
	}
	return window, nil
}

// ResolveGoalsPeriod derives the reference month and window of a goal report.
func (s *Service) ResolveGoalsPeriod(q GoalsQuery) (string, dates.Window, error) {
	if q.Mes != "" {
		window, err := dates.MonthWindow(q.Mes, s.now())
		if err != nil {
			return "", dates.Window{}, httpx.ValidationError{Field: "mes", Reason: "parâmetro mes inválido"}
		}
		return window.Start, window, nil
	}
	if q.DataInicio == "" || q.DataFim == "" {
		return "", dates.Window{}, httpx.ValidationError{Field: "mes", Reason: "parâmetro mes (ou dataInicio e dataFim) é obrigatório"}
	}
	window := dates.Window{Start: q.DataInicio, End: q.DataFim}
	if err := window.Validate(); err != nil {
		return "", dates.Window{}, httpx.ValidationError{Field: "dataInicio", Reason: "dataInicio deve ser anterior ou igual a dataFim"}
	}
	month, err := dates.FirstOfMonth(window.Start)
	if err != nil {
		return "", dates.Window{}, httpx.ValidationError{Field: "dataInicio", Reason: "parâmetro dataInicio inválido"}
	}
	return month, window, nil
}

// SalesSummary returns the aggregate revenue for window.
func (s *Service) SalesSummary(ctx context.Context, window dates.Window) (SalesSummary, error) {
	summary, err := s.gateway.Summary(ctx, window, false)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}
	return SalesSummary{
		DataInicioISO: window.Start,
		DataFimISO:    window.End,
		DataInicioBr:  window.LocalStart(),
		DataFimBr:     window.LocalEnd(),
		NFaturadas:    summary.Count,
		VFaturadas:    goals.Finite(summary.TotalValue),
		TicketMedio:   goals.Finite(summary.AverageValue),
	}, nil
}

// GoalsReport fetches invoicing figures and goals concurrently, then
// evaluates every goal of month against window.
func (s *Service) GoalsReport(ctx context.Context, month string, window dates.Window) (GoalsReport, error) {
	var (
		summary invoicing.Summary
		defined []goals.Goal
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.gateway.Summary(ctx, window, true)
		return err
	})
	g.Go(func() error {
		var err error
		defined, err = s.store.GoalsForMonth(ctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return GoalsReport{}, fmt.Errorf("goals report: %w", err)
	}

	evaluations := goals.Evaluate(defined, month, goals.Inputs{
		TotalValue:     summary.TotalValue,
		Items:          summary.Items,
		ItemsAvailable: summary.ItemsAvailable,
	})

	report := GoalsReport{
		MesRef:           month,
		Periodo:          Period{DataInicio: window.Start, DataFim: window.End},
		FaturamentoTotal: goals.Finite(summary.TotalValue),
		Metas:            make([]GoalResult, 0, len(evaluations)),
	}
	if !summary.ItemsAvailable {
		notice := MissingItemsNotice
		report.Aviso = &notice
	}
	for _, ev := range evaluations {
		report.Metas = append(report.Metas, goalResult(ev, month))
	}
	return report, nil
}

func goalResult(ev goals.Evaluation, month string) GoalResult {
	out := GoalResult{
		Mes:          month,
		Tipo:         string(ev.Goal.Kind),
		Titulo:       ev.Goal.Title,
		AtingiuGeral: ev.Attained,
		Configurada:  ev.Configured,
		Computavel:   ev.Computable,
		Componentes:  make([]ComponentResult, 0, len(ev.Components)),
	}
	if ev.Goal.Month != "" {
		out.Mes = ev.Goal.Month
	}
	for _, c := range ev.Components {
		ind := c.Indicator
		res := ComponentResult{
			Metrica:    string(c.Component.Metric),
			Alvo:       goals.Finite(ind.Target),
			Realizado:  goals.Finite(ind.Realized),
			Percentual: goals.Finite(ind.Percentage),
			Diferenca:  goals.Finite(ind.Difference),
			Faltou:     goals.Finite(ind.Shortfall),
			Atingiu:    ind.Attained,
		}
		if c.Numerator != nil {
			n := goals.Finite(*c.Numerator)
			res.Numerador = &n
		}
		if c.Denominator != nil {
			d := goals.Finite(*c.Denominator)
			res.Denominador = &d
		}
		out.Componentes = append(out.Componentes, res)
	}
	return out
}

// Invoices lists the issued invoices of window with their total.
func (s *Service) Invoices(ctx context.Context, window dates.Window) (InvoiceList, error) {
	invoices, err := s.gateway.ListInvoices(ctx, window)
	if err != nil {
		return InvoiceList{}, fmt.Errorf("list invoices: %w", err)
	}
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(decimal.NewFromFloat(inv.Total))
	}
	if invoices == nil {
		invoices = []invoicing.Invoice{}
	}
	return InvoiceList{
		DataInicioISO: window.Start,
		DataFimISO:    window.End,
		Quantidade:    len(invoices),
		ValorTotal:    total.InexactFloat64(),
		Notas:         invoices,
	}, nil
}
