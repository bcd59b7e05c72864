package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/painel/internal/dates"
	"github.com/painel-vendas/painel/internal/goals"
	"github.com/painel-vendas/painel/internal/invoicing"
	"github.com/painel-vendas/painel/internal/platform/httpx"
)

type gatewayStub struct {
	mu         sync.Mutex
	summary    invoicing.Summary
	invoices   []invoicing.Invoice
	err        error
	calls      int
	lastWindow dates.Window
	detailed   bool
}

func (g *gatewayStub) Summary(ctx context.Context, window dates.Window, detailed bool) (invoicing.Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastWindow = window
	g.detailed = detailed
	return g.summary, g.err
}

func (g *gatewayStub) ListInvoices(ctx context.Context, window dates.Window) ([]invoicing.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastWindow = window
	return g.invoices, g.err
}

type storeStub struct {
	mu        sync.Mutex
	goals     []goals.Goal
	err       error
	calls     int
	lastMonth string
}

func (s *storeStub) GoalsForMonth(ctx context.Context, month string) ([]goals.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastMonth = month
	return s.goals, s.err
}

var fixedNow = func() time.Time { return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC) }

func newTestService(gw *gatewayStub, st *storeStub) *Service {
	return NewService(gw, st).WithClock(fixedNow)
}

func TestResolveWindowDefaults(t *testing.T) {
	svc := newTestService(&gatewayStub{}, &storeStub{})

	window, err := svc.ResolveWindow(WindowQuery{})
	require.NoError(t, err)
	assert.Equal(t, dates.Window{Start: "2025-06-09", End: "2025-06-15"}, window)

	window, err = svc.ResolveWindow(WindowQuery{DataInicio: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, dates.Window{Start: "2025-06-01", End: "2025-06-15"}, window)

	window, err = svc.ResolveWindow(WindowQuery{DataFim: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, dates.Window{Start: "2024-12-26", End: "2025-01-01"}, window)

	_, err = svc.ResolveWindow(WindowQuery{DataInicio: "2025-06-20", DataFim: "2025-06-01"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestResolveGoalsPeriod(t *testing.T) {
	svc := newTestService(&gatewayStub{}, &storeStub{})

	month, window, err := svc.ResolveGoalsPeriod(GoalsQuery{Mes: "2025-05-20"})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", month)
	assert.Equal(t, dates.Window{Start: "2025-05-01", End: "2025-05-31"}, window)

	month, window, err = svc.ResolveGoalsPeriod(GoalsQuery{Mes: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", month)
	assert.Equal(t, "2025-06-15", window.End)

	month, window, err = svc.ResolveGoalsPeriod(GoalsQuery{DataInicio: "2025-06-09", DataFim: "2025-06-15"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", month)
	assert.Equal(t, dates.Window{Start: "2025-06-09", End: "2025-06-15"}, window)

	_, _, err = svc.ResolveGoalsPeriod(GoalsQuery{})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSalesSummary(t *testing.T) {
	gw := &gatewayStub{summary: invoicing.Summary{Count: 4, TotalValue: 7500, AverageValue: 1875}}
	svc := newTestService(gw, &storeStub{})

	out, err := svc.SalesSummary(t.Context(), dates.Window{Start: "2025-06-09", End: "2025-06-15"})
	require.NoError(t, err)
	assert.Equal(t, SalesSummary{
		DataInicioISO: "2025-06-09",
		DataFimISO:    "2025-06-15",
		DataInicioBr:  "09/06/2025",
		DataFimBr:     "15/06/2025",
		NFaturadas:    4,
		VFaturadas:    7500,
		TicketMedio:   1875,
	}, out)
	assert.False(t, gw.detailed)
}

func TestGoalsReportScenario(t *testing.T) {
	gw := &gatewayStub{summary: invoicing.Summary{Count: 3, TotalValue: 7500, AverageValue: 2500}}
	st := &storeStub{goals: []goals.Goal{{
		ID: 1, Month: "2025-06-01", Kind: goals.KindTotalRevenue, Title: "Faturamento",
		Components: []goals.Component{{ID: 1, Metric: goals.MetricMonetary, Target: 10000}},
	}}}
	svc := newTestService(gw, st)

	report, err := svc.GoalsReport(t.Context(), "2025-06-01", dates.Window{Start: "2025-06-01", End: "2025-06-15"})
	require.NoError(t, err)

	assert.True(t, gw.detailed)
	assert.Equal(t, "2025-06-01", st.lastMonth)
	assert.Equal(t, "2025-06-01", report.MesRef)
	assert.Equal(t, Period{DataInicio: "2025-06-01", DataFim: "2025-06-15"}, report.Periodo)
	assert.Equal(t, 7500.0, report.FaturamentoTotal)
	require.NotNil(t, report.Aviso)
	require.Len(t, report.Metas, 4)

	total := report.Metas[0]
	assert.Equal(t, "FATURAMENTO_TOTAL", total.Tipo)
	assert.True(t, total.Configurada)
	assert.False(t, total.AtingiuGeral)
	require.Len(t, total.Componentes, 1)
	assert.Equal(t, ComponentResult{
		Metrica:    "VALOR",
		Alvo:       10000,
		Realizado:  7500,
		Percentual: 75,
		Diferenca:  -2500,
		Faltou:     2500,
		Atingiu:    false,
	}, total.Componentes[0])

	for _, slot := range report.Metas[1:] {
		assert.False(t, slot.Configurada, slot.Tipo)
		assert.Equal(t, "2025-06-01", slot.Mes)
		assert.NotNil(t, slot.Componentes)
		assert.Empty(t, slot.Componentes)
	}
}

func TestGoalsReportMissingItems(t *testing.T) {
	gw := &gatewayStub{summary: invoicing.Summary{TotalValue: 900}}
	st := &storeStub{goals: []goals.Goal{{
		ID: 7, Kind: goals.KindCookies,
		Components: []goals.Component{{Metric: goals.MetricQuantity, Target: 100, Rule: &goals.Rule{Field: "descricao", Patterns: []string{"COOKIE"}}}},
	}}}

	report, err := newTestService(gw, st).GoalsReport(t.Context(), "2025-06-01", dates.Window{Start: "2025-06-01", End: "2025-06-15"})
	require.NoError(t, err)
	require.NotNil(t, report.Aviso)
	assert.Equal(t, MissingItemsNotice, *report.Aviso)

	cookies := report.Metas[2]
	assert.Equal(t, "COOKIES", cookies.Tipo)
	assert.False(t, cookies.Computavel)
	assert.False(t, cookies.AtingiuGeral)
	assert.Zero(t, cookies.Componentes[0].Realizado)
}

func TestGoalsReportWithItemsHasNoNotice(t *testing.T) {
	gw := &gatewayStub{summary: invoicing.Summary{
		TotalValue:     1000,
		ItemsAvailable: true,
		Items:          []invoicing.LineItem{{Description: "Enredo", Value: 400}},
	}}
	st := &storeStub{goals: []goals.Goal{{
		ID: 2, Kind: goals.KindEnredoShare,
		Components: []goals.Component{{Metric: goals.MetricPercentage, Target: 0.3, Rule: &goals.Rule{Field: "descricao", Patterns: []string{"enredo"}}}},
	}}}

	report, err := newTestService(gw, st).GoalsReport(t.Context(), "2025-06-01", dates.Window{Start: "2025-06-01", End: "2025-06-15"})
	require.NoError(t, err)
	assert.Nil(t, report.Aviso)

	share := report.Metas[1].Componentes[0]
	require.NotNil(t, share.Numerador)
	require.NotNil(t, share.Denominador)
	assert.Equal(t, 400.0, *share.Numerador)
	assert.Equal(t, 1000.0, *share.Denominador)
	assert.InDelta(t, 0.4, share.Realizado, 1e-9)
	assert.True(t, share.Atingiu)
}

func TestGoalsReportFailures(t *testing.T) {
	gwErr := &invoicing.GatewayError{Op: "summary", Status: 500, Detail: "SOAP-ERROR"}
	storeErr := &goals.StoreError{Op: "list goals", Status: 503}

	report, err := newTestService(&gatewayStub{err: gwErr}, &storeStub{}).
		GoalsReport(t.Context(), "2025-06-01", dates.Window{Start: "2025-06-01", End: "2025-06-15"})
	assert.ErrorIs(t, err, invoicing.ErrGateway)
	assert.Empty(t, report.Metas)

	_, err = newTestService(&gatewayStub{}, &storeStub{err: storeErr}).
		GoalsReport(t.Context(), "2025-06-01", dates.Window{Start: "2025-06-01", End: "2025-06-15"})
	assert.ErrorIs(t, err, goals.ErrStore)
	assert.False(t, errors.Is(err, invoicing.ErrGateway))
}

func TestInvoices(t *testing.T) {
	gw := &gatewayStub{invoices: []invoicing.Invoice{
		{ID: "1", Date: "2025-06-10", Customer: "Cliente A", Total: 100.10},
		{ID: "2", Date: "2025-06-11", Customer: "Cliente B", Total: 200.20},
	}}

	list, err := newTestService(gw, &storeStub{}).Invoices(t.Context(), dates.Window{Start: "2025-06-09", End: "2025-06-15"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Quantidade)
	assert.Equal(t, 300.3, list.ValorTotal)
	assert.Len(t, list.Notas, 2)

	empty, err := newTestService(&gatewayStub{}, &storeStub{}).Invoices(t.Context(), dates.Window{Start: "2025-06-09", End: "2025-06-15"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Notas)
}
