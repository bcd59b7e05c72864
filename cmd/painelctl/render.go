package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/painel-vendas/painel/internal/sales"
)

func renderSummary(w io.Writer, s sales.SalesSummary) error {
	data := pterm.TableData{
		{"Período", "Notas faturadas", "Total faturado", "Ticket médio"},
		{s.DataInicioBr + " a " + s.DataFimBr, strconv.Itoa(s.NFaturadas), formatMoney(s.VFaturadas), formatMoney(s.TicketMedio)},
	}
	return printTable(w, data)
}

func renderGoals(w io.Writer, r sales.GoalsReport) error {
	fmt.Fprintf(w, "Metas de %s (%s a %s) · faturamento %s\n", r.MesRef, r.Periodo.DataInicio, r.Periodo.DataFim, formatMoney(r.FaturamentoTotal))
	if r.Aviso != nil {
		fmt.Fprintln(w, pterm.Warning.Sprint(*r.Aviso))
	}

	data := pterm.TableData{{"Meta", "Métrica", "Alvo", "Realizado", "%", "Faltou", "Status"}}
	for _, meta := range r.Metas {
		if !meta.Configurada {
			data = append(data, []string{meta.Titulo, "—", "—", "—", "—", "—", "sem meta cadastrada"})
			continue
		}
		if len(meta.Componentes) == 0 {
			data = append(data, []string{meta.Titulo, "—", "—", "—", "—", "—", "sem componentes"})
			continue
		}
		for _, c := range meta.Componentes {
			data = append(data, []string{
				meta.Titulo,
				c.Metrica,
				formatMetric(c.Metrica, c.Alvo),
				formatMetric(c.Metrica, c.Realizado),
				fmt.Sprintf("%.0f%%", c.Percentual),
				formatMetric(c.Metrica, c.Faltou),
				goalStatus(meta, c),
			})
		}
	}
	return printTable(w, data)
}

func renderInvoices(w io.Writer, l sales.InvoiceList) error {
	data := pterm.TableData{{"Data", "Documento", "Cliente", "Valor", "Status"}}
	for _, nf := range l.Notas {
		data = append(data, []string{nf.Date, nf.Document, nf.Customer, formatMoney(nf.Total), nf.Status})
	}
	if err := printTable(w, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d notas · total %s\n", l.Quantidade, formatMoney(l.ValorTotal))
	return err
}

func goalStatus(meta sales.GoalResult, c sales.ComponentResult) string {
	switch {
	case !meta.Computavel:
		return pterm.FgYellow.Sprint("não computável")
	case c.Atingiu:
		return pterm.FgGreen.Sprint("atingida")
	default:
		return pterm.FgRed.Sprint("em andamento")
	}
}

func printTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func formatMetric(metric string, v float64) string {
	switch metric {
	case "PERCENTUAL":
		return fmt.Sprintf("%.1f%%", v*100)
	case "QTD":
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return formatMoney(v)
	}
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// formatMoney renders v as Brazilian currency, e.g. R$ 1.234,56.
func formatMoney(v float64) string {
	if v < 0 {
		return "-" + brl.Sprintf("R$ %.2f", -v)
	}
	return brl.Sprintf("R$ %.2f", v)
}
