package sales

import "github.com/painel-vendas/painel/internal/invoicing"

// WindowQuery is the query string accepted by /api/vendas and /api/notas.
type WindowQuery struct {
	DataInicio string `query:"dataInicio" validate:"omitempty,datetime=2006-01-02"`
	DataFim    string `query:"dataFim" validate:"omitempty,datetime=2006-01-02"`
}

// GoalsQuery is the query string accepted by /api/metas. Either Mes or the
// DataInicio/DataFim pair must be present; when Mes is set the pair is ignored.
type GoalsQuery struct {
	Mes        string `query:"mes" validate:"required_without_all=DataInicio DataFim,omitempty,datetime=2006-01-02"`
	DataInicio string `query:"dataInicio" validate:"required_with=DataFim,omitempty,datetime=2006-01-02"`
	DataFim    string `query:"dataFim" validate:"required_with=DataInicio,omitempty,datetime=2006-01-02"`
}

// SalesSummary is the /api/vendas payload.
type SalesSummary struct {
	DataInicioISO string  `json:"dataInicioIso"`
	DataFimISO    string  `json:"dataFimIso"`
	DataInicioBr  string  `json:"dataInicioBr"`
	DataFimBr     string  `json:"dataFimBr"`
	NFaturadas    int     `json:"nFaturadas"`
	VFaturadas    float64 `json:"vFaturadas"`
	TicketMedio   float64 `json:"ticketMedio"`
}

// Period is the resolved reporting window echoed in goal reports.
type Period struct {
	DataInicio string `json:"dataInicio"`
	DataFim    string `json:"dataFim"`
}

// GoalsReport is the /api/metas payload.
type GoalsReport struct {
	MesRef           string       `json:"mesRef"`
	Periodo          Period       `json:"periodo"`
	FaturamentoTotal float64      `json:"faturamentoTotal"`
	Aviso            *string      `json:"aviso"`
	Metas            []GoalResult `json:"metas"`
}

// GoalResult is one goal slot of the report.
type GoalResult struct {
	Mes          string            `json:"mes"`
	Tipo         string            `json:"tipo"`
	Titulo       string            `json:"titulo"`
	AtingiuGeral bool              `json:"atingiu_geral"`
	Configurada  bool              `json:"configurada"`
	Computavel   bool              `json:"computavel"`
	Componentes  []ComponentResult `json:"componentes"`
}

// ComponentResult carries the indicator of one goal component.
type ComponentResult struct {
	Metrica     string   `json:"metrica"`
	Alvo        float64  `json:"alvo"`
	Realizado   float64  `json:"realizado"`
	Percentual  float64  `json:"percentual"`
	Diferenca   float64  `json:"diferenca"`
	Faltou      float64  `json:"faltou"`
	Atingiu     bool     `json:"atingiu"`
	Numerador   *float64 `json:"numerador,omitempty"`
	Denominador *float64 `json:"denominador,omitempty"`
}

// InvoiceList is the /api/notas payload.
type InvoiceList struct {
	DataInicioISO string              `json:"dataInicioIso"`
	DataFimISO    string              `json:"dataFimIso"`
	Quantidade    int                 `json:"quantidade"`
	ValorTotal    float64             `json:"valorTotal"`
	Notas         []invoicing.Invoice `json:"notas"`
}
