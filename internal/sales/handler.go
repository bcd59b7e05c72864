package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/painel-vendas/painel/internal/platform/httpx"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
	return &Handler{logger: logger, service: service, validator: v}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := WindowQuery{
		DataInicio: strings.TrimSpace(r.URL.Query().Get("dataInicio")),
		DataFim:    strings.TrimSpace(r.URL.Query().Get("dataFim")),
	}
	if err := h.validate(q); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	window, err := h.service.ResolveWindow(q)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}

	summary, err := h.service.SalesSummary(r.Context(), window)
	if err != nil {
		h.logger.Error("sales summary failed", slog.Any("error", err), slog.String("start", window.Start), slog.String("end", window.End))
		httpx.RespondError(w, err, "Erro ao consultar faturamento na Omie")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleGoals(w http.ResponseWriter, r *http.Request) {
	q := GoalsQuery{
		Mes:        normalizeMonth(r.URL.Query().Get("mes")),
		DataInicio: strings.TrimSpace(r.URL.Query().Get("dataInicio")),
		DataFim:    strings.TrimSpace(r.URL.Query().Get("dataFim")),
	}
	if q.Mes != "" {
		// mes wins over the range.
		q.DataInicio, q.DataFim = "", ""
	}
	if err := h.validate(q); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	month, window, err := h.service.ResolveGoalsPeriod(q)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}

	report, err := h.service.GoalsReport(r.Context(), month, window)
	if err != nil {
		h.logger.Error("goals report failed", slog.Any("error", err), slog.String("month", month))
		httpx.RespondError(w, err, "Erro ao calcular metas")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleInvoices(w http.ResponseWriter, r *http.Request) {
	q := WindowQuery{
		DataInicio: strings.TrimSpace(r.URL.Query().Get("dataInicio")),
		DataFim:    strings.TrimSpace(r.URL.Query().Get("dataFim")),
	}
	if err := h.validate(q); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	window, err := h.service.ResolveWindow(q)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}

	list, err := h.service.Invoices(r.Context(), window)
	if err != nil {
		h.logger.Error("list invoices failed", slog.Any("error", err))
		httpx.RespondError(w, err, "Erro ao consultar NF-e na Omie")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// validate turns the first validator failure into an httpx.ValidationError.
func (h *Handler) validate(q any) error {
	err := h.validator.Struct(q)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return httpx.ValidationError{Reason: err.Error()}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "datetime":
		return httpx.ValidationError{Field: fe.Field(), Reason: "parâmetro " + fe.Field() + " deve estar no formato yyyy-mm-dd"}
	case "required_without_all":
		return httpx.ValidationError{Field: fe.Field(), Reason: "parâmetro mes (ou dataInicio e dataFim) é obrigatório"}
	default:
		return httpx.ValidationError{Field: fe.Field(), Reason: "parâmetro " + fe.Field() + " é obrigatório"}
	}
}

// normalizeMonth accepts yyyy-mm as shorthand for the first of the month.
func normalizeMonth(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == len("2006-01") && strings.Count(raw, "-") == 1 {
		return raw + "-01"
	}
	return raw
}
