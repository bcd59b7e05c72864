package sales

import "github.com/go-chi/chi/v5"

// MountRoutes registers the dashboard API under r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vendas", h.handleSummary)
	r.Get("/metas", h.handleGoals)
	r.Get("/notas", h.handleInvoices)
}
