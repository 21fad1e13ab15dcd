package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/presentation/helpers"
)

type MetricsHandler struct {
	svc *application.MetricsService
}

func NewMetricsHandler(svc *application.MetricsService) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

func (h *MetricsHandler) Register(r chi.Router) {
	r.Get("/metrics/orders", h.OrderMetrics)
	r.Get("/metrics/returns", h.ReturnMetrics)
}

func (h *MetricsHandler) OrderMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.OrderMetrics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, m)
}

func (h *MetricsHandler) ReturnMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ReturnMetrics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, m)
}
