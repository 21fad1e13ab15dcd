package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/export"
	"github.com/arnesssr/nextpms-orders/internal/logger"
	"github.com/arnesssr/nextpms-orders/internal/presentation/helpers"
)

type ReturnsHandler struct {
	svc     *application.ReturnsService
	metrics *application.MetricsService
}

func NewReturnsHandler(svc *application.ReturnsService, metrics *application.MetricsService) *ReturnsHandler {
	return &ReturnsHandler{svc: svc, metrics: metrics}
}

func (h *ReturnsHandler) Register(r chi.Router) {
	r.Post("/returns", h.CreateReturn)
	r.Get("/returns", h.ListReturns)
	r.Get("/returns/export", h.ExportReturns)
	r.Get("/returns/{id}", h.GetReturn)
	r.Post("/returns/{id}/transition", h.Transition)
}

func (h *ReturnsHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var in application.CreateReturnInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ret, err := h.svc.CreateReturn(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusCreated, ret)
}

func (h *ReturnsHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ret == nil {
		helpers.HttpError(w, http.StatusNotFound, "return request not found")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ret)
}

func (h *ReturnsHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	// ?order_id= narrows to a single order's returns
	if raw := r.URL.Query().Get("order_id"); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
			return
		}
		returns, err := h.svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]any{"returns": returns})
		return
	}

	returns, err := h.svc.ListRecent(r.Context(), listLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"returns": returns})
}

type returnTransitionRequest struct {
	Status domain.ReturnStatus `json:"status"`
}

func (h *ReturnsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req returnTransitionRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ret, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusOK, ret)
}

func (h *ReturnsHandler) ExportReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.svc.ListRecent(r.Context(), listLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	helpers.WriteCSV(w, "returns.csv")
	if err := export.WriteReturns(w, returns); err != nil {
		logger.Warn("returns csv write failed", "err", err)
	}
}
