package presentation

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/export"
	"github.com/arnesssr/nextpms-orders/internal/logger"
	"github.com/arnesssr/nextpms-orders/internal/presentation/helpers"
	"github.com/arnesssr/nextpms-orders/internal/repository"
)

const defaultListLimit = 100

type OrdersHandler struct {
	svc     *application.OrdersService
	metrics *application.MetricsService
}

func NewOrdersHandler(svc *application.OrdersService, metrics *application.MetricsService) *OrdersHandler {
	return &OrdersHandler{svc: svc, metrics: metrics}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/export", h.ExportOrders)
	r.Post("/orders/import", h.ImportOrders)
	r.Post("/orders/status", h.BulkUpdateStatus)
	r.Get("/orders/{id}", h.GetOrder)
	r.Delete("/orders/{id}", h.DeleteOrder)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Get("/orders/{id}/actions", h.GetActions)
	r.Get("/orders/{id}/timeline", h.GetTimeline)
	r.Get("/fulfillment/export", h.ExportFulfillment)
}

// writeServiceError maps service failures onto the error envelope. Failures
// are plain message strings; nothing here is fatal to the process.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		helpers.HttpValidationError(w, verr.Errors)
	case errors.Is(err, application.ErrOrderNotFound),
		errors.Is(err, application.ErrReturnNotFound):
		helpers.HttpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, application.ErrOrderAlreadyExists),
		errors.Is(err, repository.ErrStatusConflict):
		helpers.HttpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrReturnNotEligible),
		errors.Is(err, application.ErrReturnInvalidItem):
		helpers.HttpError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("request failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, err.Error())
	}
}

func orderID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func listLimit(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 1000 {
		return v
	}
	return defaultListLimit
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var ord domain.Order
	if err := helpers.DecodeJSON(r.Body, &ord); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.CreateOrder(r.Context(), &ord); err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusCreated, ord)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ord, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ord == nil {
		helpers.HttpError(w, http.StatusNotFound, "order not found")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListRecent(r.Context(), listLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusRequest struct {
	Status   domain.OrderStatus   `json:"status"`
	Actor    string               `json:"actor"`
	Note     string               `json:"note"`
	Shipment *domain.ShipmentInfo `json:"shipment"`
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ord, err := h.svc.UpdateStatus(r.Context(), application.UpdateStatusInput{
		ID:       id,
		To:       req.Status,
		Actor:    req.Actor,
		Note:     req.Note,
		Shipment: req.Shipment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusOK, ord)
}

type bulkStatusRequest struct {
	IDs    []uuid.UUID        `json:"ids"`
	Status domain.OrderStatus `json:"status"`
	Actor  string             `json:"actor"`
}

func (h *OrdersHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		helpers.HttpError(w, http.StatusBadRequest, "ids is empty")
		return
	}

	res := h.svc.BulkUpdateStatus(r.Context(), req.IDs, req.Status, req.Actor)
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *OrdersHandler) GetActions(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ord, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ord == nil {
		helpers.HttpError(w, http.StatusNotFound, "order not found")
		return
	}

	next, _ := domain.NextStatus(ord.Status)
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      ord.Status,
		"next_status": next,
		"actions":     domain.AvailableActions(ord.Status),
		"terminal":    domain.IsTerminal(ord.Status),
	})
}

func (h *OrdersHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	entries, err := h.svc.Timeline(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"timeline": entries})
}

func (h *OrdersHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListRecent(r.Context(), listLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	helpers.WriteCSV(w, "orders.csv")
	if err := export.WriteOrders(w, orders); err != nil {
		logger.Warn("orders csv write failed", "err", err)
	}
}

func (h *OrdersHandler) ExportFulfillment(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListRecent(r.Context(), listLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	helpers.WriteCSV(w, "fulfillment.csv")
	if err := export.WriteFulfillment(w, orders); err != nil {
		logger.Warn("fulfillment csv write failed", "err", err)
	}
}

// ImportOrders accepts either a raw CSV body or a multipart upload with the
// file in the "file" field.
func (h *OrdersHandler) ImportOrders(w http.ResponseWriter, r *http.Request) {
	body, err := importBody(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := export.ReadOrders(body)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid CSV: "+err.Error())
		return
	}

	res := h.svc.ImportOrders(r.Context(), rows)
	h.metrics.Invalidate(r.Context())

	helpers.WriteJSON(w, http.StatusOK, res)
}

func importBody(r *http.Request) (io.Reader, error) {
	mediatype, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediatype != "multipart/form-data" {
		return io.LimitReader(r.Body, 10<<20), nil
	}

	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errors.New(`multipart upload has no "file" field`)
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return io.LimitReader(part, 10<<20), nil
		}
	}
}
