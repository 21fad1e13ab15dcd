package presentation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// memOrderRepo is a map-backed repository for wiring real services under the
// router in tests.
type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *memOrderRepo) AddOrder(_ context.Context, o *domain.Order) error {
	m.orders[o.ID] = o
	return nil
}

func (m *memOrderRepo) GetOrderById(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.orders[id], nil
}

func (m *memOrderRepo) ListRecent(_ context.Context, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, _, to domain.OrderStatus, _ domain.TimelineEntry) error {
	m.orders[id].Status = to
	return nil
}

func (m *memOrderRepo) UpsertShipment(_ context.Context, id uuid.UUID, s domain.ShipmentInfo) error {
	m.orders[id].Shipment = &s
	return nil
}

func (m *memOrderRepo) DeleteOrder(_ context.Context, id uuid.UUID) error {
	delete(m.orders, id)
	return nil
}

func (m *memOrderRepo) ListTimeline(_ context.Context, _ uuid.UUID) ([]domain.TimelineEntry, error) {
	return nil, nil
}

func newRouter(repo *memOrderRepo) chi.Router {
	svc := application.NewOrdersService(repo, nil)
	metrics := application.NewMetricsService(repo, nil, nil)
	r := chi.NewRouter()
	NewOrdersHandler(svc, metrics).Register(r)
	NewMetricsHandler(metrics).Register(r)
	return r
}

func TestCreateOrderRejectsInvalidDraft(t *testing.T) {
	router := newRouter(newMemOrderRepo())

	body := `{"customer_id":"","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "Customer ID is required")
	assert.Contains(t, resp.Errors, "Order must have at least one item")
}

func TestCreateThenGetOrder(t *testing.T) {
	repo := newMemOrderRepo()
	router := newRouter(repo)

	body := `{
		"customer_id": "cust-1",
		"items": [{"product_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","name":"Widget","sku":"W-1","quantity":2,"unit_price":"10"}],
		"shipping_address": {"name":"Jane","street":"1 Main St","city":"Springfield","state":"IL","zip":"62704","country":"US","phone":""},
		"payment_method": "credit_card"
	}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Total.Equal(decimal.RequireFromString("31.6")))

	get := httptest.NewRequest(http.MethodGet, "/orders/"+created.ID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	router := newRouter(newMemOrderRepo())

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusConflict(t *testing.T) {
	repo := newMemOrderRepo()
	id := uuid.New()
	repo.orders[id] = &domain.Order{ID: id, Status: domain.OrderStatusDelivered}
	router := newRouter(repo)

	req := httptest.NewRequest(http.MethodPatch, "/orders/"+id.String()+"/status",
		strings.NewReader(`{"status":"cancelled","actor":"ops","note":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBulkStatusReportsPerItemOutcomes(t *testing.T) {
	repo := newMemOrderRepo()
	id := uuid.New()
	repo.orders[id] = &domain.Order{ID: id, Status: domain.OrderStatusConfirmed}
	router := newRouter(repo)

	body := `{"ids":["` + id.String() + `","` + uuid.NewString() + `"],"status":"processing","actor":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res application.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
}

func TestExportOrdersCSV(t *testing.T) {
	repo := newMemOrderRepo()
	id := uuid.New()
	repo.orders[id] = &domain.Order{
		ID: id, CustomerID: "Customer, Inc.",
		Status: domain.OrderStatusPending, Total: decimal.NewFromInt(42),
	}
	router := newRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Order ID,Customer ID,Date,Status,Total")
	assert.Contains(t, rec.Body.String(), `"Customer, Inc."`)
	assert.Contains(t, rec.Body.String(), "$42.00")
}

func TestImportOrdersCSV(t *testing.T) {
	repo := newMemOrderRepo()
	router := newRouter(repo)

	csvBody := "Order ID,Customer ID,Date,Status,Total\n" +
		uuid.NewString() + ",cust-1,2026-08-15,pending,$10.00\n" +
		"bogus,cust-2,2026-08-15,pending,$10.00\n"
	req := httptest.NewRequest(http.MethodPost, "/orders/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res application.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, repo.orders, 1)
}

func TestGetActions(t *testing.T) {
	repo := newMemOrderRepo()
	id := uuid.New()
	repo.orders[id] = &domain.Order{ID: id, Status: domain.OrderStatusConfirmed}
	router := newRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+id.String()+"/actions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status     string   `json:"status"`
		NextStatus string   `json:"next_status"`
		Actions    []string `json:"actions"`
		Terminal   bool     `json:"terminal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp.NextStatus)
	assert.Equal(t, []string{"start_processing", "cancel"}, resp.Actions)
	assert.False(t, resp.Terminal)
}
