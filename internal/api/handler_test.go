package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/orderlab/realtime-orders/internal/catalog"
	"github.com/orderlab/realtime-orders/internal/domain"
	"github.com/orderlab/realtime-orders/internal/engine"
	"github.com/orderlab/realtime-orders/internal/notify"
	"github.com/orderlab/realtime-orders/internal/store"
)

type testEnv struct {
	handler *Handler
	mux     *http.ServeMux
	clock   *clock.Mock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	st := store.New()
	hub := notify.NewHub(logger)
	eng, err := engine.New(catalog.Default(), st, hub, mock, 2*time.Second, 10*time.Second, logger)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	handler := NewHandler(eng, catalog.Default(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", handler.HandleListProducts)
	mux.HandleFunc("GET /api/orders", handler.HandleListOrders)
	mux.HandleFunc("POST /api/orders", handler.HandleCreateOrder)
	mux.HandleFunc("DELETE /api/orders/{orderId}", handler.HandleDeleteOrder)
	mux.HandleFunc("GET /api/events", handler.HandleEvents)

	return &testEnv{handler: handler, mux: mux, clock: mock}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createOrder(t *testing.T, body string) domain.Order {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/orders", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var order domain.Order
	if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
		t.Fatalf("failed to decode order: %v", err)
	}
	return order
}

func TestHandleListProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var products []catalog.Product
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode products: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 products, got %d", len(products))
	}
	if products[0].Name != "Laptop" || products[0].Price != 999 {
		t.Errorf("unexpected first product: %+v", products[0])
	}
}

func TestHandleCreateOrder(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		env := newTestEnv(t)

		order := env.createOrder(t, `{"customerName":"Alice","productId":1}`)
		if order.ID == "" {
			t.Error("expected order id to be set")
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected status Pending, got %s", order.Status)
		}
		if order.ProductName != "Laptop" || order.Price != 999 {
			t.Errorf("unexpected denormalized product: %s %d", order.ProductName, order.Price)
		}
	})

	t.Run("missing customer name", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/orders", `{"productId":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/orders", `{"customerName":"Alice","productId":999}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		list := env.do(t, http.MethodGet, "/api/orders", "")
		var orders []domain.Order
		if err := json.NewDecoder(list.Body).Decode(&orders); err != nil {
			t.Fatalf("failed to decode orders: %v", err)
		}
		if len(orders) != 0 {
			t.Errorf("expected no orders after rejected create, got %d", len(orders))
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/orders", `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleListOrders(t *testing.T) {
	env := newTestEnv(t)

	a := env.createOrder(t, `{"customerName":"Alice","productId":1}`)
	env.clock.Add(time.Millisecond)
	b := env.createOrder(t, `{"customerName":"Bob","productId":2}`)

	rec := env.do(t, http.MethodGet, "/api/orders", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var orders []domain.Order
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("failed to decode orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != b.ID || orders[1].ID != a.ID {
		t.Errorf("expected most recent first, got %s then %s", orders[0].ID, orders[1].ID)
	}
}

func TestHandleDeleteOrder(t *testing.T) {
	t.Run("pending order", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t, `{"customerName":"Alice","productId":1}`)

		rec := env.do(t, http.MethodDelete, "/api/orders/"+order.ID, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "only completed orders can be deleted" {
			t.Errorf("unexpected error message: %q", resp["error"])
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodDelete, "/api/orders/does-not-exist", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("completed order", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t, `{"customerName":"Alice","productId":1}`)
		env.clock.Add(10 * time.Second)

		rec := env.do(t, http.MethodDelete, "/api/orders/"+order.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		again := env.do(t, http.MethodDelete, "/api/orders/"+order.ID, "")
		if again.Code != http.StatusNotFound {
			t.Fatalf("expected status 404 on second delete, got %d", again.Code)
		}
	})
}

func TestLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	order := env.createOrder(t, `{"customerName":"Alice","productId":1}`)

	statusAfter := func(d time.Duration) domain.OrderStatus {
		env.clock.Add(d)
		rec := env.do(t, http.MethodGet, "/api/orders", "")
		var orders []domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
			t.Fatalf("failed to decode orders: %v", err)
		}
		for _, o := range orders {
			if o.ID == order.ID {
				return o.Status
			}
		}
		t.Fatalf("order %s missing from list", order.ID)
		return ""
	}

	if got := statusAfter(2 * time.Second); got != domain.OrderStatusProcessing {
		t.Errorf("expected Processing after 2s, got %s", got)
	}
	if got := statusAfter(8 * time.Second); got != domain.OrderStatusCompleted {
		t.Errorf("expected Completed after 10s, got %s", got)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	rec := httptest.NewRecorder()
	CORS("*", env.mux).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS origin header")
	}
}
