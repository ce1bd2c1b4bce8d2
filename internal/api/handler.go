package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orderlab/realtime-orders/internal/catalog"
	"github.com/orderlab/realtime-orders/internal/engine"
	"github.com/orderlab/realtime-orders/internal/store"
)

type Handler struct {
	engine  *engine.Engine
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewHandler(eng *engine.Engine, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		engine:  eng,
		catalog: cat,
		logger:  logger,
	}
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.List())
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.engine.ListOrders()
	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

type createOrderRequest struct {
	CustomerName string `json:"customerName"`
	ProductID    int    `json:"productId"`
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.engine.CreateOrder(r.Context(), req.CustomerName, req.ProductID)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	if err := h.engine.DeleteOrder(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, store.ErrNotCompleted):
			h.writeError(w, http.StatusBadRequest, "only completed orders can be deleted")
		default:
			h.logger.Error("failed to delete order", "error", err, "order_id", id)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted successfully"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
