package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/applitech/orders-service/internal/catalog"
	"github.com/applitech/orders-service/internal/domain"
	"github.com/applitech/orders-service/internal/messaging"
	"github.com/applitech/orders-service/internal/users"
)

// Notifier sends the order confirmation email. Sends are best-effort; the
// handler logs failures and never fails the request on them.
type Notifier interface {
	SendOrderConfirmation(to string, order *domain.Order, products map[string]domain.Product) error
}

type Handler struct {
	repo     *OrderRepository
	catalog  *catalog.Repository
	users    *users.Repository
	notifier Notifier
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewHandler(repo *OrderRepository, catalogRepo *catalog.Repository, userRepo *users.Repository, notifier Notifier, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		catalog:  catalogRepo,
		users:    userRepo,
		notifier: notifier,
		producer: producer,
		logger:   logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderItemId")

	item, err := h.repo.GetItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if item == nil {
		h.writeError(w, http.StatusNotFound, "order item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"product": item.ProductID,
	})
}

type createOrderItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	OrderItems       []createOrderItem `json:"orderItems"`
	ShippingAddress1 string            `json:"shippingAddress1"`
	ShippingAddress2 string            `json:"shippingAddress2"`
	City             string            `json:"city"`
	Zip              string            `json:"zip"`
	Country          string            `json:"country"`
	Phone            string            `json:"phone"`
	Status           string            `json:"status"`
	User             string            `json:"user"`
}

func (req *createOrderRequest) validate() string {
	if req.OrderItems == nil {
		return "orderItems must be a list"
	}
	for _, item := range req.OrderItems {
		if item.Product == "" || item.Quantity <= 0 {
			return "every order item needs a product and a positive quantity"
		}
	}
	if req.ShippingAddress1 == "" || req.City == "" || req.Zip == "" ||
		req.Country == "" || req.Phone == "" || req.Status == "" || req.User == "" {
		return "required fields missing or invalid"
	}
	return ""
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		h.logger.Error("order rejected", "reason", msg)
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.GetByID(r.Context(), req.User)
	if err != nil {
		h.logger.Error("failed to resolve user", "error", err, "user_id", req.User)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusBadRequest, "user not found")
		return
	}

	items := make([]domain.OrderItem, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = domain.OrderItem{
			ProductID: item.Product,
			Quantity:  item.Quantity,
		}
	}

	order := &domain.Order{
		Items:            items,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		Status:           req.Status,
		User:             domain.UserRef{ID: user.ID, Name: user.Name},
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		var notFound *ProductNotFoundError
		if errors.As(err, &notFound) {
			h.logger.Error("order rejected", "reason", notFound.Error())
			h.writeError(w, http.StatusBadRequest, notFound.Error())
			return
		}
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.publishOrderCreated(r, order)
	h.sendConfirmation(r, order, user.Email)

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.User.ID, "total", order.TotalPrice)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) publishOrderCreated(r *http.Request, order *domain.Order) {
	if h.producer == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.User.ID,
		TotalPrice: order.TotalPrice,
		Timestamp:  order.DateOrdered,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, domain.OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
		h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
	}
}

func (h *Handler) sendConfirmation(r *http.Request, order *domain.Order, to string) {
	if h.notifier == nil {
		return
	}

	products := make(map[string]domain.Product, len(order.Items))
	for _, item := range order.Items {
		product, err := h.catalog.GetProduct(r.Context(), item.ProductID)
		if err != nil || product == nil {
			h.logger.Error("failed to resolve product for confirmation email", "error", err, "product_id", item.ProductID)
			continue
		}
		products[item.ProductID] = *product
	}

	if err := h.notifier.SendOrderConfirmation(to, order, products); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", order.ID, "to", to)
		return
	}

	h.logger.Info("confirmation email sent", "order_id", order.ID, "to", to)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		h.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "order not found",
		})
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "the order is deleted",
	})
}

func (h *Handler) HandleTotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.repo.TotalSales(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate total sales", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"totalsales": total})
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"orderCount": count})
}

func (h *Handler) HandleUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	orders, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list user orders", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user orders listed", "user_id", userID, "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
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
