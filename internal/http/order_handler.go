package http

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, in service.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, actor service.Actor, id primitive.ObjectID) (*domain.Order, error)
	ListMyOrders(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	CancelOrder(ctx context.Context, actor service.Actor, id primitive.ObjectID) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type OrderLineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequestDTO may omit items to order the current cart.
type PlaceOrderRequestDTO struct {
	Items           []OrderLineDTO  `json:"items"`
	ShippingAddress *domain.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
}

func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req PlaceOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.PlaceOrderInput{
		Items:           make([]service.OrderLine, 0, len(req.Items)),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, l := range req.Items {
		productID, err := primitive.ObjectIDFromHex(l.ProductID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a valid id")
			return
		}
		in.Items = append(in.Items, service.OrderLine{ProductID: productID, Quantity: l.Quantity})
	}

	order, err := h.orders.PlaceOrder(ctx, actor.UserID, in)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, order)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, actor, id)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, order)
}

func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListMyOrders(ctx, actor.UserID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, nonNilOrders(orders))
}

func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, nonNilOrders(orders))
}

// Return empty array instead of null
func nonNilOrders(orders []*domain.Order) []*domain.Order {
	if orders == nil {
		return []*domain.Order{}
	}
	return orders
}

func (h *OrdersHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.MarkPaid)
}

func (h *OrdersHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.MarkDelivered)
}

func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	h.changeStatus(w, r, func(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
		return h.orders.CancelOrder(ctx, actor, id)
	})
}

func (h *OrdersHandler) changeStatus(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, primitive.ObjectID) (*domain.Order, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := apply(ctx, id)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, order)
}
