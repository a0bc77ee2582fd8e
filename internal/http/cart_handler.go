package http

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	UserID    string            `json:"user_id"`
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  float64           `json:"subtotal"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toCartResponse(c *domain.Cart) CartResponseDTO {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return CartResponseDTO{
		UserID:    c.UserID.Hex(),
		Items:     items,
		ItemCount: count,
		Subtotal:  c.Subtotal(),
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx, actor.UserID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a valid id")
		return
	}
	if req.Quantity <= 0 || req.Quantity > domain.MaxCartQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.AddItem(ctx, actor.UserID, productID, req.Quantity)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, toCartResponse(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id", "cart item")
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity <= 0 || req.Quantity > domain.MaxCartQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, actor.UserID, productID, req.Quantity)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id", "cart item")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(ctx, actor.UserID, productID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx, actor.UserID); err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
