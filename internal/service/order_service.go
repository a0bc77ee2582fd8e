package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

// OrderPublisher announces placed orders to other consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

// CatalogInvalidator drops cached catalog entries after stock changes.
type CatalogInvalidator interface {
	InvalidateProducts(ids ...primitive.ObjectID)
}

const DefaultPaymentMethod = "cash_on_delivery"

var paymentMethods = map[string]bool{
	"cash_on_delivery": true,
	"card":             true,
	"paypal":           true,
}

type OrderLine struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
}

// PlaceOrderInput describes a checkout. With no Items the user's cart is
// ordered. With no ShippingAddress the user's default address is used.
type PlaceOrderInput struct {
	Items           []OrderLine     `json:"items"`
	ShippingAddress *domain.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	carts     *CartService
	catalog   CatalogInvalidator
	publisher OrderPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	carts *CartService,
	catalog CatalogInvalidator,
	publisher OrderPublisher,
	log *zap.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		users:     users,
		carts:     carts,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := in.Items
	if len(lines) == 0 {
		if lines, err = s.cartLines(ctx, userID); err != nil {
			return nil, err
		}
	}
	lines, err = mergeLines(lines)
	if err != nil {
		return nil, err
	}

	address, err := shippingAddress(user, in.ShippingAddress)
	if err != nil {
		return nil, err
	}

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = DefaultPaymentMethod
	}
	if !paymentMethods[method] {
		return nil, invalid("unsupported payment method %q", in.PaymentMethod)
	}

	items, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	if err := s.reserveStock(ctx, items); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		Status:          domain.OrderStatusPending,
	}
	order.ApplyPrices(domain.CalculatePrices(items))

	if err := s.orders.Create(ctx, order); err != nil {
		s.restoreStock(items)
		return nil, err
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total", order.TotalPrice))

	if err := s.carts.ClearOrderedItems(ctx, userID, order.CreatedAt); err != nil {
		s.log.Warn("clear cart after order failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.log.Warn("publish order placed failed", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}

	return order, nil
}

func (s *OrderService) cartLines(ctx context.Context, userID primitive.ObjectID) ([]OrderLine, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]OrderLine, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}

// mergeLines folds repeated products into one line and validates quantities.
func mergeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	merged := make([]OrderLine, 0, len(lines))
	index := make(map[primitive.ObjectID]int, len(lines))
	for _, l := range lines {
		if l.ProductID.IsZero() {
			return nil, invalid("product_id is required")
		}
		if l.Quantity <= 0 {
			return nil, invalid("quantity must be positive")
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

func shippingAddress(user *domain.User, given *domain.Address) (domain.Address, error) {
	if given != nil {
		if !given.Complete() {
			return domain.Address{}, invalid("shipping address is incomplete")
		}
		addr := *given
		if addr.ID.IsZero() {
			addr.ID = primitive.NewObjectID()
		}
		return addr, nil
	}
	if addr, ok := user.DefaultAddress(); ok {
		return addr, nil
	}
	return domain.Address{}, invalid("shipping address is required")
}

// priceLines takes names and prices from the catalog, never from the client.
func (s *OrderService) priceLines(ctx context.Context, lines []OrderLine) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		product, err := s.products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.MainImage(),
			Price:     product.Price,
			Quantity:  l.Quantity,
		})
	}
	return items, nil
}

func (s *OrderService) reserveStock(ctx context.Context, items []domain.OrderItem) error {
	for i, it := range items {
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.restoreStock(items[:i])
			return err
		}
	}
	s.catalog.InvalidateProducts(productIDs(items)...)
	return nil
}

// restoreStock gives stock back on a detached context; the request may
// already be cancelled when this runs.
func (s *OrderService) restoreStock(items []domain.OrderItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Error("restore stock failed",
				zap.String("product_id", it.ProductID.Hex()),
				zap.Int("quantity", it.Quantity),
				zap.Error(err))
		}
	}
	s.catalog.InvalidateProducts(productIDs(items)...)
}

func productIDs(items []domain.OrderItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

// GetOrder hides orders of other users behind ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canSee(order.UserID) {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) MarkPaid(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusPending, domain.OrderStatusPaid)
}

func (s *OrderService) MarkDelivered(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusPaid, domain.OrderStatusDelivered)
}

// CancelOrder lets the owner or an admin cancel a pending order and returns
// its items to stock.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Order, error) {
	if _, err := s.GetOrder(ctx, actor, id); err != nil {
		return nil, err
	}

	order, err := s.transition(ctx, id, domain.OrderStatusPending, domain.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.restoreStock(order.Items)
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error) {
	if !from.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}
	order, err := s.orders.UpdateStatus(ctx, id, from, to, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", id.Hex()),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	return order, nil
}
