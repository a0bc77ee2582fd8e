package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrAddressNotFound   = errors.New("address not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrStatusConflict    = errors.New("order is not in the expected status")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
)

// ProductFilter narrows catalog listings. Page is 1-based.
type ProductFilter struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	AddAddress(ctx context.Context, userID primitive.ObjectID, address domain.Address) error
	RemoveAddress(ctx context.Context, userID, addressID primitive.ObjectID) error
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *domain.Product) error
	CreateMany(ctx context.Context, products []*domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock fails with ErrInsufficientStock instead of going below zero.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// UpdateStatus moves an order from one status to another. It returns
	// ErrStatusConflict when the order exists but is not in status from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus, at time.Time) (*domain.Order, error)
	Count(ctx context.Context) (int64, error)
	PaidRevenue(ctx context.Context) (float64, error)
}

// CartRepository defines the interface for cart data operations
type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	// RemoveItemsAddedBefore drops lines added at or before the given time and
	// deletes the cart once it is empty. Lines added later are kept.
	RemoveItemsAddedBefore(ctx context.Context, userID primitive.ObjectID, before time.Time) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}
