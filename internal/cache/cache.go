package cache

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type CartCache interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	SetCart(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}

// CatalogCache stores single products and listing pages. Listing keys are
// opaque strings built by the caller from the normalized query.
type CatalogCache interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	GetPage(ctx context.Context, key string) (*domain.ProductPage, error)
	SetPage(ctx context.Context, key string, page *domain.ProductPage) error
	// InvalidatePages drops every cached listing page.
	InvalidatePages(ctx context.Context) error
}

// Nop is used when Redis is not configured: every read misses and writes
// are discarded.
type Nop struct{}

func (Nop) GetCart(context.Context, primitive.ObjectID) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetCart(context.Context, primitive.ObjectID, *domain.Cart) error {
	return nil
}

func (Nop) DeleteCart(context.Context, primitive.ObjectID) error {
	return nil
}

func (Nop) GetProduct(context.Context, primitive.ObjectID) (*domain.Product, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetProduct(context.Context, *domain.Product) error {
	return nil
}

func (Nop) DeleteProduct(context.Context, primitive.ObjectID) error {
	return nil
}

func (Nop) GetPage(context.Context, string) (*domain.ProductPage, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetPage(context.Context, string, *domain.ProductPage) error {
	return nil
}

func (Nop) InvalidatePages(context.Context) error {
	return nil
}
