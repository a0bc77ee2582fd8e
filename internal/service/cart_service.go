package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Amit9DeV/NexiCart-sub001/internal/cache"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

const cacheTimeout = time.Second

type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	log      *zap.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(
	repo repository.CartRepository,
	products repository.ProductRepository,
	c cache.CartCache,
	log *zap.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    c,
		log:      log,
	}
}

func validQuantity(quantity int) error {
	if quantity <= 0 || quantity > domain.MaxCartQuantity {
		return invalid("quantity must be between 1 and %d", domain.MaxCartQuantity)
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID.Hex(), func() (interface{}, error) {
		cart, err := s.cache.GetCart(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cart cache get failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		}

		cart, err = s.repo.GetCart(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			now := time.Now().UTC()
			return &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetCart(ctx, userID, cart); errSet != nil {
			s.log.Warn("cart cache set failed", zap.String("user_id", userID.Hex()), zap.Error(errSet))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem puts a product in the cart with the given quantity, replacing the
// quantity if the product is already there.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.inStock(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.MainImage(),
		Price:     product.Price,
		Quantity:  quantity,
	}
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.inStock(ctx, productID, quantity); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Cart, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart. Clearing a cart that does not exist succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// ClearOrderedItems removes the lines that were in the cart when an order
// was placed at placedAt. Lines added after the order survive, so repeated
// calls for the same order leave the cart as the first call did.
func (s *CartService) ClearOrderedItems(ctx context.Context, userID primitive.ObjectID, placedAt time.Time) error {
	err := s.repo.RemoveItemsAddedBefore(ctx, userID, placedAt)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) inStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, repository.ErrInsufficientStock
	}
	return product, nil
}

func (s *CartService) invalidateCache(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.DeleteCart(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidate failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}
