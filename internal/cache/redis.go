package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

const catalogVersionKey = "catalog:version"

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

// RedisCache implements CartCache and CatalogCache. Listing pages live under
// a version number that InvalidatePages bumps, so stale pages simply age out.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.get(ctx, cartKey(userID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCache) SetCart(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart) error {
	return r.set(ctx, cartKey(userID), cart)
}

func (r *RedisCache) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	return r.del(ctx, cartKey(userID))
}

func (r *RedisCache) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	if err := r.get(ctx, productKey(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	return r.set(ctx, productKey(product.ID), product)
}

func (r *RedisCache) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	return r.del(ctx, productKey(id))
}

func (r *RedisCache) GetPage(ctx context.Context, key string) (*domain.ProductPage, error) {
	version, err := r.catalogVersion(ctx)
	if err != nil {
		return nil, err
	}
	var page domain.ProductPage
	if err := r.get(ctx, pageKey(version, key), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *RedisCache) SetPage(ctx context.Context, key string, page *domain.ProductPage) error {
	version, err := r.catalogVersion(ctx)
	if err != nil {
		return err
	}
	return r.set(ctx, pageKey(version, key), page)
}

func (r *RedisCache) InvalidatePages(ctx context.Context) error {
	if err := r.client.Incr(ctx, catalogVersionKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r *RedisCache) catalogVersion(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("cart:%s", userID.Hex())
}

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

func pageKey(version int64, key string) string {
	return fmt.Sprintf("catalog:v%d:%s", version, key)
}
