package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Amit9DeV/NexiCart-sub001/internal/cache"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	MaxPage         = 10000
)

type ProductService struct {
	repo  repository.ProductRepository
	cache cache.CatalogCache
	log   *zap.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewProductService(repo repository.ProductRepository, c cache.CatalogCache, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: c,
		log:   log,
	}
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if in.Price <= 0 {
		return invalid("price must be positive")
	}
	if in.Stock < 0 {
		return invalid("stock cannot be negative")
	}
	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Brand = in.Brand
	p.Category = strings.TrimSpace(in.Category)
	p.Price = domain.RoundCents(in.Price)
	p.Images = in.Images
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Stock = in.Stock
}

// normalizeFilter clamps paging and trims the search terms.
func normalizeFilter(f repository.ProductFilter) repository.ProductFilter {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Category = strings.TrimSpace(f.Category)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func pageCacheKey(f repository.ProductFilter) string {
	v := url.Values{}
	v.Set("k", strings.ToLower(f.Keyword))
	v.Set("c", f.Category)
	v.Set("p", fmt.Sprint(f.Page))
	v.Set("s", fmt.Sprint(f.PageSize))
	return v.Encode()
}

func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*domain.ProductPage, error) {
	if filter.Page > MaxPage {
		return nil, invalid("page must be at most %d", MaxPage)
	}
	f := normalizeFilter(filter)
	key := pageCacheKey(f)

	v, err, _ := s.sfg.Do("page:"+key, func() (interface{}, error) {
		page, err := s.cache.GetPage(ctx, key)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("catalog cache get failed", zap.Error(err))
		}

		products, total, err := s.repo.Find(ctx, f)
		if err != nil {
			return nil, err
		}

		page = &domain.ProductPage{
			Products: products,
			Page:     f.Page,
			Pages:    int((total + int64(f.PageSize) - 1) / int64(f.PageSize)),
			Total:    total,
		}
		if errSet := s.cache.SetPage(ctx, key, page); errSet != nil {
			s.log.Warn("catalog cache set failed", zap.Error(errSet))
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.ProductPage), nil
}

func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	v, err, _ := s.sfg.Do("product:"+id.Hex(), func() (interface{}, error) {
		product, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("product cache get failed", zap.String("product_id", id.Hex()), zap.Error(err))
		}

		product, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if errSet := s.cache.SetProduct(ctx, product); errSet != nil {
			s.log.Warn("product cache set failed", zap.String("product_id", id.Hex()), zap.Error(errSet))
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product domain.Product
	in.apply(&product)
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	s.InvalidateProducts(product.ID)
	s.log.Info("product created", zap.String("product_id", product.ID.Hex()))
	return &product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id primitive.ObjectID, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.InvalidateProducts(id)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.InvalidateProducts(id)
	s.log.Info("product deleted", zap.String("product_id", id.Hex()))
	return nil
}

// InvalidateProducts drops the cached copies of the given products and every
// cached listing page. It runs on a fresh context so a cancelled request
// still clears the cache after a committed write. Checkout and cancellation
// call it after changing stock.
func (s *ProductService) InvalidateProducts(ids ...primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	for _, id := range ids {
		if err := s.cache.DeleteProduct(ctx, id); err != nil {
			s.log.Warn("product cache invalidate failed", zap.String("product_id", id.Hex()), zap.Error(err))
		}
	}
	if err := s.cache.InvalidatePages(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
