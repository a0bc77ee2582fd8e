package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

type ProductService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, in service.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
	log      *zap.Logger
}

func NewProductHandler(products ProductService, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := repository.ProductFilter{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
	}
	var ok bool
	if filter.Page, ok = queryInt(w, q.Get("page"), "page"); !ok {
		return
	}
	if filter.PageSize, ok = queryInt(w, q.Get("page_size"), "page_size"); !ok {
		return
	}

	page, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if page.Products == nil {
		empty := *page
		empty.Products = []*domain.Product{}
		page = &empty
	}

	respondData(w, http.StatusOK, page)
}

func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondError(w, http.StatusBadRequest, "invalid_argument", name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, product)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.products.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	respondData(w, http.StatusOK, categories)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}
	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.UpdateProduct(ctx, id, req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(ctx, id); err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
