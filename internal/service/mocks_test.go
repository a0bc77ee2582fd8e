package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Amit9DeV/NexiCart-sub001/internal/cache"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

// --- users ---

type mockUserRepository struct {
	m     sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	r := &mockUserRepository{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	cp.Addresses = append([]domain.Address(nil), u.Addresses...)
	return &cp, nil
}

func (r *mockUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *mockUserRepository) UpdateProfile(_ context.Context, user *domain.User) error {
	r.m.Lock()
	defer r.m.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Name, u.Email, u.PasswordHash, u.Role = user.Name, user.Email, user.PasswordHash, user.Role
	return nil
}

func (r *mockUserRepository) AddAddress(_ context.Context, userID primitive.ObjectID, address domain.Address) error {
	r.m.Lock()
	defer r.m.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if address.IsDefault {
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = false
		}
	}
	u.Addresses = append(u.Addresses, address)
	return nil
}

func (r *mockUserRepository) RemoveAddress(_ context.Context, userID, addressID primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrAddressNotFound
	}
	for i, a := range u.Addresses {
		if a.ID == addressID {
			u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
			return nil
		}
	}
	return repository.ErrAddressNotFound
}

func (r *mockUserRepository) List(context.Context) ([]*domain.User, error) {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *mockUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *mockUserRepository) Count(context.Context) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return int64(len(r.users)), r.err
}

// --- products ---

type mockProductRepository struct {
	m        sync.Mutex
	products map[primitive.ObjectID]*domain.Product
	finds    int
	err      error
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	r := &mockProductRepository{products: map[primitive.ObjectID]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *mockProductRepository) Find(_ context.Context, f repository.ProductFilter) ([]*domain.Product, int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.finds++
	if r.err != nil {
		return nil, 0, r.err
	}
	var out []*domain.Product
	for _, p := range r.products {
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Keyword)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *mockProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockProductRepository) Categories(context.Context) ([]string, error) {
	return []string{"apparel"}, nil
}

func (r *mockProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *mockProductRepository) CreateMany(ctx context.Context, ps []*domain.Product) error {
	for _, p := range ps {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *mockProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *mockProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *mockProductRepository) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (r *mockProductRepository) IncrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (r *mockProductRepository) Count(context.Context) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return int64(len(r.products)), nil
}

func (r *mockProductRepository) stock(id primitive.ObjectID) int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.products[id].Stock
}

// --- orders ---

type mockOrderRepository struct {
	m         sync.Mutex
	orders    map[primitive.ObjectID]*domain.Order
	createErr error
}

func newMockOrderRepository(orders ...*domain.Order) *mockOrderRepository {
	r := &mockOrderRepository{orders: map[primitive.ObjectID]*domain.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *mockOrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *mockOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]*domain.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *mockOrderRepository) List(context.Context) ([]*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *mockOrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.OrderStatus, at time.Time) (*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if o.Status != from {
		return nil, repository.ErrStatusConflict
	}
	o.Status = to
	switch to {
	case domain.OrderStatusPaid:
		o.IsPaid, o.PaidAt = true, &at
	case domain.OrderStatusDelivered:
		o.IsDelivered, o.DeliveredAt = true, &at
	}
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepository) Count(context.Context) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return int64(len(r.orders)), nil
}

func (r *mockOrderRepository) PaidRevenue(context.Context) (float64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	var sum float64
	for _, o := range r.orders {
		if o.IsPaid {
			sum += o.TotalPrice
		}
	}
	return sum, nil
}

// --- carts ---

type mockCartRepository struct {
	m     sync.Mutex
	carts map[primitive.ObjectID]*domain.Cart
	err   error
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[primitive.ObjectID]*domain.Cart{}}
}

func (r *mockCartRepository) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *mockCartRepository) AddItem(_ context.Context, userID primitive.ObjectID, item domain.CartItem) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	c, ok := r.carts[userID]
	if !ok {
		c = &domain.Cart{UserID: userID}
		r.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i] = item
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (r *mockCartRepository) UpdateItemQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	r.m.Lock()
	defer r.m.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (r *mockCartRepository) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, it := range c.Items {
		if it.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (r *mockCartRepository) RemoveItemsAddedBefore(_ context.Context, userID primitive.ObjectID, before time.Time) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	c, ok := r.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.AddedAt.After(before) {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	if len(c.Items) == 0 {
		delete(r.carts, userID)
	}
	return nil
}

func (r *mockCartRepository) DeleteCart(_ context.Context, userID primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(r.carts, userID)
	return nil
}

// --- cache ---

type mockCache struct {
	m        sync.Mutex
	carts    map[primitive.ObjectID]*domain.Cart
	products map[primitive.ObjectID]*domain.Product
	pages    map[string]*domain.ProductPage
	getErr   error
}

func newMockCache() *mockCache {
	return &mockCache{
		carts:    map[primitive.ObjectID]*domain.Cart{},
		products: map[primitive.ObjectID]*domain.Product{},
		pages:    map[string]*domain.ProductPage{},
	}
}

var _ cache.CartCache = (*mockCache)(nil)
var _ cache.CatalogCache = (*mockCache)(nil)

func (c *mockCache) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	cart, ok := c.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *mockCache) SetCart(_ context.Context, userID primitive.ObjectID, cart *domain.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.carts[userID] = cart
	return nil
}

func (c *mockCache) DeleteCart(_ context.Context, userID primitive.ObjectID) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.carts, userID)
	return nil
}

func (c *mockCache) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.products[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (c *mockCache) SetProduct(_ context.Context, p *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products[p.ID] = p
	return nil
}

func (c *mockCache) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.products, id)
	return nil
}

func (c *mockCache) GetPage(_ context.Context, key string) (*domain.ProductPage, error) {
	c.m.Lock()
	defer c.m.Unlock()
	p, ok := c.pages[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (c *mockCache) SetPage(_ context.Context, key string, page *domain.ProductPage) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.pages[key] = page
	return nil
}

func (c *mockCache) InvalidatePages(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.pages = map[string]*domain.ProductPage{}
	return nil
}

func (c *mockCache) hasCart(userID primitive.ObjectID) bool {
	c.m.Lock()
	defer c.m.Unlock()
	_, ok := c.carts[userID]
	return ok
}

// --- publisher ---

type mockPublisher struct {
	m      sync.Mutex
	orders []*domain.Order
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, o *domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, o)
	return nil
}

var errBoom = errors.New("boom")
