package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

// --- Mocks ---

type mockProductService struct {
	page    *domain.ProductPage
	product *domain.Product
	filter  repository.ProductFilter
	input   service.ProductInput
	err     error
}

func (m *mockProductService) ListProducts(_ context.Context, f repository.ProductFilter) (*domain.ProductPage, error) {
	m.filter = f
	return m.page, m.err
}

func (m *mockProductService) GetProduct(context.Context, primitive.ObjectID) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockProductService) ListCategories(context.Context) ([]string, error) {
	return nil, m.err
}

func (m *mockProductService) CreateProduct(_ context.Context, in service.ProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *mockProductService) UpdateProduct(_ context.Context, _ primitive.ObjectID, in service.ProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *mockProductService) DeleteProduct(context.Context, primitive.ObjectID) error {
	return m.err
}

type mockUserService struct {
	result *service.AuthResult
	user   *domain.User
	users  []*domain.User
	actor  service.Actor
	err    error
}

func (m *mockUserService) Register(context.Context, service.RegisterInput) (*service.AuthResult, error) {
	return m.result, m.err
}

func (m *mockUserService) Login(context.Context, string, string) (*service.AuthResult, error) {
	return m.result, m.err
}

func (m *mockUserService) GetUser(context.Context, primitive.ObjectID) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) UpdateProfile(context.Context, primitive.ObjectID, service.ProfileInput) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) AddAddress(context.Context, primitive.ObjectID, domain.Address) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) RemoveAddress(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) ListUsers(context.Context) ([]*domain.User, error) {
	return m.users, m.err
}

func (m *mockUserService) DeleteUser(_ context.Context, actor service.Actor, _ primitive.ObjectID) error {
	m.actor = actor
	return m.err
}

type mockCartService struct {
	cart     *domain.Cart
	quantity int
	err      error
}

func (m *mockCartService) GetCart(context.Context, primitive.ObjectID) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *mockCartService) AddItem(_ context.Context, _, _ primitive.ObjectID, quantity int) (*domain.Cart, error) {
	m.quantity = quantity
	return m.cart, m.err
}

func (m *mockCartService) UpdateQuantity(_ context.Context, _, _ primitive.ObjectID, quantity int) (*domain.Cart, error) {
	m.quantity = quantity
	return m.cart, m.err
}

func (m *mockCartService) RemoveItem(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *mockCartService) ClearCart(context.Context, primitive.ObjectID) error {
	return m.err
}

type mockOrderService struct {
	order  *domain.Order
	orders []*domain.Order
	input  service.PlaceOrderInput
	actor  service.Actor
	err    error
}

func (m *mockOrderService) PlaceOrder(_ context.Context, _ primitive.ObjectID, in service.PlaceOrderInput) (*domain.Order, error) {
	m.input = in
	return m.order, m.err
}

func (m *mockOrderService) GetOrder(_ context.Context, actor service.Actor, _ primitive.ObjectID) (*domain.Order, error) {
	m.actor = actor
	return m.order, m.err
}

func (m *mockOrderService) ListMyOrders(context.Context, primitive.ObjectID) ([]*domain.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderService) ListOrders(context.Context) ([]*domain.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderService) MarkPaid(context.Context, primitive.ObjectID) (*domain.Order, error) {
	return m.order, m.err
}

func (m *mockOrderService) MarkDelivered(context.Context, primitive.ObjectID) (*domain.Order, error) {
	return m.order, m.err
}

func (m *mockOrderService) CancelOrder(_ context.Context, actor service.Actor, _ primitive.ObjectID) (*domain.Order, error) {
	m.actor = actor
	return m.order, m.err
}

type mockStatsService struct {
	stats *domain.DashboardStats
	err   error
}

func (m *mockStatsService) Stats(context.Context) (*domain.DashboardStats, error) {
	return m.stats, m.err
}

// --- helpers ---

const testTimeout = 5 * time.Second

func withActor(r *http.Request, actor service.Actor) *http.Request {
	return r.WithContext(contextWithActor(r.Context(), actor))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type testRouter struct {
	handler  http.Handler
	tokens   *auth.TokenManager
	products *mockProductService
	users    *mockUserService
	carts    *mockCartService
	orders   *mockOrderService
	stats    *mockStatsService
}

func newTestRouter(t *testing.T, checks ...HealthCheck) *testRouter {
	t.Helper()
	tr := &testRouter{
		tokens:   auth.NewTokenManager("router-test-secret", time.Hour, "nexicart"),
		products: &mockProductService{},
		users:    &mockUserService{},
		carts:    &mockCartService{},
		orders:   &mockOrderService{},
		stats:    &mockStatsService{},
	}
	tr.handler = NewRouter(RouterDependencies{
		Products:       tr.products,
		Users:          tr.users,
		Carts:          tr.carts,
		Orders:         tr.orders,
		Stats:          tr.stats,
		Tokens:         tr.tokens,
		Checks:         checks,
		Log:            zap.NewNop(),
		RequestTimeout: testTimeout,
		MaxBodyBytes:   1 << 20,
	})
	return tr
}

func (tr *testRouter) token(t *testing.T, role domain.Role) (string, primitive.ObjectID) {
	t.Helper()
	user := &domain.User{ID: primitive.NewObjectID(), Email: "u@example.com", Role: role}
	token, err := tr.tokens.Issue(user)
	require.NoError(t, err)
	return token, user.ID
}
