package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Products       ProductService
	Users          UserService
	Carts          CartService
	Orders         OrderService
	Stats          StatsService
	Tokens         TokenParser
	Checks         []HealthCheck
	Log            *zap.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	ServiceName    string
}

func NewRouter(deps RouterDependencies) http.Handler {
	productHandler := NewProductHandler(deps.Products, deps.RequestTimeout, deps.Log)
	userHandler := NewUserHandler(deps.Users, deps.RequestTimeout, deps.Log)
	cartHandler := NewCartHandler(deps.Carts, deps.RequestTimeout, deps.Log)
	ordersHandler := NewOrdersHandler(deps.Orders, deps.RequestTimeout, deps.Log)
	adminHandler := NewAdminHandler(deps.Stats, deps.RequestTimeout, deps.Log)
	healthHandler := NewHealthHandler(deps.Checks, deps.Log)

	authenticate := Authenticate(deps.Tokens)

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MaxBodySize(deps.MaxBodyBytes))

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/debug", healthHandler.Debug)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/categories", productHandler.Categories)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, RequireAdmin)
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", userHandler.Me)
				r.Put("/me", userHandler.UpdateMe)
				r.Post("/me/addresses", userHandler.AddAddress)
				r.Delete("/me/addresses/{address_id}", userHandler.RemoveAddress)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate, RequireAdmin)
				r.Get("/", userHandler.List)
				r.Delete("/{id}", userHandler.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", ordersHandler.PlaceOrder)
			r.Get("/mine", ordersHandler.ListMine)
			r.Get("/{id}", ordersHandler.GetOrder)
			r.Put("/{id}/cancel", ordersHandler.Cancel)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/", ordersHandler.ListAll)
				r.Put("/{id}/pay", ordersHandler.MarkPaid)
				r.Put("/{id}/deliver", ordersHandler.MarkDelivered)
			})
		})

		r.With(authenticate, RequireAdmin).Get("/admin/stats", adminHandler.Stats)
	})

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "nexicart-api"
	}
	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
