package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

type AdminService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewAdminService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository) *AdminService {
	return &AdminService{users: users, products: products, orders: orders}
}

// Stats runs the dashboard counters concurrently.
func (s *AdminService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Users, err = s.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Products, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Orders, err = s.orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Revenue, err = s.orders.PaidRevenue(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
