package admin

import (
	"context"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

type ProductStore interface {
	Count(ctx context.Context) (int64, error)
	CreateMany(ctx context.Context, products []*domain.Product) error
}

// SeedProducts loads DemoProducts into an empty catalog and reports how many
// were inserted. A catalog that already has products is left alone.
func SeedProducts(ctx context.Context, products ProductStore) (int, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	demo := DemoProducts()
	if err := products.CreateMany(ctx, demo); err != nil {
		return 0, err
	}
	return len(demo), nil
}

func DemoProducts() []*domain.Product {
	return []*domain.Product{
		{
			Name:        "Wireless Headphones",
			Description: "Over-ear bluetooth headphones with 30 hour battery life.",
			Brand:       "Sonic",
			Category:    "electronics",
			Price:       89.99,
			Images:      []string{"/images/headphones.jpg"},
			Stock:       25,
			Rating:      4.5,
			NumReviews:  12,
		},
		{
			Name:        "Mechanical Keyboard",
			Description: "Tenkeyless keyboard with hot-swappable switches.",
			Brand:       "Keyforge",
			Category:    "electronics",
			Price:       119.00,
			Images:      []string{"/images/keyboard.jpg"},
			Stock:       10,
			Rating:      4.7,
			NumReviews:  8,
		},
		{
			Name:        "Cotton T-Shirt",
			Description: "Heavyweight organic cotton tee.",
			Brand:       "Basics",
			Category:    "apparel",
			Price:       19.50,
			Images:      []string{"/images/tshirt.jpg"},
			Stock:       100,
			Rating:      4.1,
			NumReviews:  31,
		},
		{
			Name:        "Running Shoes",
			Description: "Lightweight trainers for road running.",
			Brand:       "Stride",
			Category:    "apparel",
			Price:       74.95,
			Images:      []string{"/images/shoes.jpg"},
			Stock:       40,
			Rating:      4.3,
			NumReviews:  19,
		},
		{
			Name:        "Ceramic Mug",
			Description: "350ml stoneware mug, dishwasher safe.",
			Brand:       "Homeware",
			Category:    "kitchen",
			Price:       12.00,
			Images:      []string{"/images/mug.jpg"},
			Stock:       60,
			Rating:      4.8,
			NumReviews:  44,
		},
		{
			Name:        "Chef's Knife",
			Description: "20cm stainless steel chef's knife.",
			Brand:       "Edge",
			Category:    "kitchen",
			Price:       45.00,
			Images:      []string{"/images/knife.jpg"},
			Stock:       0,
			Rating:      4.6,
			NumReviews:  5,
		},
	}
}
