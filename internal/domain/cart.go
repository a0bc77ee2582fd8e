package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxCartQuantity = 99

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartItem keeps a snapshot of the product name, image and price taken when
// the line was added. Orders reprice from the catalog.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

// Subtotal sums the snapshot prices of all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return RoundCents(total)
}
