package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo encodes pending -> paid -> delivered, with cancellation
// allowed only while pending.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

const (
	TaxRate               = 0.15
	FreeShippingThreshold = 100.0
	ShippingFee           = 10.0
)

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress Address            `bson:"shipping_address" json:"shipping_address"`
	PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
	ItemsPrice      float64            `bson:"items_price" json:"items_price"`
	TaxPrice        float64            `bson:"tax_price" json:"tax_price"`
	ShippingPrice   float64            `bson:"shipping_price" json:"shipping_price"`
	TotalPrice      float64            `bson:"total_price" json:"total_price"`
	Status          OrderStatus        `bson:"status" json:"status"`
	IsPaid          bool               `bson:"is_paid" json:"is_paid"`
	PaidAt          *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	IsDelivered     bool               `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt     *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Prices is the breakdown charged for a set of order items.
type Prices struct {
	Items    float64
	Tax      float64
	Shipping float64
	Total    float64
}

func CalculatePrices(items []OrderItem) Prices {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	itemsPrice := RoundCents(sum)

	shipping := ShippingFee
	if itemsPrice > FreeShippingThreshold || itemsPrice == 0 {
		shipping = 0
	}
	tax := RoundCents(itemsPrice * TaxRate)

	return Prices{
		Items:    itemsPrice,
		Tax:      tax,
		Shipping: shipping,
		Total:    RoundCents(itemsPrice + tax + shipping),
	}
}

// ApplyPrices stores the breakdown on the order.
func (o *Order) ApplyPrices(p Prices) {
	o.ItemsPrice = p.Items
	o.TaxPrice = p.Tax
	o.ShippingPrice = p.Shipping
	o.TotalPrice = p.Total
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
