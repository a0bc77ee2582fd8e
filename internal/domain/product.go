package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Images      []string           `bson:"images" json:"images"`
	Stock       int                `bson:"stock" json:"stock"`
	Rating      float64            `bson:"rating" json:"rating"`
	NumReviews  int                `bson:"num_reviews" json:"num_reviews"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// MainImage is the image shown in cart lines and order items.
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products []*Product `json:"products"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
	Total    int64      `json:"total"`
}
