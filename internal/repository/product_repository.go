package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection("products")}
}

func productQuery(f ProductFilter) bson.M {
	query := bson.M{}
	if f.Keyword != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Keyword), "$options": "i"}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	return query
}

func (m *mongoProductRepository) Find(ctx context.Context, f ProductFilter) ([]*domain.Product, int64, error) {
	query := productQuery(f)

	total, err := m.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64(page-1) * int64(f.PageSize)).SetLimit(int64(f.PageSize))
	}

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]*domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, total, nil
}

func (m *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (m *mongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := m.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	stamp(product, time.Now().UTC())

	res, err := m.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (m *mongoProductRepository) CreateMany(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(products))
	for i, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		stamp(p, now)
		docs[i] = p
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}

func stamp(p *domain.Product, now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
}

func (m *mongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"brand":       product.Brand,
		"category":    product.Category,
		"price":       product.Price,
		"images":      product.Images,
		"stock":       product.Stock,
		"updated_at":  product.UpdatedAt,
	}}

	result, err := m.collection.UpdateByID(ctx, product.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": quantity}}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// Tell a missing product apart from one that ran out.
	if _, err := m.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrInsufficientStock
}

func (m *mongoProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
