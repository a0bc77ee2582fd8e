package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection("orders")}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var order domain.Order
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	return m.list(ctx, bson.M{"user_id": userID})
}

func (m *mongoOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return m.list(ctx, bson.M{})
}

func (m *mongoOrderRepository) list(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := make([]*domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoOrderRepository) UpdateStatus(
	ctx context.Context,
	id primitive.ObjectID,
	from, to domain.OrderStatus,
	at time.Time) (*domain.Order, error) {

	set := bson.M{"status": to, "updated_at": at}
	switch to {
	case domain.OrderStatusPaid:
		set["is_paid"] = true
		set["paid_at"] = at
	case domain.OrderStatusDelivered:
		set["is_delivered"] = true
		set["delivered_at"] = at
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order domain.Order
	err := m.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if _, errFind := m.FindByID(ctx, id); errFind != nil {
		return nil, errFind
	}
	return nil, ErrStatusConflict
}

func (m *mongoOrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (m *mongoOrderRepository) PaidRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_paid": true, "status": bson.M{"$ne": domain.OrderStatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total_price"}}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return domain.RoundCents(rows[0].Revenue), nil
}
