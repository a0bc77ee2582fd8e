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

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection("carts")}
}

func (m *mongoCartRepository) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	var cart domain.Cart

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// addItemAttempts bounds how often AddItem retries after losing a race with
// a concurrent add of the same product.
const addItemAttempts = 3

// AddItem creates the cart on first use. Adding a product already in the
// cart replaces that line's quantity and price snapshot.
func (m *mongoCartRepository) AddItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error {
	now := time.Now().UTC()
	item.AddedAt = now

	for attempt := 0; attempt < addItemAttempts; attempt++ {
		replaced, err := m.replaceItem(ctx, userID, item, now)
		if err != nil {
			return err
		}
		if replaced {
			return nil
		}

		// Product not in the cart yet; push it, creating the cart if needed.
		// The $ne guard keeps a concurrent push of the same product from
		// adding a second line: the filter misses, the upsert hits the unique
		// user_id index, and the next attempt replaces the line instead.
		filter := bson.M{
			"user_id":          userID,
			"items.product_id": bson.M{"$ne": item.ProductID},
		}
		upsert := bson.M{
			"$push":        bson.M{"items": item},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		}
		_, err = m.collection.UpdateOne(ctx, filter, upsert, options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to add new item: %w", err)
		}
	}
	return fmt.Errorf("failed to add item after %d attempts: concurrent updates", addItemAttempts)
}

func (m *mongoCartRepository) replaceItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem, now time.Time) (bool, error) {
	filter := bson.M{"user_id": userID, "items.product_id": item.ProductID}
	update := bson.M{
		"$set": bson.M{
			"items.$.quantity": item.Quantity,
			"items.$.price":    item.Price,
			"items.$.name":     item.Name,
			"items.$.image":    item.Image,
			"items.$.added_at": now,
			"updated_at":       now,
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update existing item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (m *mongoCartRepository) UpdateItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"user_id":          userID,
		"items.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now().UTC(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *mongoCartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	filter := bson.M{"user_id": userID, "items.product_id": productID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (m *mongoCartRepository) RemoveItemsAddedBefore(ctx context.Context, userID primitive.ObjectID, before time.Time) error {
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"added_at": bson.M{"$lte": before}},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := m.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove ordered items: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	if _, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID, "items": bson.M{"$size": 0}}); err != nil {
		return fmt.Errorf("failed to delete empty cart: %w", err)
	}
	return nil
}

func (m *mongoCartRepository) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}
