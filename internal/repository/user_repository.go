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

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: db.Collection("users")}
}

func (m *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Addresses == nil {
		user.Addresses = []domain.Address{}
	}

	res, err := m.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (m *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile writes name, email, password hash and role.
func (m *mongoUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"updated_at":    user.UpdatedAt,
	}}

	result, err := m.collection.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) AddAddress(ctx context.Context, userID primitive.ObjectID, address domain.Address) error {
	now := time.Now().UTC()

	if address.IsDefault {
		// Only one default address per user.
		_, err := m.collection.UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{"addresses.$[].is_default": false},
		})
		if err != nil {
			return fmt.Errorf("failed to reset default address: %w", err)
		}
	}

	result, err := m.collection.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"addresses": address},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) RemoveAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	filter := bson.M{"_id": userID, "addresses._id": addressID}
	update := bson.M{
		"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove address: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (m *mongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (m *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
