package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

func newTestUserService(repo *mockUserRepository) *UserService {
	tokens := auth.NewTokenManager("test-secret", time.Hour, "nexicart")
	return NewUserService(repo, tokens, zap.NewNop())
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestUserService(repo)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: " Ann@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.NotEmpty(t, res.Token)

	login, err := svc.Login(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "ann@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newTestUserService(newMockUserRepository())

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"}},
		{"password over bcrypt limit", RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc := newTestUserService(newMockUserRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "A@B.CO", Password: "secret2"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestUserService(repo)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	name, pass := "Alice", "newsecret"
	user, err := svc.UpdateProfile(ctx, res.User.ID, ProfileInput{Name: &name, Password: &pass})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "a@b.co", user.Email)

	_, err = svc.Login(ctx, "a@b.co", "newsecret")
	require.NoError(t, err)

	short := "123"
	_, err = svc.UpdateProfile(ctx, res.User.ID, ProfileInput{Password: &short})
	assert.ErrorIs(t, err, ErrValidation)

	empty := "  "
	_, err = svc.UpdateProfile(ctx, res.User.ID, ProfileInput{Name: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Addresses(t *testing.T) {
	u := &domain.User{ID: primitive.NewObjectID(), Name: "A", Email: "a@b.co"}
	svc := newTestUserService(newMockUserRepository(u))
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, u.ID, domain.Address{Street: "1 Main"})
	assert.ErrorIs(t, err, ErrValidation)

	home := domain.Address{Label: "home", Street: "1 Main", City: "Town", PostalCode: "123", Country: "NZ", IsDefault: true}
	user, err := svc.AddAddress(ctx, u.ID, home)
	require.NoError(t, err)
	require.Len(t, user.Addresses, 1)
	assert.False(t, user.Addresses[0].ID.IsZero())

	work := home
	work.Label = "work"
	user, err = svc.AddAddress(ctx, u.ID, work)
	require.NoError(t, err)
	require.Len(t, user.Addresses, 2)
	def, ok := user.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, "work", def.Label)

	user, err = svc.RemoveAddress(ctx, u.ID, user.Addresses[0].ID)
	require.NoError(t, err)
	assert.Len(t, user.Addresses, 1)

	_, err = svc.RemoveAddress(ctx, u.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrAddressNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	admin := &domain.User{ID: primitive.NewObjectID(), Email: "admin@b.co", Role: domain.RoleAdmin}
	other := &domain.User{ID: primitive.NewObjectID(), Email: "other@b.co", Role: domain.RoleAdmin}
	customer := &domain.User{ID: primitive.NewObjectID(), Email: "c@b.co", Role: domain.RoleUser}
	repo := newMockUserRepository(admin, other, customer)
	svc := newTestUserService(repo)
	ctx := context.Background()
	actor := Actor{UserID: admin.ID, Admin: true}

	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, admin.ID), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, other.ID), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, primitive.NewObjectID()), repository.ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(ctx, actor, customer.ID))
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
