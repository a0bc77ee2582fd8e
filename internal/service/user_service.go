package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

type UserService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
	log    *zap.Logger
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, log *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		log:    log,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput holds optional changes; nil fields are left as they are.
type ProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return nil, invalid("name is required")
	}
	if !domain.ValidEmail(email) {
		return nil, invalid("email is invalid")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.authResult(user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.authResult(user)
}

func (s *UserService) authResult(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if !domain.ValidEmail(email) {
			return nil, invalid("email is invalid")
		}
		user.Email = email
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) AddAddress(ctx context.Context, userID primitive.ObjectID, address domain.Address) (*domain.User, error) {
	address.ID = primitive.NewObjectID()
	if !address.Complete() {
		return nil, invalid("street, city, postal_code and country are required")
	}

	if err := s.repo.AddAddress(ctx, userID, address); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *UserService) RemoveAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*domain.User, error) {
	if err := s.repo.RemoveAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// DeleteUser removes a customer account. Admins cannot delete themselves or
// other admins through the API.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if actor.UserID == id {
		return ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id.Hex()), zap.String("by", actor.UserID.Hex()))
	return nil
}

// hashPassword reports password policy failures as validation errors.
func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
		return "", invalid("%s", err.Error())
	}
	return hash, err
}
