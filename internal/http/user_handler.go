package http

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in service.ProfileInput) (*domain.User, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, address domain.Address) (*domain.User, error)
	RemoveAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, actor service.Actor, id primitive.ObjectID) error
}

type UserHandler struct {
	users   UserService
	timeout time.Duration
	log     *zap.Logger
}

func NewUserHandler(users UserService, timeout time.Duration, log *zap.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		timeout: timeout,
		log:     log,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.users.Register(ctx, req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, res)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "email and password are required")
		return
	}

	res, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, res)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(ctx, actor.UserID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req service.ProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(ctx, actor.UserID, req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req domain.Address
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.AddAddress(ctx, actor.UserID, req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, user)
}

func (h *UserHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	addressID, ok := pathID(w, r, "address_id", "address")
	if !ok {
		return
	}

	user, err := h.users.RemoveAddress(ctx, actor.UserID, addressID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	respondData(w, http.StatusOK, users)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(ctx, actor, id); err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
