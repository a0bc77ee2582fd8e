package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
)

const requestIDHeader = "X-Request-ID"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequestIDMiddleware adds a unique request ID to each request, keeping one
// supplied by the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func LoggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())))
		})
	}
}

// MaxBodySize caps request bodies at n bytes.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header and
// stores the caller in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			actor := service.Actor{UserID: userID, Admin: claims.IsAdmin()}
			next.ServeHTTP(w, r.WithContext(contextWithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
			return
		}
		if !actor.Admin {
			respondError(w, http.StatusForbidden, "permission_denied", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contextWithActor(ctx context.Context, actor service.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func actorFromContext(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(service.Actor)
	return actor, ok
}

// requireActor answers 401 when the route was mounted without Authenticate.
func requireActor(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
	}
	return actor, ok
}
