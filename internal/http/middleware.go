package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-Id"
	HeaderUserRole  = "X-User-Role"
	HeaderSessionID = "X-Session-Id"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	sessionKey
)

// RequestIDMiddleware propagates X-Request-ID, falling back to chi's generated id.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

// IdentityMiddleware trusts the identity headers set by the upstream auth proxy.
// X-User-Role may carry several comma separated roles.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.Identity{UserID: strings.TrimSpace(r.Header.Get(HeaderUserID))}
		if id.UserID != "" {
			for _, role := range strings.Split(r.Header.Get(HeaderUserRole), ",") {
				if role = strings.TrimSpace(role); role != "" {
					id.Roles = append(id.Roles, domain.Role(role))
				}
			}
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware picks the cart owner: the signed-in user, else the client's session
// token, else a fresh one. The chosen key is echoed back so anonymous clients can keep it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := domain.SessionKey(identityFromContext(r.Context()).UserID)
		if key == "" {
			key = domain.SessionKey(strings.TrimSpace(r.Header.Get(HeaderSessionID)))
		}
		if key == "" {
			key = domain.SessionKey(uuid.NewString())
		}

		w.Header().Set(HeaderSessionID, key.String())
		ctx := context.WithValue(r.Context(), sessionKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}

func sessionFromContext(ctx context.Context) domain.SessionKey {
	key, _ := ctx.Value(sessionKey).(domain.SessionKey)
	return key
}

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.WithContext(r.Context(), log).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
