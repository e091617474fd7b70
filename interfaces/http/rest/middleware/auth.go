package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
)

// Authenticate resolves the session on every request, syncs the user row on
// first sign-in and stores the request-scoped user context. No session means
// 401 before any other persistence access.
func Authenticate(resolver auth.SessionResolver, users *repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	ipLimiter := auth.NewRateLimiter(300)
	userLimiter := auth.NewRateLimiter(120)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ipLimiter.Allow(clientIP(r)) {
				common.RespondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token := auth.ExtractToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			// Revocation must take effect immediately, so every request
			// re-resolves the token against the provider.
			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				logger.Debug("session resolution failed", zap.Error(err), zap.String("path", r.URL.Path))
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !userLimiter.Allow(identity.UserID) {
				common.RespondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			user, err := users.EnsureUser(r.Context(), identity.UserID, identity.Email, identity.Name)
			if err != nil {
				logger.Error("user sync failed", zap.Error(err), zap.String("userId", identity.UserID))
				common.RespondAppError(w, err)
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: user.ID,
				Email:  user.Email,
				Name:   user.Name,
				Role:   user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin sessions. Runs inside Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.UserFromContext(r.Context())
		if err != nil {
			common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if user.Role != "ADMIN" {
			common.RespondError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
