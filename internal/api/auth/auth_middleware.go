package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	appmetrics "github.com/tabmind/tabmind-server/app/observability/metrics"
	"github.com/tabmind/tabmind-server/internal/api"
)

// Typed context keys for the verified request identity.
type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// Authenticate validates bearer tokens and attaches the verified {id, role}
// to the request context. A missing token and an invalid token both terminate
// the request with 401 before the handler body runs.
func Authenticate(logger *slog.Logger, tokens *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := tokens.Verify(headerParts[1])
			if err != nil {
				// Malformed, forged and expired tokens are deliberately
				// indistinguishable here.
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				appmetrics.Get().TokenVerifyFailuresTotal.Add(ctx, 1)
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces a role predicate. Runs AFTER Authenticate; an
// authenticated identity with the wrong role gets 403, never 401.
func RequireRole(logger *slog.Logger, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			actual, ok := GetUserRoleFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "Role missing from context, Authenticate middleware not applied?")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			if actual != role {
				logger.WarnContext(ctx, "Role check failed",
					slog.String("required_role", role),
					slog.String("actual_role", actual),
				)
				api.ErrorResponse(w, r, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions to get the verified identity from context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
