package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates an admin bearer token and returns its subject.
type TokenValidator interface {
	ValidateToken(tokenString string) (subject string, err error)
}

// AuthorityLookup resolves the identity currently holding the administrative
// capability. The holder is replaceable at runtime via an explicit transfer,
// so the check must read through to the store on every request.
type AuthorityLookup interface {
	Current(ctx context.Context) (string, error)
}

type contextKeyAdminSubject struct{}

// ContextKeyAdminSubject is exported for use in handlers.
var ContextKeyAdminSubject = contextKeyAdminSubject{}

// GetAdminSubject retrieves the authenticated admin subject from the context.
func GetAdminSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeyAdminSubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireAuthority guards admin routes. The bearer token must verify against
// the signing key and its subject must match the configured authority
// identity.
func RequireAuthority(validator TokenValidator, authority AuthorityLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(r)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			subject, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			holder, err := authority.Current(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "authority lookup failed",
					"error", err,
					"request_id", requestID,
				)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if subject != holder {
				logger.WarnContext(ctx, "unauthorized admin access - subject is not the authority",
					"subject", subject,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Subject does not hold the admin capability")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyAdminSubject, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
