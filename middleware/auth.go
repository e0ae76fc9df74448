package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
)

type contextKey string

const ClerkIDKey contextKey = "clerkID"

var (
	errMissingHeader = errors.New("authorization header required")
	errBadScheme     = errors.New("invalid authorization format, use 'Bearer <token>'")
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier func(ctx context.Context, token string) (string, error)

// ClerkVerifier verifies session tokens against the Clerk JWKS. clerk.SetKey
// must have been called.
func ClerkVerifier(ctx context.Context, token string) (string, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ClerkAuthMiddleware rejects requests without a valid Clerk session token.
func ClerkAuthMiddleware(next http.Handler) http.Handler {
	return RequireAuth(ClerkVerifier)(next)
}

// OptionalAuthMiddleware attaches the Clerk ID when a valid token is present
// and lets anonymous requests through.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return OptionalAuth(ClerkVerifier)(next)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

func RequireAuth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				authRejections.WithLabelValues("missing_token").Inc()
				respondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}

			subject, err := verify(r.Context(), token)
			if err != nil || subject == "" {
				authRejections.WithLabelValues("invalid_token").Inc()
				logger.Log.Debug("token verification failed", zap.Error(err))
				respondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClerkID(r.Context(), subject)))
		})
	}
}

func OptionalAuth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := bearerToken(r); err == nil {
				if subject, err := verify(r.Context(), token); err == nil && subject != "" {
					r = r.WithContext(WithClerkID(r.Context(), subject))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromQuery copies ?<param>= into the Authorization header when the
// header is absent. Browsers cannot set headers on websocket handshakes.
func TokenFromQuery(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				if token := r.URL.Query().Get(param); token != "" {
					r = r.Clone(r.Context())
					r.Header.Set("Authorization", "Bearer "+token)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClerkID(ctx context.Context, clerkID string) context.Context {
	return context.WithValue(ctx, ClerkIDKey, clerkID)
}

// GetClerkID extracts the Clerk user ID from context
func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok && clerkID != ""
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
