package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var principalCtxKey = &contextKey{"principal"}

// AuthMiddleware exige un bearer token valide sur toutes les routes qu'il enveloppe.
func AuthMiddleware(validator ports.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}

			// Format "Bearer <token>"
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token format")
				return
			}

			principal, err := validator.Validate(strings.TrimSpace(tokenStr))
			if err != nil {
				slog.DebugContext(r.Context(), "Token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ForContext retourne l'appelant authentifié (nil hors middleware).
func ForContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalCtxKey).(*domain.Principal)
	return p
}

// WithPrincipal injecte un appelant dans ctx (utile aux tests et aux appels internes).
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}
