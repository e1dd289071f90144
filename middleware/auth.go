package middleware

import (
	"context"
	"errors"
	"excaliapp/core"
	"excaliapp/handlers/auth"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type contextKey string

const identityContextKey = contextKey("identity")

// IdentityFrom returns the caller stored by Introspect.
func IdentityFrom(ctx context.Context) (*core.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*core.Identity)
	return identity, ok && identity != nil
}

func WithIdentity(ctx context.Context, identity *core.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Introspect resolves the bearer token through the userinfo endpoint and
// stores the caller in the request context.
func Introspect(introspector auth.Introspector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, Message("Unauthorized"))
				return
			}

			identity, err := introspector.Identify(r.Context(), token)
			switch {
			case errors.Is(err, auth.ErrNoEmail):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, Message("User not found."))
				return
			case err != nil:
				logrus.WithError(err).Debug("Token introspection failed")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, Message("Unauthorized"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
