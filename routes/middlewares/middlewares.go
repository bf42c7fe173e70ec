package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/evalhub/evalhub/config"
)

type principalKey struct{}

// WithPrincipal marks the acting instructor on the request context.
func WithPrincipal(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, principalKey{}, email)
}

// Principal is the acting instructor's email; empty for anonymous requests.
func Principal(ctx context.Context) string {
	email, _ := ctx.Value(principalKey{}).(string)
	return email
}

// Instructor middleware checks the bearer token for the 'instructor' role
// and exposes the token credential as the acting principal.
func Instructor(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(cfg.TokenSecret, nil), instructor).Handler(next)
	}
}

func instructor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isInstructor := false
		if rolesClaim, ok := claims["roles"]; ok {
			for _, role := range strings.Split(rolesClaim, ",") {
				if role == "instructor" {
					isInstructor = true
					break
				}
			}
		}
		if !isInstructor {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		email, _ := r.Context().Value(oauth.CredentialContext).(string)
		if email == "" {
			email = claims["email"]
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), email)))
	})
}
