package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Verifier resolves a bearer token to a principal.
type Verifier interface {
	Verify(token string) (domain.Principal, error)
}

// Middleware attaches the principal named by a valid bearer token to the
// request context. Requests without a token pass through anonymously;
// requests with an invalid one are rejected with 401.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "authorization header must use the Bearer scheme")
				return
			}

			p, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithPrincipal(r.Context(), p)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="rentiq"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(http.StatusUnauthorized),
		"status": http.StatusUnauthorized,
		"detail": detail,
	})
}
