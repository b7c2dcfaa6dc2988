package auth

import (
	"net/http"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
)

type Verifier interface {
	Verify(token string) (*errors.Viewer, error)
}

type Middleware struct {
	*transport.BaseHandler
	verifier Verifier
}

func NewMiddleware(baseHandler *transport.BaseHandler, verifier Verifier) *Middleware {
	return &Middleware{
		BaseHandler: baseHandler,
		verifier:    verifier,
	}
}

// RequireViewer rejects requests without a valid bearer token.
func (m *Middleware) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.HandleError(w, errors.NewUnauthorizedError("missing authorization token", errors.ErrCodeInvalidToken))
			return
		}

		viewer, err := m.verifier.Verify(token)
		if err != nil {
			m.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(errors.ContextWithViewer(r.Context(), viewer)))
	})
}

// OptionalViewer attaches the viewer when a valid token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func (m *Middleware) OptionalViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		viewer, err := m.verifier.Verify(token)
		if err != nil {
			m.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(errors.ContextWithViewer(r.Context(), viewer)))
	})
}
