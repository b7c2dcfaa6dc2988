package middleware

import (
	"net/http"

	"github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/pkg/logger"
)

// ViewerContext tags the request logger with the authenticated viewer, if any.
// Mount it after the auth middleware.
func ViewerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := internal.ViewerFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := logger.With(r.Context(), "viewerID", viewer.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
