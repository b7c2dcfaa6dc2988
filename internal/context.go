package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextViewerKey ctxKey = "viewer"

// Viewer is the authenticated caller as asserted by the hosted auth service.
type Viewer struct {
	ID    string
	Email string
	Name  string
	Role  string
}

func ViewerFromContext(ctx context.Context) (*Viewer, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(ContextViewerKey).(*Viewer)
	return v, ok && v != nil
}

func ContextWithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, ContextViewerKey, v)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
