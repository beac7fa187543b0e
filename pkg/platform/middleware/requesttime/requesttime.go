// Package requesttime provides middleware and utilities for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp,
// so an age check and the audit event it produces agree on the date.
package requesttime

import (
	"context"
	"net/http"
	"time"

	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like tests).
func Now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

// WithTime injects a specific time into a context.
// Service unit tests use it to pin "today" for age checks.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
