// Package requestcontext holds request-scoped values shared by middleware,
// handlers and services: the request id, the request's "now", client
// metadata and the device label derived from the User-Agent.
package requestcontext

import (
	"context"
	"time"
)

type (
	contextKeyRequestID   struct{}
	contextKeyRequestTime struct{}
	contextKeyClientIP    struct{}
	contextKeyUserAgent   struct{}
	contextKeyDeviceID    struct{}
	contextKeyDevice      struct{}
)

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, id)
}

// RequestID returns the request id or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	return stringValue(ctx, contextKeyRequestID{})
}

// WithTime pins the request's "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now returns the pinned request time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithClientMetadata stores the resolved client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, ip)
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	return stringValue(ctx, contextKeyClientIP{})
}

func UserAgent(ctx context.Context) string {
	return stringValue(ctx, contextKeyUserAgent{})
}

// WithDeviceID stores the browser-provided device cookie value.
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyDeviceID{}, id)
}

func DeviceID(ctx context.Context) string {
	return stringValue(ctx, contextKeyDeviceID{})
}

// WithDevice stores a display label such as "Firefox on Linux".
func WithDevice(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, contextKeyDevice{}, label)
}

func Device(ctx context.Context) string {
	return stringValue(ctx, contextKeyDevice{})
}

func stringValue(ctx context.Context, key any) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
