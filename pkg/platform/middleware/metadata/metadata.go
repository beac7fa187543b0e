// Package metadata resolves who is calling: the client IP (honouring
// X-Forwarded-For only from trusted proxies), the raw User-Agent and a
// readable device label used in request logs and audit events.
package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

// MaxForwardedHeaderLength caps X-Forwarded-For / X-Real-IP before parsing.
const MaxForwardedHeaderLength = 500

// UnknownDevice is the label used when no User-Agent was sent.
const UnknownDevice = "Unknown Device"

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists CIDR prefixes allowed to set forwarding headers.
	// When empty, forwarding headers are ignored.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies converts CIDR strings (as read from configuration)
// into prefixes, skipping blanks and invalid entries.
func ParseTrustedProxies(cidrs []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if p, err := netip.ParsePrefix(c); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Middleware handles client metadata extraction.
type Middleware struct {
	trusted []netip.Prefix
}

// NewMiddleware creates a new metadata middleware. A nil config trusts no proxy.
func NewMiddleware(cfg *Config) *Middleware {
	m := &Middleware{}
	if cfg != nil {
		m.trusted = cfg.TrustedProxies
	}
	return m
}

// Handler stores client IP, User-Agent and device label in the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), m.clientIP(r), ua)
		ctx = requestcontext.WithDevice(ctx, DeviceLabel(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote := hostOnly(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}
	if !m.isTrusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if len(xff) > MaxForwardedHeaderLength {
			return remote
		}
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if _, err := netip.ParseAddr(first); err != nil {
			return remote
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxForwardedHeaderLength {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return remote
}

func (m *Middleware) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range m.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// hostOnly strips the port from a RemoteAddr ("1.2.3.4:80", "[::1]:80").
func hostOnly(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().String()
	}
	if i := strings.LastIndex(remoteAddr, ":"); i != -1 && !strings.Contains(remoteAddr[:i], ":") {
		return remoteAddr[:i]
	}
	return strings.Trim(remoteAddr, "[]")
}

// DeviceLabel renders a User-Agent as "Browser on OS" (e.g. "Chrome on Windows 10").
// Mobile agents use the platform name instead of the OS string.
func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownDevice
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	where := ua.OS()
	if ua.Mobile() && ua.Platform() != "" {
		where = ua.Platform()
	}
	if where == "" {
		where = "Unknown OS"
	}
	return browser + " on " + where
}
