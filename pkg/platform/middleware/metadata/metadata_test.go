package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
		expectedUA     string
	}{
		{
			name: "ignores XFF when no trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "Mozilla/5.0",
			},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
			expectedUA: "Mozilla/5.0",
		},
		{
			name: "trusts first XFF entry from a trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.2",
				"User-Agent":      "curl/7.64.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
			expectedUA:     "curl/7.64.1",
		},
		{
			name:           "uses X-Real-IP from a trusted proxy",
			headers:        map[string]string{"X-Real-IP": "198.51.100.4"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "198.51.100.4",
		},
		{
			name:           "rejects malformed XFF",
			headers:        map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:       "strips port from IPv6 RemoteAddr",
			remoteAddr: "[::1]:8080",
			expectedIP: "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured context.Context
			mw := NewMiddleware(&Config{TrustedProxies: ParseTrustedProxies(tt.trustedProxies)})
			handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r.Context()
			}))

			req := httptest.NewRequest(http.MethodGet, "/customers", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, requestcontext.ClientIP(captured))
			assert.Equal(t, tt.expectedUA, requestcontext.UserAgent(captured))
			assert.NotEmpty(t, requestcontext.Device(captured))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got := ParseTrustedProxies([]string{"10.0.0.0/8", " ", "garbage", "192.168.0.0/16"})
	assert.Len(t, got, 2)
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, UnknownDevice, DeviceLabel(""))

	firefox := "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"
	assert.Contains(t, DeviceLabel(firefox), "Firefox on ")
}
