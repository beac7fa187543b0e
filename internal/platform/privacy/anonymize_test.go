package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"189.6.44.201", "189.6.44.0"},
		{"10.0.0.0", "10.0.0.0"},
		{"127.0.0.1", "127.0.0.0"},
		{"::ffff:200.147.67.142", "200.147.67.0"},
		{"2804:14c:5b:8000:1d2f:aa31:90ce:11", "2804:14c:5b::"},
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"fe80::1%eth0", "fe80::"},
		{"::1", "::"},
		{"", "unknown"},
		{"unknown", "unknown"},
		{"200.147.67", "invalid"},
		{"not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIPIsStableWithinNetwork(t *testing.T) {
	assert.Equal(t, AnonymizeIP("189.6.44.1"), AnonymizeIP("189.6.44.254"))
	assert.NotEqual(t, AnonymizeIP("189.6.44.1"), AnonymizeIP("189.6.45.1"))
}
