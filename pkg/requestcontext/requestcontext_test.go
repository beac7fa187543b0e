package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientMetadata(ctx, "10.0.0.7", "curl/8.0")
	ctx = WithDeviceID(ctx, "dev-9")
	ctx = WithDevice(ctx, "Firefox on Linux")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.7", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "dev-9", DeviceID(ctx))
	assert.Equal(t, "Firefox on Linux", Device(ctx))
}

func TestMissingValuesAreEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, Device(ctx))
}

func TestNow(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))

	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))
}
