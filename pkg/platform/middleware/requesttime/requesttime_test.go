package requesttime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	rec := httptest.NewRecorder()
	Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/x/submit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewarePinsOneInstantPerRequest(t *testing.T) {
	before := time.Now()
	var reads []time.Time
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		// validation and the audit event read the clock at different moments
		reads = append(reads, Now(r.Context()))
		time.Sleep(5 * time.Millisecond)
		reads = append(reads, Now(r.Context()))
	})
	after := time.Now()

	require.Len(t, reads, 2)
	assert.Equal(t, reads[0], reads[1])
	assert.False(t, reads[0].Before(before))
	assert.False(t, reads[0].After(after))
}

func TestNowWithoutMiddlewareUsesWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.WithinRange(t, got, before, time.Now())
}

func TestWithTime(t *testing.T) {
	eve := time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)
	birthday := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	ctx := WithTime(context.Background(), eve)
	assert.Equal(t, eve, Now(ctx))

	ctx = WithTime(ctx, birthday)
	assert.Equal(t, birthday, Now(ctx), "the innermost pinned time wins")
}
