package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse_ReturnsFirstFormattedAddress(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "51.500000,-0.120000", r.URL.Query().Get("q"))
		assert.Contains(t, r.URL.RawQuery, "q=51.500000%2C-0.120000")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"formatted":"Westminster, London"},{"formatted":"London"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")

	address, err := client.Reverse(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, "Westminster, London", address)

	// second lookup within the cache window does not hit the server
	address, err = client.Reverse(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, "Westminster, London", address)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReverse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty results", status: http.StatusOK, body: `{"results":[]}`, wantErr: ErrNoResult},
		{name: "missing formatted", status: http.StatusOK, body: `{"results":[{}]}`, wantErr: ErrNoResult},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "k").Reverse(context.Background(), 1, 2)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

type stubReverser struct {
	address string
	err     error
}

func (s stubReverser) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	return s.address, s.err
}

func TestResolveAddress(t *testing.T) {
	ctx := context.Background()

	address, err := ResolveAddress(ctx, stubReverser{address: "1 Main St"}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", address)

	address, err = ResolveAddress(ctx, stubReverser{err: errors.New("network down")}, 40.7128, -74.006)
	require.NoError(t, err)
	assert.Equal(t, "40.712800, -74.006000", address)

	address, err = ResolveAddress(ctx, nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "1.000000, 2.000000", address)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ResolveAddress(cancelled, stubReverser{err: context.Canceled}, 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache_Expires(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.put("k", "v", now)

	got, ok := c.get("k", now.Add(30*time.Second))
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.get("k", now.Add(2*time.Minute))
	assert.False(t, ok)
}

type hangingReverser struct{}

func (hangingReverser) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestResolveAddress_SlowLookupFallsBack(t *testing.T) {
	saved := lookupTimeout
	lookupTimeout = 20 * time.Millisecond
	defer func() { lookupTimeout = saved }()

	address, err := ResolveAddress(context.Background(), hangingReverser{}, 1.5, 2.5)
	require.NoError(t, err)
	assert.Equal(t, "1.500000, 2.500000", address)
}
