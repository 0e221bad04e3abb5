package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/sdn-telemetry/pkg/config"
)

// newTestClient connects to the server named by TELEMETRY_TEST_VALKEY_ADDR.
// Tests skip when it is unset.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TELEMETRY_TEST_VALKEY_ADDR")
	if addr == "" {
		t.Skip("TELEMETRY_TEST_VALKEY_ADDR not set")
	}

	c, err := New(context.Background(), config.CacheConfig{
		Address:   addr,
		KeyPrefix: "sdn-telemetry-test:",
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

type options struct {
	Categories []string `json:"categories"`
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.deleteKeys(ctx, "filter-options"))

	var got options
	hit, err := c.GetJSON(ctx, "filter-options", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "filter-options", options{Categories: []string{"video", "voip"}}, time.Minute))

	hit, err = c.GetJSON(ctx, "filter-options", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"video", "voip"}, got.Categories)

	assert.NoError(t, c.Ping(ctx))
}

func TestNew_Unreachable(t *testing.T) {
	if os.Getenv("TELEMETRY_TEST_VALKEY_ADDR") == "" {
		t.Skip("TELEMETRY_TEST_VALKEY_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, config.CacheConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}
