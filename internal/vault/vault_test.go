package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvServer answers KV-v2 reads for secret/sitequery.
func kvServer(t *testing.T, hits *atomic.Int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/sitequery" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"dsn":"postgres://u:p@db/sites","port":5432},"metadata":{"created_time":"2025-06-05T10:00:00.000000Z","custom_metadata":null,"deletion_time":"","destroyed":false,"version":1}}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := vault.DefaultConfig()
	cfg.Address = srv.URL
	api, err := vault.NewClient(cfg)
	require.NoError(t, err)
	api.SetToken("test")
	return NewFromAPI(api, nil)
}

func TestParseRef(t *testing.T) {
	path, key, err := ParseRef("vault:secret/sitequery#dsn")
	require.NoError(t, err)
	assert.Equal(t, "secret/sitequery", path)
	assert.Equal(t, "dsn", key)

	for _, bad := range []string{
		"secret/sitequery#dsn",
		"vault:secret/sitequery",
		"vault:secret#dsn",
		"vault:secret/sitequery#",
	} {
		_, _, err := ParseRef(bad)
		assert.ErrorIs(t, err, ErrBadRef, bad)
	}
}

func TestResolve_Caches(t *testing.T) {
	var hits atomic.Int32
	c := kvServer(t, &hits)
	ctx := context.Background()

	v, err := c.Resolve(ctx, "vault:secret/sitequery#dsn")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/sites", v)

	_, err = c.Resolve(ctx, "vault:secret/sitequery#dsn")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// past the TTL the secret is read again
	c.now = func() time.Time { return time.Now().Add(2 * DefaultTTL) }
	_, err = c.Resolve(ctx, "vault:secret/sitequery#dsn")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetKV_Errors(t *testing.T) {
	var hits atomic.Int32
	c := kvServer(t, &hits)
	ctx := context.Background()

	_, err := c.GetKV(ctx, "secret/sitequery", "missing", 0)
	assert.ErrorContains(t, err, `key "missing" not found`)

	_, err = c.GetKV(ctx, "secret/sitequery", "port", 0)
	assert.ErrorContains(t, err, "is not a string")

	_, err = c.GetKV(ctx, "", "dsn", 0)
	assert.Error(t, err)
}
