package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"readcache/internal/cache"
)

func newTestServer(t *testing.T) (*Server, *cache.Engine) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	engine := cache.New(cache.NewRedisStore(client), zap.NewNop())
	return NewServer(engine, zap.NewNop()), engine
}

func TestHealthEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	require.NoError(t, engine.Put(context.Background(), "https://a.test/x", "<p>hi</p>", "X"))

	rec := httptest.NewRecorder()
	srv.mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["article_count"])
}

func TestStatsEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	require.NoError(t, engine.Put(context.Background(), "https://a.test/x", "abcd", "X"))

	rec := httptest.NewRecorder()
	srv.mux.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))

	require.Equal(t, 200, rec.Code)
	var meta cache.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, int64(1), meta.ArticleCount)
	assert.Equal(t, int64(4), meta.TotalSize)
}
