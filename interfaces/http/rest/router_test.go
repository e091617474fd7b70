package rest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mysre-backend/infrastructure/config"
)

func TestCORSReadsDynamicOriginsPerRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extraOrigins: []\n"), 0o644))

	dynamic, err := config.NewDynamicProvider(path, zap.NewNop())
	require.NoError(t, err)
	defer dynamic.Close()

	cfg := &config.Config{AllowedOrigins: []string{"https://app.example.com"}}
	passthrough := func(next http.Handler) http.Handler { return next }
	handler := Setup(cfg, dynamic, nil, passthrough, Handlers{}, zap.NewNop())

	allowed := func(origin string) bool {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Header().Get("Access-Control-Allow-Origin") == origin
	}

	assert.True(t, allowed("https://app.example.com"))
	assert.False(t, allowed("https://staging.example.com"))

	require.NoError(t, os.WriteFile(path, []byte("extraOrigins:\n  - https://staging.example.com\n"), 0o644))
	require.Eventually(t, func() bool {
		return allowed("https://staging.example.com")
	}, 3*time.Second, 50*time.Millisecond, "extraOrigins edit never took effect")

	assert.True(t, allowed("https://app.example.com"))
}
