//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
admin:
  password: letmein
  jwt_secret: s3cret
ai:
  text_provider: noop
`), false)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "noop", cfg.AI.ImageProvider)
	assert.Equal(t, 0.8, cfg.AI.Temperature)
	assert.Equal(t, 2*time.Minute, cfg.AI.ImageTimeout)
	assert.Equal(t, 2.0, cfg.Export.Scale)
	assert.Equal(t, 95, cfg.Export.Quality)
	assert.Equal(t, "scenario-questions.pdf", cfg.Export.FileName)
	assert.Equal(t, "sq_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseAnthropicTextFallsBackToNoopImages(t *testing.T) {
	cfg, err := Parse([]byte(`
admin: {password: x, jwt_secret: y}
ai: {text_provider: anthropic, anthropic_key: k}
`), false)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.AI.ImageProvider)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing admin password", `ai: {text_provider: noop}`, "admin.password"},
		{"missing jwt secret outside dev", `{admin: {password: x}, ai: {text_provider: noop}}`, "admin.jwt_secret"},
		{"redis without url", `{admin: {password: x, jwt_secret: y}, store: {driver: redis}, ai: {text_provider: noop}}`, "redis.url"},
		{"unknown store", `{admin: {password: x, jwt_secret: y}, store: {driver: sqlite}, ai: {text_provider: noop}}`, "store.driver"},
		{"gemini without key", `{admin: {password: x, jwt_secret: y}}`, "ai.gemini_key"},
		{"unknown image provider", `{admin: {password: x, jwt_secret: y}, ai: {text_provider: noop, image_provider: midjourney}}`, "ai.image_provider"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml), false)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), "error %q should mention %q", err, tc.want)
		})
	}
}

func TestParseDevFillsJWTSecret(t *testing.T) {
	cfg, err := Parse([]byte(`{admin: {password: x}, ai: {text_provider: noop}}`), true)
	require.NoError(t, err)
	assert.True(t, cfg.Runtime.Dev)
	assert.NotEmpty(t, cfg.Admin.JWTSecret)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin: {password: x, jwt_secret: y}\nai: {text_provider: noop}\nhttp: {addr: ':9000'}\n"), 0o600))

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)
}
