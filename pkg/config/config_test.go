package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, "XSRF-TOKEN", cfg.Backend.CSRFCookie)
	assert.Equal(t, "X-XSRF-TOKEN", cfg.Backend.CSRFHeader)
	assert.Equal(t, int64(10<<20), cfg.Backend.MaxResponseBytes)
	assert.Equal(t, []string{"/login"}, cfg.Session.PublicPaths)
	assert.Equal(t, 5*time.Second, cfg.Poller.Interval)
	assert.Equal(t, []string{".zip", ".pt"}, cfg.Uploads.AllowedExtensions)
	assert.Equal(t, "z_best.pt", cfg.Uploads.ModelWeightsName)
	assert.False(t, cfg.Redis.Enabled)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("BACKEND_BASE_URL", "http://grader:9000/")
	v.Set("POLL_INTERVAL", "250ms")
	v.Set("UPLOAD_ALLOWED_EXTENSIONS", ".ZIP, .pt ,")
	v.Set("SESSION_RESOLVE_TIMEOUT", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, "http://grader:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Poller.Interval)
	assert.Equal(t, []string{".zip", ".pt"}, cfg.Uploads.AllowedExtensions)
	assert.Equal(t, 10*time.Second, cfg.Session.ResolveTimeout)
}
