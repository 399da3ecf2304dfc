package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8*time.Second, cfg.Timeout)
	assert.Equal(t, int64(1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestImageFetchConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ImageFetchConfig)
		errMsg string
	}{
		{"zero timeout", func(c *ImageFetchConfig) { c.Timeout = 0 }, "timeout"},
		{"body too small", func(c *ImageFetchConfig) { c.MaxBodySize = 100 }, "max body size"},
		{"body too large", func(c *ImageFetchConfig) { c.MaxBodySize = 50 * 1024 * 1024 }, "max body size"},
		{"negative redirects", func(c *ImageFetchConfig) { c.MaxRedirects = -1 }, "max redirects"},
		{"too many redirects", func(c *ImageFetchConfig) { c.MaxRedirects = 11 }, "max redirects"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("IMAGE_FETCH_TIMEOUT", "3s")
	t.Setenv("IMAGE_FETCH_MAX_BODY_SIZE", "65536")
	t.Setenv("IMAGE_FETCH_MAX_REDIRECTS", "1")
	t.Setenv("IMAGE_FETCH_DENY_PRIVATE_IPS", "false")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, int64(65536), cfg.MaxBodySize)
	assert.Equal(t, 1, cfg.MaxRedirects)
	assert.False(t, cfg.DenyPrivateIPs)
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("IMAGE_FETCH_MAX_REDIRECTS", "42")

	cfg, err := LoadConfigFromEnv()
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
