// Package fetcher looks up representative images of article pages. It is
// the optional enrichment step of the aggregator and is disabled unless
// IMAGE_ENRICH_ENABLED is set.
package fetcher

import (
	"fmt"
	"time"

	"haber-radar/pkg/config"
)

// ImageFetchConfig controls page requests made by OGImageFetcher.
type ImageFetchConfig struct {
	// Timeout bounds one page request. Default: 8s
	Timeout time.Duration

	// MaxBodySize is the number of bytes read from a page. Image meta tags
	// live in <head>, so pages are cut off rather than rejected when larger.
	// Default: 1MB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects followed. Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects pages and redirect targets resolving to
	// private addresses. Default: true
	DenyPrivateIPs bool

	// UserAgent sent with page requests.
	UserAgent string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() ImageFetchConfig {
	return ImageFetchConfig{
		Timeout:        8 * time.Second,
		MaxBodySize:    1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "Mozilla/5.0 (compatible; HaberRadar/1.0; +https://github.com/haber-radar)",
	}
}

// Validate checks that the configuration is usable.
func (c *ImageFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	const minBody, maxBody = int64(4 * 1024), int64(10 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads IMAGE_FETCH_TIMEOUT, IMAGE_FETCH_MAX_BODY_SIZE,
// IMAGE_FETCH_MAX_REDIRECTS and IMAGE_FETCH_DENY_PRIVATE_IPS. The result is
// validated; an invalid combination returns the defaults and an error.
func LoadConfigFromEnv() (ImageFetchConfig, error) {
	def := DefaultConfig()
	cfg := ImageFetchConfig{
		Timeout:        config.GetEnvDuration("IMAGE_FETCH_TIMEOUT", def.Timeout),
		MaxBodySize:    int64(config.GetEnvInt("IMAGE_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:   config.GetEnvInt("IMAGE_FETCH_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs: config.GetEnvBool("IMAGE_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		UserAgent:      config.GetEnvString("IMAGE_FETCH_USER_AGENT", def.UserAgent),
	}
	if err := cfg.Validate(); err != nil {
		return def, fmt.Errorf("invalid image fetch configuration: %w", err)
	}
	return cfg, nil
}
