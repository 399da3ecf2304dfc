package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/news/search":               "/news/search",
		"/news/search?q=dolar":       "/news/search",
		"/news/recent/":              "/news/recent",
		"/news/category/Ekonomi":     "/news/category/:category",
		"/news/category/spor/":       "/news/category/:category",
		"/news/category/":            "other",
		"/health":                    "/health",
		"/metrics":                   "/metrics",
		"/wp-admin/setup-config.php": "other",
		"/":                          "other",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}
