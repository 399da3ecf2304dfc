// Package pathutil collapses request paths into route templates so metric
// labels keep a bounded cardinality.
package pathutil

import "strings"

// prefixTemplates maps a path prefix carrying a free-form segment to the
// label used for it.
var prefixTemplates = []struct {
	prefix   string
	template string
}{
	{"/news/category/", "/news/category/:category"},
}

var knownPaths = map[string]bool{
	"/news/search":  true,
	"/news/recent":  true,
	"/health":       true,
	"/health/ready": true,
	"/health/live":  true,
	"/metrics":      true,
	"/categories":   true,
}

// NormalizePath returns the route template for path. Unknown paths map to
// "other".
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i != -1 {
		path = path[:i]
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
	}
	if knownPaths[path] {
		return path
	}
	for _, p := range prefixTemplates {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			return p.template
		}
	}
	return "other"
}
