package entity

import (
	"fmt"
	"net/url"
)

// MaxURLLength bounds every URL the service fetches or stores.
const MaxURLLength = 2048

// ValidateURL accepts absolute http(s) URLs with a host and at most
// MaxURLLength bytes. Failures are *ValidationError on field "url".
func ValidateURL(rawURL string) error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Field: "url", Message: fmt.Sprintf(format, args...)}
	}
	switch {
	case rawURL == "":
		return invalid("url is required")
	case len(rawURL) > MaxURLLength:
		return invalid("url exceeds %d bytes", MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return invalid("malformed url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return invalid("url has no host")
	}
	return nil
}

// IsAbsoluteHTTPURL reports whether ValidateURL accepts rawURL.
func IsAbsoluteHTTPURL(rawURL string) bool {
	return ValidateURL(rawURL) == nil
}
