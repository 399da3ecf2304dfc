package entity

import "strings"

// Source is a static registry entry describing one syndication feed.
// Sources are defined at startup and never mutated afterwards, so they are
// safe for unsynchronized concurrent reads.
type Source struct {
	Key      string `yaml:"key" json:"key"`
	FeedURL  string `yaml:"url" json:"feedUrl"`
	Category string `yaml:"category" json:"category"`
	Name     string `yaml:"name" json:"name"`
}

// Validate validates the Source entity fields.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return &ValidationError{Field: "key", Message: "source key is required"}
	}
	if err := ValidateURL(s.FeedURL); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}
	return nil
}
