// Package registry holds the read-only set of feed sources the aggregator
// polls. A Registry is built once at startup and passed to its consumers.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"haber-radar/internal/domain/category"
	"haber-radar/internal/domain/entity"
)

//go:embed sources.yaml
var defaultSources []byte

// ErrEmpty is returned when a source file declares no sources.
var ErrEmpty = errors.New("registry: no sources defined")

// File is the YAML layout of a sources file.
//
//	sources:
//	  - key: ntv-ekonomi
//	    url: https://www.ntv.com.tr/ekonomi.rss
//	    category: Ekonomi
//	    name: NTV
type File struct {
	Sources []entity.Source `yaml:"sources"`
}

// Registry is an immutable, ordered collection of sources. It is safe for
// concurrent use.
type Registry struct {
	sources []entity.Source
	byKey   map[string]int
}

// New validates sources and builds a Registry. Keys must be unique and
// categories must be known.
func New(sources []entity.Source) (*Registry, error) {
	if len(sources) == 0 {
		return nil, ErrEmpty
	}
	r := &Registry{
		sources: make([]entity.Source, 0, len(sources)),
		byKey:   make(map[string]int, len(sources)),
	}
	for i, s := range sources {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("source #%d: %w", i, err)
		}
		if s.Category != "" {
			canon := category.Canonical(s.Category)
			if canon == "" {
				return nil, fmt.Errorf("source %q: %w", s.Key, &entity.ValidationError{
					Field:   "category",
					Message: fmt.Sprintf("unknown category %q", s.Category),
				})
			}
			s.Category = canon
		}
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("source %q: %w", s.Key, &entity.ValidationError{
				Field:   "key",
				Message: "duplicate key",
			})
		}
		r.byKey[s.Key] = len(r.sources)
		r.sources = append(r.sources, s)
	}
	return r, nil
}

// Parse decodes a YAML sources document.
func Parse(rd io.Reader) (*Registry, error) {
	var f File
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return New(f.Sources)
}

// Encode writes sources as a YAML sources document that Parse accepts.
func Encode(w io.Writer, sources []entity.Source) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Sources: sources}); err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	return enc.Close()
}

// LoadFile reads a YAML sources file from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Default returns the registry built from the embedded sources.yaml.
func Default() (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(defaultSources, &f); err != nil {
		return nil, fmt.Errorf("decode embedded sources: %w", err)
	}
	return New(f.Sources)
}

// Load returns the registry from path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// All returns every source in declaration order. The slice is a copy.
func (r *Registry) All() []entity.Source {
	out := make([]entity.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByCategory returns the sources declared for the given category.
// The category name is matched case- and diacritic-insensitively.
func (r *Registry) ByCategory(name string) []entity.Source {
	canon := category.Canonical(name)
	if canon == "" {
		return nil
	}
	var out []entity.Source
	for _, s := range r.sources {
		if s.Category == canon {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the source with the given key.
func (r *Registry) Get(key string) (entity.Source, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return entity.Source{}, false
	}
	return r.sources[i], true
}

// Len returns the number of sources.
func (r *Registry) Len() int { return len(r.sources) }

// Categories returns the distinct categories present in the registry, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	for _, s := range r.sources {
		if s.Category != "" {
			seen[s.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
