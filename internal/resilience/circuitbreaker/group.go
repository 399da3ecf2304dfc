package circuitbreaker

import "sync"

// Group lazily creates one circuit breaker per key, so that a single
// failing feed host does not open the circuit for every other host.
// It is safe for concurrent use.
type Group struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	configFn func(key string) Config
}

// NewGroup returns a Group that builds breakers from configFn.
func NewGroup(configFn func(key string) Config) *Group {
	return &Group{
		breakers: make(map[string]*CircuitBreaker),
		configFn: configFn,
	}
}

// Get returns the breaker for key, creating it on first use.
func (g *Group) Get(key string) *CircuitBreaker {
	g.mu.Lock()
	defer g.mu.Unlock()
	cb, ok := g.breakers[key]
	if !ok {
		cb = New(g.configFn(key))
		g.breakers[key] = cb
	}
	return cb
}

// OpenKeys returns the keys whose circuit is currently open.
func (g *Group) OpenKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var keys []string
	for k, cb := range g.breakers {
		if cb.IsOpen() {
			keys = append(keys, k)
		}
	}
	return keys
}
