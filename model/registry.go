package model

import (
	"sort"
	"sync"
	"time"
)

// Config carries the provider-agnostic settings a Factory needs. Fields not
// relevant to a given provider are ignored by its factory.
type Config struct {
	// Model overrides the provider's default model when set.
	Model string
	// APIKey authenticates cloud providers.
	APIKey string
	// Host points local providers at their server (Ollama).
	Host string
	// Timeout bounds a single backend round trip. Zero means the SDK
	// default.
	Timeout time.Duration
}

// Factory constructs a Provider from a Config. Factories validate their
// configuration eagerly and return *ConfigError before any network call.
type Factory func(cfg Config) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterProvider makes a provider constructor available under the given
// identifier. Adapters call this from init, so selection is a static map
// resolved at startup.
func RegisterProvider(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New constructs the provider registered under name, or returns a
// *ProviderNotFoundError.
func New(name string, cfg Config) (Provider, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, &ProviderNotFoundError{Provider: name}
	}
	return f(cfg)
}

// Providers returns the registered provider identifiers, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
