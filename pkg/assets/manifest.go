// Package assets resolves fingerprinted asset paths for the admin
// console and publishes built bundles.
//
// A build step writes manifest.json mapping source asset names to
// their hashed versions:
//
//	{
//	  "addrnav.js": "addrnav.a1b2c3d4.min.js",
//	  "console.css": "console.e5f6g7h8.css"
//	}
//
// Pages resolve "addrnav.js" through a Resolver to get the deployable
// URL, base-path prefix included. The Publisher ships the built files
// to S3 for CDN serving.
package assets

import (
	"encoding/json"
	"os"
	"sync"
)

// Manifest maps source asset paths to fingerprinted paths.
// It is safe for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// Load reads a manifest.json file.
// In development you may ignore the error and use a passthrough
// resolver instead.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return &Manifest{entries: entries}, nil
}

// Resolve returns the fingerprinted path for source, or source itself
// when no entry exists.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Has reports whether the manifest contains source.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Set adds or updates an entry. Primarily useful for tests and for
// build tooling assembling a manifest in memory.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]string)
	}
	m.entries[source] = resolved
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
