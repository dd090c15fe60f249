// Package registry loads the read-only domain registry consumed by the
// gating engine and rubric scorer. The registry is constructed once at
// startup and injected; nothing in the core writes to it.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is the per-domain flag set. Zero value means "nothing known".
type Entry struct {
	StateOwned        bool `json:"state_owned"`
	PartyOwned        bool `json:"party_owned"`
	StateMedia        bool `json:"state_media"`
	Independent       bool `json:"independent"`
	KnownBad          bool `json:"known_bad"`
	SatirePublisher   bool `json:"satire_publisher"`
	FrequentMisinfo   bool `json:"frequent_misinfo"`
	TertiaryReference bool `json:"tertiary_reference"`
}

// OfficialControl reports whether the registry marks the domain as
// state/party/official-controlled.
func (e Entry) OfficialControl() bool {
	return e.StateOwned || e.PartyOwned || e.StateMedia
}

// Registry maps registrable domains to entries.
type Registry struct {
	entries map[string]Entry
}

// Empty returns a registry with no entries, for tests and registry-less runs.
func Empty() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// New builds a registry from an explicit entry map (synthetic registries
// in tests).
func New(entries map[string]Entry) *Registry {
	m := make(map[string]Entry, len(entries))
	for d, e := range entries {
		m[d] = e
	}
	return &Registry{entries: m}
}

// Load reads a JSON registry file: {"example.com": {"state_owned": true, ...}}.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return New(entries), nil
}

// Lookup returns the entry for a registrable domain, or the zero entry.
func (r *Registry) Lookup(domain string) Entry {
	if r == nil {
		return Entry{}
	}
	return r.entries[domain]
}

// Entry returns the entry for a registrable domain and whether the
// domain is registered at all.
func (r *Registry) Entry(domain string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[domain]
	return e, ok
}

// Len reports the number of registered domains.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
