// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"hcp-calibrate/internal/session"
)

const prefsFile = "preferences.json"

// Keys for the persisted calibration scalars.
const (
	KeyLower   = "calibrate_hcp/lower"
	KeyUpper   = "calibrate_hcp/upper"
	KeyLattice = "calibrate_hcp/lattice"
	KeyRadius  = "calibrate_hcp/radius"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/hcp-calibrate/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "hcp-calibrate", prefsFile))
}

// LoadFrom reads preferences from an explicit path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// IntWithFallback returns an int preference, or fallback if not set.
func (p *Prefs) IntWithFallback(key string, fallback int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return fallback
}

// SetInt stores an int preference.
func (p *Prefs) SetInt(key string, val int) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// SessionParams assembles the calibration parameters from the stored
// preferences, falling back to the defaults for missing keys.
func (p *Prefs) SessionParams() session.Params {
	def := session.DefaultParams()
	return session.Params{
		Lower:   p.FloatWithFallback(KeyLower, def.Lower),
		Upper:   p.FloatWithFallback(KeyUpper, def.Upper),
		Lattice: p.FloatWithFallback(KeyLattice, def.Lattice),
		Radius:  p.IntWithFallback(KeyRadius, def.Radius),
	}
}

// StoreSessionParams writes the calibration parameters back, to be
// persisted with Save at session end.
func (p *Prefs) StoreSessionParams(params session.Params) {
	p.SetFloat(KeyLower, params.Lower)
	p.SetFloat(KeyUpper, params.Upper)
	p.SetFloat(KeyLattice, params.Lattice)
	p.SetInt(KeyRadius, params.Radius)
}
