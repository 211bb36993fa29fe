// Package prefs persists per-user editor preferences between runs.
//
// Preferences are stored through gdata as a YAML document. A Store created
// with a nil manager keeps preferences in memory only.
package prefs

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// MaxRecent is the number of recent projects remembered.
const MaxRecent = 10

const (
	prefsObject   = "prefs"
	prefsProperty = "editor"
)

// Prefs are the remembered preferences.
type Prefs struct {
	Color  string   `yaml:"color"`
	Recent []string `yaml:"recent"`
}

// Store loads and saves Prefs.
type Store struct {
	manager *gdata.Manager
	prefs   Prefs
}

// Open opens the platform data directory for appName. Failure to open it is
// returned alongside a usable memory-only store.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return New(nil), fmt.Errorf("open preferences: %w", err)
	}
	s := New(m)
	return s, s.Load()
}

// New returns a store backed by m. m may be nil.
func New(m *gdata.Manager) *Store {
	return &Store{manager: m}
}

// Persistent reports whether Save writes to disk.
func (s *Store) Persistent() bool { return s.manager != nil }

// Load reads the saved preferences. Missing data leaves the zero value.
func (s *Store) Load() error {
	s.prefs = Prefs{}
	if s.manager == nil || !s.manager.ObjectPropExists(prefsObject, prefsProperty) {
		return nil
	}
	data, err := s.manager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	var p Prefs
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}
	if len(p.Recent) > MaxRecent {
		p.Recent = p.Recent[:MaxRecent]
	}
	s.prefs = p
	return nil
}

// Save writes the preferences. It is a no-op for memory-only stores.
func (s *Store) Save() error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.manager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Color returns the last used placement color, or "".
func (s *Store) Color() string { return s.prefs.Color }

// SetColor records the last used placement color.
func (s *Store) SetColor(c string) { s.prefs.Color = c }

// Recent returns recently opened projects, most recent first.
func (s *Store) Recent() []string { return slices.Clone(s.prefs.Recent) }

// Touch moves path to the front of the recent list.
func (s *Store) Touch(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	recent := slices.DeleteFunc(s.prefs.Recent, func(p string) bool { return p == path })
	recent = append([]string{path}, recent...)
	if len(recent) > MaxRecent {
		recent = recent[:MaxRecent]
	}
	s.prefs.Recent = recent
}
