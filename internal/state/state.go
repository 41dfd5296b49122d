// Package state persists the browse session between runs so the dex
// reopens where the user left off.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pidex/pidex/internal/config"
)

const DefaultPath = "~/.pidex/state.yaml"

// State is the saved browse session.
type State struct {
	LastUpdated time.Time `yaml:"last_updated"`

	// List screen position
	ListCursor     int    `yaml:"list_cursor,omitempty"`
	ListTypeFilter string `yaml:"list_type_filter,omitempty"`
	ListGeneration int    `yaml:"list_generation,omitempty"`

	// Last opened detail entry; 0 means none
	LastViewedID int `yaml:"last_viewed_id,omitempty"`
}

// New returns a fresh session.
func New() *State {
	return &State{}
}

// Load reads the session from disk. A missing file yields a fresh session.
func Load(path string) (*State, error) {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	s := &State{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return s, nil
}

// Save writes the session to disk.
func (s *State) Save(path string) error {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	s.LastUpdated = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
