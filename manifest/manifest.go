// Package manifest handles blocks.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a blocks.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Run     Run     `toml:"run"`
	Cache   Cache   `toml:"cache"`

	// Dir is the directory containing the blocks.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project holds project metadata.
type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Run holds execution options. StackSize overrides the VM's operand
// stack capacity; zero keeps the default of 4096.
type Run struct {
	Trace     bool `toml:"trace"`
	StackSize int  `toml:"stack-size"`
}

// Cache configures the compile cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load parses a blocks.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "blocks.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.Dir = dir

	return &m, nil
}

// FindAndLoad walks up from startDir to find a blocks.toml file.
// Returns nil without error when no manifest exists.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, "blocks.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// CachePath returns the configured cache location, defaulting to
// .blocks/cache.db under the manifest directory.
func (m *Manifest) CachePath() string {
	if m.Cache.Path != "" {
		if filepath.IsAbs(m.Cache.Path) {
			return m.Cache.Path
		}
		return filepath.Join(m.Dir, m.Cache.Path)
	}
	return filepath.Join(m.Dir, ".blocks", "cache.db")
}

// EntryPath returns the absolute path of the project entry file, or ""
// when no entry is configured.
func (m *Manifest) EntryPath() string {
	if m.Project.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Project.Entry) {
		return m.Project.Entry
	}
	return filepath.Join(m.Dir, m.Project.Entry)
}
