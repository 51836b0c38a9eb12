package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed gluec.toml. All sections are optional; a missing
// manifest behaves like an empty one.
type Manifest struct {
	Plugin struct {
		Base string `toml:"base"`
	} `toml:"plugin"`
	Search struct {
		Paths []string `toml:"paths"`
	} `toml:"search"`
	Build struct {
		Debug          bool `toml:"debug"`
		Optimize       bool `toml:"optimize"`
		SkipValidation bool `toml:"skip_validation"`
	} `toml:"build"`
}

// FindManifest walks up from startDir to locate gluec.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "gluec.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses a gluec.toml file. Search paths are resolved
// relative to the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, p := range m.Search.Paths {
		if !filepath.IsAbs(p) {
			m.Search.Paths[i] = filepath.Join(base, p)
		}
	}
	if m.Plugin.Base != "" && !filepath.IsAbs(m.Plugin.Base) {
		m.Plugin.Base = filepath.Join(base, m.Plugin.Base)
	}
	return m, nil
}

// LoadNearest finds and parses the nearest gluec.toml above startDir. A
// missing manifest is not an error.
func LoadNearest(startDir string) (Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Manifest{}, ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return Manifest{}, true, err
	}
	return m, true, nil
}
