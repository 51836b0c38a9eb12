package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// markerFile flags a build tree: when it sits next to the executable the
// layout is the development one, with modules and scripts still in place
// under the build directory.
const markerFile = ".gluec-build"

// EnvSearchPath extends (never replaces) the module search path. Entries
// are separated with the platform list separator.
const EnvSearchPath = "GLUEC_PATH"

// Paths describes the resolved plugin base layout.
type Paths struct {
	// Base is the plugin base directory.
	Base string
	// Modules holds the bundled *.spicy/*.evt support modules.
	Modules string
	// Scripts holds host-side scripts shipped with the plugin.
	Scripts string
	// Prefix is the installation prefix (equals Base in a build tree).
	Prefix string
	// BuildTree is true when running out of an uninstalled build directory.
	BuildTree bool
}

// Discover resolves the plugin base directory. An explicit base (from the
// manifest or a flag) wins when it is valid; an invalid one is logged and
// ignored. Otherwise the layout is derived from the executable location:
// a build tree when the marker file is present, the installed prefix
// layout when not.
func Discover(explicit string, log zerolog.Logger) Paths {
	if explicit != "" {
		if err := validateBase(explicit); err != nil {
			log.Warn().Str("dir", explicit).Err(err).
				Msg("ignoring invalid plugin base directory")
		} else {
			return layoutAt(explicit, true)
		}
	}

	exeDir := executableDir()
	if _, err := os.Stat(filepath.Join(exeDir, markerFile)); err == nil {
		return layoutAt(exeDir, true)
	}

	prefix := filepath.Dir(exeDir)
	p := layoutAt(filepath.Join(prefix, "share", "gluec"), false)
	p.Prefix = prefix
	return p
}

func layoutAt(base string, buildTree bool) Paths {
	return Paths{
		Base:      base,
		Modules:   filepath.Join(base, "modules"),
		Scripts:   filepath.Join(base, "scripts"),
		Prefix:    base,
		BuildTree: buildTree,
	}
}

func validateBase(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("directory does not exist")
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// SearchPaths assembles the module search path: the bundled modules
// directory first, then manifest entries, then GLUEC_PATH entries.
func (p Paths) SearchPaths(manifest []string) []string {
	out := []string{p.Modules}
	out = append(out, manifest...)
	if env := os.Getenv(EnvSearchPath); env != "" {
		for _, entry := range filepath.SplitList(env) {
			if entry != "" {
				out = append(out, entry)
			}
		}
	}
	return out
}
