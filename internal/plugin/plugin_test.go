package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDiscoverExplicitBase(t *testing.T) {
	base := t.TempDir()
	p := Discover(base, zerolog.Nop())
	if p.Base != base || !p.BuildTree {
		t.Errorf("paths = %+v", p)
	}
	if p.Modules != filepath.Join(base, "modules") {
		t.Errorf("Modules = %s", p.Modules)
	}
	if p.Scripts != filepath.Join(base, "scripts") {
		t.Errorf("Scripts = %s", p.Scripts)
	}
}

func TestDiscoverIgnoresInvalidExplicitBase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	p := Discover(missing, zerolog.Nop())
	if p.Base == missing {
		t.Error("invalid explicit base was accepted")
	}
}

func TestSearchPathsOrderAndEnv(t *testing.T) {
	p := Discover(t.TempDir(), zerolog.Nop())

	env := strings.Join([]string{"/env/a", "", "/env/b"}, string(os.PathListSeparator))
	t.Setenv(EnvSearchPath, env)

	got := p.SearchPaths([]string{"/manifest/x"})
	want := []string{p.Modules, "/manifest/x", "/env/a", "/env/b"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSearchPathsWithoutEnv(t *testing.T) {
	p := Discover(t.TempDir(), zerolog.Nop())
	t.Setenv(EnvSearchPath, "")

	got := p.SearchPaths(nil)
	if len(got) != 1 || got[0] != p.Modules {
		t.Errorf("paths = %v", got)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "gluec.toml")
	if err := os.WriteFile(manifest, []byte(""), 0o600); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || path != manifest {
		t.Errorf("found %q (ok=%v), want %q", path, ok, manifest)
	}
}

func TestFindManifestMissing(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("found a manifest in an empty tree")
	}
}

func TestLoadManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	content := `
[plugin]
base = "build"

[search]
paths = ["modules", "/abs/path"]

[build]
debug = true
skip_validation = true
`
	path := filepath.Join(dir, "gluec.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Plugin.Base != filepath.Join(dir, "build") {
		t.Errorf("Base = %s", m.Plugin.Base)
	}
	if m.Search.Paths[0] != filepath.Join(dir, "modules") {
		t.Errorf("Paths[0] = %s", m.Search.Paths[0])
	}
	if m.Search.Paths[1] != "/abs/path" {
		t.Errorf("Paths[1] = %s", m.Search.Paths[1])
	}
	if !m.Build.Debug || !m.Build.SkipValidation || m.Build.Optimize {
		t.Errorf("build section = %+v", m.Build)
	}
}

func TestLoadNearest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gluec.toml"), []byte("[build]\noptimize = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadNearest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !m.Build.Optimize {
		t.Errorf("manifest = %+v (ok=%v)", m, ok)
	}

	if _, ok, err := LoadNearest(t.TempDir()); err != nil || ok {
		t.Errorf("empty tree: ok=%v err=%v", ok, err)
	}
}

func TestLoadManifestBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gluec.toml")
	if err := os.WriteFile(path, []byte("[plugin\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("malformed manifest parsed without error")
	}
}
