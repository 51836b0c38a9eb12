// Package driver orchestrates one compilation run: it classifies and
// queues input files, drives the module front end through its hooks,
// maintains the registry of every type declaration seen, and triggers glue
// compilation once all modules are known. One Driver owns all of that
// state; nothing here is shared across runs or goroutines.
package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"gluec/internal/artifact"
	"gluec/internal/ast"
	"gluec/internal/glue"
	"gluec/internal/spicy"
)

// State tracks the pipeline through its one-way lifecycle. Glue
// compilation runs exactly once; re-entering the finished hook afterwards
// is an error, not a silent no-op.
type State uint8

const (
	StateUninitialized State = iota
	StateModulesLoading
	StateGlueCompiled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateModulesLoading:
		return "modules-loading"
	case StateGlueCompiled:
		return "glue-compiled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Driver owns the type registry and the glue compiler for one run.
type Driver struct {
	compiler *spicy.Compiler
	glue     *glue.Compiler
	log      zerolog.Logger

	state       State
	types       map[string]TypeInfo
	publicEnums []TypeInfo // auto-export set, appended pre-resolution only
	result      *spicy.Result

	// NewTypeHook runs once per captured TypeInfo, both pre- and
	// post-resolution; extensions may observe registration here.
	NewTypeHook func(TypeInfo)
}

// New wires a driver and its glue compiler together. The glue compiler
// resolves types through the driver from then on.
func New(g *glue.Compiler, opts spicy.Options, log zerolog.Logger) *Driver {
	d := &Driver{
		compiler: spicy.New(opts, log),
		glue:     g,
		log:      log,
		state:    StateUninitialized,
		types:    make(map[string]TypeInfo),
	}
	g.Init(d)
	return d
}

func (d *Driver) State() State              { return d.state }
func (d *Driver) Glue() *glue.Compiler      { return d.glue }
func (d *Driver) Compiler() *spicy.Compiler { return d.compiler }

// LoadFile schedules one input for the run. The path is resolved first
// against relativeTo (when given and the path is relative), then as-is,
// then across the library search paths. The extension picks the handling:
// .evt goes to the glue compiler immediately, everything else is queued
// for compilation. Loading the same normalized path twice is idempotent.
func (d *Driver) LoadFile(file string, relativeTo string) error {
	path, err := d.resolvePath(file, relativeTo)
	if err != nil {
		return err
	}
	if d.state == StateUninitialized {
		d.state = StateModulesLoading
	}

	switch ext := filepath.Ext(path); ext {
	case ".evt":
		d.log.Debug().Str("path", path).Msg("loading EVT file")
		if err := d.glue.LoadEvtFile(path); err != nil {
			return fmt.Errorf("error loading EVT file %s: %w", path, err)
		}
		return nil

	case ".spicy":
		d.log.Debug().Str("path", path).Msg("loading module source")
		d.compiler.AddModule(path)
		return nil

	case ".hlt":
		d.log.Debug().Str("path", path).Msg("loading intermediate module")
		d.compiler.AddIntermediate(path)
		return nil

	case ".hlto":
		d.log.Debug().Str("path", path).Msg("loading precompiled object")
		d.compiler.AddLinked(path)
		return nil

	case ".cc", ".cxx":
		d.log.Debug().Str("path", path).Msg("loading native code")
		d.compiler.AddNative(path)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownFileType, path)
	}
}

func (d *Driver) resolvePath(file, relativeTo string) (string, error) {
	if relativeTo != "" && !filepath.IsAbs(file) {
		if p := filepath.Join(relativeTo, file); fileExists(p) {
			return p, nil
		}
	}
	if fileExists(file) {
		return file, nil
	}
	for _, dir := range d.compiler.Options().LibraryPaths {
		if p := filepath.Join(dir, file); fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, file)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Compile runs the whole pipeline over every queued input. With nothing
// queued it succeeds immediately and the glue compiler is never invoked.
func (d *Driver) Compile() error {
	if !d.compiler.HasInputs() {
		return nil
	}

	d.log.Debug().Msg("running compilation")
	result, err := d.compiler.Compile(spicy.Hooks{
		PreCompilation:      d.preCompilation,
		PostCompilation:     d.postCompilation,
		CompilationFinished: d.compilationFinished,
		InitRuntime:         d.initRuntime,
		FinishRuntime:       d.finishRuntime,
	})
	if err != nil {
		d.state = StateFailed
		return err
	}
	d.result = result
	d.log.Debug().Msg("compilation done")
	return nil
}

// registerDeclarations is the explicit two-pass capture stage: it runs once
// per module with resolved=false before cross-module resolution, and once
// with resolved=true after. Post-resolution entries overwrite earlier ones
// for the same ID.
func (d *Driver) registerDeclarations(mod *ast.Module, resolved bool) {
	if mod.Ext != ".spicy" {
		return
	}
	if mod.Path == "" {
		// modules constructed in memory are never registered
		return
	}

	for _, ti := range collectTypes(mod, resolved) {
		d.log.Debug().
			Str("type", ti.ID).
			Bool("resolved", resolved).
			Msg("captured type")
		d.types[ti.ID] = ti

		if !resolved && isPublicEnum(ti) {
			d.log.Debug().Str("type", ti.ID).Msg("automatically exporting public enum")
			d.publicEnums = append(d.publicEnums, ti)
		}

		if d.NewTypeHook != nil {
			d.NewTypeHook(ti)
		}
	}
}

func (d *Driver) preCompilation(mod *ast.Module) {
	d.registerDeclarations(mod, false)
}

func (d *Driver) postCompilation(mod *ast.Module) {
	d.registerDeclarations(mod, true)
	if mod.Ext == ".spicy" && mod.Path != "" {
		d.glue.AddSpicyModule(mod.ID, mod.Path)
	}
}

// compilationFinished fires once after every module went through both
// passes. The state machine makes double finalization a hard error.
func (d *Driver) compilationFinished() error {
	switch d.state {
	case StateGlueCompiled:
		return fmt.Errorf("%w: glue compilation already ran", ErrBadState)
	case StateFailed:
		return fmt.Errorf("%w: pipeline already failed", ErrBadState)
	}

	if err := d.glue.Compile(); err != nil {
		d.state = StateFailed
		return fmt.Errorf("glue compilation failed: %w", err)
	}
	d.state = StateGlueCompiled
	return nil
}

func (d *Driver) initRuntime() {
	d.log.Debug().Msg("runtime init")
}

func (d *Driver) finishRuntime() {
	d.log.Debug().Msg("runtime done")
}

// Link writes the combined artifact: every compiled module's declaration
// table, modules merged from .hlto inputs, native snippets, and the glue
// plan. Compile must have succeeded first.
func (d *Driver) Link(outputPath string) error {
	if d.state != StateGlueCompiled || d.result == nil {
		return fmt.Errorf("%w: nothing compiled to link", ErrBadState)
	}

	opts := d.compiler.Options()
	bundle := &artifact.Bundle{
		Debug:     opts.Debug,
		Optimized: opts.Optimize,
		Glue:      *d.glue.Plan(),
		Native:    d.result.Native,
	}
	for _, mod := range d.result.Modules {
		bundle.Modules = append(bundle.Modules, artifact.FromModule(mod))
	}
	bundle.Modules = append(bundle.Modules, d.result.Precompiled...)

	d.log.Debug().Str("path", outputPath).Int("modules", len(bundle.Modules)).Msg("writing linked object")
	return artifact.Write(outputPath, bundle)
}
