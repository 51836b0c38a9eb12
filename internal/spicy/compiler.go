// Package spicy is the front-end facade the driver compiles through. It
// queues input files, parses parser-description modules into their
// declaration trees, resolves cross-module type references, and invokes the
// driver's hooks at the same points a full toolchain would: once per module
// before resolution, once per module after, and once when the whole run is
// done. Byte-level parsing semantics of units stay out of scope; only the
// declaration surface is interpreted.
package spicy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"gluec/internal/artifact"
	"gluec/internal/ast"
	"gluec/internal/diag"
	"gluec/internal/source"
)

// ErrCompile marks a module compilation failure (syntax or resolution).
// Diagnostics with exact positions accompany it in the compiler's bag.
var ErrCompile = errors.New("compile error")

// Options configure a compilation run.
type Options struct {
	LibraryPaths   []string // searched by the driver when resolving inputs
	Debug          bool     // include debug instrumentation in the artifact
	Optimize       bool
	SkipValidation bool // demote unresolved references to warnings
	MaxDiagnostics int
}

// Hooks are the driver call-ins; any may be nil.
type Hooks struct {
	// PreCompilation runs once per parsed module before cross-module
	// resolution.
	PreCompilation func(*ast.Module)
	// PostCompilation runs once per module after the full program resolved.
	PostCompilation func(*ast.Module)
	// CompilationFinished runs once after every module went through both
	// passes. An error aborts the run.
	CompilationFinished func() error
	// InitRuntime and FinishRuntime bracket execution of compiled code.
	InitRuntime   func()
	FinishRuntime func()
}

type inputKind uint8

const (
	inputModule inputKind = iota // .spicy
	inputIntermediate            // .hlt
	inputLinked                  // .hlto
	inputNative                  // .cc / .cxx
)

type input struct {
	path string // normalized
	kind inputKind
}

// Compiler queues inputs and drives one compilation run.
type Compiler struct {
	opts Options
	fset *source.FileSet
	bag  *diag.Bag
	log  zerolog.Logger

	inputs []input
	seen   map[string]struct{}
}

// Result carries everything a run produced, ready for linking.
type Result struct {
	Modules     []*ast.Module     // parsed and resolved modules, input order
	Precompiled []artifact.Module // modules merged from .hlto inputs
	Native      []artifact.NativeSnippet
}

func New(opts Options, log zerolog.Logger) *Compiler {
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 100
	}
	return &Compiler{
		opts: opts,
		fset: source.NewFileSet(),
		bag:  diag.NewBag(maxDiag),
		log:  log,
		seen: make(map[string]struct{}),
	}
}

func (c *Compiler) Options() Options         { return c.opts }
func (c *Compiler) FileSet() *source.FileSet { return c.fset }
func (c *Compiler) Diagnostics() *diag.Bag   { return c.bag }

// HasInputs reports whether anything was queued.
func (c *Compiler) HasInputs() bool { return len(c.inputs) > 0 }

// addInput queues one file. Queuing the same normalized path twice is a
// no-op, which keeps repeated loadFile calls idempotent.
func (c *Compiler) addInput(path string, kind inputKind) {
	norm := source.NormalizePath(path)
	if _, dup := c.seen[norm]; dup {
		c.log.Debug().Str("path", norm).Msg("input already queued")
		return
	}
	c.seen[norm] = struct{}{}
	c.inputs = append(c.inputs, input{path: norm, kind: kind})
}

// AddModule queues a .spicy module source.
func (c *Compiler) AddModule(path string) { c.addInput(path, inputModule) }

// AddIntermediate queues a precompiled intermediate (.hlt) module.
func (c *Compiler) AddIntermediate(path string) { c.addInput(path, inputIntermediate) }

// AddLinked queues an already linked bundle (.hlto) to merge.
func (c *Compiler) AddLinked(path string) { c.addInput(path, inputLinked) }

// AddNative queues an auxiliary native-code snippet (.cc/.cxx).
func (c *Compiler) AddNative(path string) { c.addInput(path, inputNative) }

// Compile processes every queued input in order, firing hooks as described
// on Hooks. The pipeline is strictly sequential.
func (c *Compiler) Compile(hooks Hooks) (*Result, error) {
	res := &Result{}

	for _, in := range c.inputs {
		switch in.kind {
		case inputModule, inputIntermediate:
			mod, err := c.parseFile(in)
			if err != nil {
				return nil, err
			}
			res.Modules = append(res.Modules, mod)

		case inputLinked:
			bundle, err := artifact.Read(in.path)
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s: %v", ErrCompile, in.path, err)
			}
			c.log.Debug().Str("path", in.path).Int("modules", len(bundle.Modules)).Msg("merged linked bundle")
			res.Precompiled = append(res.Precompiled, bundle.Modules...)
			res.Native = append(res.Native, bundle.Native...)

		case inputNative:
			content, err := os.ReadFile(in.path)
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s: %v", ErrCompile, in.path, err)
			}
			res.Native = append(res.Native, artifact.NativeSnippet{
				Name: filepath.Base(in.path),
				Code: string(content),
			})
		}
	}

	for _, mod := range res.Modules {
		if hooks.PreCompilation != nil {
			hooks.PreCompilation(mod)
		}
	}

	c.resolve(res.Modules)
	if c.bag.HasErrors() {
		return nil, fmt.Errorf("%w: %d error(s)", ErrCompile, countErrors(c.bag))
	}

	for _, mod := range res.Modules {
		if hooks.PostCompilation != nil {
			hooks.PostCompilation(mod)
		}
	}

	if hooks.CompilationFinished != nil {
		if err := hooks.CompilationFinished(); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (c *Compiler) parseFile(in input) (*ast.Module, error) {
	id, err := c.fset.Load(in.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	mod := parseModule(c.fset.Get(id), diag.BagReporter{Bag: c.bag})
	if c.bag.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrCompile, in.path)
	}
	mod.Path = in.path
	mod.Ext = filepath.Ext(in.path)
	c.log.Debug().Str("module", mod.ID).Str("path", in.path).Msg("parsed module")
	return mod, nil
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}
