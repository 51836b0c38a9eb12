package glue

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"gluec/internal/artifact"
	"gluec/internal/ast"
	"gluec/internal/diag"
	"gluec/internal/source"
)

// ErrEvtParse marks a malformed binding-declaration file.
var ErrEvtParse = errors.New("evt parse error")

// ErrResolution marks a binding that references a type or field the
// compilation run never produced, or one of the wrong kind.
var ErrResolution = errors.New("glue resolution error")

// TypeProvider is the view of the driver's type registry the glue compiler
// resolves against.
type TypeProvider interface {
	// UnitType returns the structural type for a qualified unit ID. The
	// error distinguishes "unknown" from "not a unit".
	UnitType(id string) (*ast.UnitType, error)
}

// Export is one resolved entry of the exported-type list.
type Export struct {
	SpicyID string
	HostID  string
	Span    source.Span
}

type moduleInfo struct {
	id   string
	path string
}

// Compiler accumulates binding declarations and, once every module of the
// run is known, resolves them and synthesizes the adapter plan.
type Compiler struct {
	provider TypeProvider
	fset     *source.FileSet
	bag      *diag.Bag
	log      zerolog.Logger

	files   []*File
	modules []moduleInfo
	plan    *artifact.GluePlan
}

// NewCompiler creates a glue compiler that logs through log. Init must be
// called before Compile.
func NewCompiler(log zerolog.Logger) *Compiler {
	return &Compiler{
		fset: source.NewFileSet(),
		bag:  diag.NewBag(100),
		log:  log,
	}
}

// Init hands the compiler its type provider, normally the owning driver.
func (c *Compiler) Init(p TypeProvider) {
	c.provider = p
}

func (c *Compiler) FileSet() *source.FileSet { return c.fset }
func (c *Compiler) Diagnostics() *diag.Bag   { return c.bag }

// LoadEvtFile parses one binding-declaration file and accumulates its
// declarations for later resolution.
func (c *Compiler) LoadEvtFile(path string) error {
	id, err := c.fset.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvtParse, err)
	}

	before := c.bag.Len()
	f := parseEvt(c.fset.Get(id), diag.BagReporter{Bag: c.bag})
	if errorsSince(c.bag, before) {
		return fmt.Errorf("%w: %s", ErrEvtParse, path)
	}

	c.log.Debug().
		Str("path", path).
		Int("analyzers", len(f.Analyzers)).
		Int("events", len(f.Events)).
		Int("exports", len(f.Exports)).
		Msg("loaded EVT file")
	c.files = append(c.files, f)
	return nil
}

// AddSpicyModule records that a module finished compiling and is available
// for binding resolution.
func (c *Compiler) AddSpicyModule(id, path string) {
	c.modules = append(c.modules, moduleInfo{id: id, path: path})
}

// Compiled reports whether the binding-resolution pass has run.
func (c *Compiler) Compiled() bool { return c.plan != nil }

// Plan returns the synthesized adapter plan; nil before Compile.
func (c *Compiler) Plan() *artifact.GluePlan { return c.plan }

// Compile resolves every accumulated binding declaration against the type
// registry and synthesizes the adapter plan. A single unresolved reference
// fails the whole pass; there is no partial linking.
func (c *Compiler) Compile() error {
	if c.provider == nil {
		return fmt.Errorf("%w: compiler not initialized", ErrResolution)
	}
	if c.plan != nil {
		return fmt.Errorf("%w: glue already compiled", ErrResolution)
	}

	plan := &artifact.GluePlan{}
	before := c.bag.Len()

	known := make(map[string]struct{}, len(c.modules))
	for _, m := range c.modules {
		known[m.id] = struct{}{}
	}

	for _, f := range c.files {
		for _, imp := range f.Imports {
			if _, ok := known[imp]; !ok {
				c.bag.Add(diag.New(diag.SevWarning, diag.GlueInfo, source.Span{},
					fmt.Sprintf("%s: imported module %s was not part of this compilation", f.Path, imp)))
			}
		}
		for _, a := range f.Analyzers {
			c.resolveAnalyzer(plan, a)
		}
		for _, ev := range f.Events {
			c.resolveEvent(plan, ev)
		}
		for _, ex := range f.Exports {
			plan.Exports = append(plan.Exports, artifact.ExportSpec{
				SpicyID: ex.SpicyID,
				HostID:  ex.HostID,
			})
		}
	}

	if errorsSince(c.bag, before) {
		return fmt.Errorf("%w: %d unresolved binding(s)", ErrResolution, errorCountSince(c.bag, before))
	}

	c.plan = plan
	c.log.Debug().
		Int("analyzers", len(plan.Analyzers)).
		Int("events", len(plan.Events)).
		Int("exports", len(plan.Exports)).
		Msg("glue compilation finished")
	return nil
}

// ExportedIDs returns the exported-type list accumulated from explicit EVT
// export declarations.
func (c *Compiler) ExportedIDs() []Export {
	var out []Export
	for _, f := range c.files {
		for _, ex := range f.Exports {
			out = append(out, Export{SpicyID: ex.SpicyID, HostID: ex.HostID, Span: ex.Span})
		}
	}
	return out
}

func (c *Compiler) resolveAnalyzer(plan *artifact.GluePlan, a *AnalyzerDecl) {
	if a.ParseOrig == "" && a.ParseResp == "" {
		c.bag.Add(diag.NewError(diag.GlueMissingParse, a.Span,
			fmt.Sprintf("analyzer %s declares no 'parse with' unit", a.Name)))
		return
	}
	for _, unit := range []string{a.ParseOrig, a.ParseResp} {
		if unit == "" {
			continue
		}
		c.checkUnit(unit, a.Span)
	}

	reg := artifact.Analyzer{
		Name:      a.Name,
		Kind:      a.Kind.String(),
		Transport: a.Transport,
		OrigUnit:  a.ParseOrig,
		RespUnit:  a.ParseResp,
		MIMETypes: a.MIMETypes,
		Replaces:  a.Replaces,
	}
	for _, p := range a.Ports {
		reg.Ports = append(reg.Ports, artifact.PortRange{Begin: p.Begin, End: p.End, Proto: p.Proto})
	}
	plan.Analyzers = append(plan.Analyzers, reg)
}

func (c *Compiler) resolveEvent(plan *artifact.GluePlan, ev *EventDecl) {
	unit := c.checkUnit(ev.Unit, ev.Span)
	if unit == nil {
		return
	}

	if ev.Hook != HookDone && ev.Hook != HookError {
		if _, ok := unit.Field(ev.Hook); !ok {
			c.bag.Add(diag.NewError(diag.GlueUnknownField, ev.Span,
				fmt.Sprintf("unit %s has no field %s to hook", ev.Unit, ev.Hook)))
			return
		}
	}

	for _, arg := range ev.Args {
		switch arg.Kind {
		case ArgError:
			if ev.Hook != HookError {
				c.bag.Add(diag.NewError(diag.GlueBadArgument, arg.Span,
					"$error is only available in %error hooks"))
			}
		case ArgField:
			if _, ok := unit.Field(arg.Path[0]); !ok {
				c.bag.Add(diag.NewError(diag.GlueUnknownField, arg.Span,
					fmt.Sprintf("unit %s has no field %s", ev.Unit, arg.Path[0])))
			}
		}
	}

	spec := artifact.EventSpec{Unit: ev.Unit, Hook: ev.Hook, Event: ev.Event}
	for _, arg := range ev.Args {
		spec.Args = append(spec.Args, arg.Text())
	}
	plan.Events = append(plan.Events, spec)
}

// checkUnit resolves a unit reference against the registry and reports the
// precise failure mode: never seen vs. wrong kind.
func (c *Compiler) checkUnit(id string, sp source.Span) *ast.UnitType {
	unit, err := c.provider.UnitType(id)
	if err == nil {
		return unit
	}
	if isNotFound(err) {
		c.bag.Add(diag.NewError(diag.GlueUnknownUnit, sp,
			fmt.Sprintf("unknown type %s referenced by binding", id)))
	} else {
		c.bag.Add(diag.NewError(diag.GlueNotAUnit, sp,
			fmt.Sprintf("type %s is not a unit", id)))
	}
	return nil
}

// NotFound is implemented by lookup errors that mean "never registered"
// rather than "registered with another kind".
type NotFound interface {
	TypeNotFound() bool
}

func isNotFound(err error) bool {
	var nf NotFound
	return errors.As(err, &nf) && nf.TypeNotFound()
}

func errorsSince(bag *diag.Bag, mark int) bool {
	return errorCountSince(bag, mark) > 0
}

func errorCountSince(bag *diag.Bag, mark int) int {
	n := 0
	items := bag.Items()
	for i := mark; i < len(items); i++ {
		if items[i].Severity >= diag.SevError {
			n++
		}
	}
	return n
}
