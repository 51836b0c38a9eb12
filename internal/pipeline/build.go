// Package pipeline orchestrates the compilation of inputs into a linked
// artifact, reporting per-stage progress to an optional sink.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gluec/internal/diag"
	"gluec/internal/driver"
	"gluec/internal/glue"
	"gluec/internal/spicy"
)

// Request configures a build run.
type Request struct {
	// Inputs are the files to compile, in command-line order.
	Inputs []string
	// Output is the artifact path. Ignored when SourcePrefix is set.
	Output string
	// SourcePrefix, when non-empty, makes the run emit generated glue
	// source files under this prefix instead of linking an artifact.
	SourcePrefix string

	Options  spicy.Options
	Progress ProgressSink
	Log      zerolog.Logger

	// DiagOut receives rendered diagnostics when set.
	DiagOut io.Writer
	// Color enables colored diagnostic output.
	Color bool
}

// Result captures the build outcome and per-stage timings.
type Result struct {
	OutputPath string
	Exports    []driver.ExportedType
	Timings    Timings
}

// Run executes the full pipeline: load every input, compile, glue, link.
// The pipeline is sequential; the sink only observes it.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Inputs) == 0 {
		return result, fmt.Errorf("no input files")
	}
	sink := req.Progress
	if sink == nil {
		sink = NopSink{}
	}

	g := glue.NewCompiler(req.Log)
	d := driver.New(g, req.Options, req.Log)

	for _, input := range req.Inputs {
		sink.OnEvent(Event{File: input, Stage: StageLoad, Status: StatusQueued})
	}

	loadStart := time.Now()
	for _, input := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sink.OnEvent(Event{File: input, Stage: StageLoad, Status: StatusWorking})
		start := time.Now()
		if err := d.LoadFile(input, ""); err != nil {
			sink.OnEvent(Event{File: input, Stage: StageLoad, Status: StatusError, Err: err})
			return result, err
		}
		sink.OnEvent(Event{File: input, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)})
	}
	result.Timings.Set(StageLoad, time.Since(loadStart))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Compile covers both module translation and the glue pass, which runs
	// from the finished hook inside it.
	compileStart := time.Now()
	sink.OnEvent(Event{Stage: StageCompile, Status: StatusWorking})
	if err := d.Compile(); err != nil {
		renderDiagnostics(req, d, g)
		sink.OnEvent(Event{Stage: StageCompile, Status: StatusError, Err: err})
		return result, err
	}
	renderDiagnostics(req, d, g)
	result.Timings.Set(StageCompile, time.Since(compileStart))
	sink.OnEvent(Event{Stage: StageCompile, Status: StatusDone, Elapsed: result.Timings.Duration(StageCompile)})
	sink.OnEvent(Event{Stage: StageGlue, Status: StatusDone})

	exports, err := d.ExportedTypes()
	if err != nil {
		sink.OnEvent(Event{Stage: StageGlue, Status: StatusError, Err: err})
		return result, err
	}
	result.Exports = exports

	linkStart := time.Now()
	sink.OnEvent(Event{Stage: StageLink, Status: StatusWorking})
	if req.SourcePrefix != "" {
		paths, err := glue.WritePlan(g.Plan(), req.SourcePrefix)
		if err != nil {
			sink.OnEvent(Event{Stage: StageLink, Status: StatusError, Err: err})
			return result, err
		}
		if len(paths) > 0 {
			result.OutputPath = paths[0]
		}
	} else {
		if req.Output == "" {
			err := fmt.Errorf("no output file")
			sink.OnEvent(Event{Stage: StageLink, Status: StatusError, Err: err})
			return result, err
		}
		if err := d.Link(req.Output); err != nil {
			sink.OnEvent(Event{Stage: StageLink, Status: StatusError, Err: err})
			return result, err
		}
		result.OutputPath = req.Output
	}
	result.Timings.Set(StageLink, time.Since(linkStart))
	sink.OnEvent(Event{Stage: StageLink, Status: StatusDone, Elapsed: result.Timings.Duration(StageLink)})

	return result, nil
}

// renderDiagnostics writes accumulated compiler and glue diagnostics,
// warnings included, so a failed run shows why.
func renderDiagnostics(req *Request, d *driver.Driver, g *glue.Compiler) {
	if req.DiagOut == nil {
		return
	}
	opts := diag.RenderOpts{Color: req.Color, Context: true}

	bag := d.Compiler().Diagnostics()
	if bag.Len() > 0 {
		bag.Sort()
		diag.Render(req.DiagOut, bag, d.Compiler().FileSet(), opts)
	}
	if g.Diagnostics().Len() > 0 {
		g.Diagnostics().Sort()
		diag.Render(req.DiagOut, g.Diagnostics(), g.FileSet(), opts)
	}
}
