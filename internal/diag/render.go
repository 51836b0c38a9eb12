package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"gluec/internal/source"
)

// RenderOpts controls human-readable diagnostic output.
type RenderOpts struct {
	Color   bool
	Context bool // print the offending source line with an underline
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
)

func sevColor(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return errColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// Render prints every diagnostic in the bag to w. Callers are expected to
// Sort() the bag first.
func Render(w io.Writer, bag *Bag, fs *source.FileSet, opts RenderOpts) {
	for _, d := range bag.Items() {
		renderOne(w, d, fs, opts)
	}
}

func renderOne(w io.Writer, d Diagnostic, fs *source.FileSet, opts RenderOpts) {
	sev := d.Severity.String()
	code := d.Code.String()
	pos := fs.Position(d.Primary)
	if opts.Color {
		sev = sevColor(d.Severity).Sprint(sev)
		pos = posColor.Sprint(pos)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", pos, sev, code, d.Message)

	if opts.Context {
		renderContext(w, d.Primary, fs, opts)
	}

	for _, n := range d.Notes {
		fmt.Fprintf(w, "  note: %s: %s\n", fs.Position(n.Span), n.Msg)
		if opts.Context {
			renderContext(w, n.Span, fs, opts)
		}
	}
}

// renderContext prints the source line holding the start of the span with a
// ^~~~ underline. Underline width follows display width, not byte count.
func renderContext(w io.Writer, sp source.Span, fs *source.FileSet, opts RenderOpts) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}

	fmt.Fprintf(w, "  %s\n", line)

	prefixBytes := int(start.Col) - 1
	if prefixBytes > len(line) {
		prefixBytes = len(line)
	}
	pad := runewidth.StringWidth(line[:prefixBytes])

	spanEnd := len(line)
	if end.Line == start.Line && int(end.Col)-1 < spanEnd {
		spanEnd = int(end.Col) - 1
	}
	width := runewidth.StringWidth(line[prefixBytes:spanEnd])
	if width < 1 {
		width = 1
	}

	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = sevColor(SevError).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), marker)
}
