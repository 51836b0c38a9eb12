package glue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gluec/internal/artifact"
)

// RenderPlan renders a compiled plan as generated glue source: the
// registrations and dispatch table the adapter would execute, in a stable
// readable form.
func RenderPlan(plan *artifact.GluePlan) string {
	var b strings.Builder
	b.WriteString("// Generated glue code. Do not edit.\n\n")

	for _, a := range plan.Analyzers {
		fmt.Fprintf(&b, "register %s analyzer %s", a.Kind, a.Name)
		if a.Transport != "" {
			fmt.Fprintf(&b, " over %s", strings.ToUpper(a.Transport))
		}
		b.WriteString(" {\n")
		if a.OrigUnit != "" {
			fmt.Fprintf(&b, "    parse originator with %s;\n", a.OrigUnit)
		}
		if a.RespUnit != "" {
			fmt.Fprintf(&b, "    parse responder with %s;\n", a.RespUnit)
		}
		for _, p := range a.Ports {
			if p.Begin == p.End {
				fmt.Fprintf(&b, "    port %d/%s;\n", p.Begin, p.Proto)
			} else {
				fmt.Fprintf(&b, "    port %d/%s-%d/%s;\n", p.Begin, p.Proto, p.End, p.Proto)
			}
		}
		for _, m := range a.MIMETypes {
			fmt.Fprintf(&b, "    mime-type %s;\n", m)
		}
		if a.Replaces != "" {
			fmt.Fprintf(&b, "    replaces %s;\n", a.Replaces)
		}
		b.WriteString("}\n\n")
	}

	for _, ev := range plan.Events {
		hook := ev.Unit
		if ev.Hook != "" {
			hook += "::" + ev.Hook
		}
		fmt.Fprintf(&b, "on %s -> event %s(%s);\n", hook, ev.Event, strings.Join(ev.Args, ", "))
	}
	if len(plan.Events) > 0 {
		b.WriteString("\n")
	}

	for _, ex := range plan.Exports {
		if ex.HostID != "" && ex.HostID != ex.SpicyID {
			fmt.Fprintf(&b, "export %s as %s;\n", ex.SpicyID, ex.HostID)
		} else {
			fmt.Fprintf(&b, "export %s;\n", ex.SpicyID)
		}
	}

	return b.String()
}

// WritePlan writes the rendered plan next to prefix, returning the paths
// written. Used by the output-source build mode instead of linking.
func WritePlan(plan *artifact.GluePlan, prefix string) ([]string, error) {
	if plan == nil {
		return nil, fmt.Errorf("no glue plan to write")
	}
	path := prefix + "_glue.evt"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(RenderPlan(plan)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write glue source: %w", err)
	}
	return []string{path}, nil
}
