package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"gluec/internal/artifact"
)

const testModule = `module DNS;

public type Header = unit {
    id:    uint16;
    flags: uint16;
};
`

const testEvt = `protocol analyzer test::DNS over UDP:
    parse with DNS::Header,
    port 53/udp;

on DNS::Header -> event dns::header($conn, self.id);
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunProducesArtifact(t *testing.T) {
	dir := t.TempDir()
	mod := writeInput(t, dir, "dns.spicy", testModule)
	evt := writeInput(t, dir, "dns.evt", testEvt)
	out := filepath.Join(dir, "dns.hlto")

	events := make(chan Event, 64)
	res, err := Run(context.Background(), &Request{
		Inputs:   []string{mod, evt},
		Output:   out,
		Log:      zerolog.Nop(),
		Progress: ChannelSink{Ch: events},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)

	if res.OutputPath != out {
		t.Errorf("OutputPath = %s", res.OutputPath)
	}
	bundle, err := artifact.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(bundle.Glue.Analyzers) != 1 || len(bundle.Glue.Events) != 1 {
		t.Errorf("glue plan = %+v", bundle.Glue)
	}
	if !res.Timings.Has(StageCompile) || !res.Timings.Has(StageLink) {
		t.Error("stage timings missing")
	}

	var sawLinkDone bool
	for ev := range events {
		if ev.Status == StatusError {
			t.Errorf("unexpected error event: %+v", ev)
		}
		if ev.Stage == StageLink && ev.Status == StatusDone {
			sawLinkDone = true
		}
	}
	if !sawLinkDone {
		t.Error("no link-done event observed")
	}
}

func TestRunSourcePrefixWritesGlueSource(t *testing.T) {
	dir := t.TempDir()
	mod := writeInput(t, dir, "dns.spicy", testModule)
	evt := writeInput(t, dir, "dns.evt", testEvt)

	res, err := Run(context.Background(), &Request{
		Inputs:       []string{mod, evt},
		SourcePrefix: filepath.Join(dir, "gen", "dns"),
		Log:          zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	content, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "DNS::Header") {
		t.Errorf("generated source:\n%s", content)
	}
}

func TestRunNoInputs(t *testing.T) {
	_, err := Run(context.Background(), &Request{Log: zerolog.Nop()})
	if err == nil || !strings.Contains(err.Error(), "no input files") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunMissingOutput(t *testing.T) {
	dir := t.TempDir()
	mod := writeInput(t, dir, "dns.spicy", testModule)

	_, err := Run(context.Background(), &Request{
		Inputs: []string{mod},
		Log:    zerolog.Nop(),
	})
	if err == nil || !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunLoadErrorEmitsEvent(t *testing.T) {
	events := make(chan Event, 16)
	_, err := Run(context.Background(), &Request{
		Inputs:   []string{"missing.spicy"},
		Output:   filepath.Join(t.TempDir(), "out.hlto"),
		Log:      zerolog.Nop(),
		Progress: ChannelSink{Ch: events},
	})
	if err == nil {
		t.Fatal("load of a missing file succeeded")
	}
	close(events)

	var sawError bool
	for ev := range events {
		if ev.Stage == StageLoad && ev.Status == StatusError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("no load-error event observed")
	}
}

func TestRunRendersDiagnosticsOnFailure(t *testing.T) {
	dir := t.TempDir()
	mod := writeInput(t, dir, "dns.spicy", testModule)
	evt := writeInput(t, dir, "bad.evt",
		"on DNS::Missing -> event dns::missing($conn);\n")

	var buf bytes.Buffer
	_, err := Run(context.Background(), &Request{
		Inputs:  []string{mod, evt},
		Output:  filepath.Join(dir, "out.hlto"),
		Log:     zerolog.Nop(),
		DiagOut: &buf,
	})
	if err == nil {
		t.Fatal("binding against an unknown unit succeeded")
	}
	if !strings.Contains(buf.String(), "DNS::Missing") {
		t.Errorf("rendered diagnostics:\n%s", buf.String())
	}
}

func TestRunCanceledContext(t *testing.T) {
	dir := t.TempDir()
	mod := writeInput(t, dir, "dns.spicy", testModule)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &Request{
		Inputs: []string{mod},
		Output: filepath.Join(dir, "out.hlto"),
		Log:    zerolog.Nop(),
	})
	if err == nil {
		t.Fatal("run continued after cancellation")
	}
}
