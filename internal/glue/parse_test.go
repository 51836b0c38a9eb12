package glue

import (
	"testing"

	"gluec/internal/diag"
	"gluec/internal/source"
)

func parseEvtSource(t *testing.T, src string) (*File, *diag.Bag) {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.AddVirtual("test.evt", []byte(src))
	bag := diag.NewBag(100)
	f := parseEvt(fset.Get(id), diag.BagReporter{Bag: bag})
	return f, bag
}

func TestParseImport(t *testing.T) {
	f, bag := parseEvtSource(t, "import SSH;\nimport Other 1.2;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Imports) != 2 || f.Imports[0] != "SSH" || f.Imports[1] != "Other" {
		t.Fatalf("imports = %v", f.Imports)
	}
}

func TestParseProtocolAnalyzer(t *testing.T) {
	src := `protocol analyzer spicy::SSH over TCP:
    parse originator with SSH::Banner,
    port 22/tcp,
    replaces SSH;
`
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Analyzers) != 1 {
		t.Fatalf("got %d analyzers", len(f.Analyzers))
	}
	a := f.Analyzers[0]
	if a.Name != "spicy::SSH" || a.Kind != AnalyzerProtocol || a.Transport != "tcp" {
		t.Fatalf("analyzer head = %+v", a)
	}
	if a.ParseOrig != "SSH::Banner" || a.ParseResp != "" {
		t.Fatalf("parse units = %q / %q", a.ParseOrig, a.ParseResp)
	}
	if len(a.Ports) != 1 || a.Ports[0].Begin != 22 || a.Ports[0].End != 22 || a.Ports[0].Proto != "tcp" {
		t.Fatalf("ports = %+v", a.Ports)
	}
	if a.Replaces != "SSH" {
		t.Fatalf("replaces = %q", a.Replaces)
	}
}

func TestParseAnalyzerBothSidesAndPortRange(t *testing.T) {
	src := `protocol analyzer test::TFTP over UDP:
    parse with TFTP::Packet,
    ports { 69/udp, 1000/udp-1010/udp };
`
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	a := f.Analyzers[0]
	if a.ParseOrig != "TFTP::Packet" || a.ParseResp != "TFTP::Packet" {
		t.Fatalf("parse units = %q / %q", a.ParseOrig, a.ParseResp)
	}
	if len(a.Ports) != 2 {
		t.Fatalf("ports = %+v", a.Ports)
	}
	if a.Ports[1].Begin != 1000 || a.Ports[1].End != 1010 {
		t.Fatalf("range = %+v", a.Ports[1])
	}
}

func TestParseFileAnalyzer(t *testing.T) {
	src := `file analyzer test::PE:
    parse with PE::ImageFile,
    mime-type application/x-dosexec;
`
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	a := f.Analyzers[0]
	if a.Kind != AnalyzerFile || a.Transport != "" {
		t.Fatalf("analyzer = %+v", a)
	}
	if len(a.MIMETypes) != 1 || a.MIMETypes[0] != "application/x-dosexec" {
		t.Fatalf("mime types = %v", a.MIMETypes)
	}
}

func TestParseDuplicateAnalyzer(t *testing.T) {
	src := "protocol analyzer A over TCP: parse with X::Y;\nprotocol analyzer A over TCP: parse with X::Y;\n"
	_, bag := parseEvtSource(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected duplicate analyzer error")
	}
}

func TestParseBadPort(t *testing.T) {
	for _, src := range []string{
		"protocol analyzer A over TCP: port 70000/tcp;\n",
		"protocol analyzer A over TCP: port 22/icmp;\n",
		"protocol analyzer A over TCP: port 100/tcp-50/tcp;\n",
		"protocol analyzer A over TCP: port 20/tcp-30/udp;\n",
	} {
		_, bag := parseEvtSource(t, src)
		if !bag.HasErrors() {
			t.Errorf("no error for %q", src)
		}
	}
}

func TestParseEventDone(t *testing.T) {
	src := "on SSH::Banner -> event ssh::banner($conn, $is_orig, self.version, self.software);\n"
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	ev := f.Events[0]
	if ev.Unit != "SSH::Banner" || ev.Hook != HookDone || ev.Event != "ssh::banner" {
		t.Fatalf("event = %+v", ev)
	}
	wantArgs := []string{"$conn", "$is_orig", "self.version", "self.software"}
	if len(ev.Args) != len(wantArgs) {
		t.Fatalf("args = %v", ev.Args)
	}
	for i, w := range wantArgs {
		if got := ev.Args[i].Text(); got != w {
			t.Errorf("arg %d = %q, want %q", i, got, w)
		}
	}
}

func TestParseEventFieldHook(t *testing.T) {
	src := "on SSH::Banner::software -> event ssh::software($conn, self.software);\n"
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	ev := f.Events[0]
	if ev.Unit != "SSH::Banner" || ev.Hook != "software" {
		t.Fatalf("unit/hook = %q / %q", ev.Unit, ev.Hook)
	}
}

func TestParseEventErrorHook(t *testing.T) {
	src := "on SSH::Banner::%error -> event ssh::error($conn, $error);\n"
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	ev := f.Events[0]
	if ev.Unit != "SSH::Banner" || ev.Hook != HookError {
		t.Fatalf("unit/hook = %q / %q", ev.Unit, ev.Hook)
	}
	if len(ev.Args) != 2 || ev.Args[1].Kind != ArgError {
		t.Fatalf("args = %+v", ev.Args)
	}
}

func TestParseEventLiteralArgs(t *testing.T) {
	src := `on A::B -> event a::b(self, "hello \"there\"", -42);` + "\n"
	f, bag := parseEvtSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	args := f.Events[0].Args
	if args[0].Kind != ArgSelf {
		t.Errorf("arg 0 = %+v", args[0])
	}
	if args[1].Kind != ArgString || args[1].Str != `hello "there"` {
		t.Errorf("arg 1 = %+v", args[1])
	}
	if args[2].Kind != ArgInt || args[2].Int != -42 {
		t.Errorf("arg 2 = %+v", args[2])
	}
}

func TestParseEventNoArgs(t *testing.T) {
	f, bag := parseEvtSource(t, "on A::B -> event a::b;\non A::C -> event a::c();\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Events) != 2 || len(f.Events[0].Args) != 0 || len(f.Events[1].Args) != 0 {
		t.Fatalf("events = %+v", f.Events)
	}
}

func TestParseExport(t *testing.T) {
	f, bag := parseEvtSource(t, "export SSH::Banner;\nexport SSH::Mode as SSH::ModeInfo;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Exports) != 2 {
		t.Fatalf("exports = %+v", f.Exports)
	}
	if f.Exports[0].HostID != "SSH::Banner" {
		t.Errorf("default host ID = %q", f.Exports[0].HostID)
	}
	if f.Exports[1].SpicyID != "SSH::Mode" || f.Exports[1].HostID != "SSH::ModeInfo" {
		t.Errorf("aliased export = %+v", f.Exports[1])
	}
}

func TestParseCommentsAndUnknownKeyword(t *testing.T) {
	f, bag := parseEvtSource(t, "# a comment\nimport SSH; # trailing\nfrobnicate all the things;\nimport X;\n")
	if !bag.HasErrors() {
		t.Fatal("expected error for unknown keyword")
	}
	// recovery continues at the next declaration
	if len(f.Imports) != 2 {
		t.Fatalf("imports = %v", f.Imports)
	}
}

func TestParseUnknownDollarArg(t *testing.T) {
	_, bag := parseEvtSource(t, "on A::B -> event a::b($bogus);\n")
	if !bag.HasErrors() {
		t.Fatal("expected error for unknown $ argument")
	}
}
