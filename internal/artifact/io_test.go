package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func sampleBundle() *Bundle {
	return &Bundle{
		Debug: true,
		Modules: []Module{{
			ID:   "HTTP",
			Path: "/src/http.spicy",
			Decls: []Decl{{
				ID:      "HTTP::Request",
				Kind:    "unit",
				Linkage: "public",
				Fields: []FieldDecl{
					{Name: "method", Type: "bytes"},
					{Name: "uri", Type: "bytes"},
				},
			}},
		}},
		Glue: GluePlan{
			Analyzers: []Analyzer{{
				Name:      "test::HTTP",
				Kind:      "protocol",
				Transport: "TCP",
				OrigUnit:  "HTTP::Request",
				Ports:     []PortRange{{Begin: 80, End: 80, Proto: "tcp"}},
			}},
			Events: []EventSpec{{
				Unit:  "HTTP::Request",
				Hook:  "%done",
				Event: "http::request",
				Args:  []string{"$conn", "self.method"},
			}},
			Exports: []ExportSpec{{SpicyID: "HTTP::Request", HostID: "HTTP::Req"}},
		},
		Native: []NativeSnippet{{Name: "extra.cc", Code: "// noop\n"}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "http.hlto")

	if err := Write(path, sampleBundle()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Schema != SchemaVersion {
		t.Errorf("Schema = %d", got.Schema)
	}
	if !got.Debug || got.Optimized {
		t.Errorf("flags = %+v", got)
	}
	if len(got.Modules) != 1 || got.Modules[0].Decls[0].Fields[1].Name != "uri" {
		t.Errorf("modules = %+v", got.Modules)
	}
	if got.Glue.Analyzers[0].Ports[0].Begin != 80 {
		t.Errorf("analyzers = %+v", got.Glue.Analyzers)
	}
	if got.Glue.Events[0].Args[1] != "self.method" {
		t.Errorf("events = %+v", got.Glue.Events)
	}
	if got.Native[0].Name != "extra.cc" {
		t.Errorf("native = %+v", got.Native)
	}
}

func TestReadRejectsWrongSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.hlto")

	stale := sampleBundle()
	stale.Schema = SchemaVersion + 1
	raw, err := msgpack.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); !errors.Is(err, ErrBadBundle) {
		t.Fatalf("err = %v, want ErrBadBundle", err)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.hlto")
	if err := os.WriteFile(path, []byte("not msgpack at all"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrBadBundle) {
		t.Fatalf("err = %v, want ErrBadBundle", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.hlto")); err == nil {
		t.Fatal("read of a missing file succeeded")
	}
}
