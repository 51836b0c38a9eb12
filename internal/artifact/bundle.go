// Package artifact defines the on-disk form of a linked analyzer object:
// a msgpack bundle holding every compiled module's declaration table, the
// synthesized glue plan, and any auxiliary native snippets. The host
// runtime loads exactly one bundle per plugin.
package artifact

// Schema version of the bundle payload. Increment on breaking changes so
// stale bundles are rejected instead of misread.
const SchemaVersion uint16 = 2

// Bundle is one loadable compiled object.
type Bundle struct {
	Schema    uint16
	Debug     bool
	Optimized bool
	Modules   []Module
	Glue      GluePlan
	Native    []NativeSnippet
}

// Module is the serialized declaration table of one compiled module.
type Module struct {
	ID    string
	Path  string
	Decls []Decl
}

// Decl is the flattened form of one type declaration.
type Decl struct {
	ID      string // module-qualified
	Kind    string // "unit", "enum", "scalar", "vector", "reference"
	Linkage string
	Fields  []FieldDecl // units only
	Labels  []LabelDecl // enums only
}

// FieldDecl is one unit field in serialized form.
type FieldDecl struct {
	Name      string
	Type      string
	Anonymous bool
}

// LabelDecl is one enum label in serialized form.
type LabelDecl struct {
	Name  string
	Value int64
}

// NativeSnippet carries a .cc/.cxx input through to the linked object.
type NativeSnippet struct {
	Name string
	Code string
}

// GluePlan is the synthesized adapter: analyzer registrations, event
// dispatch specs, and the exported-type list.
type GluePlan struct {
	Analyzers []Analyzer
	Events    []EventSpec
	Exports   []ExportSpec
}

// Analyzer is one analyzer registration.
type Analyzer struct {
	Name      string
	Kind      string // "protocol" or "file"
	Transport string // "tcp" or "udp", protocol analyzers only
	Ports     []PortRange
	OrigUnit  string // file analyzers use OrigUnit for the body unit
	RespUnit  string
	MIMETypes []string
	Replaces  string
}

// PortRange is an inclusive port range with its transport protocol.
type PortRange struct {
	Begin uint16
	End   uint16
	Proto string
}

// EventSpec maps one unit hook to a host event. Hook is "%done", "%error",
// or a field name; Args hold the serialized argument expressions in
// declaration order.
type EventSpec struct {
	Unit  string
	Hook  string
	Event string
	Args  []string
}

// ExportSpec pairs an internal type ID with its host-visible name.
type ExportSpec struct {
	SpicyID string
	HostID  string
}
