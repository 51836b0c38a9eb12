// Package glue implements the binding-declaration compiler: it parses EVT
// files, cross-references their declarations against the types the driver
// registered, and synthesizes the adapter plan that wires parsed-unit
// fields and hooks to host-dispatched events.
package glue

import (
	"strconv"

	"gluec/internal/source"
)

// AnalyzerKind distinguishes protocol from file analyzers.
type AnalyzerKind uint8

const (
	AnalyzerProtocol AnalyzerKind = iota
	AnalyzerFile
)

func (k AnalyzerKind) String() string {
	if k == AnalyzerFile {
		return "file"
	}
	return "protocol"
}

// PortRange is an inclusive range of ports over one transport.
type PortRange struct {
	Begin uint16
	End   uint16
	Proto string // "tcp" or "udp"
	Span  source.Span
}

// AnalyzerDecl is one `protocol analyzer ...:` or `file analyzer ...:`
// declaration with its properties.
type AnalyzerDecl struct {
	Name      string
	Kind      AnalyzerKind
	Transport string // protocol analyzers: "tcp" or "udp"
	ParseOrig string // unit parsing the originator side (or file body)
	ParseResp string // unit parsing the responder side
	Ports     []PortRange
	MIMETypes []string
	Replaces  string
	Span      source.Span
}

// Hook names reserved beyond plain field hooks.
const (
	HookDone  = "%done"
	HookError = "%error"
)

// EventDecl is one `on <unit>[::<hook>] -> event <name>(<args>);` mapping.
type EventDecl struct {
	Unit  string // qualified unit type
	Hook  string // HookDone, HookError, or a field name
	Event string // host-side event name
	Args  []ArgExpr
	Span  source.Span
}

// ArgKind discriminates event-argument expressions.
type ArgKind uint8

const (
	ArgConn   ArgKind = iota // $conn
	ArgIsOrig                // $is_orig
	ArgFile                  // $file
	ArgError                 // $error, %error hooks only
	ArgSelf                  // self
	ArgField                 // self.a.b
	ArgString                // string literal
	ArgInt                   // integer literal
)

// ArgExpr is one declared event argument.
type ArgExpr struct {
	Kind ArgKind
	Path []string // ArgField: field path below self
	Str  string   // ArgString payload
	Int  int64    // ArgInt payload
	Span source.Span
}

// Text renders the argument back to its declaration form, which is also
// the serialized form carried in the artifact plan.
func (a ArgExpr) Text() string {
	switch a.Kind {
	case ArgConn:
		return "$conn"
	case ArgIsOrig:
		return "$is_orig"
	case ArgFile:
		return "$file"
	case ArgError:
		return "$error"
	case ArgSelf:
		return "self"
	case ArgField:
		out := "self"
		for _, p := range a.Path {
			out += "." + p
		}
		return out
	case ArgString:
		return "\"" + a.Str + "\""
	case ArgInt:
		return strconv.FormatInt(a.Int, 10)
	}
	return "?"
}

// ExportDecl is one `export A [as B];` declaration.
type ExportDecl struct {
	SpicyID string
	HostID  string
	Span    source.Span
}

// File is one parsed EVT file.
type File struct {
	Path      string
	Imports   []string
	Analyzers []*AnalyzerDecl
	Events    []*EventDecl
	Exports   []*ExportDecl
}
