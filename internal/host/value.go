// Package host models the boundary to the host runtime: the value shapes
// event arguments take, the connection/file context an analyzer runs in,
// and the event dispatcher the synthesized glue raises into. The real
// plugin ABI lives on the host side; this package is its contract.
package host

import (
	"fmt"
	"strings"
)

// ValueKind discriminates Value variants.
type ValueKind uint8

const (
	KindVoid ValueKind = iota
	KindBool
	KindInt
	KindUint
	KindReal
	KindString
	KindBytes
	KindEnum
	KindRecord
	KindConn
	KindFile
)

// Value is one host-visible event argument.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Uint   uint64
	Real   float64
	Str    string // string, bytes, and enum label payloads
	Record *Record
	Conn   *Connection
	File   *File
}

func Void() Value                { return Value{Kind: KindVoid} }
func BoolVal(v bool) Value       { return Value{Kind: KindBool, Bool: v} }
func IntVal(v int64) Value       { return Value{Kind: KindInt, Int: v} }
func UintVal(v uint64) Value     { return Value{Kind: KindUint, Uint: v} }
func RealVal(v float64) Value    { return Value{Kind: KindReal, Real: v} }
func StringVal(v string) Value   { return Value{Kind: KindString, Str: v} }
func BytesVal(v []byte) Value    { return Value{Kind: KindBytes, Str: string(v)} }
func EnumVal(label string) Value { return Value{Kind: KindEnum, Str: label} }
func RecordVal(r *Record) Value  { return Value{Kind: KindRecord, Record: r} }
func ConnVal(c *Connection) Value {
	return Value{Kind: KindConn, Conn: c}
}
func FileVal(f *File) Value { return Value{Kind: KindFile, File: f} }

func (v Value) String() string {
	switch v.Kind {
	case KindVoid:
		return "<void>"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindReal:
		return fmt.Sprintf("%g", v.Real)
	case KindString, KindBytes:
		return v.Str
	case KindEnum:
		return v.Str
	case KindRecord:
		return v.Record.String()
	case KindConn:
		return v.Conn.ID
	case KindFile:
		return v.File.ID
	}
	return "<unknown>"
}

// RecordField is one named slot of a parsed-unit record.
type RecordField struct {
	Name  string
	Value Value
}

// Record is a parsed unit instance: named fields in declaration order.
type Record struct {
	Unit   string // qualified unit type ID
	Fields []RecordField
}

// Get returns the named field's value.
func (r *Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", f.Name, f.Value.String())
	}
	b.WriteString("]")
	return b.String()
}

// Endpoint is one side of a connection.
type Endpoint struct {
	Addr string
	Port uint16
}

// Connection is the transport context an event fires in.
type Connection struct {
	ID   string
	Orig Endpoint
	Resp Endpoint
}

// File is the file-analysis context an event fires in.
type File struct {
	ID   string
	MIME string
}
