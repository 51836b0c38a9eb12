package ast

import (
	"gluec/internal/source"
)

// TypeKind discriminates the type variants.
type TypeKind uint8

const (
	KindScalar TypeKind = iota
	KindVector
	KindRef
	KindUnit
	KindEnum
)

func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindRef:
		return "reference"
	case KindUnit:
		return "unit"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// Type is the structural definition of a declared type. Implementations are
// a closed set of variants; consumers dispatch with a type switch.
type Type interface {
	Kind() TypeKind
	// Clone returns a deep copy, so registry snapshots stay stable while
	// resolution mutates the original tree.
	Clone() Type
}

// ScalarType is a builtin atom: bytes, string, bool, real, time, interval,
// addr, port, uint8..uint64, int8..int64.
type ScalarType struct {
	Name string
}

func (*ScalarType) Kind() TypeKind { return KindScalar }
func (t *ScalarType) Clone() Type  { c := *t; return &c }

// VectorType is `vector<Elem>`.
type VectorType struct {
	Elem Type
}

func (*VectorType) Kind() TypeKind { return KindVector }
func (t *VectorType) Clone() Type {
	return &VectorType{Elem: t.Elem.Clone()}
}

// RefType names another declared type. Target may be module-qualified;
// Resolved flips once the resolution pass has verified the target.
type RefType struct {
	Target   string
	Resolved bool
	Span     source.Span
}

func (*RefType) Kind() TypeKind { return KindRef }
func (t *RefType) Clone() Type  { c := *t; return &c }

// Field is one field of a unit declaration. Anonymous fields carry no name
// in source and are skipped by glue binding.
type Field struct {
	Name      string
	Type      Type
	Anonymous bool
	Span      source.Span
}

// UnitType is a structured parser declaration.
type UnitType struct {
	Fields []Field
}

func (*UnitType) Kind() TypeKind { return KindUnit }

func (t *UnitType) Clone() Type {
	c := &UnitType{Fields: make([]Field, len(t.Fields))}
	for i, f := range t.Fields {
		c.Fields[i] = Field{Name: f.Name, Type: f.Type.Clone(), Anonymous: f.Anonymous, Span: f.Span}
	}
	return c
}

// Field looks up a named field.
func (t *UnitType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if !f.Anonymous && f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EnumLabel is one label of an enum declaration.
type EnumLabel struct {
	Name  string
	Value int64
	Span  source.Span
}

// EnumType is an enumeration declaration.
type EnumType struct {
	Labels []EnumLabel
}

func (*EnumType) Kind() TypeKind { return KindEnum }

func (t *EnumType) Clone() Type {
	c := &EnumType{Labels: make([]EnumLabel, len(t.Labels))}
	copy(c.Labels, t.Labels)
	return c
}
