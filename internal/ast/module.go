// Package ast holds the declaration tree the module front end produces for
// parser-description modules: module headers, imports, and top-level type
// declarations (units and enums). Only the declaration surface is modeled;
// unit parsing semantics stay with the upstream toolchain.
package ast

import (
	"gluec/internal/source"
)

// Module is one parser-description module after parsing.
type Module struct {
	ID      string // module name as declared
	Path    string // normalized source path, empty for synthetic modules
	Ext     string // extension of the defining input (".spicy", ".hlt")
	Imports []Import
	Decls   []*TypeDecl
	Span    source.Span
}

// Import records an `import Mod;` declaration.
type Import struct {
	Module string
	Span   source.Span
}

// TypeDecl is a top-level `type T = ...;` declaration.
type TypeDecl struct {
	ID      string // unqualified name
	Linkage Linkage
	Type    Type
	Span    source.Span
}

// Qualified returns the module-qualified ID of a declaration.
func Qualified(module, id string) string {
	if module == "" {
		return id
	}
	return module + "::" + id
}
