package driver

import (
	"gluec/internal/ast"
	"gluec/internal/source"
)

// TypeInfo is the registry entry for one user-visible type declaration.
type TypeInfo struct {
	ID         string   // fully-qualified name
	Type       ast.Type // deep-copied structural snapshot
	Linkage    ast.Linkage
	IsResolved bool   // true once captured after type resolution
	ModuleID   string // module the type is declared in
	ModulePath string // path of that module's source
	Span       source.Span
}

// bootstrap modules of the toolchain itself; their declarations are never
// user-visible and never registered.
var internalModules = map[string]struct{}{
	"hilti":    {},
	"spicy_rt": {},
	"zeek_rt":  {},
}

// collectTypes walks a module's declarations and captures a TypeInfo per
// type declaration. Pure extraction: the caller decides what to do with
// the records.
func collectTypes(mod *ast.Module, resolved bool) []TypeInfo {
	if _, internal := internalModules[mod.ID]; internal {
		return nil
	}

	out := make([]TypeInfo, 0, len(mod.Decls))
	for _, d := range mod.Decls {
		out = append(out, TypeInfo{
			ID:         ast.Qualified(mod.ID, d.ID),
			Type:       d.Type.Clone(),
			Linkage:    d.Linkage,
			IsResolved: resolved,
			ModuleID:   mod.ID,
			ModulePath: mod.Path,
			Span:       d.Span,
		})
	}
	return out
}

// isPublicEnum reports whether a captured type takes part in the automatic
// enum export.
func isPublicEnum(ti TypeInfo) bool {
	return ti.Linkage == ast.LinkagePublic && ti.Type.Kind() == ast.KindEnum
}
