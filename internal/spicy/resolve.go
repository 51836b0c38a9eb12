package spicy

import (
	"fmt"

	"gluec/internal/ast"
	"gluec/internal/diag"
)

// resolve fixes type references across all modules of the run. Local names
// resolve within the declaring module first, then qualified names across
// every module. Unresolved references are errors, demoted to warnings when
// validation is skipped.
func (c *Compiler) resolve(mods []*ast.Module) {
	global := make(map[string]*ast.TypeDecl)
	for _, mod := range mods {
		for _, d := range mod.Decls {
			global[ast.Qualified(mod.ID, d.ID)] = d
		}
	}

	for _, mod := range mods {
		for _, d := range mod.Decls {
			c.resolveType(global, mod, d.Type)
		}
	}
}

func (c *Compiler) resolveType(global map[string]*ast.TypeDecl, mod *ast.Module, t ast.Type) {
	switch t := t.(type) {
	case *ast.RefType:
		if _, ok := global[ast.Qualified(mod.ID, t.Target)]; ok {
			t.Resolved = true
			return
		}
		if _, ok := global[t.Target]; ok {
			t.Resolved = true
			return
		}
		sev := diag.SevError
		if c.opts.SkipValidation {
			sev = diag.SevWarning
		}
		c.bag.Add(diag.New(sev, diag.CompileUnresolvedType, t.Span,
			fmt.Sprintf("unknown type %s referenced from module %s", t.Target, mod.ID)))

	case *ast.VectorType:
		c.resolveType(global, mod, t.Elem)

	case *ast.UnitType:
		for i := range t.Fields {
			c.resolveType(global, mod, t.Fields[i].Type)
		}
	}
}
