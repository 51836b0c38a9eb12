package artifact

import (
	"gluec/internal/ast"
)

// FromModule flattens a parsed module into its serialized form.
func FromModule(mod *ast.Module) Module {
	out := Module{ID: mod.ID, Path: mod.Path}
	for _, d := range mod.Decls {
		out.Decls = append(out.Decls, fromDecl(mod.ID, d))
	}
	return out
}

func fromDecl(moduleID string, d *ast.TypeDecl) Decl {
	decl := Decl{
		ID:      ast.Qualified(moduleID, d.ID),
		Kind:    d.Type.Kind().String(),
		Linkage: d.Linkage.String(),
	}
	switch t := d.Type.(type) {
	case *ast.UnitType:
		for _, f := range t.Fields {
			decl.Fields = append(decl.Fields, FieldDecl{
				Name:      f.Name,
				Type:      TypeString(f.Type),
				Anonymous: f.Anonymous,
			})
		}
	case *ast.EnumType:
		for _, l := range t.Labels {
			decl.Labels = append(decl.Labels, LabelDecl{Name: l.Name, Value: l.Value})
		}
	}
	return decl
}

// TypeString renders a type for the serialized declaration table.
func TypeString(t ast.Type) string {
	switch t := t.(type) {
	case *ast.ScalarType:
		return t.Name
	case *ast.VectorType:
		return "vector<" + TypeString(t.Elem) + ">"
	case *ast.RefType:
		return t.Target
	case *ast.UnitType:
		return "unit"
	case *ast.EnumType:
		return "enum"
	}
	return "?"
}
