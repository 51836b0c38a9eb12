package driver

import (
	"sort"

	"gluec/internal/ast"
)

// LookupType returns the registry entry for a fully-qualified ID. The
// module declaring the type must have been processed already.
func (d *Driver) LookupType(id string) (TypeInfo, error) {
	ti, ok := d.types[id]
	if !ok {
		return TypeInfo{}, &lookupError{id: id, notFound: true}
	}
	return ti, nil
}

// lookupKind enforces that the named type has the expected structural
// kind, keeping "doesn't exist" and "wrong shape" as distinct failures.
func (d *Driver) lookupKind(id string, kind ast.TypeKind) (TypeInfo, error) {
	ti, err := d.LookupType(id)
	if err != nil {
		return TypeInfo{}, err
	}
	if ti.Type.Kind() != kind {
		return TypeInfo{}, &lookupError{id: id, want: kind.String()}
	}
	return ti, nil
}

// LookupUnitType asserts that id names a unit.
func (d *Driver) LookupUnitType(id string) (TypeInfo, error) {
	return d.lookupKind(id, ast.KindUnit)
}

// LookupEnumType asserts that id names an enum.
func (d *Driver) LookupEnumType(id string) (TypeInfo, error) {
	return d.lookupKind(id, ast.KindEnum)
}

// UnitType implements the glue compiler's type provider.
func (d *Driver) UnitType(id string) (*ast.UnitType, error) {
	ti, err := d.lookupKind(id, ast.KindUnit)
	if err != nil {
		return nil, err
	}
	return ti.Type.(*ast.UnitType), nil
}

// Types returns a snapshot of the registry, sorted by ID for determinism.
// With exportedOnly it filters to the exported-type list, which is only
// complete once glue compilation has run; calling earlier yields an
// incomplete list, not an error.
func (d *Driver) Types(exportedOnly bool) []TypeInfo {
	if exportedOnly {
		exported, err := d.ExportedTypes()
		if err != nil {
			return nil
		}
		out := make([]TypeInfo, 0, len(exported))
		for _, e := range exported {
			out = append(out, e.Info)
		}
		return out
	}

	out := make([]TypeInfo, 0, len(d.types))
	for _, ti := range d.types {
		out = append(out, ti)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ExportedType pairs a registry entry with its host-visible name.
type ExportedType struct {
	Info   TypeInfo
	HostID string
}

// ExportedTypes builds the final export list: every explicit EVT export
// resolved against the registry, then the auto-exported public enums under
// their own IDs. An export naming a type the run never saw is a hard
// error.
func (d *Driver) ExportedTypes() ([]ExportedType, error) {
	var out []ExportedType

	for _, ex := range d.glue.ExportedIDs() {
		ti, ok := d.types[ex.SpicyID]
		if !ok {
			return nil, &lookupError{id: ex.SpicyID, notFound: true}
		}
		out = append(out, ExportedType{Info: ti, HostID: ex.HostID})
	}

	// public enums are exported automatically for backward compatibility,
	// whether or not any binding names them
	for _, ti := range d.publicEnums {
		out = append(out, ExportedType{Info: ti, HostID: ti.ID})
	}
	return out, nil
}
