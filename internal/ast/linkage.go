package ast

// Linkage is the declared visibility of a type.
type Linkage uint8

const (
	LinkagePrivate Linkage = iota
	LinkagePublic
)

func (l Linkage) String() string {
	if l == LinkagePublic {
		return "public"
	}
	return "private"
}
