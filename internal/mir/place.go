package mir

import "fmt"

type PlaceElemKind uint8

const (
	// ElemDeref follows a reference, raw pointer or box.
	ElemDeref PlaceElemKind = iota
	// ElemField selects a positional field.
	ElemField
	// ElemIndex indexes with the value of a local.
	ElemIndex
	// ElemConstantIndex indexes with a constant offset, optionally from the end.
	ElemConstantIndex
	// ElemSubslice selects the range [From, To) or, with FromEnd, [From, len-To).
	ElemSubslice
	// ElemDowncast views an enum through one of its variants.
	ElemDowncast
)

// PlaceElem is a single projection step. It is comparable, so it can be used
// directly as a map key.
type PlaceElem struct {
	Kind PlaceElemKind

	Field     int
	Index     LocalID
	Offset    uint64
	MinLength uint64
	From      uint64
	To        uint64
	FromEnd   bool
	Variant   int
}

func DerefElem() PlaceElem {
	return PlaceElem{Kind: ElemDeref, Index: NoLocalID}
}

func FieldElem(field int) PlaceElem {
	return PlaceElem{Kind: ElemField, Field: field, Index: NoLocalID}
}

func IndexElem(local LocalID) PlaceElem {
	return PlaceElem{Kind: ElemIndex, Index: local}
}

func ConstantIndexElem(offset, minLength uint64, fromEnd bool) PlaceElem {
	return PlaceElem{Kind: ElemConstantIndex, Index: NoLocalID, Offset: offset, MinLength: minLength, FromEnd: fromEnd}
}

func SubsliceElem(from, to uint64, fromEnd bool) PlaceElem {
	return PlaceElem{Kind: ElemSubslice, Index: NoLocalID, From: from, To: to, FromEnd: fromEnd}
}

func DowncastElem(variant int) PlaceElem {
	return PlaceElem{Kind: ElemDowncast, Index: NoLocalID, Variant: variant}
}

// Lift erases the index operand so that every dynamic index of the same base
// maps to one key.
func (e PlaceElem) Lift() PlaceElem {
	if e.Kind == ElemIndex {
		e.Index = NoLocalID
	}
	return e
}

type Place struct {
	Local LocalID
	Proj  []PlaceElem
}

func PlaceFromLocal(local LocalID) Place {
	return Place{Local: local}
}

// Project returns a new place extended by elem. The receiver is not modified.
func (p Place) Project(elem PlaceElem) Place {
	proj := make([]PlaceElem, len(p.Proj)+1)
	copy(proj, p.Proj)
	proj[len(p.Proj)] = elem
	return Place{Local: p.Local, Proj: proj}
}

func (p Place) Deref() Place {
	return p.Project(DerefElem())
}

func (p Place) Field(field int) Place {
	return p.Project(FieldElem(field))
}

// Prefix returns the place made of the first n projection elements. The
// result shares storage with p and must not be mutated.
func (p Place) Prefix(n int) Place {
	return Place{Local: p.Local, Proj: p.Proj[:n:n]}
}

// AsLocal reports whether the place is a bare local.
func (p Place) AsLocal() (LocalID, bool) {
	if len(p.Proj) != 0 {
		return NoLocalID, false
	}
	return p.Local, true
}

func (p Place) LastElem() (PlaceElem, bool) {
	if len(p.Proj) == 0 {
		return PlaceElem{}, false
	}
	return p.Proj[len(p.Proj)-1], true
}

func (p Place) IsValid() bool {
	return p.Local != NoLocalID
}

func (p Place) Equal(other Place) bool {
	if p.Local != other.Local || len(p.Proj) != len(other.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != other.Proj[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether p is other or one of its ancestors.
func (p Place) IsPrefixOf(other Place) bool {
	if p.Local != other.Local || len(p.Proj) > len(other.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != other.Proj[i] {
			return false
		}
	}
	return true
}

// Locals returns every local mentioned by the place, index operands included.
func (p Place) Locals() []LocalID {
	out := []LocalID{p.Local}
	for _, e := range p.Proj {
		if e.Kind == ElemIndex {
			out = append(out, e.Index)
		}
	}
	return out
}

func (p Place) String() string {
	return formatPlace(p, nil)
}

// formatPlace renders p in fixture syntax. variantName resolves downcast
// names for the prefix p.Proj[:i]; nil falls back to "#N".
func formatPlace(p Place, variantName func(prefix int, variant int) string) string {
	if !p.IsValid() {
		return "_?"
	}
	out := fmt.Sprintf("_%d", p.Local)
	for i, e := range p.Proj {
		switch e.Kind {
		case ElemDeref:
			out = "(*" + out + ")"
		case ElemField:
			out += fmt.Sprintf(".%d", e.Field)
		case ElemIndex:
			out += fmt.Sprintf("[_%d]", e.Index)
		case ElemConstantIndex:
			if e.FromEnd {
				out += fmt.Sprintf("[-%d of %d]", e.Offset, e.MinLength)
			} else {
				out += fmt.Sprintf("[%d of %d]", e.Offset, e.MinLength)
			}
		case ElemSubslice:
			if e.FromEnd {
				out += fmt.Sprintf("[%d..-%d]", e.From, e.To)
			} else {
				out += fmt.Sprintf("[%d..%d]", e.From, e.To)
			}
		case ElemDowncast:
			name := ""
			if variantName != nil {
				name = variantName(i, e.Variant)
			}
			if name == "" {
				name = fmt.Sprintf("#%d", e.Variant)
			}
			out = "(" + out + " as " + name + ")"
		default:
			out += ".<?>"
		}
	}
	return out
}
