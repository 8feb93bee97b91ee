package mir

import (
	"fmt"

	"moveflow/internal/types"
)

// PlaceTy is the type of a place; Variant is set after a downcast.
type PlaceTy struct {
	Type    types.TypeID
	Variant int
}

func placeTyFromType(id types.TypeID) PlaceTy {
	return PlaceTy{Type: id, Variant: types.NoVariant}
}

// TypeError reports an ill-typed projection. Typer.PlaceType panics with it;
// Validate uses the non-panicking form.
type TypeError struct {
	Base types.TypeID
	Elem PlaceElem
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("ill-typed projection %s on type #%d: %s", elemName(e.Elem.Kind), e.Base, e.Msg)
}

// Typer answers place-type queries for bodies whose types live in one interner.
type Typer struct {
	in *types.Interner
}

func NewTyper(in *types.Interner) *Typer {
	return &Typer{in: in}
}

// PlaceType returns the type of local projected by proj. It panics with a
// *TypeError when a projection does not apply to its base.
func (t *Typer) PlaceType(body *Body, local LocalID, proj []PlaceElem) PlaceTy {
	pt, err := t.TryPlaceType(body, local, proj)
	if err != nil {
		panic(err)
	}
	return pt
}

// TryPlaceType is PlaceType returning the error instead of panicking.
func (t *Typer) TryPlaceType(body *Body, local LocalID, proj []PlaceElem) (PlaceTy, error) {
	l := body.Local(local)
	if l == nil {
		return PlaceTy{}, fmt.Errorf("unknown local _%d", local)
	}
	pt := placeTyFromType(l.Type)
	for _, elem := range proj {
		next, err := t.Project(pt, elem)
		if err != nil {
			return PlaceTy{}, err
		}
		pt = next
	}
	return pt, nil
}

// Project applies one projection element to base.
func (t *Typer) Project(base PlaceTy, elem PlaceElem) (PlaceTy, error) {
	tt, ok := t.in.Lookup(base.Type)
	if !ok {
		return PlaceTy{}, &TypeError{Base: base.Type, Elem: elem, Msg: "unknown type"}
	}
	fail := func(msg string) (PlaceTy, error) {
		return PlaceTy{}, &TypeError{Base: base.Type, Elem: elem, Msg: msg}
	}

	switch elem.Kind {
	case ElemDeref:
		switch tt.Kind {
		case types.KindReference, types.KindPointer, types.KindOwn:
			return placeTyFromType(tt.Elem), nil
		}
		return fail("not a pointer")

	case ElemField:
		if tt.Kind == types.KindEnum && base.Variant == types.NoVariant {
			return fail("enum field without downcast")
		}
		fields, ok := t.in.Fields(base.Type, base.Variant)
		if !ok {
			return fail("type has no fields")
		}
		if elem.Field < 0 || elem.Field >= len(fields) {
			return fail(fmt.Sprintf("field %d out of range", elem.Field))
		}
		return placeTyFromType(fields[elem.Field].Type), nil

	case ElemIndex, ElemConstantIndex:
		if tt.Kind != types.KindArray {
			return fail("not an array or slice")
		}
		return placeTyFromType(tt.Elem), nil

	case ElemSubslice:
		if tt.Kind != types.KindArray {
			return fail("not an array or slice")
		}
		if tt.Count == types.ArrayDynamicLength {
			return placeTyFromType(t.in.Intern(types.MakeSlice(tt.Elem))), nil
		}
		n := uint64(tt.Count)
		var length uint64
		switch {
		case elem.FromEnd && elem.From <= n && elem.To <= n-elem.From:
			length = n - elem.From - elem.To
		case !elem.FromEnd && elem.From <= elem.To && elem.To <= n:
			length = elem.To - elem.From
		default:
			return fail("subslice out of range")
		}
		return placeTyFromType(t.in.Intern(types.MakeArray(tt.Elem, uint32(length)))), nil

	case ElemDowncast:
		info, ok := t.in.EnumInfo(base.Type)
		if !ok {
			return fail("not an enum")
		}
		if elem.Variant < 0 || elem.Variant >= len(info.Variants) {
			return fail(fmt.Sprintf("variant %d out of range", elem.Variant))
		}
		return PlaceTy{Type: base.Type, Variant: elem.Variant}, nil
	}
	return fail("unknown projection")
}

// Type-classification queries used by the move gatherer.

func (t *Typer) Lookup(id types.TypeID) (types.Type, bool) { return t.in.Lookup(id) }
func (t *Typer) HasDestructor(id types.TypeID) bool        { return t.in.HasDestructor(id) }
func (t *Typer) IsUnion(id types.TypeID) bool              { return t.in.IsUnion(id) }
func (t *Typer) IsRefOrPtr(id types.TypeID) bool           { return t.in.IsRefOrPtr(id) }
func (t *Typer) IsSlice(id types.TypeID) bool              { return t.in.IsSlice(id) }
func (t *Typer) ArrayLen(id types.TypeID) (uint64, bool)   { return t.in.ArrayLen(id) }
func (t *Typer) IsBox(id types.TypeID) bool                { return t.in.IsBox(id) }

func elemName(k PlaceElemKind) string {
	switch k {
	case ElemDeref:
		return "Deref"
	case ElemField:
		return "Field"
	case ElemIndex:
		return "Index"
	case ElemConstantIndex:
		return "ConstantIndex"
	case ElemSubslice:
		return "Subslice"
	case ElemDowncast:
		return "Downcast"
	}
	return "?"
}
