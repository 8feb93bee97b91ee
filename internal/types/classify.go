package types

// NoVariant is passed to Fields when the type is not viewed through a
// particular enum variant.
const NoVariant = -1

// IsRefOrPtr reports &T, &mut T and raw pointers.
func (in *Interner) IsRefOrPtr(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && (tt.Kind == KindReference || tt.Kind == KindPointer)
}

// IsBox reports the owning box type.
func (in *Interner) IsBox(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindOwn
}

// IsUnion reports union types.
func (in *Interner) IsUnion(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindUnion
}

// IsSlice reports [T].
func (in *Interner) IsSlice(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindArray && tt.Count == ArrayDynamicLength
}

// ArrayLen returns the static length of [T; N]. Slices report false.
func (in *Interner) ArrayLen(id TypeID) (uint64, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray || tt.Count == ArrayDynamicLength {
		return 0, false
	}
	return uint64(tt.Count), true
}

// HasDestructor reports ADTs declared with a user destructor. The owning box
// is never reported: moving out of *b is allowed.
func (in *Interner) HasDestructor(id TypeID) bool {
	if info := in.structInfo(id); info != nil {
		return info.Drop
	}
	if info := in.enumInfo(id); info != nil {
		return info.Drop
	}
	return false
}

// Fields returns the positional fields of a tuple, struct, union or, when
// variant is not NoVariant, of the given enum variant.
func (in *Interner) Fields(id TypeID, variant int) ([]Field, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return nil, false
		}
		out := make([]Field, len(info.Elems))
		for i, e := range info.Elems {
			out[i] = Field{Type: e}
		}
		return out, true
	case KindStruct:
		if info := in.structInfo(id); info != nil {
			return info.Fields, true
		}
	case KindUnion:
		if info := in.unionInfo(id); info != nil {
			return info.Fields, true
		}
	case KindEnum:
		info := in.enumInfo(id)
		if info == nil || variant < 0 || variant >= len(info.Variants) {
			return nil, false
		}
		return info.Variants[variant].Fields, true
	}
	return nil, false
}
