package types

import (
	"slices"
	"strconv"
	"strings"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// Tuple creates or finds an existing tuple type with the given elements.
// The empty tuple is the unit type.
func (in *Interner) Tuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	key := tupleKey(elems)
	if id, ok := in.tupleIdx[key]; ok {
		return id
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: slices.Clone(elems)})
	id := in.internRaw(Type{Kind: KindTuple, Payload: lastSlot(len(in.tuples), "tuple")})
	in.tupleIdx[key] = id
	return id
}

// TupleInfo returns the element types for a tuple TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

func tupleKey(elems []TypeID) string {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(e), 10))
	}
	return b.String()
}
