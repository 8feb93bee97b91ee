package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins are the primitive TypeIDs every interner is seeded with.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	String  TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
}

// Interner hands out TypeIDs. Structural types are deduplicated; nominal
// types and tuples keep their metadata in side tables indexed by Payload,
// slot 0 of each being an unused sentinel.
//
// An Interner is not safe for concurrent use. The driver gives each file
// its own.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	structs  []StructInfo
	unions   []UnionInfo
	enums    []EnumInfo
	tuples   []TupleInfo
	tupleIdx map[string]TypeID
}

func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[Type]TypeID, 64),
		structs:  make([]StructInfo, 1),
		unions:   make([]UnionInfo, 1),
		enums:    make([]EnumInfo, 1),
		tuples:   make([]TupleInfo, 1),
		tupleIdx: make(map[string]TypeID),
	}
	in.builtins = Builtins{
		Invalid: in.internRaw(Type{Kind: KindInvalid}),
		Unit:    in.Intern(Type{Kind: KindUnit}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		String:  in.Intern(Type{Kind: KindString}),
		Int:     in.Intern(MakeInt(WidthAny)),
		Uint:    in.Intern(MakeUint(WidthAny)),
		Float:   in.Intern(MakeFloat(WidthAny)),
	}
	return in
}

func (in *Interner) Builtins() Builtins { return in.builtins }

// Intern returns the TypeID of t, adding it on first sight. The invalid
// kind always maps to NoTypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw appends t unconditionally.
func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor of id. NoTypeID and foreign IDs are not found.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// Len counts interned descriptors, the invalid slot included.
func (in *Interner) Len() int { return len(in.types) }
