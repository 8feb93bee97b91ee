package types

import "fmt"

// TypeID names a type inside one Interner. IDs from different interners
// must not be mixed.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind is the shape of a type as far as move paths care: whether it has
// fields, elements, a pointee, or nothing to project into.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindString
	KindInt
	KindUint
	KindFloat
	KindArray     // [T; N] and [T]
	KindPointer   // *const T, *mut T
	KindReference // &T, &mut T
	KindOwn       // Box<T>
	KindTuple
	KindStruct
	KindUnion
	KindEnum
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindUnit:      "unit",
	KindBool:      "bool",
	KindString:    "string",
	KindInt:       "int",
	KindUint:      "uint",
	KindFloat:     "float",
	KindArray:     "array",
	KindPointer:   "pointer",
	KindReference: "reference",
	KindOwn:       "own",
	KindTuple:     "tuple",
	KindStruct:    "struct",
	KindUnion:     "union",
	KindEnum:      "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Width is the bit size of a numeric primitive; WidthAny is the
// platform-sized int/uint/float.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// ArrayDynamicLength is the Count of a slice.
const ArrayDynamicLength = ^uint32(0)

// Type is the interned descriptor. It is comparable and serves as its own
// dedup key, so two structurally equal descriptors get the same TypeID.
// Nominal types and tuples differ by Payload, their side-table slot.
type Type struct {
	Kind    Kind
	Elem    TypeID // arrays, pointers, references, boxes
	Count   uint32 // arrays
	Width   Width  // numeric primitives
	Mutable bool   // pointers and references
	Payload uint32
}

func MakeInt(width Width) Type   { return Type{Kind: KindInt, Width: width} }
func MakeUint(width Width) Type  { return Type{Kind: KindUint, Width: width} }
func MakeFloat(width Width) Type { return Type{Kind: KindFloat, Width: width} }

// MakeArray describes [elem; count]; count ArrayDynamicLength gives a slice.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes [elem].
func MakeSlice(elem TypeID) Type { return MakeArray(elem, ArrayDynamicLength) }

func MakePointer(elem TypeID, mutable bool) Type {
	return Type{Kind: KindPointer, Elem: elem, Mutable: mutable}
}

func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}

// MakeOwn describes Box<elem>.
func MakeOwn(elem TypeID) Type { return Type{Kind: KindOwn, Elem: elem} }
