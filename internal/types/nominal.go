package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"moveflow/internal/source"
)

// Field describes a single field of a struct, union or enum variant.
// Fields are addressed positionally; Name is kept for dumps.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Decl   source.Span
	Fields []Field
	// Drop marks a user-defined destructor.
	Drop bool
}

// UnionInfo stores metadata for a union type. All fields overlap in memory.
type UnionInfo struct {
	Name   string
	Decl   source.Span
	Fields []Field
}

// Variant is a single enum variant.
type Variant struct {
	Name   string
	Fields []Field
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     string
	Decl     source.Span
	Variants []Variant
	Drop     bool
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name string, decl source.Span) TypeID {
	in.structs = append(in.structs, StructInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindStruct, Payload: lastSlot(len(in.structs), "struct")})
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []Field) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// SetStructDrop marks the struct as carrying a destructor.
func (in *Interner) SetStructDrop(typeID TypeID, drop bool) {
	if info := in.structInfo(typeID); info != nil {
		info.Drop = drop
	}
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	return info, info != nil
}

// RegisterUnion allocates a nominal union type slot and returns its TypeID.
func (in *Interner) RegisterUnion(name string, decl source.Span) TypeID {
	in.unions = append(in.unions, UnionInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindUnion, Payload: lastSlot(len(in.unions), "union")})
}

// SetUnionFields stores the resolved fields for the union type.
func (in *Interner) SetUnionFields(typeID TypeID, fields []Field) {
	if info := in.unionInfo(typeID); info != nil {
		info.Fields = slices.Clone(fields)
	}
}

// UnionInfo returns metadata for the provided union TypeID.
func (in *Interner) UnionInfo(typeID TypeID) (*UnionInfo, bool) {
	info := in.unionInfo(typeID)
	return info, info != nil
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
func (in *Interner) RegisterEnum(name string, decl source.Span) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindEnum, Payload: lastSlot(len(in.enums), "enum")})
}

// SetEnumVariants stores the resolved variants for the enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []Variant) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Variants = make([]Variant, len(variants))
	for i, v := range variants {
		info.Variants[i] = Variant{Name: v.Name, Fields: slices.Clone(v.Fields)}
	}
}

// SetEnumDrop marks the enum as carrying a destructor.
func (in *Interner) SetEnumDrop(typeID TypeID, drop bool) {
	if info := in.enumInfo(typeID); info != nil {
		info.Drop = drop
	}
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	return info, info != nil
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) unionInfo(typeID TypeID) *UnionInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindUnion {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil
	}
	return &in.unions[tt.Payload]
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func lastSlot(n int, what string) uint32 {
	slot, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("%s info overflow: %w", what, err))
	}
	return slot
}

// Nominals returns struct, union and enum TypeIDs in registration order.
func (in *Interner) Nominals() []TypeID {
	var out []TypeID
	for i := 1; i < len(in.types); i++ {
		switch in.types[i].Kind {
		case KindStruct, KindUnion, KindEnum:
			id, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("type id overflow: %w", err))
			}
			out = append(out, TypeID(id))
		}
	}
	return out
}
