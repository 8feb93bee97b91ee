package moves

import (
	"moveflow/internal/mir"
	"moveflow/internal/source"
	"moveflow/internal/types"
)

type testTypes struct {
	in    *types.Interner
	b     types.Builtins
	ref   types.TypeID
	box   types.TypeID
	arr   types.TypeID
	slice types.TypeID
	pair  types.TypeID
	guard types.TypeID
	union types.TypeID
}

func newTestTypes() *testTypes {
	in := types.NewInterner()
	tt := &testTypes{in: in, b: in.Builtins()}
	tt.box = in.Intern(types.MakeOwn(tt.b.Int))
	tt.arr = in.Intern(types.MakeArray(tt.box, 4))
	tt.slice = in.Intern(types.MakeSlice(tt.box))

	tt.pair = in.RegisterStruct("Pair", source.Span{})
	in.SetStructFields(tt.pair, []types.Field{{Type: tt.b.Int}, {Type: tt.box}})
	tt.ref = in.Intern(types.MakeReference(tt.pair, false))

	tt.guard = in.RegisterStruct("Guard", source.Span{})
	in.SetStructFields(tt.guard, []types.Field{{Type: tt.box}})
	in.SetStructDrop(tt.guard, true)

	tt.union = in.RegisterUnion("U", source.Span{})
	in.SetUnionFields(tt.union, []types.Field{{Type: tt.b.Int}, {Type: tt.b.Float}})
	return tt
}

func (tt *testTypes) body(argCount int, locals ...types.TypeID) *mir.Body {
	b := &mir.Body{Name: "f", Result: tt.b.Unit, ArgCount: argCount}
	b.Locals = append(b.Locals, mir.Local{Type: tt.b.Unit})
	for _, ty := range locals {
		b.Locals = append(b.Locals, mir.Local{Type: ty})
	}
	b.Blocks = []mir.Block{{Term: mir.Terminator{Kind: mir.TermReturn}}}
	return b
}

func (tt *testTypes) gatherer(body *mir.Body) *gatherer {
	b := newBuilder(body, mir.NewTyper(tt.in), GatherOptions{})
	return &gatherer{b: b, loc: mir.Location{Block: 0, Statement: 0}}
}

func local(i int) mir.Place {
	return mir.PlaceFromLocal(mir.LocalIDFromInt(i))
}
