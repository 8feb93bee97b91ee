package mir_test

import (
	"moveflow/internal/mir"
	"moveflow/internal/source"
	"moveflow/internal/types"
)

type fixture struct {
	in     *types.Interner
	b      types.Builtins
	ref    types.TypeID
	box    types.TypeID
	arr    types.TypeID
	slice  types.TypeID
	pair   types.TypeID
	guard  types.TypeID
	union  types.TypeID
	opt    types.TypeID
	refArr types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	f := &fixture{in: in, b: in.Builtins()}
	f.ref = in.Intern(types.MakeReference(f.b.Int, false))
	f.box = in.Intern(types.MakeOwn(f.b.Int))
	f.arr = in.Intern(types.MakeArray(f.box, 4))
	f.slice = in.Intern(types.MakeSlice(f.box))
	f.refArr = in.Intern(types.MakeReference(f.slice, false))

	f.pair = in.RegisterStruct("Pair", sourceSpan())
	in.SetStructFields(f.pair, []types.Field{{Type: f.b.Int}, {Type: f.box}})

	f.guard = in.RegisterStruct("Guard", sourceSpan())
	in.SetStructFields(f.guard, []types.Field{{Type: f.box}})
	in.SetStructDrop(f.guard, true)

	f.union = in.RegisterUnion("U", sourceSpan())
	in.SetUnionFields(f.union, []types.Field{{Type: f.b.Int}, {Type: f.b.Float}})

	f.opt = in.RegisterEnum("Opt", sourceSpan())
	in.SetEnumVariants(f.opt, []types.Variant{
		{Name: "None"},
		{Name: "Some", Fields: []types.Field{{Type: f.box}}},
	})
	return f
}

// body declares _0: () followed by the given local types; the first argCount
// of them are parameters.
func (f *fixture) body(argCount int, locals ...types.TypeID) *mir.Body {
	b := &mir.Body{Name: "f", Result: f.b.Unit, ArgCount: argCount}
	b.Locals = append(b.Locals, mir.Local{Name: "_0", Type: f.b.Unit})
	for _, ty := range locals {
		b.Locals = append(b.Locals, mir.Local{Type: ty})
	}
	return b
}

func assign(dst mir.Place, rv mir.RValue) mir.Statement {
	return mir.Statement{Kind: mir.StmtAssign, Assign: mir.AssignStmt{Dst: dst, Src: rv}}
}

func use(op mir.Operand) mir.RValue {
	return mir.RValue{Kind: mir.RValueUse, Use: op}
}

func ret() mir.Terminator {
	return mir.Terminator{Kind: mir.TermReturn}
}

func sourceSpan() source.Span {
	return source.Span{}
}
