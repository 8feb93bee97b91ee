package moves_test

import (
	"errors"
	"testing"

	"moveflow/internal/mir"
	"moveflow/internal/moves"
	"moveflow/internal/source"
	"moveflow/internal/trace"
	"moveflow/internal/types"
)

type env struct {
	in    *types.Interner
	b     types.Builtins
	ref   types.TypeID
	box   types.TypeID
	arr   types.TypeID
	pair  types.TypeID
	union types.TypeID
}

func newEnv() *env {
	in := types.NewInterner()
	e := &env{in: in, b: in.Builtins()}
	e.box = in.Intern(types.MakeOwn(e.b.Int))
	e.arr = in.Intern(types.MakeArray(e.box, 4))
	e.pair = in.RegisterStruct("Pair", source.Span{})
	in.SetStructFields(e.pair, []types.Field{{Type: e.b.Int}, {Type: e.box}})
	e.ref = in.Intern(types.MakeReference(e.pair, false))
	e.union = in.RegisterUnion("U", source.Span{})
	in.SetUnionFields(e.union, []types.Field{{Type: e.b.Int}, {Type: e.b.Float}})
	return e
}

func (e *env) body(argCount int, locals ...types.TypeID) *mir.Body {
	b := &mir.Body{Name: "f", Result: e.b.Unit, ArgCount: argCount}
	b.Locals = append(b.Locals, mir.Local{Type: e.b.Unit})
	for _, ty := range locals {
		b.Locals = append(b.Locals, mir.Local{Type: ty})
	}
	return b
}

func (e *env) gather(body *mir.Body) (*moves.MoveData, []moves.PlaceError) {
	return moves.GatherMoves(body, mir.NewTyper(e.in))
}

func local(i int) mir.Place {
	return mir.PlaceFromLocal(mir.LocalIDFromInt(i))
}

func assign(dst mir.Place, rv mir.RValue) mir.Statement {
	return mir.Statement{Kind: mir.StmtAssign, Assign: mir.AssignStmt{Dst: dst, Src: rv}}
}

func useMove(p mir.Place) mir.RValue {
	return mir.RValue{Kind: mir.RValueUse, Use: mir.MoveOperand(p)}
}

func storageDead(i int) mir.Statement {
	return mir.Statement{Kind: mir.StmtStorageDead, StorageDead: mir.StorageStmt{Local: mir.LocalIDFromInt(i)}}
}

func block(term mir.Terminator, stmts ...mir.Statement) mir.Block {
	return mir.Block{Stmts: stmts, Term: term}
}

var (
	ret  = mir.Terminator{Kind: mir.TermReturn}
	exit = mir.Terminator{Kind: mir.TermUnreachable}
)

func TestBoxShallowInit(t *testing.T) {
	e := newEnv()
	body := e.body(1, e.ref, e.box)
	boxNew := mir.RValue{Kind: mir.RValueNullaryOp, Nullary: mir.NullaryOp{Op: mir.NullOpBox, Type: e.b.Int}}
	body.Blocks = []mir.Block{block(exit, assign(local(2), boxNew), storageDead(2))}

	data, errs := e.gather(body)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	root := data.RevLookup.FindLocal(2)

	inits := data.InitsOf(root)
	if len(inits) != 1 || data.Inits[inits[0]].Kind != moves.InitShallow {
		t.Fatalf("want one shallow init of _2, got %v", inits)
	}
	if res := data.RevLookup.Find(local(2).Deref()); !res.Exact {
		t.Fatalf("box interior path was not created")
	}
	mo := data.MovesAt(mir.Location{Block: 0, Statement: 1})
	if len(mo) != 1 || data.Moves[mo[0]].Path != root {
		t.Fatalf("StorageDead: want one move of _2, got %v", mo)
	}
	if len(data.Moves) != 1 {
		t.Fatalf("want 1 move, got %d", len(data.Moves))
	}
}

func TestUnionFieldMove(t *testing.T) {
	e := newEnv()
	body := e.body(1, e.union, e.b.Int)
	body.Blocks = []mir.Block{block(exit, assign(local(2), useMove(local(1).Field(0))))}

	data, errs := e.gather(body)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	root := data.RevLookup.FindLocal(1)
	if len(data.Moves) != 1 || data.Moves[0].Path != root {
		t.Fatalf("want one move of the union root mp%d, got %v", root, data.Moves)
	}
	if _, ok := data.RevLookup.Child(root, mir.FieldElem(0)); ok {
		t.Fatalf("lookup has a child entry for the union field")
	}
}

func TestUnionFieldAssignInitsWholeUnion(t *testing.T) {
	e := newEnv()
	body := e.body(0, e.union)
	five := mir.RValue{Kind: mir.RValueUse, Use: mir.ConstOperand(mir.IntConst(5))}
	body.Blocks = []mir.Block{block(exit, assign(local(1).Field(0), five))}

	data, _ := e.gather(body)
	inits := data.InitsAt(mir.Location{Block: 0, Statement: 0})
	if len(inits) != 1 || data.Inits[inits[0]].Path != data.RevLookup.FindLocal(1) {
		t.Fatalf("want the union root initialized, got %v", inits)
	}
}

func TestSubsliceExpansion(t *testing.T) {
	e := newEnv()
	body := e.body(0, e.arr, e.arr, e.arr, e.arr)
	sub := func(from, to uint64) mir.Place {
		return local(1).Project(mir.SubsliceElem(from, to, false))
	}
	body.Blocks = []mir.Block{block(exit,
		assign(local(2), useMove(sub(1, 3))),
		assign(local(3), useMove(sub(3, 4))),
		assign(local(4), useMove(sub(0, 1))),
	)}

	data, errs := e.gather(body)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	pathsAt := func(stmt int) []moves.MovePathIndex {
		var out []moves.MovePathIndex
		for _, mo := range data.MovesAt(mir.Location{Block: 0, Statement: stmt}) {
			out = append(out, data.Moves[mo].Path)
		}
		return out
	}
	middle, tail, head := pathsAt(0), pathsAt(1), pathsAt(2)
	if len(middle) != 2 || len(tail) != 1 || len(head) != 1 {
		t.Fatalf("move counts: middle=%v tail=%v head=%v", middle, tail, head)
	}
	seen := map[moves.MovePathIndex]bool{}
	for _, mpi := range append(append(middle, tail...), head...) {
		if seen[mpi] {
			t.Fatalf("mp%d is shared between subslice moves", mpi)
		}
		seen[mpi] = true
		last, ok := data.MovePaths[mpi].Place.LastElem()
		if !ok || last.Kind != mir.ElemConstantIndex || last.MinLength != 4 || last.FromEnd {
			t.Fatalf("mp%d is not a constant index: %s", mpi, data.MovePaths[mpi].Place)
		}
	}
}

func TestSubsliceOfNonArrayPanics(t *testing.T) {
	e := newEnv()
	slice := e.in.Intern(types.MakeSlice(e.box))
	body := e.body(0, slice, slice)
	body.Blocks = []mir.Block{block(exit,
		assign(local(2), useMove(local(1).Project(mir.SubsliceElem(0, 1, false)))),
	)}

	defer func() {
		var bug *moves.BugError
		err, _ := recover().(error)
		if !errors.As(err, &bug) {
			t.Fatalf("want *BugError, got %v", err)
		}
	}()
	e.gather(body)
}

func TestErrorsAccumulate(t *testing.T) {
	e := newEnv()
	body := e.body(2, e.ref, e.ref, e.box, e.box, e.box)
	body.Blocks = []mir.Block{block(exit,
		assign(local(3), useMove(local(1).Deref().Field(1))),
		assign(local(4), useMove(local(2).Deref().Field(1))),
		assign(local(5), useMove(local(3))),
	)}

	data, err := moves.Gather(body, mir.NewTyper(e.in))
	var gerr *moves.GatherError
	if !errors.As(err, &gerr) {
		t.Fatalf("want *GatherError, got %v", err)
	}
	if len(gerr.Errors) != 2 {
		t.Fatalf("want 2 errors, got %d: %v", len(gerr.Errors), gerr.Errors)
	}
	if gerr.Data != data {
		t.Fatalf("error does not carry the returned data")
	}
	for i, pe := range gerr.Errors {
		if pe.Err.Illegal.Kind.Kind != moves.BorrowedContent {
			t.Fatalf("error %d: %v", i, pe.Err.Illegal.Kind.Kind)
		}
		if pe.Err.Illegal.Location.Statement != i {
			t.Fatalf("error %d at %s", i, pe.Err.Illegal.Location)
		}
	}
	// the legal move and all inits survive
	mo := data.MovesAt(mir.Location{Block: 0, Statement: 2})
	if len(mo) != 1 || data.Moves[mo[0]].Path != data.RevLookup.FindLocal(3) {
		t.Fatalf("legal move missing: %v", mo)
	}
	for stmt := range 3 {
		if n := len(data.InitsAt(mir.Location{Block: 0, Statement: stmt})); n != 1 {
			t.Fatalf("statement %d: %d inits", stmt, n)
		}
	}
	var me *moves.MoveError
	if !errors.As(err, &me) || me.Kind != moves.MoveErrIllegal {
		t.Fatalf("errors.As(*MoveError) failed on %v", err)
	}
}

func TestGatherWithoutErrors(t *testing.T) {
	e := newEnv()
	body := e.body(1, e.box)
	body.Blocks = []mir.Block{block(ret, assign(local(0), mir.RValue{Kind: mir.RValueUse, Use: mir.ConstOperand(mir.Const{Kind: mir.ConstUnit})}))}
	data, err := moves.Gather(body, mir.NewTyper(e.in))
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	mo := data.MovesAt(body.TerminatorLocation(0))
	if len(mo) != 1 || data.BaseLocal(data.Moves[mo[0]].Path) != mir.ReturnLocal {
		t.Fatalf("return should move _0, got %v", mo)
	}
}

func TestTerminators(t *testing.T) {
	e := newEnv()
	tests := []struct {
		name  string
		term  mir.Terminator
		moves []string
		inits []string
	}{
		{
			name:  "drop",
			term:  mir.Terminator{Kind: mir.TermDrop, Drop: mir.DropTerm{Place: local(1), Target: 1, Unwind: mir.NoBlockID}},
			moves: []string{"_1"},
		},
		{
			name: "drop and replace",
			term: mir.Terminator{Kind: mir.TermDropAndReplace, DropAndReplace: mir.DropAndReplaceTerm{
				Place: local(1), Value: mir.MoveOperand(local(2)), Target: 1, Unwind: mir.NoBlockID,
			}},
			moves: []string{"_2"},
			inits: []string{"_1 Deep"},
		},
		{
			name: "call",
			term: mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
				Func:    mir.ConstOperand(mir.Const{Kind: mir.ConstFn, FnName: "g"}),
				Args:    []mir.Operand{mir.MoveOperand(local(1)), mir.CopyOperand(local(3))},
				HasDest: true, Dest: local(2), Target: 1, Unwind: mir.NoBlockID,
			}},
			moves: []string{"_1"},
			inits: []string{"_2 NonPanicPathOnly"},
		},
		{
			name: "call without destination",
			term: mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
				Func: mir.ConstOperand(mir.Const{Kind: mir.ConstFn, FnName: "g"}),
				Args: []mir.Operand{mir.MoveOperand(local(2))}, Target: mir.NoBlockID, Unwind: mir.NoBlockID,
			}},
			moves: []string{"_2"},
		},
		{
			name: "yield",
			term: mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
				Value: mir.MoveOperand(local(1)), ResumeArg: local(2), Resume: 1, Drop: mir.NoBlockID,
			}},
			moves: []string{"_1"},
			inits: []string{"_2 Deep"},
		},
		{
			name:  "switch",
			term:  mir.Terminator{Kind: mir.TermSwitchInt, SwitchInt: mir.SwitchIntTerm{Discr: mir.MoveOperand(local(3)), Otherwise: 1}},
			moves: []string{"_3"},
		},
		{
			name: "assert",
			term: mir.Terminator{Kind: mir.TermAssert, Assert: mir.AssertTerm{Cond: mir.CopyOperand(local(3)), Expected: true, Target: 1, Unwind: mir.NoBlockID}},
		},
		{
			name: "inline asm",
			term: mir.Terminator{Kind: mir.TermInlineAsm, InlineAsm: mir.InlineAsmTerm{
				Operands: []mir.AsmOperand{
					{Kind: mir.AsmIn, In: mir.MoveOperand(local(1))},
					{Kind: mir.AsmOut, HasOut: true, Out: local(2)},
					{Kind: mir.AsmInOut, In: mir.MoveOperand(local(3)), HasOut: true, Out: local(3)},
					{Kind: mir.AsmOut},
					{Kind: mir.AsmSym, Symbol: "sym"},
				},
				Destination: 1,
			}},
			moves: []string{"_1", "_3"},
			inits: []string{"_2 Deep", "_3 Deep"},
		},
		{name: "goto", term: mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: 1}}},
		{name: "resume", term: mir.Terminator{Kind: mir.TermResume}},
		{name: "abort", term: mir.Terminator{Kind: mir.TermAbort}},
		{name: "generator drop", term: mir.Terminator{Kind: mir.TermGeneratorDrop}},
		{name: "false edges", term: mir.Terminator{Kind: mir.TermFalseEdges, FalseEdges: mir.FalseEdgesTerm{Real: 1, Imaginary: 1}}},
		{name: "false unwind", term: mir.Terminator{Kind: mir.TermFalseUnwind, FalseUnwind: mir.FalseUnwindTerm{Real: 1, Unwind: mir.NoBlockID}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := e.body(0, e.box, e.box, e.b.Bool)
			body.Blocks = []mir.Block{block(tc.term), block(exit)}
			data, errs := e.gather(body)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			loc := body.TerminatorLocation(0)

			var gotMoves []string
			for _, mo := range data.MovesAt(loc) {
				gotMoves = append(gotMoves, data.MovePaths[data.Moves[mo].Path].Place.String())
			}
			var gotInits []string
			for _, ii := range data.InitsAt(loc) {
				in := data.Inits[ii]
				gotInits = append(gotInits, data.MovePaths[in.Path].Place.String()+" "+in.Kind.String())
			}
			if !equalStrings(gotMoves, tc.moves) {
				t.Fatalf("moves = %v, want %v", gotMoves, tc.moves)
			}
			if !equalStrings(gotInits, tc.inits) {
				t.Fatalf("inits = %v, want %v", gotInits, tc.inits)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	e := newEnv()
	tests := []struct {
		name  string
		stmt  mir.Statement
		moves []string
		inits []string
	}{
		{
			name: "fake read creates path only",
			stmt: mir.Statement{Kind: mir.StmtFakeRead, FakeRead: mir.PlaceStmt{Place: local(1).Field(1)}},
		},
		{
			name:  "storage dead",
			stmt:  storageDead(2),
			moves: []string{"_2"},
		},
		{
			name: "storage live",
			stmt: mir.Statement{Kind: mir.StmtStorageLive, StorageLive: mir.StorageStmt{Local: 2}},
		},
		{
			name: "aggregate moves operands",
			stmt: assign(local(1), mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.Aggregate{
				Kind: mir.AggregateAdt, Type: e.pair,
				Operands: []mir.Operand{mir.ConstOperand(mir.IntConst(1)), mir.MoveOperand(local(2))},
			}}),
			moves: []string{"_2"},
			inits: []string{"_1 Deep"},
		},
		{
			name: "checked binary op gathers both sides",
			stmt: assign(local(3), mir.RValue{Kind: mir.RValueCheckedBinaryOp, Binary: mir.BinaryOp{
				Op: mir.BinAdd, Left: mir.MoveOperand(local(4)), Right: mir.MoveOperand(local(5)),
			}}),
			moves: []string{"_4", "_5"},
			inits: []string{"_3 Deep"},
		},
		{
			name:  "ref moves nothing",
			stmt:  assign(local(6), mir.RValue{Kind: mir.RValueRef, Ref: mir.RefOp{Place: local(1)}}),
			inits: []string{"_6 Deep"},
		},
		{
			name:  "thread local ref moves nothing",
			stmt:  assign(local(6), mir.RValue{Kind: mir.RValueThreadLocalRef, ThreadLocal: "tls"}),
			inits: []string{"_6 Deep"},
		},
		{
			name: "asm outputs",
			stmt: mir.Statement{Kind: mir.StmtInlineAsm, InlineAsm: mir.InlineAsmStmt{
				Outputs: []mir.AsmOutput{{Place: local(4)}, {Place: local(5), Indirect: true}},
				Inputs:  []mir.Operand{mir.MoveOperand(local(2))},
			}},
			moves: []string{"_2"},
			inits: []string{"_4 Deep"},
		},
		{name: "retag", stmt: mir.Statement{Kind: mir.StmtRetag, Retag: mir.PlaceStmt{Place: local(1)}}},
		{name: "nop", stmt: mir.Statement{Kind: mir.StmtNop}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			refPair := e.in.Intern(types.MakeReference(e.pair, false))
			body := e.body(0, e.pair, e.box, e.b.Int, e.b.Int, e.b.Int, refPair)
			body.Blocks = []mir.Block{block(exit, tc.stmt)}
			data, errs := e.gather(body)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			loc := mir.Location{Block: 0, Statement: 0}
			var gotMoves, gotInits []string
			for _, mo := range data.MovesAt(loc) {
				gotMoves = append(gotMoves, data.MovePaths[data.Moves[mo].Path].Place.String())
			}
			for _, ii := range data.InitsAt(loc) {
				in := data.Inits[ii]
				gotInits = append(gotInits, data.MovePaths[in.Path].Place.String()+" "+in.Kind.String())
			}
			if !equalStrings(gotMoves, tc.moves) {
				t.Fatalf("moves = %v, want %v", gotMoves, tc.moves)
			}
			if !equalStrings(gotInits, tc.inits) {
				t.Fatalf("inits = %v, want %v", gotInits, tc.inits)
			}
		})
	}
}

func TestFakeReadCreatesPath(t *testing.T) {
	e := newEnv()
	body := e.body(0, e.pair)
	body.Blocks = []mir.Block{block(exit, mir.Statement{Kind: mir.StmtFakeRead, FakeRead: mir.PlaceStmt{Place: local(1).Field(1)}})}
	data, _ := e.gather(body)
	res := data.RevLookup.Find(local(1).Field(1))
	if !res.Exact {
		t.Fatalf("_1.1 has no path")
	}
	if data.BaseLocal(res.Path) != 1 {
		t.Fatalf("BaseLocal = %d", data.BaseLocal(res.Path))
	}
	if res := data.RevLookup.Find(local(1).Field(0)); res.Exact || res.Path != data.RevLookup.FindLocal(1) {
		t.Fatalf("_1.0 should resolve to its parent, got %+v", res)
	}
}

func TestSetDiscriminantPanics(t *testing.T) {
	e := newEnv()
	opt := e.in.RegisterEnum("Opt", source.Span{})
	e.in.SetEnumVariants(opt, []types.Variant{{Name: "None"}, {Name: "Some", Fields: []types.Field{{Type: e.box}}}})
	body := e.body(0, opt)
	body.Blocks = []mir.Block{block(exit, mir.Statement{
		Kind:            mir.StmtSetDiscriminant,
		SetDiscriminant: mir.SetDiscriminantStmt{Place: local(1), Variant: 1},
	})}
	defer func() {
		bug, ok := recover().(*moves.BugError)
		if !ok {
			t.Fatalf("want *BugError panic")
		}
		if bug.Loc != (mir.Location{Block: 0, Statement: 0}) {
			t.Fatalf("bug at %s", bug.Loc)
		}
	}()
	e.gather(body)
}

func TestFindInMovePathOrItsDescendants(t *testing.T) {
	e := newEnv()
	body := e.body(0, e.pair, e.box)
	body.Blocks = []mir.Block{block(exit, assign(local(2), useMove(local(1).Field(1))))}
	data, _ := e.gather(body)

	root := data.RevLookup.FindLocal(1)
	field := data.RevLookup.Find(local(1).Field(1)).Path
	got := data.FindInMovePathOrItsDescendants(root, func(mpi moves.MovePathIndex) bool {
		return len(data.MovesOf(mpi)) > 0
	})
	if got != field {
		t.Fatalf("got mp%d, want mp%d", got, field)
	}
	none := data.FindInMovePathOrItsDescendants(root, func(moves.MovePathIndex) bool { return false })
	if none != moves.NoMovePath {
		t.Fatalf("got mp%d, want none", none)
	}
}

func TestGatherEmitsTracePoints(t *testing.T) {
	e := newEnv()
	body := e.body(1, e.ref, e.box)
	body.Blocks = []mir.Block{block(exit,
		assign(local(2), useMove(local(1).Deref().Field(1))),
	)}
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	_, errs := moves.GatherMovesWith(body, mir.NewTyper(e.in), moves.GatherOptions{Tracer: ring, ParentSpan: 7})
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	names := map[string]int{}
	for _, ev := range ring.Snapshot() {
		if ev.ParentID != 7 {
			t.Fatalf("event %s has parent %d", ev.Name, ev.ParentID)
		}
		names[ev.Name]++
	}
	// one argument init, one statement init, one error
	if names["init"] != 2 || names["illegal_move"] != 1 {
		t.Fatalf("unexpected events %v", names)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
