package moves_test

import (
	"bytes"
	"strings"
	"testing"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/moves"
	"moveflow/internal/source"
	"moveflow/internal/types"
)

func TestReportCodes(t *testing.T) {
	tests := []struct {
		kind moves.IllegalMoveKind
		want diag.Code
	}{
		{moves.IllegalMoveKind{Kind: moves.BorrowedContent}, diag.MoveBorrowedContent},
		{moves.IllegalMoveKind{Kind: moves.InteriorOfTypeWithDestructor}, diag.MoveInteriorOfDrop},
		{moves.IllegalMoveKind{Kind: moves.InteriorOfSliceOrArray}, diag.MoveInteriorOfSlice},
		{moves.IllegalMoveKind{Kind: moves.InteriorOfSliceOrArray, IsIndex: true}, diag.MoveInteriorOfArrayIndex},
	}
	for _, tc := range tests {
		if got := moves.CodeFor(tc.kind); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.kind.Kind, got, tc.want)
		}
	}
}

func TestReportAnchorsOnStatement(t *testing.T) {
	e := newEnv()
	guard := e.in.RegisterStruct("Guard", source.Span{})
	e.in.SetStructFields(guard, []types.Field{{Type: e.box}})
	e.in.SetStructDrop(guard, true)

	body := e.body(1, e.ref, guard, e.box, e.arr, e.b.Uint)
	body.Locals[1].Span = source.Span{File: 1, Start: 3, End: 5}
	body.Locals[2].Span = source.Span{File: 1, Start: 10, End: 12}
	stmtSpans := []source.Span{{File: 1, Start: 40, End: 50}, {File: 1, Start: 60, End: 70}, {File: 1, Start: 80, End: 90}}
	stmts := []mir.Statement{
		assign(local(3), useMove(local(1).Deref().Field(1))),
		assign(local(3), useMove(local(2).Field(0))),
		assign(local(3), useMove(local(4).Project(mir.IndexElem(5)))),
	}
	for i := range stmts {
		stmts[i].Span = stmtSpans[i]
	}
	body.Blocks = []mir.Block{block(exit, stmts...)}

	_, errs := e.gather(body)
	if len(errs) != 3 {
		t.Fatalf("want 3 errors, got %v", errs)
	}
	bag := diag.NewBag(10)
	moves.Report(diag.BagReporter{Bag: bag}, body, e.in, errs)

	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("want 3 diagnostics, got %d", len(items))
	}
	wantCodes := []diag.Code{diag.MoveBorrowedContent, diag.MoveInteriorOfDrop, diag.MoveInteriorOfArrayIndex}
	for i, d := range items {
		if d.Code != wantCodes[i] {
			t.Errorf("diag %d: code %s, want %s", i, d.Code, wantCodes[i])
		}
		if d.Primary != stmtSpans[i] {
			t.Errorf("diag %d: primary %v, want %v", i, d.Primary, stmtSpans[i])
		}
		if d.Severity != diag.SevError {
			t.Errorf("diag %d: severity %v", i, d.Severity)
		}
	}
	if !strings.Contains(items[0].Message, "(*_1)") {
		t.Errorf("message does not name the borrowed place: %q", items[0].Message)
	}
	if !strings.Contains(items[1].Message, "Guard") {
		t.Errorf("message does not name the type: %q", items[1].Message)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span != body.Locals[1].Span {
		t.Errorf("missing declaration note: %+v", items[0].Notes)
	}
}

func TestDump(t *testing.T) {
	e := newEnv()
	body := sampleBody(e)
	data, errs := e.gather(body)

	var buf bytes.Buffer
	if err := moves.Dump(&buf, body, e.in, data, errs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"move data for f",
		"_2.1",
		"(*_1).1 at bb0[1]: BorrowedContent",
		"_4[1 of 4]",
		"arg _1 (Deep)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
}
