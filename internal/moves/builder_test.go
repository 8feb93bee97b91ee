package moves

import (
	"errors"
	"testing"

	"moveflow/internal/mir"
)

func checkArenas(t *testing.T, d *MoveData) {
	t.Helper()
	if len(d.MovePaths) != len(d.PathMap) || len(d.MovePaths) != len(d.InitPathMap) {
		t.Fatalf("arenas out of sync: paths=%d pathMap=%d initPathMap=%d",
			len(d.MovePaths), len(d.PathMap), len(d.InitPathMap))
	}
}

func checkForest(t *testing.T, d *MoveData) {
	t.Helper()
	for i := range d.MovePaths {
		mpi := MovePathIndex(i)
		parent := d.MovePaths[i].Parent
		if parent == NoMovePath {
			continue
		}
		seen := 0
		for _, child := range d.MovePaths[parent].Children(d.MovePaths) {
			if child == mpi {
				seen++
			}
		}
		if seen != 1 {
			t.Fatalf("mp%d appears %d times among the children of mp%d", mpi, seen, parent)
		}
		if !d.MovePaths[parent].Place.IsPrefixOf(d.MovePaths[i].Place) {
			t.Fatalf("mp%d place %s is not under parent %s", mpi, d.MovePaths[i].Place, d.MovePaths[parent].Place)
		}
	}
}

func TestNewMovePathKeepsArenasParallel(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.pair, tt.pair))
	b := g.b
	checkArenas(t, &b.data)

	root := b.data.RevLookup.Locals[1]
	for i := range 3 {
		b.newMovePath(root, local(1).Field(i))
		checkArenas(t, &b.data)
	}
	checkForest(t, &b.data)

	children := b.data.MovePaths[root].Children(b.data.MovePaths)
	if len(children) != 3 {
		t.Fatalf("want 3 children, got %v", children)
	}
	// newest first
	if b.data.MovePaths[children[0]].Place.String() != "_1.2" {
		t.Fatalf("first child = %s", b.data.MovePaths[children[0]].Place)
	}
}

func TestAddMovePathDeduplicates(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.pair, tt.pair, tt.b.Int, tt.b.Int))
	b := g.b
	r1, r2 := b.data.RevLookup.Locals[1], b.data.RevLookup.Locals[2]
	mk := func(p mir.Place) func() mir.Place { return func() mir.Place { return p } }

	a := b.addMovePath(r1, mir.FieldElem(0), mk(local(1).Field(0)))
	again := b.addMovePath(r1, mir.FieldElem(0), mk(local(1).Field(0)))
	if a != again {
		t.Fatalf("same (parent, elem) gave %d and %d", a, again)
	}
	if other := b.addMovePath(r1, mir.FieldElem(1), mk(local(1).Field(1))); other == a {
		t.Fatalf("different elems share mp%d", a)
	}
	if other := b.addMovePath(r2, mir.FieldElem(0), mk(local(2).Field(0))); other == a {
		t.Fatalf("different locals share mp%d", a)
	}

	i3 := b.addMovePath(r1, mir.IndexElem(3), mk(local(1).Project(mir.IndexElem(3))))
	i4 := b.addMovePath(r1, mir.IndexElem(4), mk(local(1).Project(mir.IndexElem(4))))
	if i3 != i4 {
		t.Fatalf("index projections through different locals must share a path: %d vs %d", i3, i4)
	}
	checkArenas(t, &b.data)
	checkForest(t, &b.data)
}

func TestParentsAndBaseLocal(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.pair, tt.pair))
	b := g.b

	root := b.data.RevLookup.Locals[2]
	field := b.newMovePath(root, local(2).Field(0))
	inner := b.newMovePath(field, local(2).Field(0).Field(1))

	up := b.data.MovePaths[inner].Parents(b.data.MovePaths)
	if len(up) != 2 || up[0] != field || up[1] != root {
		t.Fatalf("Parents = %v, want [%d %d]", up, field, root)
	}
	if got := b.data.MovePaths[root].Parents(b.data.MovePaths); len(got) != 0 {
		t.Fatalf("root has parents %v", got)
	}
	for _, mpi := range []MovePathIndex{root, field, inner} {
		if l := b.data.BaseLocal(mpi); l != 2 {
			t.Errorf("BaseLocal(mp%d) = %d, want 2", mpi, l)
		}
	}
}

func TestMovePathForBorrowedContent(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(1, tt.ref))
	before := len(g.b.data.MovePaths)

	place := local(1).Deref().Field(1)
	mpi, err := g.movePathFor(place)
	if err == nil {
		t.Fatalf("expected error, got mp%d", mpi)
	}
	if err.Kind != MoveErrIllegal || err.Illegal.Kind.Kind != BorrowedContent {
		t.Fatalf("unexpected error %+v", err)
	}
	if !err.Illegal.Kind.TargetPlace.Equal(local(1).Deref()) {
		t.Fatalf("target place = %s", err.Illegal.Kind.TargetPlace)
	}
	if len(g.b.data.MovePaths) != before {
		t.Fatalf("paths were created behind a reference")
	}
	if res := g.b.data.RevLookup.Find(local(1).Deref()); res.Exact {
		t.Fatalf("(*_1) must not have a path")
	}
}

func TestMovePathForDestructor(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.guard))
	_, err := g.movePathFor(local(1).Field(0))
	if err == nil || err.Illegal.Kind.Kind != InteriorOfTypeWithDestructor {
		t.Fatalf("want InteriorOfTypeWithDestructor, got %+v", err)
	}
	if err.Illegal.Kind.ContainerTy != tt.guard {
		t.Fatalf("container = %d, want %d", err.Illegal.Kind.ContainerTy, tt.guard)
	}
	// the whole value can still be moved
	if _, err := g.movePathFor(local(1)); err != nil {
		t.Fatalf("moving the container: %v", err)
	}
}

func TestMovePathForBoxIsTransparent(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.box))
	mpi, err := g.movePathFor(local(1).Deref())
	if err != nil {
		t.Fatalf("deref of box: %v", err)
	}
	if g.b.data.MovePaths[mpi].Parent != g.b.data.RevLookup.Locals[1] {
		t.Fatalf("box interior not under the box root")
	}
}

func TestMovePathForUnionCollapses(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.union))
	root := g.b.data.RevLookup.Locals[1]

	for field := range 2 {
		_, err := g.movePathFor(local(1).Field(field))
		if err == nil || err.Kind != MoveErrUnion {
			t.Fatalf("field %d: want union move, got %+v", field, err)
		}
		if err.Path != root {
			t.Fatalf("field %d collapsed to mp%d, want mp%d", field, err.Path, root)
		}
	}
	if _, ok := g.b.data.RevLookup.Child(root, mir.FieldElem(0)); ok {
		t.Fatalf("union field got its own path")
	}
}

func TestMovePathForArrays(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.arr, tt.b.Uint))

	_, err := g.movePathFor(local(1).Project(mir.IndexElem(2)))
	if err == nil || err.Illegal.Kind.Kind != InteriorOfSliceOrArray || !err.Illegal.Kind.IsIndex {
		t.Fatalf("dynamic index: want InteriorOfSliceOrArray{IsIndex}, got %+v", err)
	}

	seen := map[MovePathIndex]bool{}
	for off := range uint64(4) {
		mpi, err := g.movePathFor(local(1).Project(mir.ConstantIndexElem(off, 4, false)))
		if err != nil {
			t.Fatalf("constant index %d: %v", off, err)
		}
		if seen[mpi] {
			t.Fatalf("constant index %d reuses mp%d", off, mpi)
		}
		seen[mpi] = true
	}
}

func TestMovePathForSlice(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.slice))
	_, err := g.movePathFor(local(1).Project(mir.ConstantIndexElem(0, 1, false)))
	if err == nil || err.Illegal.Kind.Kind != InteriorOfSliceOrArray || err.Illegal.Kind.IsIndex {
		t.Fatalf("want InteriorOfSliceOrArray without index, got %+v", err)
	}
	if err.Illegal.Kind.Ty != tt.slice {
		t.Fatalf("ty = %d, want %d", err.Illegal.Kind.Ty, tt.slice)
	}
}

func TestArgumentInitsBeforeStatements(t *testing.T) {
	tt := newTestTypes()
	body := tt.body(2, tt.box, tt.pair, tt.b.Int)
	b := newBuilder(body, mir.NewTyper(tt.in), GatherOptions{})
	b.gatherArgs()

	for i := range body.Locals {
		inits := b.data.InitPathMap[b.data.RevLookup.Locals[i]]
		isArg := i >= 1 && i <= 2
		if !isArg {
			if len(inits) != 0 {
				t.Fatalf("_%d has inits %v", i, inits)
			}
			continue
		}
		if len(inits) != 1 {
			t.Fatalf("_%d: want one init, got %v", i, inits)
		}
		init := b.data.Inits[inits[0]]
		if init.Kind != InitDeep || init.Location.Kind != InitLocArgument || int(init.Location.Arg) != i {
			t.Fatalf("_%d: unexpected init %s", i, init)
		}
	}
	for _, bucket := range b.data.InitLocMap.Blocks[0] {
		if len(bucket) != 0 {
			t.Fatalf("argument inits must not have a location")
		}
	}
}

func TestPlaceTypePanicsWithBugError(t *testing.T) {
	tt := newTestTypes()
	g := tt.gatherer(tt.body(0, tt.b.Int))
	defer func() {
		r := recover()
		err, ok := r.(error)
		var bug *BugError
		if !ok || !errors.As(err, &bug) {
			t.Fatalf("want *BugError panic, got %v", r)
		}
	}()
	g.movePathFor(local(1).Field(3).Field(0))
}
