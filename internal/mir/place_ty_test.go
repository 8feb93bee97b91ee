package mir_test

import (
	"errors"
	"math"
	"testing"

	"moveflow/internal/mir"
	"moveflow/internal/types"
)

func TestPlaceType(t *testing.T) {
	f := newFixture()
	// _1: &int, _2: Box<int>, _3: [Box<int>; 4], _4: Pair, _5: Opt, _6: U, _7: &[Box<int>]
	body := f.body(0, f.ref, f.box, f.arr, f.pair, f.opt, f.union, f.refArr)
	typer := mir.NewTyper(f.in)

	tests := []struct {
		name    string
		place   mir.Place
		want    types.TypeID
		variant int
	}{
		{"deref ref", mir.PlaceFromLocal(1).Deref(), f.b.Int, types.NoVariant},
		{"deref box", mir.PlaceFromLocal(2).Deref(), f.b.Int, types.NoVariant},
		{"array const index", mir.PlaceFromLocal(3).Project(mir.ConstantIndexElem(2, 4, false)), f.box, types.NoVariant},
		{"array index", mir.PlaceFromLocal(3).Project(mir.IndexElem(1)), f.box, types.NoVariant},
		{"array subslice", mir.PlaceFromLocal(3).Project(mir.SubsliceElem(1, 3, false)), f.in.Intern(types.MakeArray(f.box, 2)), types.NoVariant},
		{"array subslice from end", mir.PlaceFromLocal(3).Project(mir.SubsliceElem(1, 1, true)), f.in.Intern(types.MakeArray(f.box, 2)), types.NoVariant},
		{"slice subslice", mir.PlaceFromLocal(7).Deref().Project(mir.SubsliceElem(1, 0, true)), f.slice, types.NoVariant},
		{"struct field", mir.PlaceFromLocal(4).Field(1), f.box, types.NoVariant},
		{"union field", mir.PlaceFromLocal(6).Field(1), f.b.Float, types.NoVariant},
		{"downcast", mir.PlaceFromLocal(5).Project(mir.DowncastElem(1)), f.opt, 1},
		{"variant field", mir.PlaceFromLocal(5).Project(mir.DowncastElem(1)).Field(0), f.box, types.NoVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := typer.PlaceType(body, tt.place.Local, tt.place.Proj)
			if got.Type != tt.want || got.Variant != tt.variant {
				t.Fatalf("PlaceType(%s) = %s/%d, want %s/%d", tt.place,
					f.in.Format(got.Type), got.Variant, f.in.Format(tt.want), tt.variant)
			}
		})
	}
}

func TestPlaceTypeIllTyped(t *testing.T) {
	f := newFixture()
	body := f.body(0, f.b.Int, f.opt, f.pair)
	typer := mir.NewTyper(f.in)

	bad := []mir.Place{
		mir.PlaceFromLocal(1).Deref(),
		mir.PlaceFromLocal(1).Field(0),
		mir.PlaceFromLocal(2).Field(0),
		mir.PlaceFromLocal(3).Field(9),
		mir.PlaceFromLocal(2).Project(mir.DowncastElem(5)),
		mir.PlaceFromLocal(3).Project(mir.IndexElem(1)),
	}
	for _, pl := range bad {
		_, err := typer.TryPlaceType(body, pl.Local, pl.Proj)
		var te *mir.TypeError
		if !errors.As(err, &te) {
			t.Errorf("%s: expected *TypeError, got %v", pl, err)
		}
	}

	defer func() {
		r := recover()
		if _, ok := r.(*mir.TypeError); !ok {
			t.Fatalf("expected PlaceType to panic with *TypeError, got %v", r)
		}
	}()
	typer.PlaceType(body, 1, bad[0].Proj)
}

func TestPlaceTypeSubsliceRange(t *testing.T) {
	f := newFixture()
	body := f.body(0, f.arr) // _1: [Box<int>; 4]
	typer := mir.NewTyper(f.in)

	bad := []mir.PlaceElem{
		mir.SubsliceElem(2, math.MaxUint64-1, true), // From+To переполняется
		mir.SubsliceElem(5, 0, true),
		mir.SubsliceElem(0, 5, true),
		mir.SubsliceElem(3, 2, false),
		mir.SubsliceElem(1, 5, false),
	}
	for _, elem := range bad {
		if _, err := typer.TryPlaceType(body, 1, []mir.PlaceElem{elem}); err == nil {
			t.Errorf("[%d..%d] fromEnd=%v: expected an error", elem.From, elem.To, elem.FromEnd)
		}
	}

	pt, err := typer.TryPlaceType(body, 1, []mir.PlaceElem{mir.SubsliceElem(4, 0, true)})
	if err != nil {
		t.Fatalf("[4..-0]: %v", err)
	}
	if want := f.in.Intern(types.MakeArray(f.box, 0)); pt.Type != want {
		t.Fatalf("[4..-0] type = %d, want %d", pt.Type, want)
	}
}
