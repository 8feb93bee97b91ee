package mir_test

import (
	"testing"

	"moveflow/internal/mir"
)

func TestPlaceString(t *testing.T) {
	tests := []struct {
		name  string
		place mir.Place
		want  string
	}{
		{"local", mir.PlaceFromLocal(3), "_3"},
		{"deref field", mir.PlaceFromLocal(1).Deref().Field(2), "(*_1).2"},
		{"index", mir.PlaceFromLocal(4).Project(mir.IndexElem(5)), "_4[_5]"},
		{"constant index", mir.PlaceFromLocal(4).Project(mir.ConstantIndexElem(1, 4, false)), "_4[1 of 4]"},
		{"constant index from end", mir.PlaceFromLocal(4).Project(mir.ConstantIndexElem(1, 4, true)), "_4[-1 of 4]"},
		{"subslice", mir.PlaceFromLocal(4).Project(mir.SubsliceElem(1, 3, false)), "_4[1..3]"},
		{"subslice from end", mir.PlaceFromLocal(4).Project(mir.SubsliceElem(1, 1, true)), "_4[1..-1]"},
		{"downcast", mir.PlaceFromLocal(2).Project(mir.DowncastElem(1)).Field(0), "(_2 as #1).0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.place.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaceProjectDoesNotAlias(t *testing.T) {
	base := mir.PlaceFromLocal(1).Field(0)
	a := base.Field(1)
	b := base.Field(2)
	if a.String() != "_1.0.1" || b.String() != "_1.0.2" {
		t.Fatalf("projections alias: %s %s", a, b)
	}

	prefix := a.Prefix(1)
	extended := prefix.Field(7)
	if a.String() != "_1.0.1" || extended.String() != "_1.0.7" {
		t.Fatalf("prefix extension clobbered source: %s %s", a, extended)
	}
}

func TestPlacePrefixAndEquality(t *testing.T) {
	p := mir.PlaceFromLocal(1).Deref().Field(0)
	if !mir.PlaceFromLocal(1).IsPrefixOf(p) || !p.Prefix(1).IsPrefixOf(p) || !p.IsPrefixOf(p) {
		t.Fatal("expected prefixes to be recognised")
	}
	if p.IsPrefixOf(p.Prefix(1)) || mir.PlaceFromLocal(2).IsPrefixOf(p) {
		t.Fatal("unexpected prefix relation")
	}
	if !p.Equal(mir.PlaceFromLocal(1).Deref().Field(0)) || p.Equal(p.Prefix(2).Field(1)) {
		t.Fatal("Equal mismatch")
	}
	if l, ok := p.Prefix(0).AsLocal(); !ok || l != 1 {
		t.Fatalf("AsLocal = %d, %v", l, ok)
	}
	if last, ok := p.LastElem(); !ok || last.Kind != mir.ElemField {
		t.Fatalf("LastElem = %+v", last)
	}
}

func TestLiftErasesIndexLocal(t *testing.T) {
	a := mir.IndexElem(4).Lift()
	b := mir.IndexElem(9).Lift()
	if a != b {
		t.Fatalf("lifted index elements differ: %+v %+v", a, b)
	}
	if mir.FieldElem(1).Lift() != mir.FieldElem(1) {
		t.Fatal("Lift must not change non-index elements")
	}
	if mir.ConstantIndexElem(0, 4, false).Lift() == mir.ConstantIndexElem(1, 4, false).Lift() {
		t.Fatal("constant offsets must stay distinct")
	}
}

func TestLocationString(t *testing.T) {
	loc := mir.Location{Block: 2, Statement: 5}
	if loc.String() != "bb2[5]" {
		t.Fatalf("unexpected location %s", loc)
	}
	if !loc.Before(mir.Location{Block: 3}) || loc.Before(mir.Location{Block: 2, Statement: 1}) {
		t.Fatal("Before mismatch")
	}
}
