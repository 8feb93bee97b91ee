package moves

import (
	"moveflow/internal/mir"
)

type projKey struct {
	base MovePathIndex
	elem mir.PlaceElem
}

// MovePathLookup maps locals to their root paths and (parent, lifted elem)
// pairs to child paths.
type MovePathLookup struct {
	Locals      []MovePathIndex
	projections map[projKey]MovePathIndex
}

func newMovePathLookup(locals int) MovePathLookup {
	return MovePathLookup{
		Locals:      make([]MovePathIndex, 0, locals),
		projections: make(map[projKey]MovePathIndex),
	}
}

// LookupResult is the outcome of Find. When Exact is false, Path is the
// deepest existing ancestor of the queried place.
type LookupResult struct {
	Exact bool
	Path  MovePathIndex
}

// Find resolves place without creating paths.
func (l *MovePathLookup) Find(place mir.Place) LookupResult {
	result := l.FindLocal(place.Local)
	for _, elem := range place.Proj {
		sub, ok := l.projections[projKey{base: result, elem: elem.Lift()}]
		if !ok {
			return LookupResult{Path: result}
		}
		result = sub
	}
	return LookupResult{Exact: true, Path: result}
}

// FindLocal returns the root path of local.
func (l *MovePathLookup) FindLocal(local mir.LocalID) MovePathIndex {
	if local < 0 || int(local) >= len(l.Locals) {
		return NoMovePath
	}
	return l.Locals[local]
}

// Child returns the existing child of base for elem.
func (l *MovePathLookup) Child(base MovePathIndex, elem mir.PlaceElem) (MovePathIndex, bool) {
	mpi, ok := l.projections[projKey{base: base, elem: elem.Lift()}]
	return mpi, ok
}

// Len returns the number of projection entries.
func (l *MovePathLookup) Len() int {
	return len(l.projections)
}

// Each calls fn for every projection entry. Iteration order is unspecified.
func (l *MovePathLookup) Each(fn func(base MovePathIndex, elem mir.PlaceElem, child MovePathIndex)) {
	for k, v := range l.projections {
		fn(k.base, k.elem, v)
	}
}
