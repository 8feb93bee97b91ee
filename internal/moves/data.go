package moves

import (
	"fmt"

	"moveflow/internal/mir"
)

// MoveOut records that the value at Path is moved out at Source.
type MoveOut struct {
	Path   MovePathIndex
	Source mir.Location
}

func (m MoveOut) String() string {
	return fmt.Sprintf("mp%d@%s", m.Path, m.Source)
}

type InitKind uint8

const (
	// InitDeep initializes the path and all of its descendants.
	InitDeep InitKind = iota
	// InitShallow initializes only the path itself, e.g. a fresh box.
	InitShallow
	// InitNonPanicPathOnly holds only on the normal edge, e.g. a call destination.
	InitNonPanicPathOnly
)

func (k InitKind) String() string {
	switch k {
	case InitDeep:
		return "Deep"
	case InitShallow:
		return "Shallow"
	case InitNonPanicPathOnly:
		return "NonPanicPathOnly"
	}
	return fmt.Sprintf("InitKind(%d)", k)
}

type InitLocationKind uint8

const (
	InitLocArgument InitLocationKind = iota
	InitLocStatement
)

// InitLocation is either a formal parameter (Arg) or a program point (Loc).
type InitLocation struct {
	Kind InitLocationKind
	Arg  mir.LocalID
	Loc  mir.Location
}

func (l InitLocation) String() string {
	if l.Kind == InitLocArgument {
		return fmt.Sprintf("arg _%d", l.Arg)
	}
	return l.Loc.String()
}

type Init struct {
	Path     MovePathIndex
	Location InitLocation
	Kind     InitKind
}

func (i Init) String() string {
	return fmt.Sprintf("mp%d@%s (%s)", i.Path, i.Location, i.Kind)
}

// MoveData is the finished, read-only result of GatherMoves.
//
// MovePaths, PathMap and InitPathMap always have the same length.
type MoveData struct {
	Moves       []MoveOut
	MovePaths   []MovePath
	PathMap     [][]MoveOutIndex
	RevLookup   MovePathLookup
	Inits       []Init
	LocMap      LocationMap[MoveOutIndex]
	InitLocMap  LocationMap[InitIndex]
	InitPathMap [][]InitIndex
}

// Path returns the node for mpi.
func (d *MoveData) Path(mpi MovePathIndex) *MovePath {
	return &d.MovePaths[mpi]
}

// BaseLocal returns the local at the root of mpi's tree.
func (d *MoveData) BaseLocal(mpi MovePathIndex) mir.LocalID {
	if up := d.MovePaths[mpi].Parents(d.MovePaths); len(up) > 0 {
		mpi = up[len(up)-1]
	}
	return d.MovePaths[mpi].Place.Local
}

// FindInMovePathOrItsDescendants returns root if pred holds for it, else the
// first matching descendant, else NoMovePath.
func (d *MoveData) FindInMovePathOrItsDescendants(root MovePathIndex, pred func(MovePathIndex) bool) MovePathIndex {
	if pred(root) {
		return root
	}
	return d.MovePaths[root].FindDescendant(d.MovePaths, pred)
}

// MovesAt returns the moves recorded at loc.
func (d *MoveData) MovesAt(loc mir.Location) []MoveOutIndex {
	return d.LocMap.At(loc)
}

// InitsAt returns the statement inits recorded at loc. Argument inits have no
// location and only appear in InitPathMap.
func (d *MoveData) InitsAt(loc mir.Location) []InitIndex {
	return d.InitLocMap.At(loc)
}

// MovesOf returns the moves out of mpi.
func (d *MoveData) MovesOf(mpi MovePathIndex) []MoveOutIndex {
	return d.PathMap[mpi]
}

// InitsOf returns the inits of mpi.
func (d *MoveData) InitsOf(mpi MovePathIndex) []InitIndex {
	return d.InitPathMap[mpi]
}
