package moves

import (
	"fmt"
	"strings"

	"moveflow/internal/mir"
	"moveflow/internal/types"
)

type IllegalMoveKindTag uint8

const (
	// BorrowedContent: the place goes through a reference or raw pointer.
	BorrowedContent IllegalMoveKindTag = iota
	// InteriorOfTypeWithDestructor: the place is inside a value with drop glue.
	InteriorOfTypeWithDestructor
	// InteriorOfSliceOrArray: the place is inside a slice, or indexes an array dynamically.
	InteriorOfSliceOrArray
)

func (k IllegalMoveKindTag) String() string {
	switch k {
	case BorrowedContent:
		return "BorrowedContent"
	case InteriorOfTypeWithDestructor:
		return "InteriorOfTypeWithDestructor"
	case InteriorOfSliceOrArray:
		return "InteriorOfSliceOrArray"
	}
	return "IllegalMoveKind?"
}

// IllegalMoveKind says why a place cannot be moved from. TargetPlace is set
// for BorrowedContent, ContainerTy for InteriorOfTypeWithDestructor, Ty and
// IsIndex for InteriorOfSliceOrArray.
type IllegalMoveKind struct {
	Kind        IllegalMoveKindTag
	TargetPlace mir.Place
	ContainerTy types.TypeID
	Ty          types.TypeID
	IsIndex     bool
}

type IllegalMoveOrigin struct {
	Location mir.Location
	Kind     IllegalMoveKind
}

type MoveErrorKind uint8

const (
	MoveErrIllegal MoveErrorKind = iota
	// MoveErrUnion is not a failure: the move is recorded on Path, the union.
	MoveErrUnion
)

// MoveError is the non-path outcome of resolving a place.
type MoveError struct {
	Kind    MoveErrorKind
	Illegal IllegalMoveOrigin
	Path    MovePathIndex
}

func (e *MoveError) Error() string {
	if e.Kind == MoveErrUnion {
		return fmt.Sprintf("move out of union field collapses to mp%d", e.Path)
	}
	k := e.Illegal.Kind
	switch k.Kind {
	case BorrowedContent:
		return fmt.Sprintf("%s: cannot move out of %s, which is behind a reference or pointer", e.Illegal.Location, k.TargetPlace)
	case InteriorOfTypeWithDestructor:
		return fmt.Sprintf("%s: cannot move out of type #%d, which has a destructor", e.Illegal.Location, k.ContainerTy)
	case InteriorOfSliceOrArray:
		if k.IsIndex {
			return fmt.Sprintf("%s: cannot move out of type #%d with a non-constant index", e.Illegal.Location, k.Ty)
		}
		return fmt.Sprintf("%s: cannot move out of slice type #%d", e.Illegal.Location, k.Ty)
	}
	return "illegal move"
}

func illegalMove(loc mir.Location, kind IllegalMoveKind) *MoveError {
	return &MoveError{
		Kind:    MoveErrIllegal,
		Illegal: IllegalMoveOrigin{Location: loc, Kind: kind},
		Path:    NoMovePath,
	}
}

func unionMove(path MovePathIndex) *MoveError {
	return &MoveError{Kind: MoveErrUnion, Path: path}
}

// PlaceError pairs an illegal move with the place that was being moved.
type PlaceError struct {
	Place mir.Place
	Err   MoveError
}

func (e PlaceError) Error() string {
	return fmt.Sprintf("move of %s: %s", e.Place, e.Err.Error())
}

// GatherError is returned by Gather when illegal moves were found. Data is
// complete apart from the rejected moves.
type GatherError struct {
	Data   *MoveData
	Errors []PlaceError
}

func (e *GatherError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d illegal moves", len(e.Errors))
	for _, pe := range e.Errors {
		b.WriteString("\n\t")
		b.WriteString(pe.Error())
	}
	return b.String()
}

// Unwrap exposes the individual move errors to errors.As.
func (e *GatherError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i := range e.Errors {
		out[i] = &e.Errors[i].Err
	}
	return out
}

// BugError is the panic value for input the gatherer must never see. It
// means the IR producer broke its contract for this body.
type BugError struct {
	Loc mir.Location
	Msg string
}

func (e *BugError) Error() string {
	return fmt.Sprintf("internal error at %s: %s", e.Loc, e.Msg)
}
