package moves

import (
	"moveflow/internal/mir"
	"moveflow/internal/types"
)

// TypeContext answers the type queries the gatherer needs. *mir.Typer
// implements it.
type TypeContext interface {
	// PlaceType returns the type of local projected by proj.
	PlaceType(body *mir.Body, local mir.LocalID, proj []mir.PlaceElem) mir.PlaceTy
	HasDestructor(id types.TypeID) bool
	IsUnion(id types.TypeID) bool
	IsRefOrPtr(id types.TypeID) bool
	IsSlice(id types.TypeID) bool
	ArrayLen(id types.TypeID) (uint64, bool)
	IsBox(id types.TypeID) bool
}

var _ TypeContext = (*mir.Typer)(nil)
