package moves

import (
	"fmt"

	"fortio.org/safecast"
)

type (
	// MovePathIndex addresses a node of the path forest.
	MovePathIndex int32
	// MoveOutIndex addresses a recorded move.
	MoveOutIndex int32
	// InitIndex addresses a recorded initialization.
	InitIndex int32
)

// NoMovePath marks an absent parent, child or sibling link.
const NoMovePath MovePathIndex = -1

func nextIndex(n int, what string) int32 {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", what, err))
	}
	return v
}
