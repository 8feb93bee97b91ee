package moves

import (
	"fmt"

	"moveflow/internal/mir"
)

// MovePath is a node of the path forest. Children form a singly linked list
// through NextSibling, most recently created first.
type MovePath struct {
	Place       mir.Place
	Parent      MovePathIndex
	FirstChild  MovePathIndex
	NextSibling MovePathIndex
}

func (p *MovePath) String() string {
	return fmt.Sprintf("MovePath { place: %s, parent: %d }", p.Place, p.Parent)
}

// Parents returns the ancestors of p, nearest first.
func (p *MovePath) Parents(paths []MovePath) []MovePathIndex {
	var out []MovePathIndex
	for cur := p.Parent; cur != NoMovePath; cur = paths[cur].Parent {
		out = append(out, cur)
	}
	return out
}

// Children returns the direct children of p in list order.
func (p *MovePath) Children(paths []MovePath) []MovePathIndex {
	var out []MovePathIndex
	for cur := p.FirstChild; cur != NoMovePath; cur = paths[cur].NextSibling {
		out = append(out, cur)
	}
	return out
}

// FindDescendant returns the first descendant of p, in depth-first list
// order, for which pred holds. p itself is not considered.
func (p *MovePath) FindDescendant(paths []MovePath, pred func(MovePathIndex) bool) MovePathIndex {
	first := p.FirstChild
	if first == NoMovePath {
		return NoMovePath
	}
	todo := []MovePathIndex{first}
	for len(todo) > 0 {
		mpi := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if pred(mpi) {
			return mpi
		}
		node := &paths[mpi]
		if node.NextSibling != NoMovePath {
			todo = append(todo, node.NextSibling)
		}
		if node.FirstChild != NoMovePath {
			todo = append(todo, node.FirstChild)
		}
	}
	return NoMovePath
}
