package moves

import "moveflow/internal/mir"

// LocationMap holds one bucket per statement plus one for the terminator of
// every block.
type LocationMap[T any] struct {
	Blocks [][][]T
}

func newLocationMap[T any](body *mir.Body) LocationMap[T] {
	m := LocationMap[T]{Blocks: make([][][]T, len(body.Blocks))}
	for i := range body.Blocks {
		m.Blocks[i] = make([][]T, len(body.Blocks[i].Stmts)+1)
	}
	return m
}

// At returns the bucket for loc, or nil when loc is outside the body.
func (m *LocationMap[T]) At(loc mir.Location) []T {
	if loc.Block < 0 || int(loc.Block) >= len(m.Blocks) {
		return nil
	}
	blk := m.Blocks[loc.Block]
	if loc.Statement < 0 || loc.Statement >= len(blk) {
		return nil
	}
	return blk[loc.Statement]
}

func (m *LocationMap[T]) push(loc mir.Location, v T) {
	bucket := &m.Blocks[loc.Block][loc.Statement]
	*bucket = append(*bucket, v)
}
