package mir

import (
	"fmt"

	"moveflow/internal/source"
	"moveflow/internal/types"
)

type BlockID int32
type LocalID int32

const (
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// ReturnLocal is the local that receives the function result.
const ReturnLocal LocalID = 0

type Local struct {
	Name    string
	Type    types.TypeID
	Mutable bool
	Span    source.Span
}

// Location addresses a statement (or, with Statement == len(Stmts), the
// terminator) inside a block.
type Location struct {
	Block     BlockID
	Statement int
}

func (l Location) String() string {
	return fmt.Sprintf("bb%d[%d]", l.Block, l.Statement)
}

// Before reports whether l precedes other in layout order.
func (l Location) Before(other Location) bool {
	if l.Block != other.Block {
		return l.Block < other.Block
	}
	return l.Statement < other.Statement
}
