package mir

import (
	"fmt"

	"fortio.org/safecast"

	"moveflow/internal/source"
	"moveflow/internal/types"
)

type Block struct {
	ID    BlockID
	Stmts []Statement
	Term  Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Body is one function: local 0 is the return place, locals 1..ArgCount are
// the formal parameters, the rest are user variables and temporaries.
type Body struct {
	Name   string
	Span   source.Span
	Result types.TypeID

	Locals   []Local
	ArgCount int
	Blocks   []Block
}

// Args returns the parameter locals in declaration order.
func (b *Body) Args() []LocalID {
	out := make([]LocalID, 0, b.ArgCount)
	for i := 1; i <= b.ArgCount && i < len(b.Locals); i++ {
		out = append(out, localID(i))
	}
	return out
}

func (b *Body) ReturnPlace() Place {
	return PlaceFromLocal(ReturnLocal)
}

func (b *Body) Local(id LocalID) *Local {
	if id < 0 || int(id) >= len(b.Locals) {
		return nil
	}
	return &b.Locals[id]
}

func (b *Body) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(b.Blocks) {
		return nil
	}
	return &b.Blocks[id]
}

// TerminatorLocation is the location one past the last statement of bb.
func (b *Body) TerminatorLocation(bb BlockID) Location {
	return Location{Block: bb, Statement: len(b.Blocks[bb].Stmts)}
}

// Statement returns the statement at loc, or nil for terminator locations.
func (b *Body) Statement(loc Location) *Statement {
	blk := b.Block(loc.Block)
	if blk == nil || loc.Statement < 0 || loc.Statement >= len(blk.Stmts) {
		return nil
	}
	return &blk.Stmts[loc.Statement]
}

// SpanAt returns the span of the statement or terminator at loc.
func (b *Body) SpanAt(loc Location) source.Span {
	blk := b.Block(loc.Block)
	if blk == nil {
		return b.Span
	}
	if loc.Statement < len(blk.Stmts) && loc.Statement >= 0 {
		return blk.Stmts[loc.Statement].Span
	}
	return blk.Term.Span
}

// Locations calls fn for every statement and terminator in layout order.
func (b *Body) Locations(fn func(loc Location)) {
	for i := range b.Blocks {
		bb := blockID(i)
		for j := 0; j <= len(b.Blocks[i].Stmts); j++ {
			fn(Location{Block: bb, Statement: j})
		}
	}
}

// Module groups the bodies read from one fixture.
type Module struct {
	Bodies []*Body
}

func (m *Module) Body(name string) *Body {
	for _, b := range m.Bodies {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func localID(i int) LocalID {
	v, err := safecast.Conv[int32](i)
	if err != nil {
		panic(fmt.Errorf("local id overflow: %w", err))
	}
	return LocalID(v)
}

func blockID(i int) BlockID {
	v, err := safecast.Conv[int32](i)
	if err != nil {
		panic(fmt.Errorf("block id overflow: %w", err))
	}
	return BlockID(v)
}

// LocalIDFromInt converts a slice index into a LocalID, panicking on overflow.
func LocalIDFromInt(i int) LocalID { return localID(i) }

// BlockIDFromInt converts a slice index into a BlockID, panicking on overflow.
func BlockIDFromInt(i int) BlockID { return blockID(i) }
