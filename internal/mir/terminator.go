package mir

import "moveflow/internal/source"

type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermSwitchInt
	TermResume
	TermAbort
	TermReturn
	TermUnreachable
	TermDrop
	TermDropAndReplace
	TermCall
	TermAssert
	TermYield
	TermGeneratorDrop
	TermFalseEdges
	TermFalseUnwind
	TermInlineAsm
)

type Terminator struct {
	Kind TermKind
	Span source.Span

	Goto           GotoTerm
	SwitchInt      SwitchIntTerm
	Drop           DropTerm
	DropAndReplace DropAndReplaceTerm
	Call           CallTerm
	Assert         AssertTerm
	Yield          YieldTerm
	FalseEdges     FalseEdgesTerm
	FalseUnwind    FalseUnwindTerm
	InlineAsm      InlineAsmTerm
}

type GotoTerm struct {
	Target BlockID
}

type SwitchCase struct {
	Value  int64
	Target BlockID
}

type SwitchIntTerm struct {
	Discr     Operand
	Cases     []SwitchCase
	Otherwise BlockID
}

// DropTerm runs drop glue for Place. Unwind is NoBlockID when absent.
type DropTerm struct {
	Place  Place
	Target BlockID
	Unwind BlockID
}

type DropAndReplaceTerm struct {
	Place  Place
	Value  Operand
	Target BlockID
	Unwind BlockID
}

// CallTerm calls Func. A call without Target diverges.
type CallTerm struct {
	Func    Operand
	Args    []Operand
	HasDest bool
	Dest    Place
	Target  BlockID
	Unwind  BlockID
}

type AssertTerm struct {
	Cond     Operand
	Expected bool
	Target   BlockID
	Unwind   BlockID
}

type YieldTerm struct {
	Value     Operand
	ResumeArg Place
	Resume    BlockID
	Drop      BlockID
}

type FalseEdgesTerm struct {
	Real      BlockID
	Imaginary BlockID
}

type FalseUnwindTerm struct {
	Real   BlockID
	Unwind BlockID
}

type AsmOperandKind uint8

const (
	AsmIn AsmOperandKind = iota
	AsmOut
	AsmInOut
	AsmConst
	AsmSym
)

// AsmOperand is one operand of an inline-asm terminator. Out and InOut
// operands may omit their output place (HasOut == false).
type AsmOperand struct {
	Kind   AsmOperandKind
	In     Operand
	HasOut bool
	Out    Place
	Symbol string
}

type InlineAsmTerm struct {
	Operands    []AsmOperand
	Destination BlockID
}

// Successors lists the blocks control may flow to, normal edge first.
func (t *Terminator) Successors() []BlockID {
	var out []BlockID
	add := func(ids ...BlockID) {
		for _, id := range ids {
			if id != NoBlockID {
				out = append(out, id)
			}
		}
	}
	switch t.Kind {
	case TermGoto:
		add(t.Goto.Target)
	case TermSwitchInt:
		for _, c := range t.SwitchInt.Cases {
			add(c.Target)
		}
		add(t.SwitchInt.Otherwise)
	case TermDrop:
		add(t.Drop.Target, t.Drop.Unwind)
	case TermDropAndReplace:
		add(t.DropAndReplace.Target, t.DropAndReplace.Unwind)
	case TermCall:
		add(t.Call.Target, t.Call.Unwind)
	case TermAssert:
		add(t.Assert.Target, t.Assert.Unwind)
	case TermYield:
		add(t.Yield.Resume, t.Yield.Drop)
	case TermFalseEdges:
		add(t.FalseEdges.Real, t.FalseEdges.Imaginary)
	case TermFalseUnwind:
		add(t.FalseUnwind.Real, t.FalseUnwind.Unwind)
	case TermInlineAsm:
		add(t.InlineAsm.Destination)
	}
	return out
}
