package mir

import "moveflow/internal/source"

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtAssign writes an rvalue into a place.
	StmtAssign StmtKind = iota
	// StmtFakeRead is a read that only exists for borrow checking.
	StmtFakeRead
	// StmtSetDiscriminant writes an enum discriminant; only valid after drop elaboration.
	StmtSetDiscriminant
	// StmtStorageLive marks the start of a local's storage.
	StmtStorageLive
	// StmtStorageDead marks the end of a local's storage.
	StmtStorageDead
	// StmtInlineAsm is inline assembly in statement position.
	StmtInlineAsm
	// StmtRetag is a retag for aliasing models.
	StmtRetag
	// StmtAscribeUserType attaches a user type annotation.
	StmtAscribeUserType
	// StmtNop does nothing.
	StmtNop
)

type Statement struct {
	Kind StmtKind
	Span source.Span

	Assign          AssignStmt
	FakeRead        PlaceStmt
	SetDiscriminant SetDiscriminantStmt
	StorageLive     StorageStmt
	StorageDead     StorageStmt
	InlineAsm       InlineAsmStmt
	Retag           PlaceStmt
	AscribeUserType PlaceStmt
}

type AssignStmt struct {
	Dst Place
	Src RValue
}

// PlaceStmt carries the single place of FakeRead, Retag and AscribeUserType.
type PlaceStmt struct {
	Place Place
}

type SetDiscriminantStmt struct {
	Place   Place
	Variant int
}

type StorageStmt struct {
	Local LocalID
}

type AsmOutput struct {
	Place Place
	// Indirect outputs write through the place instead of into it.
	Indirect bool
}

type InlineAsmStmt struct {
	Outputs []AsmOutput
	Inputs  []Operand
}
