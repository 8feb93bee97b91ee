package mir

import (
	"moveflow/internal/types"
)

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy reads a place without invalidating it.
	OperandCopy
	// OperandMove reads a place and leaves it uninitialized.
	OperandMove
)

// Operand represents a MIR operand.
type Operand struct {
	Kind OperandKind

	Const Const
	Place Place
}

func MoveOperand(p Place) Operand {
	return Operand{Kind: OperandMove, Place: p}
}

func CopyOperand(p Place) Operand {
	return Operand{Kind: OperandCopy, Place: p}
}

func ConstOperand(c Const) Operand {
	return Operand{Kind: OperandConst, Const: c}
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstInt represents an integer constant.
	ConstInt ConstKind = iota
	// ConstFloat represents a float constant.
	ConstFloat
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstString represents a string constant.
	ConstString
	// ConstUnit represents the unit value.
	ConstUnit
	// ConstFn names a function.
	ConstFn
)

// Const represents a MIR constant.
type Const struct {
	Kind ConstKind

	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
	FnName      string
}

func IntConst(v int64) Const {
	return Const{Kind: ConstInt, IntValue: v}
}

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse represents a use of an operand.
	RValueUse RValueKind = iota
	// RValueRepeat builds an array from one operand.
	RValueRepeat
	// RValueRef borrows a place.
	RValueRef
	// RValueAddressOf takes a raw pointer to a place.
	RValueAddressOf
	// RValueLen reads the length of an array or slice place.
	RValueLen
	// RValueCast represents a cast operation.
	RValueCast
	// RValueBinaryOp represents a binary operation.
	RValueBinaryOp
	// RValueCheckedBinaryOp is a binary operation that also yields an overflow flag.
	RValueCheckedBinaryOp
	// RValueUnaryOp represents a unary operation.
	RValueUnaryOp
	// RValueDiscriminant reads the discriminant of an enum place.
	RValueDiscriminant
	// RValueNullaryOp represents SizeOf and box allocation.
	RValueNullaryOp
	// RValueAggregate builds a tuple, array or ADT value.
	RValueAggregate
	// RValueThreadLocalRef takes the address of a thread-local.
	RValueThreadLocalRef
)

// RValue represents a right-hand value in MIR.
type RValue struct {
	Kind RValueKind

	Use          Operand
	Repeat       RepeatOp
	Ref          RefOp
	Len          Place
	Cast         CastOp
	Binary       BinaryOp
	Unary        UnaryOp
	Discriminant Place
	Nullary      NullaryOp
	Aggregate    Aggregate
	ThreadLocal  string
}

// RepeatOp represents [value; count].
type RepeatOp struct {
	Value Operand
	Count uint64
}

// RefOp is shared by RValueRef and RValueAddressOf.
type RefOp struct {
	Place   Place
	Mutable bool
}

// CastOp represents a cast operation.
type CastOp struct {
	Value    Operand
	TargetTy types.TypeID
}

type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinOffset
)

var binOpNames = [...]string{
	BinAdd:    "Add",
	BinSub:    "Sub",
	BinMul:    "Mul",
	BinDiv:    "Div",
	BinRem:    "Rem",
	BinBitAnd: "BitAnd",
	BinBitOr:  "BitOr",
	BinBitXor: "BitXor",
	BinShl:    "Shl",
	BinShr:    "Shr",
	BinEq:     "Eq",
	BinNe:     "Ne",
	BinLt:     "Lt",
	BinLe:     "Le",
	BinGt:     "Gt",
	BinGe:     "Ge",
	BinOffset: "Offset",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "BinOp?"
}

// BinOpByName resolves the fixture spelling of a binary operator.
func BinOpByName(name string) (BinOp, bool) {
	for i, n := range binOpNames {
		if n == name {
			return BinOp(i), true
		}
	}
	return 0, false
}

// BinaryOp represents a binary operation.
type BinaryOp struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

type UnOp uint8

const (
	UnNot UnOp = iota
	UnNeg
)

func (op UnOp) String() string {
	switch op {
	case UnNot:
		return "Not"
	case UnNeg:
		return "Neg"
	}
	return "UnOp?"
}

// UnaryOp represents a unary operation.
type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

type NullOp uint8

const (
	NullOpSizeOf NullOp = iota
	// NullOpBox allocates an uninitialized box.
	NullOpBox
)

// NullaryOp is SizeOf(T) or box T.
type NullaryOp struct {
	Op   NullOp
	Type types.TypeID
}

type AggregateKind uint8

const (
	AggregateTuple AggregateKind = iota
	AggregateArray
	AggregateAdt
)

// Aggregate builds a composite value from operands.
type Aggregate struct {
	Kind AggregateKind
	// Type is the ADT (AggregateAdt) or element type (AggregateArray).
	Type     types.TypeID
	Variant  int
	Operands []Operand
}

// InitState says how much of the destination an rvalue initializes.
type InitState uint8

const (
	InitStateDeep InitState = iota
	InitStateShallow
)

// InitializationState reports InitStateShallow for box allocation, whose
// contents stay uninitialized, and InitStateDeep otherwise.
func (rv *RValue) InitializationState() InitState {
	if rv.Kind == RValueNullaryOp && rv.Nullary.Op == NullOpBox {
		return InitStateShallow
	}
	return InitStateDeep
}

// Operands returns the operands the rvalue reads, in evaluation order.
func (rv *RValue) Operands() []Operand {
	switch rv.Kind {
	case RValueUse:
		return []Operand{rv.Use}
	case RValueRepeat:
		return []Operand{rv.Repeat.Value}
	case RValueCast:
		return []Operand{rv.Cast.Value}
	case RValueBinaryOp, RValueCheckedBinaryOp:
		return []Operand{rv.Binary.Left, rv.Binary.Right}
	case RValueUnaryOp:
		return []Operand{rv.Unary.Operand}
	case RValueAggregate:
		return rv.Aggregate.Operands
	}
	return nil
}
