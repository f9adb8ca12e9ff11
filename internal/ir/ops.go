package ir

// BinOp is an arithmetic binary operator over Expr.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	default:
		return "?"
	}
}

// FnOp names a member of the fixed uninterpreted-function catalogue
// (spec §1, §4.D). Every member takes at most two arguments.
type FnOp uint8

const (
	Pow2 FnOp = iota
	Log2
	BitRev
)

func (op FnOp) String() string {
	switch op {
	case Pow2:
		return "pow2"
	case Log2:
		return "log2"
	case BitRev:
		return "bitrev"
	default:
		return "?"
	}
}

// Arity returns the number of arguments FnOp expects.
func (op FnOp) Arity() int {
	switch op {
	case Pow2, Log2:
		return 1
	case BitRev:
		return 2
	default:
		return 0
	}
}

// CmpOp is a comparison operator over Expr or Time values.
type CmpOp uint8

const (
	Gt CmpOp = iota
	Gte
	Eq
)

func (op CmpOp) String() string {
	switch op {
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Eq:
		return "="
	default:
		return "?"
	}
}

// Flip returns the operator for the reversed operand order (a op b  <=>  b op.Flip() a).
func (op CmpOp) Flip() CmpOp {
	switch op {
	case Gt:
		return Lt
	case Gte:
		return Lte
	default:
		return op
	}
}

// Lt and Lte are not primitive propositions (spec §3 restricts Cmp to
// {>, >=, =}) but are convenient for constructing the canonical form by
// flipping operands; PropStore.Cmp and PropStore.TimeCmp map them back down
// to Gt/Gte by swapping the operands.
const (
	Lt  CmpOp = 100
	Lte CmpOp = 101
)
