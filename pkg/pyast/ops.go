package pyast

import "fmt"

// Context says how a Name, Attribute, Subscript, List or Tuple is used.
type Context int

const (
	Load Context = iota
	Store
	Del
)

func (c Context) String() string {
	switch c {
	case Load:
		return "load"
	case Store:
		return "store"
	case Del:
		return "del"
	}
	return fmt.Sprintf("context(%d)", int(c))
}

// Operator is a binary arithmetic or bitwise operator, shared by BinOp and
// AugAssign.
type Operator int

const (
	Add Operator = iota
	Sub
	Mult
	Div
	FloorDiv
	Mod
	Pow
	LShift
	RShift
	BitOr
	BitXor
	BitAnd
)

var operatorNames = [...]string{
	Add:      "add",
	Sub:      "sub",
	Mult:     "mult",
	Div:      "div",
	FloorDiv: "floordiv",
	Mod:      "mod",
	Pow:      "pow",
	LShift:   "lshift",
	RShift:   "rshift",
	BitOr:    "bitor",
	BitXor:   "bitxor",
	BitAnd:   "bitand",
}

func (op Operator) String() string {
	if op >= 0 && int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return fmt.Sprintf("operator(%d)", int(op))
}

// UnaryOperator is a prefix operator.
type UnaryOperator int

const (
	Invert UnaryOperator = iota
	Not
	UAdd
	USub
)

func (op UnaryOperator) String() string {
	switch op {
	case Invert:
		return "invert"
	case Not:
		return "not"
	case UAdd:
		return "uadd"
	case USub:
		return "usub"
	}
	return fmt.Sprintf("unary(%d)", int(op))
}

// CmpOp is a comparison operator.
type CmpOp int

const (
	Eq CmpOp = iota
	NotEq
	Lt
	LtE
	Gt
	GtE
	Is
	IsNot
	In
	NotIn
)

var cmpOpNames = [...]string{
	Eq:    "eq",
	NotEq: "noteq",
	Lt:    "lt",
	LtE:   "lte",
	Gt:    "gt",
	GtE:   "gte",
	Is:    "is",
	IsNot: "isnot",
	In:    "in",
	NotIn: "notin",
}

func (op CmpOp) String() string {
	if op >= 0 && int(op) < len(cmpOpNames) {
		return cmpOpNames[op]
	}
	return fmt.Sprintf("cmpop(%d)", int(op))
}
