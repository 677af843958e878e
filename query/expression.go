package q

// Expression is a boolean filter over one entity, produced by the protocol
// parser. Only types in this package implement it.
type Expression interface {
	expressionNode()
}

// Operator is a comparison operator.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	LessThan
	LessThanOrEquals
	GreaterThan
	GreaterThanOrEquals
)

func (op Operator) String() string {
	switch op {
	case NotEquals:
		return "ne"
	case LessThan:
		return "lt"
	case LessThanOrEquals:
		return "le"
	case GreaterThan:
		return "gt"
	case GreaterThanOrEquals:
		return "ge"
	default:
		return "eq"
	}
}

// Comparison compares a field with a literal value. Field is a declared
// property name, optionally prefixed by "/"-delimited to-one navigation
// names, e.g. "Customer/Name".
type Comparison struct {
	Field    string
	Operator Operator
	Value    any
}

func (Comparison) expressionNode() {}

// And is true when all of its operands are true, including when it has none.
type And struct {
	Operands []Expression
}

func (And) expressionNode() {}

// Or is true when any of its operands is true.
type Or struct {
	Operands []Expression
}

func (Or) expressionNode() {}

type Not struct {
	Operand Expression
}

func (Not) expressionNode() {}
