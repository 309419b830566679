package ast

type Opcode int

const (
	Add Opcode = iota
	Sub
	Mul
	Div
	Rem
	Pow
	MatrixProduct
	MatrixProductDivide
)

var opcodeSymbols = [...]string{"+", "-", "*", "/", "%", "^", "**", "//"}

var opcodeNames = [...]string{
	"add",
	"subtract",
	"multiply",
	"divide",
	"modulo",
	"power",
	"matrix product",
	"matrix divide",
}

// String returns the infix symbol used when rendering an Operation.
func (o Opcode) String() string {
	if o < 0 || int(o) >= len(opcodeSymbols) {
		return "?"
	}
	return opcodeSymbols[o]
}

// Name is the verb used in error messages.
func (o Opcode) Name() string {
	if o < 0 || int(o) >= len(opcodeNames) {
		return "unknown operation"
	}
	return opcodeNames[o]
}

// Commutative reports whether both operand orders must give the same result.
func (o Opcode) Commutative() bool {
	return o == Add || o == Mul
}

func (o Opcode) precedence() int {
	switch o {
	case Add, Sub:
		return 1
	case Pow:
		return 3
	default:
		return 2
	}
}
