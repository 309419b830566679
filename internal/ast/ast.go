package ast

import (
	"bytes"
	"strings"

	"computor/internal/scalar"
)

// Kind identifies which variant an Expr currently is.
type Kind int

const (
	KindNumber Kind = iota
	KindImaginary
	KindComplex
	KindMatrix
	KindVariable
	KindFunction
	KindOperation
)

var kindNames = [...]string{"number", "imaginary", "complex", "matrix", "variable", "function", "operation"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// The base Node interface
type Node interface {
	String() string
}

// Expr is the closed set of expression variants. Construction never
// validates matrix shape nor collapses a complex with a zero imaginary part;
// normalization happens when an expression is evaluated.
type Expr interface {
	Node
	Kind() Kind
	Clone() Expr
	exprNode()
}

type Statement interface {
	Node
	statementNode()
}

type Number struct {
	Value scalar.Scalar
}

func NewNumber(f float64) *Number { return &Number{Value: scalar.New(f)} }

func (n *Number) exprNode()      {}
func (n *Number) Kind() Kind     { return KindNumber }
func (n *Number) Clone() Expr    { return &Number{Value: n.Value} }
func (n *Number) String() string { return n.Value.String() }

// Imaginary is the unit i. It behaves exactly like Complex(0, 1).
type Imaginary struct{}

func NewImaginary() *Imaginary { return &Imaginary{} }

func (i *Imaginary) exprNode()      {}
func (i *Imaginary) Kind() Kind     { return KindImaginary }
func (i *Imaginary) Clone() Expr    { return &Imaginary{} }
func (i *Imaginary) String() string { return "i" }

type Complex struct {
	Re scalar.Scalar
	Im scalar.Scalar
}

func NewComplex(re, im float64) *Complex {
	return &Complex{Re: scalar.New(re), Im: scalar.New(im)}
}

func (c *Complex) exprNode()   {}
func (c *Complex) Kind() Kind  { return KindComplex }
func (c *Complex) Clone() Expr { return &Complex{Re: c.Re, Im: c.Im} }
func (c *Complex) String() string {
	if c.Im < -scalar.EPSILON {
		return c.Re.String() + " " + c.Im.String() + "i"
	}
	return c.Re.String() + " + " + c.Im.String() + "i"
}

// Matrix is stored as rows of cells. Rows may differ in length until the
// matrix is evaluated.
type Matrix struct {
	Rows [][]Expr
}

func NewMatrix(rows [][]Expr) *Matrix { return &Matrix{Rows: rows} }

func (m *Matrix) exprNode()  {}
func (m *Matrix) Kind() Kind { return KindMatrix }
func (m *Matrix) Clone() Expr {
	rows := make([][]Expr, len(m.Rows))
	for y, row := range m.Rows {
		rows[y] = make([]Expr, len(row))
		for x, cell := range row {
			rows[y][x] = cell.Clone()
		}
	}
	return &Matrix{Rows: rows}
}

// Dims returns the row count and the length of the first row.
func (m *Matrix) Dims() (rows, cols int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

// Cell returns nil when (row, col) is outside the matrix.
func (m *Matrix) Cell(row, col int) Expr {
	if row < 0 || row >= len(m.Rows) || col < 0 || col >= len(m.Rows[row]) {
		return nil
	}
	return m.Rows[row][col]
}

func (m *Matrix) String() string {
	var out bytes.Buffer

	out.WriteString("[ ")
	for y, row := range m.Rows {
		cells := make([]string, len(row))
		for x, cell := range row {
			cells[x] = cell.String()
		}
		out.WriteString("[" + strings.Join(cells, ", ") + "]")
		if y < len(m.Rows)-1 {
			out.WriteString(" ; ")
		}
	}
	out.WriteString(" ]")

	return out.String()
}

type Variable struct {
	Name string
}

func NewVariable(name string) *Variable { return &Variable{Name: name} }

func (v *Variable) exprNode()      {}
func (v *Variable) Kind() Kind     { return KindVariable }
func (v *Variable) Clone() Expr    { return &Variable{Name: v.Name} }
func (v *Variable) String() string { return v.Name }

// Function is an application of a named unary function. The definition
// lives in the evaluator's environment.
type Function struct {
	Name string
	Arg  Expr
}

func NewFunction(name string, arg Expr) *Function { return &Function{Name: name, Arg: arg} }

func (f *Function) exprNode()      {}
func (f *Function) Kind() Kind     { return KindFunction }
func (f *Function) Clone() Expr    { return &Function{Name: f.Name, Arg: f.Arg.Clone()} }
func (f *Function) String() string { return f.Name + "(" + f.Arg.String() + ")" }

// Operation is a binary application that could not be collapsed to a value.
type Operation struct {
	Left  Expr
	Op    Opcode
	Right Expr
}

func NewOperation(left Expr, op Opcode, right Expr) *Operation {
	return &Operation{Left: left, Op: op, Right: right}
}

func (o *Operation) exprNode()  {}
func (o *Operation) Kind() Kind { return KindOperation }
func (o *Operation) Clone() Expr {
	return &Operation{Left: o.Left.Clone(), Op: o.Op, Right: o.Right.Clone()}
}

func (o *Operation) String() string {
	var out bytes.Buffer

	out.WriteString(operand(o.Left, o.Op, false))
	out.WriteString(" " + o.Op.String() + " ")
	out.WriteString(operand(o.Right, o.Op, true))

	return out.String()
}

// operand renders a child of an Operation, adding the parentheses needed
// for the text to parse back into the same tree.
func operand(e Expr, parent Opcode, right bool) string {
	s := e.String()
	switch v := e.(type) {
	case *Complex:
		return "(" + s + ")"
	case *Number:
		if v.Value < 0 && parent == Pow && !right {
			return "(" + s + ")"
		}
	case *Operation:
		pc, pp := v.Op.precedence(), parent.precedence()
		if pc < pp {
			return "(" + s + ")"
		}
		if pc == pp {
			// ^ is right associative, everything else left associative
			if (parent == Pow) != right {
				return "(" + s + ")"
			}
		}
	}
	return s
}

// Assignment binds Value to a variable, or defines a function when Target
// is a Function whose argument is a Variable.
type Assignment struct {
	Target Expr
	Value  Expr
}

func (a *Assignment) statementNode() {}
func (a *Assignment) String() string { return a.Target.String() + " = " + a.Value.String() }

// Evaluation asks for the value of Expr.
type Evaluation struct {
	Expr Expr
}

func (e *Evaluation) statementNode() {}
func (e *Evaluation) String() string { return e.Expr.String() + " = ?" }
