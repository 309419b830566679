// Package algebra combines expressions. Every operator is a table of
// rules selected by the pair of operand kinds; when an operand cannot be
// resolved the result is an unresolved ast.Operation, reduced around its
// constant terms where an algebraic identity allows it.
package algebra

import (
	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/scalar"
)

// class groups the ast kinds the dispatch tables distinguish.
type class int

const (
	classNumber    class = iota
	classComplex         // Complex or Imaginary
	classMatrix          //
	classSymbol          // Variable or Function
	classOperation       //
)

func classOf(e ast.Expr) class {
	switch e.Kind() {
	case ast.KindNumber:
		return classNumber
	case ast.KindComplex, ast.KindImaginary:
		return classComplex
	case ast.KindMatrix:
		return classMatrix
	case ast.KindVariable, ast.KindFunction:
		return classSymbol
	case ast.KindOperation:
		return classOperation
	}
	panic("algebra: unknown expression kind " + e.Kind().String())
}

// pair is the operand-kind pair a binaryOp dispatches on.
type pair int

const (
	numberNumber       pair = iota // Number ⊕ Number
	scalarScalar                   // scalar-like pair with at least one Complex or Imaginary
	matrixMatrix                   //
	matrixScalar                   // Matrix ⊕ scalar-like
	scalarMatrix                   // scalar-like ⊕ Matrix
	operationOperation             //
	operationConcrete              // Operation ⊕ Number/Complex/Imaginary/Matrix
	concreteOperation              //
	symbolic                       // at least one Variable or Function
)

func pairOf(x, y ast.Expr) pair {
	cx, cy := classOf(x), classOf(y)
	switch {
	case cx == classSymbol || cy == classSymbol:
		return symbolic
	case cx == classOperation && cy == classOperation:
		return operationOperation
	case cx == classOperation:
		return operationConcrete
	case cy == classOperation:
		return concreteOperation
	case cx == classMatrix && cy == classMatrix:
		return matrixMatrix
	case cx == classMatrix:
		return matrixScalar
	case cy == classMatrix:
		return scalarMatrix
	case cx == classNumber && cy == classNumber:
		return numberNumber
	default:
		return scalarScalar
	}
}

type (
	numberFn       func(x, y scalar.Scalar) (ast.Expr, error)
	scalarFn       func(x, y ast.Expr) (ast.Expr, error)
	matrixFn       func(x, y *ast.Matrix) (ast.Expr, error)
	scalarMatrixFn func(x ast.Expr, y *ast.Matrix) (ast.Expr, error)
)

// binaryOp holds the rules of one operator. A nil rule means the pair is
// not defined for that operator.
type binaryOp struct {
	op           ast.Opcode
	number       numberFn       // Number ⊕ Number
	scalar       scalarFn       // any other scalar-like pair
	elementwise  bool           // Matrix ⊕ Matrix cell by cell, and scalar broadcast
	matrix       matrixFn       // Matrix ⊕ Matrix, replaces elementwise
	scalarMatrix scalarMatrixFn // scalar-like ⊕ Matrix, replaces broadcast
}

func (b *binaryOp) eval(x, y ast.Expr) (ast.Expr, error) {
	switch pairOf(x, y) {
	case numberNumber:
		if b.number != nil {
			return b.number(x.(*ast.Number).Value, y.(*ast.Number).Value)
		}
	case scalarScalar:
		if b.scalar != nil {
			return b.scalar(x, y)
		}
	case matrixMatrix:
		if b.matrix != nil {
			return b.matrix(x.(*ast.Matrix), y.(*ast.Matrix))
		}
		if b.elementwise {
			return elementwise(b, x.(*ast.Matrix), y.(*ast.Matrix))
		}
	case matrixScalar:
		if b.elementwise {
			return broadcast(b, x.(*ast.Matrix), y, true)
		}
	case scalarMatrix:
		if b.scalarMatrix != nil {
			return b.scalarMatrix(x, y.(*ast.Matrix))
		}
		if b.elementwise {
			return broadcast(b, y.(*ast.Matrix), x, false)
		}
	case operationOperation:
		return nil, calcerr.New(calcerr.CannotReduce, "can't %s %s and %s", b.op.Name(), x, y)
	case operationConcrete, concreteOperation:
		return reduce(b.op, x, y)
	case symbolic:
		return ast.NewOperation(x.Clone(), b.op, y.Clone()), nil
	}
	return nil, typeError(x, y, b.op)
}

func typeError(x, y ast.Expr, op ast.Opcode) error {
	return calcerr.New(calcerr.UnsupportedOperandKinds, "can't %s %s (%s) and %s (%s)",
		op.Name(), x.Kind(), x, y.Kind(), y)
}

var binaryOps [ast.MatrixProductDivide + 1]*binaryOp

func init() {
	for _, b := range []*binaryOp{addOp, subOp, mulOp, divOp, remOp, powOp, productOp, productDivideOp} {
		binaryOps[b.op] = b
	}
}

// Apply combines x and y with op. Neither operand is modified, and the
// result shares no nodes with them.
func Apply(op ast.Opcode, x, y ast.Expr) (ast.Expr, error) {
	if op < 0 || int(op) >= len(binaryOps) || binaryOps[op] == nil {
		return nil, calcerr.New(calcerr.UnsupportedOperandKinds, "unknown operator %d", int(op))
	}
	return binaryOps[op].eval(x, y)
}

func Add(x, y ast.Expr) (ast.Expr, error)                 { return addOp.eval(x, y) }
func Sub(x, y ast.Expr) (ast.Expr, error)                 { return subOp.eval(x, y) }
func Mul(x, y ast.Expr) (ast.Expr, error)                 { return mulOp.eval(x, y) }
func Div(x, y ast.Expr) (ast.Expr, error)                 { return divOp.eval(x, y) }
func Rem(x, y ast.Expr) (ast.Expr, error)                 { return remOp.eval(x, y) }
func Pow(x, y ast.Expr) (ast.Expr, error)                 { return powOp.eval(x, y) }
func MatrixProduct(x, y ast.Expr) (ast.Expr, error)       { return productOp.eval(x, y) }
func MatrixProductDivide(x, y ast.Expr) (ast.Expr, error) { return productDivideOp.eval(x, y) }
