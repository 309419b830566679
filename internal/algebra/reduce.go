package algebra

import (
	"computor/internal/ast"
)

// category is how the reduction engine sees an operand.
type category int

const (
	computable category = iota // Number, Complex, Imaginary
	literal                    // Variable, Function, Operation
	matrixLike                 // Matrix
)

func classify(e ast.Expr) category {
	switch classOf(e) {
	case classNumber, classComplex:
		return computable
	case classMatrix:
		return matrixLike
	default:
		return literal
	}
}

// flip swaps + and -, and * and /.
func flip(op ast.Opcode) ast.Opcode {
	switch op {
	case ast.Add:
		return ast.Sub
	case ast.Sub:
		return ast.Add
	case ast.Mul:
		return ast.Div
	case ast.Div:
		return ast.Mul
	}
	return op
}

func additive(op ast.Opcode) bool       { return op == ast.Add || op == ast.Sub }
func multiplicative(op ast.Opcode) bool { return op == ast.Mul || op == ast.Div }

// reduce combines an unresolved Operation with a concrete value. Exactly one
// of x and y is an *ast.Operation. When the operation holds a single literal
// term the two constant terms are folded together around it; otherwise the
// operation is rebuilt unchanged.
func reduce(op ast.Opcode, x, y ast.Expr) (ast.Expr, error) {
	inner, innerLeft := x.(*ast.Operation)
	c := y
	if !innerLeft {
		inner, c = y.(*ast.Operation), x
	}

	var r reduction
	if innerLeft {
		r = reduceLeft(op, inner, c)
	} else {
		r = reduceRight(op, c, inner)
	}
	if r == nil {
		return ast.NewOperation(x.Clone(), op, y.Clone()), nil
	}
	return r()
}

type reduction func() (ast.Expr, error)

// literalSide reports which of a and b is the only literal term, provided
// the remaining term and c can be combined directly.
func literalSide(a, b, c ast.Expr) (aLiteral, ok bool) {
	ca, cb, cc := classify(a), classify(b), classify(c)
	switch {
	case ca == literal && cb != literal:
		return true, cb == cc
	case cb == literal && ca != literal:
		return false, ca == cc
	}
	return false, false
}

// reduceLeft handles (a ∘ b) ⊕ c.
func reduceLeft(op ast.Opcode, inner *ast.Operation, c ast.Expr) reduction {
	a, in, b := inner.Left, inner.Op, inner.Right

	if multiplicative(op) && additive(in) {
		// (a ∘ b) * c = (a * c) ∘ (b * c), (a ∘ b) / c = (a / c) ∘ (b / c)
		return distribute(in, op, a, c.Clone(), b, c.Clone())
	}

	aLit, ok := literalSide(a, b, c)
	if !ok {
		return nil
	}

	switch {
	case additive(op) && additive(in):
		if aLit {
			folded := op
			if in == ast.Sub {
				folded = flip(op)
			}
			return fold(in, a, folded, b, c, false)
		}
		return fold(in, b, op, a, c, true)

	case multiplicative(op) && multiplicative(in):
		switch {
		case in == ast.Mul && aLit:
			// (a * b) ⊕ c = a * (b ⊕ c)
			return fold(ast.Mul, a, op, b, c, false)
		case in == ast.Mul:
			// (a * b) ⊕ c = (a ⊕ c) * b
			return fold(ast.Mul, b, op, a, c, true)
		case aLit:
			// (a / b) * c = a * (c / b), (a / b) / c = a / (b * c)
			if op == ast.Mul {
				return fold(ast.Mul, a, ast.Div, c, b, false)
			}
			return fold(ast.Div, a, ast.Mul, b, c, false)
		default:
			// (a / b) ⊕ c = (a ⊕ c) / b
			return fold(ast.Div, b, op, a, c, true)
		}
	}
	return nil
}

// reduceRight handles c ⊕ (a ∘ b).
func reduceRight(op ast.Opcode, c ast.Expr, inner *ast.Operation) reduction {
	a, in, b := inner.Left, inner.Op, inner.Right

	if op == ast.Mul && additive(in) {
		// c * (a ∘ b) = (c * a) ∘ (c * b)
		return distribute(in, op, c.Clone(), a, c.Clone(), b)
	}

	aLit, ok := literalSide(a, b, c)
	if !ok {
		return nil
	}

	switch {
	case additive(op) && additive(in):
		outer := in
		if op == ast.Sub {
			outer = flip(in)
		}
		switch {
		case !aLit:
			// c ⊕ (a ∘ b) = (c ⊕ a) ∘' b
			return fold(outer, b, op, c, a, true)
		case op == ast.Add:
			// c + (a ∘ b) = a + (c ∘ b)
			return fold(ast.Add, a, in, c, b, false)
		default:
			// c - (a ∘ b) = (c ∘' b) - a
			return fold(ast.Sub, a, outer, c, b, true)
		}

	case op == ast.Mul && multiplicative(in):
		if !aLit {
			// c * (a ∘ b) = (c * a) ∘ b
			return fold(in, b, ast.Mul, c, a, true)
		}
		if in == ast.Mul {
			// c * (a * b) = a * (c * b)
			return fold(ast.Mul, a, ast.Mul, c, b, false)
		}
		// c * (a / b) = a * (c / b)
		return fold(ast.Mul, a, ast.Div, c, b, false)

	case op == ast.Div && multiplicative(in):
		if in == ast.Mul {
			// c / (a * b) = (c / a) / b or (c / b) / a
			if aLit {
				return fold(ast.Div, a, ast.Div, c, b, true)
			}
			return fold(ast.Div, b, ast.Div, c, a, true)
		}
		if aLit {
			// c / (a / b) = (c * b) / a
			return fold(ast.Div, a, ast.Mul, c, b, true)
		}
		// c / (a / b) = (c / a) * b
		return fold(ast.Mul, b, ast.Div, c, a, true)
	}
	return nil
}

// fold computes k = p ∘ q from the two constant terms and joins it with the
// literal term lit using outer. constFirst puts k on the left.
func fold(outer ast.Opcode, lit ast.Expr, op ast.Opcode, p, q ast.Expr, constFirst bool) reduction {
	return func() (ast.Expr, error) {
		k, err := Apply(op, p, q)
		if err != nil {
			return nil, err
		}
		if constFirst {
			return combine(outer, k, lit.Clone())
		}
		return combine(outer, lit.Clone(), k)
	}
}

// distribute builds (p1 mul q1) join (p2 mul q2) with both partial products
// dispatched. It only applies when one of the inner terms is constant, so
// an operation over two literals keeps its shape.
func distribute(join, mul ast.Opcode, p1, q1, p2, q2 ast.Expr) reduction {
	resolves := func(p, q ast.Expr) bool {
		return classify(p) != literal && classify(q) != literal
	}
	if !resolves(p1, q1) && !resolves(p2, q2) {
		return nil
	}
	return func() (ast.Expr, error) {
		l, err := Apply(mul, p1, q1)
		if err != nil {
			return nil, err
		}
		r, err := Apply(mul, p2, q2)
		if err != nil {
			return nil, err
		}
		return combine(join, l, r)
	}
}

// combine is Apply, except that two unresolved operations are joined as is
// instead of failing. A negative number added or subtracted on the right is
// written with the opposite sign: x - -1 becomes x + 1.
func combine(op ast.Opcode, x, y ast.Expr) (ast.Expr, error) {
	if n, ok := y.(*ast.Number); ok && additive(op) && n.Value < 0 {
		op, y = flip(op), &ast.Number{Value: n.Value.Neg()}
	}
	if classOf(x) == classOperation && classOf(y) == classOperation {
		return ast.NewOperation(x, op, y), nil
	}
	return Apply(op, x, y)
}
