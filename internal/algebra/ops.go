package algebra

import (
	"math"

	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/scalar"
)

func number(s scalar.Scalar) ast.Expr { return &ast.Number{Value: s} }

var addOp = &binaryOp{
	op: ast.Add,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		return number(x.Add(y)), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		return toComplex(x).add(toComplex(y)).expr(), nil
	},
	elementwise: true,
}

var subOp = &binaryOp{
	op: ast.Sub,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		return number(x.Sub(y)), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		return toComplex(x).sub(toComplex(y)).expr(), nil
	},
	elementwise: true,
}

var mulOp = &binaryOp{
	op: ast.Mul,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		return number(x.Mul(y)), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		return toComplex(x).mul(toComplex(y)).expr(), nil
	},
	elementwise: true,
}

var divOp = &binaryOp{
	op: ast.Div,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		if y.IsZero() {
			return nil, calcerr.New(calcerr.DivisionByZero, "can't divide %s by 0", x)
		}
		q, err := x.Div(y)
		if err != nil {
			return nil, err
		}
		return number(q), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		q, err := toComplex(x).div(toComplex(y))
		if err != nil {
			return nil, err
		}
		return q.expr(), nil
	},
	elementwise: true,
}

var remOp = &binaryOp{
	op: ast.Rem,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		a, b := x.Trunc(), y.Trunc()
		if b.IsZero() {
			return nil, calcerr.New(calcerr.DivisionByZero, "can't modulo %s by 0", x)
		}
		return number(scalar.New(math.Mod(a.Float64(), b.Float64()))), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		r, err := toComplex(x).rem(toComplex(y))
		if err != nil {
			return nil, err
		}
		return r.expr(), nil
	},
}

var powOp = &binaryOp{
	op: ast.Pow,
	number: func(x, y scalar.Scalar) (ast.Expr, error) {
		if x.IsZero() && y < 0 {
			return nil, calcerr.New(calcerr.DivisionByZero, "can't raise 0 to the negative power %s", y)
		}
		r := math.Pow(x.Float64(), y.Float64())
		if math.IsNaN(r) {
			return nil, calcerr.New(calcerr.InvalidArgument, "%s ^ %s is not a real number", x, y)
		}
		return ast.NewNumber(r), nil
	},
	scalar: func(x, y ast.Expr) (ast.Expr, error) {
		n, ok := y.(*ast.Number)
		if !ok {
			return nil, typeError(x, y, ast.Pow)
		}
		return powComplex(x, n.Value)
	},
}

var productOp = &binaryOp{
	op:     ast.MatrixProduct,
	matrix: matrixProduct,
}

var productDivideOp = &binaryOp{
	op: ast.MatrixProductDivide,
	matrix: func(x, y *ast.Matrix) (ast.Expr, error) {
		inv, err := inverse2x2(y)
		if err != nil {
			return nil, err
		}
		return matrixProduct(x, inv)
	},
	scalarMatrix: func(x ast.Expr, y *ast.Matrix) (ast.Expr, error) {
		inv, err := inverse2x2(y)
		if err != nil {
			return nil, err
		}
		return broadcast(mulOp, inv, x, false)
	},
}
