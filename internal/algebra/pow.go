package algebra

import (
	"math"

	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/scalar"
)

// powComplex raises a Complex or Imaginary base to a real exponent. The
// integer part is computed exactly; a fractional remainder f is kept as the
// unresolved factor base ^ f.
func powComplex(base ast.Expr, exp scalar.Scalar) (ast.Expr, error) {
	if math.IsNaN(exp.Float64()) || math.Abs(exp.Float64()) > 1<<53 {
		return nil, calcerr.New(calcerr.InvalidArgument, "can't raise %s to %s", base, exp)
	}
	whole := exp.Trunc()
	frac := exp.Sub(whole)

	b := toComplex(base)
	result := cplxOne
	n := uint64(math.Abs(whole.Float64()))
	for sq := b; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.mul(sq)
		}
		sq = sq.mul(sq)
	}
	if whole < 0 {
		var err error
		if result, err = cplxOne.div(result); err != nil {
			return nil, calcerr.New(calcerr.DivisionByZero, "can't raise %s to the negative power %s", base, exp)
		}
	}

	if frac.IsZero() {
		return result.expr(), nil
	}
	return ast.NewOperation(result.expr(), ast.Mul,
		ast.NewOperation(base.Clone(), ast.Pow, number(frac))), nil
}
