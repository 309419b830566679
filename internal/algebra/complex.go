package algebra

import (
	"math"

	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/scalar"
)

// cplx is the working form of every scalar-like operand: a Number n is
// (n, 0) and Imaginary is (0, 1).
type cplx struct {
	re, im scalar.Scalar
}

var cplxOne = cplx{re: scalar.ONE}

func toComplex(e ast.Expr) cplx {
	switch v := e.(type) {
	case *ast.Number:
		return cplx{re: v.Value}
	case *ast.Complex:
		return cplx{re: v.Re, im: v.Im}
	case *ast.Imaginary:
		return cplx{im: scalar.ONE}
	}
	panic("algebra: toComplex on " + e.Kind().String())
}

func (c cplx) expr() ast.Expr {
	return &ast.Complex{Re: c.re, Im: c.im}
}

func (c cplx) add(o cplx) cplx {
	return cplx{re: c.re.Add(o.re), im: c.im.Add(o.im)}
}

func (c cplx) sub(o cplx) cplx {
	return cplx{re: c.re.Sub(o.re), im: c.im.Sub(o.im)}
}

// (a + bi)(c + di) = (ac - bd) + (bc + ad)i
func (c cplx) mul(o cplx) cplx {
	return cplx{
		re: c.re.Mul(o.re).Sub(c.im.Mul(o.im)),
		im: c.im.Mul(o.re).Add(c.re.Mul(o.im)),
	}
}

// div rationalizes with the conjugate: (a + bi)(c - di) / (c² + d²).
func (c cplx) div(o cplx) (cplx, error) {
	den := o.squaredModulus()
	if den.IsZero() {
		return cplx{}, calcerr.New(calcerr.DivisionByZero, "can't divide %s by 0", c.expr())
	}
	re, _ := c.re.Mul(o.re).Add(c.im.Mul(o.im)).Div(den)
	im, _ := c.im.Mul(o.re).Sub(c.re.Mul(o.im)).Div(den)
	return cplx{re: re, im: im}, nil
}

func (c cplx) squaredModulus() scalar.Scalar {
	return c.re.Mul(c.re).Add(c.im.Mul(c.im))
}

func (c cplx) modulus() float64 {
	return math.Hypot(c.re.Float64(), c.im.Float64())
}

// rem is a per-component integer modulo. A zero divisor component only
// fails when the matching dividend component is non-zero.
func (c cplx) rem(o cplx) (cplx, error) {
	re, err := remComponent(c.re, o.re)
	if err != nil {
		return cplx{}, err
	}
	im, err := remComponent(c.im, o.im)
	if err != nil {
		return cplx{}, err
	}
	return cplx{re: re, im: im}, nil
}

func remComponent(a, b scalar.Scalar) (scalar.Scalar, error) {
	a, b = a.Trunc(), b.Trunc()
	if a.IsZero() {
		return scalar.ZERO, nil
	}
	if b.IsZero() {
		return scalar.ZERO, calcerr.New(calcerr.DivisionByZero, "can't modulo %s by 0", a)
	}
	return scalar.New(math.Mod(a.Float64(), b.Float64())), nil
}
