package algebra

import (
	"computor/internal/ast"
	"computor/internal/scalar"
)

// Equal reports whether x and y denote the same value. Kinds that have no
// equality rule are never equal; Equal never fails.
func Equal(x, y ast.Expr) bool {
	switch a := x.(type) {
	case *ast.Number:
		switch b := y.(type) {
		case *ast.Number:
			return a.Value.Eq(b.Value)
		case *ast.Complex:
			return b.Im.IsZero() && a.Value.Eq(b.Re)
		}
	case *ast.Complex:
		switch b := y.(type) {
		case *ast.Number:
			return a.Im.IsZero() && a.Re.Eq(b.Value)
		case *ast.Complex:
			return a.Re.Eq(b.Re) && a.Im.Eq(b.Im)
		case *ast.Imaginary:
			// only the imaginary part is compared
			return a.Im.Eq(scalar.ONE)
		}
	case *ast.Imaginary:
		switch b := y.(type) {
		case *ast.Imaginary:
			return true
		case *ast.Complex:
			return b.Im.Eq(scalar.ONE)
		}
	case *ast.Matrix:
		if b, ok := y.(*ast.Matrix); ok {
			return equalMatrix(a, b)
		}
	}
	return false
}

func equalMatrix(a, b *ast.Matrix) bool {
	if len(a.Rows) != len(b.Rows) {
		return false
	}
	for r := range a.Rows {
		if len(a.Rows[r]) != len(b.Rows[r]) {
			return false
		}
		for c := range a.Rows[r] {
			if !Equal(a.Rows[r][c], b.Rows[r][c]) {
				return false
			}
		}
	}
	return true
}

// Compare orders x and y, returning -1, 0 or +1. Two Numbers compare by
// signed value; any pair involving a Complex or Imaginary compares moduli.
// ok is false when the pair has no ordering.
func Compare(x, y ast.Expr) (cmp int, ok bool) {
	cx, cy := classOf(x), classOf(y)
	if (cx != classNumber && cx != classComplex) || (cy != classNumber && cy != classComplex) {
		return 0, false
	}
	if cx == classNumber && cy == classNumber {
		return order(x.(*ast.Number).Value, y.(*ast.Number).Value), true
	}
	mx := scalar.New(toComplex(x).modulus())
	my := scalar.New(toComplex(y).modulus())
	return order(mx, my), true
}

func order(a, b scalar.Scalar) int {
	switch {
	case a.Eq(b):
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}
