package scalar

import (
	"math"
	"strconv"

	"computor/internal/calcerr"
)

// Scalar is a single real value. Equality and zero tests are epsilon based,
// never exact.
type Scalar float64

// EPSILON is the smallest representable difference around 1 for float64.
const EPSILON = 0x1p-52

const (
	ZERO = Scalar(0)
	ONE  = Scalar(1)
)

func New(f float64) Scalar {
	return Scalar(f)
}

func (s Scalar) Float64() float64 {
	return float64(s)
}

func (s Scalar) Add(o Scalar) Scalar { return s + o }
func (s Scalar) Sub(o Scalar) Scalar { return s - o }
func (s Scalar) Mul(o Scalar) Scalar { return s * o }
func (s Scalar) Neg() Scalar         { return -s }

// Div fails with DivisionByZero when the divisor is within EPSILON of zero.
func (s Scalar) Div(o Scalar) (Scalar, error) {
	d, err := o.Verify()
	if err != nil {
		return ZERO, err
	}
	return s / d, nil
}

// Verify returns s unchanged unless it is within EPSILON of zero.
func (s Scalar) Verify() (Scalar, error) {
	if s.IsZero() {
		return ZERO, calcerr.New(calcerr.DivisionByZero, "divisor %s is 0", s)
	}
	return s, nil
}

// Sqrt is only defined for values strictly above EPSILON.
func (s Scalar) Sqrt() (Scalar, error) {
	if s <= EPSILON {
		return ZERO, calcerr.New(calcerr.InvalidArgument, "sqrt on an invalid number: %s", s)
	}
	return Scalar(math.Sqrt(float64(s))), nil
}

func (s Scalar) IsZero() bool {
	return s.Eq(ZERO)
}

func (s Scalar) Eq(o Scalar) bool {
	return math.Abs(float64(s-o)) <= EPSILON
}

// IsInteger reports whether s has no fractional part.
func (s Scalar) IsInteger() bool {
	f := float64(s)
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

func (s Scalar) Trunc() Scalar {
	return Scalar(math.Trunc(float64(s)))
}

// String renders s with the minimal number of digits; negative zero prints as 0.
func (s Scalar) String() string {
	f := float64(s)
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
