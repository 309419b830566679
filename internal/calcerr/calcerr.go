// Package calcerr holds the error kinds reported by the algebra and the
// evaluator. A Kind is itself an error so callers can test for it with
// errors.Is, including through aggregated matrix errors.
package calcerr

import (
	"fmt"
	"strings"
)

type Kind int

const (
	DivisionByZero Kind = iota + 1
	InvalidArgument
	UndefinedVariable
	UndefinedFunction
	RecursiveDefinition
	DimensionMismatch
	NotInvertible
	UnsupportedDimension
	UnsupportedOperandKinds
	InvalidAssignmentTarget
	CannotReduce
)

var kindNames = [...]string{
	"",
	"division by zero",
	"invalid argument",
	"undefined variable",
	"undefined function",
	"recursive definition",
	"dimension mismatch",
	"not invertible",
	"unsupported dimension",
	"unsupported operand kinds",
	"invalid assignment target",
	"cannot reduce",
}

func (k Kind) Error() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("error kind %d", int(k))
	}
	return kindNames[k]
}

func (k Kind) String() string { return k.Error() }

// Error is a single failure of a known kind with a human readable detail.
type Error struct {
	Kind   Kind
	Detail string
}

func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

// CellError locates a failure inside a matrix.
type CellError struct {
	Row, Column int
	Err         error
}

func (c CellError) Error() string {
	return fmt.Sprintf("%s at [%d, %d]", c.Err, c.Row, c.Column)
}

func (c CellError) Unwrap() error { return c.Err }

// CellErrors aggregates every failing cell of a matrix operation, in
// row-major order. It is only ever returned non-empty.
type CellErrors struct {
	Cells []CellError
}

func (m *CellErrors) Add(row, column int, err error) {
	m.Cells = append(m.Cells, CellError{Row: row, Column: column, Err: err})
}

func (m *CellErrors) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Cells)
}

// Err returns nil when no cell failed, so it can be returned directly.
func (m *CellErrors) Err() error {
	if m.Len() == 0 {
		return nil
	}
	return m
}

func (m *CellErrors) Error() string {
	lines := make([]string, len(m.Cells))
	for i, c := range m.Cells {
		lines[i] = c.Error()
	}
	return strings.Join(lines, "\n")
}

func (m *CellErrors) Unwrap() []error {
	errs := make([]error, len(m.Cells))
	for i, c := range m.Cells {
		errs[i] = c
	}
	return errs
}

// KindOf returns the kind of the first classified error found in err's
// tree, or 0 when there is none.
func KindOf(err error) Kind {
	switch e := err.(type) {
	case nil:
		return 0
	case Kind:
		return e
	case *Error:
		return e.Kind
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if k := KindOf(inner); k != 0 {
				return k
			}
		}
		return 0
	case interface{ Unwrap() error }:
		return KindOf(e.Unwrap())
	}
	return 0
}
