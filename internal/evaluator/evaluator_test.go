package evaluator

import (
	"errors"
	"strings"
	"testing"

	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/parser"

	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, env *Environment, line string) (ast.Expr, error) {
	t.Helper()
	stmt, err := parser.ParseLine(line)
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	return Run(stmt, env)
}

func TestSession(t *testing.T) {
	env := NewEnvironment()

	steps := []struct {
		input    string
		expected string
	}{
		{"x = 3", "3"},
		{"x * 2 + 1", "7"},
		{"f(x) = x^2 + 1", "f(x)"},
		{"f(3)", "10"},
		{"F(2)", "5"},
		{"X + 1", "4"},
		{"i * i", "-1"},
		{"2i + 3", "3 + 2i"},
		{"(1 + i) * (1 - i)", "2"},
		{"m = [[1, 2]; [3, 4]]", "[ [1, 2] ; [3, 4] ]"},
		{"m * 2", "[ [2, 4] ; [6, 8] ]"},
		{"m ** m", "[ [7, 10] ; [15, 22] ]"},
		{"g(a) = f(a) * 2", "g(a)"},
		{"g(x - 1)", "10"},
		{"x = x + 1", "4"},
		{"f(x)", "17"},
		{"7 % 4 + 2 ^ 3", "11"},
	}

	for _, step := range steps {
		got, err := run(t, env, step.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", step.input, err)
		}
		if diff := cmp.Diff(step.expected, got.String()); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", step.input, diff)
		}
	}

	if diff := cmp.Diff([]string{"m", "x"}, env.VariableNames()); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f", "g"}, env.FunctionNames()); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  calcerr.Kind
	}{
		{"y + 1", calcerr.UndefinedVariable},
		{"k(2)", calcerr.UndefinedFunction},
		{"k(y)", calcerr.UndefinedFunction},
		{"1 / 0", calcerr.DivisionByZero},
		{"f(x) = f(x) + 1", calcerr.RecursiveDefinition},
		{"f(x) = 2 * [[1, F(x)]]", calcerr.RecursiveDefinition},
		{"f(x + 1) = 2", calcerr.InvalidAssignmentTarget},
		{"2 = 3", calcerr.InvalidAssignmentTarget},
		{"i = 3", calcerr.InvalidAssignmentTarget},
		{"[[1, 2]; [3]]", calcerr.DimensionMismatch},
		{"[[1, 2]] + [[1, 2]; [3, 4]]", calcerr.DimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env := NewEnvironment()
			v, err := run(t, env, tt.input)
			if err == nil {
				t.Fatalf("expected %s error, got %s", tt.kind, v)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
			if len(env.VariableNames())+len(env.FunctionNames()) != 0 {
				t.Errorf("failed statement changed the environment")
			}
		})
	}
}

func TestIndirectRecursionIsRejected(t *testing.T) {
	env := NewEnvironment()
	for _, line := range []string{"g(x) = x + 1", "h(x) = g(x) * 3"} {
		if _, err := run(t, env, line); err != nil {
			t.Fatalf("%q: unexpected error: %v", line, err)
		}
	}

	_, err := run(t, env, "g(x) = h(x)")
	if !errors.Is(err, calcerr.RecursiveDefinition) {
		t.Fatalf("expected recursive definition, got %v", err)
	}

	v, err := run(t, env, "g(1)")
	if err != nil || v.String() != "2" {
		t.Errorf("expected the original g to survive, got %v, %v", v, err)
	}
}

func TestIrregularMatrixNamesShapes(t *testing.T) {
	m := ast.NewMatrix([][]ast.Expr{
		{ast.NewNumber(1), ast.NewNumber(2)},
		{ast.NewNumber(3), ast.NewNumber(4), ast.NewNumber(5)},
	})

	_, err := Eval(m, NewEnvironment())
	if !errors.Is(err, calcerr.DimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "expected 2 found 3") {
		t.Errorf("expected the shapes in the message, got %q", err)
	}
}

func TestMatrixCellErrorsAreCollected(t *testing.T) {
	_, err := run(t, NewEnvironment(), "[[1, 1 / 0]; [z, 2]]")

	var cells *calcerr.CellErrors
	if !errors.As(err, &cells) {
		t.Fatalf("expected *calcerr.CellErrors, got %v", err)
	}
	if cells.Len() != 2 {
		t.Fatalf("expected 2 failing cells, got %d:\n%v", cells.Len(), err)
	}
	if !errors.Is(err, calcerr.DivisionByZero) || !errors.Is(err, calcerr.UndefinedVariable) {
		t.Errorf("expected both cell errors to be reported, got %v", err)
	}
}

func TestEvalIsIdempotentOnValues(t *testing.T) {
	env := NewEnvironment()
	tests := []struct {
		value    ast.Expr
		expected string
	}{
		{ast.NewNumber(4), "4"},
		{ast.NewNumber(-2.5), "-2.5"},
		{ast.NewImaginary(), "i"},
		{ast.NewComplex(1, -2), "1 -2i"},
		{ast.NewComplex(3, 0), "3"},
		{ast.NewMatrix([][]ast.Expr{{ast.NewNumber(1), ast.NewComplex(2, 0)}}), "[ [1, 2] ]"},
	}

	for _, tt := range tests {
		got, err := Eval(tt.value, env)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.value, err)
		}
		if diff := cmp.Diff(tt.expected, got.String()); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.value, diff)
		}
		again, err := Eval(got, env)
		if err != nil || again.String() != got.String() {
			t.Errorf("second evaluation of %s gave %v, %v", got, again, err)
		}
	}
}

func TestSimplify(t *testing.T) {
	env := NewEnvironment()
	for _, line := range []string{"a = 2", "x = 10", "h(y) = y + x"} {
		if _, err := run(t, env, line); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		input    string
		free     []string
		expected string
	}{
		{"(a + z) + 3", nil, "5 + z"},
		{"(a + x) + 3", []string{"x"}, "5 + x"},
		{"(a + x) + 3", nil, "15"},
		{"2 * y + 3 * 4", nil, "2 * y + 12"},
		{"(y + 1) * (y - 1)", nil, "(y + 1) * (y - 1)"},
		{"3 * (y + a)", nil, "3 * y + 6"},
		{"q(a + 1)", nil, "q(3)"},
		{"h(2)", []string{"x"}, "12"},
		{"h(x) * 2", []string{"x"}, "x * 2 + 20"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Simplify(expr, env, tt.free...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got.String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribeFunction(t *testing.T) {
	env := NewEnvironment()
	if _, err := run(t, env, "F(X) = X * Y + G(x)"); err != nil {
		t.Fatal(err)
	}

	param, body, ok := DescribeFunction("f", env)
	if !ok {
		t.Fatal("expected f to be defined")
	}
	if param != "x" {
		t.Errorf("expected parameter x, got %q", param)
	}
	if diff := cmp.Diff("x * y + g(x)", body.String()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	if _, _, ok := DescribeFunction("nope", env); ok {
		t.Error("expected nope to be undefined")
	}
}
