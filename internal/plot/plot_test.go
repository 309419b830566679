package plot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/plot/plotter"

	"computor/internal/calcerr"
	"computor/internal/evaluator"
	"computor/internal/parser"
)

func define(t *testing.T, lines ...string) *evaluator.Environment {
	t.Helper()
	env := evaluator.NewEnvironment()
	for _, line := range lines {
		stmt, err := parser.ParseLine(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		if _, err := evaluator.Run(stmt, env); err != nil {
			t.Fatalf("run %q: %v", line, err)
		}
	}
	return env
}

func TestSample(t *testing.T) {
	env := define(t, "f(x) = x ^ 2", "inv(x) = 1 / x")

	tests := []struct {
		name     string
		function string
		from, to float64
		samples  int
		expected []plotter.XYs
	}{
		{
			"continuous",
			"f", 0, 2, 3,
			[]plotter.XYs{{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 4}}},
		},
		{
			"case insensitive",
			"F", -1, 1, 2,
			[]plotter.XYs{{{X: -1, Y: 1}, {X: 1, Y: 1}}},
		},
		{
			"split at a pole",
			"inv", -1, 1, 3,
			[]plotter.XYs{{{X: -1, Y: -1}}, {{X: 1, Y: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sample(tt.function, tt.from, tt.to, tt.samples, env)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("samples mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSampleErrors(t *testing.T) {
	env := define(t, "f(x) = x", "g(x) = x + i")

	tests := []struct {
		name     string
		function string
		from, to float64
		samples  int
		kind     calcerr.Kind
	}{
		{"undefined", "h", 0, 1, 10, calcerr.UndefinedFunction},
		{"too few samples", "f", 0, 1, 1, calcerr.InvalidArgument},
		{"empty range", "f", 1, 1, 10, calcerr.InvalidArgument},
		{"reversed range", "f", 2, 1, 10, calcerr.InvalidArgument},
		{"never real", "g", 0, 1, 10, calcerr.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(tt.function, tt.from, tt.to, tt.samples, env)
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	env := define(t, "f(x) = x ^ 3 - 2 * x")
	path := filepath.Join(t.TempDir(), "f.png")

	opts := DefaultOptions()
	opts.Samples = 50
	if err := Render("f", -2, 2, path, opts, env); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty image")
	}
}
