// Package plot draws user functions of one variable.
package plot

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"computor/internal/ast"
	"computor/internal/calcerr"
	"computor/internal/evaluator"
)

type Options struct {
	Samples int
	Width   vg.Length
	Height  vg.Length
}

func DefaultOptions() Options {
	return Options{Samples: 200, Width: 12 * vg.Centimeter, Height: 8 * vg.Centimeter}
}

// Sample evaluates name at evenly spaced points of [from, to]. Points where
// the function fails or is not a real number split the curve, so each
// returned slice is one connected run.
func Sample(name string, from, to float64, samples int, env *evaluator.Environment) ([]plotter.XYs, error) {
	name = strings.ToLower(name)
	if _, ok := env.Function(name); !ok {
		return nil, calcerr.New(calcerr.UndefinedFunction, "%s is not defined", name)
	}
	if samples < 2 {
		return nil, calcerr.New(calcerr.InvalidArgument, "need at least 2 samples, got %d", samples)
	}
	if math.IsNaN(from) || math.IsNaN(to) || from >= to {
		return nil, calcerr.New(calcerr.InvalidArgument, "invalid range [%g, %g]", from, to)
	}

	var runs []plotter.XYs
	var run plotter.XYs
	step := (to - from) / float64(samples-1)
	for i := 0; i < samples; i++ {
		x := from + float64(i)*step
		if y, ok := sampleAt(name, x, env); ok {
			run = append(run, plotter.XY{X: x, Y: y})
			continue
		}
		if len(run) > 0 {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	if len(runs) == 0 {
		return nil, calcerr.New(calcerr.InvalidArgument, "%s has no real value on [%g, %g]", name, from, to)
	}
	return runs, nil
}

func sampleAt(name string, x float64, env *evaluator.Environment) (float64, bool) {
	v, err := evaluator.Eval(ast.NewFunction(name, ast.NewNumber(x)), env)
	if err != nil {
		slog.Debug("plot sample skipped", slog.String("function", name), slog.Float64("x", x), slog.Any("err", err))
		return 0, false
	}
	n, ok := v.(*ast.Number)
	if !ok {
		return 0, false
	}
	y := n.Value.Float64()
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, false
	}
	return y, true
}

// Render samples name over [from, to] and writes the plot to path. The
// image format follows the file extension.
func Render(name string, from, to float64, path string, opts Options, env *evaluator.Environment) error {
	runs, err := Sample(name, from, to, opts.Samples, env)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s(x)", strings.ToLower(name))
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	for _, run := range runs {
		line, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", name, err)
		}
		p.Add(line)
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	slog.Debug("plot saved",
		slog.String("function", name),
		slog.String("path", path),
		slog.Int("segments", len(runs)))
	return nil
}
