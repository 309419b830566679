// Package evaluator solves expressions against an Environment and applies
// assignments to it.
package evaluator

import (
	"strings"

	"computor/internal/algebra"
	"computor/internal/ast"
	"computor/internal/calcerr"
)

// solver is one bottom-up fold over an expression tree. bindings holds the
// parameter of the function body being solved, if any.
type solver struct {
	env      *Environment
	symbolic bool
	free     map[string]bool
	bindings map[string]ast.Expr
}

// Eval solves expr to a concrete value. An undefined variable or function
// is an error. env is only read.
func Eval(expr ast.Expr, env *Environment) (ast.Expr, error) {
	s := &solver{env: env}
	return s.solve(expr)
}

// Simplify solves expr as far as the environment allows. Undefined names
// and the names listed in free stay symbolic, and constant terms are
// folded around them.
func Simplify(expr ast.Expr, env *Environment, free ...string) (ast.Expr, error) {
	s := &solver{env: env, symbolic: true, free: make(map[string]bool, len(free))}
	for _, name := range free {
		s.free[strings.ToLower(name)] = true
	}
	return s.solve(expr)
}

// Run executes a parsed statement: an Evaluation is solved, an Assignment
// is applied to env.
func Run(stmt ast.Statement, env *Environment) (ast.Expr, error) {
	switch stmt := stmt.(type) {
	case *ast.Evaluation:
		return Eval(stmt.Expr, env)
	case *ast.Assignment:
		return Assign(stmt.Target, stmt.Value, env)
	}
	return nil, calcerr.New(calcerr.InvalidAssignmentTarget, "unknown statement %s", stmt)
}

func (s *solver) solve(expr ast.Expr) (ast.Expr, error) {
	v, err := s.solveNode(expr)
	if err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

func (s *solver) solveNode(expr ast.Expr) (ast.Expr, error) {
	switch node := expr.(type) {
	case *ast.Number, *ast.Imaginary, *ast.Complex:
		return node.Clone(), nil

	case *ast.Matrix:
		return s.solveMatrix(node)

	case *ast.Variable:
		return s.solveVariable(node)

	case *ast.Function:
		return s.solveCall(node)

	case *ast.Operation:
		left, err := s.solve(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.solve(node.Right)
		if err != nil {
			return nil, err
		}
		if s.symbolic && left.Kind() == ast.KindOperation && right.Kind() == ast.KindOperation {
			return ast.NewOperation(left, node.Op, right), nil
		}
		return algebra.Apply(node.Op, left, right)
	}
	panic("evaluator: unknown expression kind " + expr.Kind().String())
}

// solveMatrix checks that every row has the length of the first one, then
// solves every cell, reporting all failing cells at once.
func (s *solver) solveMatrix(m *ast.Matrix) (ast.Expr, error) {
	_, width := m.Dims()
	for _, row := range m.Rows {
		if len(row) != width {
			return nil, calcerr.New(calcerr.DimensionMismatch,
				"matrix rows differ in length: expected %d found %d", width, len(row))
		}
	}

	var errs calcerr.CellErrors
	rows := make([][]ast.Expr, len(m.Rows))
	for r, row := range m.Rows {
		rows[r] = make([]ast.Expr, len(row))
		for c, cell := range row {
			v, err := s.solve(cell)
			if err != nil {
				errs.Add(r, c, err)
				v = ast.NewNumber(0)
			}
			rows[r][c] = v
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ast.NewMatrix(rows), nil
}

func (s *solver) solveVariable(v *ast.Variable) (ast.Expr, error) {
	name := strings.ToLower(v.Name)
	if val, ok := s.bindings[name]; ok {
		return val.Clone(), nil
	}
	if s.free[name] {
		return ast.NewVariable(name), nil
	}
	if val, ok := s.env.Get(name); ok {
		return val.Clone(), nil
	}
	if s.symbolic {
		return ast.NewVariable(name), nil
	}
	return nil, calcerr.New(calcerr.UndefinedVariable, "%s is not defined", v.Name)
}

// solveCall solves the argument, then solves the body with the parameter
// bound to it. The caller's free names do not reach into the body.
func (s *solver) solveCall(f *ast.Function) (ast.Expr, error) {
	name := strings.ToLower(f.Name)
	def, ok := s.env.Function(name)
	if !ok && !s.symbolic {
		return nil, calcerr.New(calcerr.UndefinedFunction, "%s is not defined", f.Name)
	}

	arg, err := s.solve(f.Arg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ast.NewFunction(name, arg), nil
	}

	body := &solver{
		env:      s.env,
		symbolic: s.symbolic,
		bindings: map[string]ast.Expr{def.Param: arg},
	}
	return body.solve(def.Body)
}

// Normalize collapses every Complex whose imaginary part is 0 into a Number.
// Containers are rewritten in place.
func Normalize(expr ast.Expr) ast.Expr {
	switch node := expr.(type) {
	case *ast.Complex:
		if node.Im.IsZero() {
			return &ast.Number{Value: node.Re}
		}
	case *ast.Matrix:
		for _, row := range node.Rows {
			for c, cell := range row {
				row[c] = Normalize(cell)
			}
		}
	case *ast.Operation:
		node.Left = Normalize(node.Left)
		node.Right = Normalize(node.Right)
	case *ast.Function:
		node.Arg = Normalize(node.Arg)
	}
	return expr
}
