package evaluator

import (
	"strings"

	"computor/internal/ast"
	"computor/internal/calcerr"
)

// Assign binds value to target in env and returns what was bound. A
// Variable target stores the solved value. A Function target whose argument
// is a Variable stores the cleaned, unsolved body and returns the echo
// f(param). env is left untouched when Assign fails.
func Assign(target, value ast.Expr, env *Environment) (ast.Expr, error) {
	switch t := target.(type) {
	case *ast.Variable:
		v, err := Eval(value, env)
		if err != nil {
			return nil, err
		}
		env.bindVariable(strings.ToLower(t.Name), v)
		return v.Clone(), nil

	case *ast.Function:
		param, ok := t.Arg.(*ast.Variable)
		if !ok {
			return nil, calcerr.New(calcerr.InvalidAssignmentTarget,
				"function parameter must be a variable, got %s", t.Arg)
		}
		name := strings.ToLower(t.Name)
		c := &cleaner{env: env, self: name}
		body, err := c.clean(value)
		if err != nil {
			return nil, err
		}
		def := &FunctionDef{Param: strings.ToLower(param.Name), Body: body}
		env.bindFunction(name, def)
		return ast.NewFunction(name, ast.NewVariable(def.Param)), nil
	}
	return nil, calcerr.New(calcerr.InvalidAssignmentTarget, "can't assign to %s %s", target.Kind(), target)
}

// DescribeFunction returns the definition of name, if any.
func DescribeFunction(name string, env *Environment) (param string, body ast.Expr, ok bool) {
	def, ok := env.Function(name)
	if !ok {
		return "", nil, false
	}
	return def.Param, def.Body.Clone(), true
}

// cleaner copies a function body with every name lower-cased and rejects
// bodies that call the function being defined, directly or through another
// defined function.
type cleaner struct {
	env  *Environment
	self string
}

func (c *cleaner) clean(expr ast.Expr) (ast.Expr, error) {
	switch node := expr.(type) {
	case *ast.Variable:
		return ast.NewVariable(strings.ToLower(node.Name)), nil

	case *ast.Function:
		name := strings.ToLower(node.Name)
		if c.reaches(name, map[string]bool{}) {
			return nil, calcerr.New(calcerr.RecursiveDefinition, "%s can't call itself", c.self)
		}
		arg, err := c.clean(node.Arg)
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(name, arg), nil

	case *ast.Operation:
		left, err := c.clean(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.clean(node.Right)
		if err != nil {
			return nil, err
		}
		return ast.NewOperation(left, node.Op, right), nil

	case *ast.Matrix:
		rows := make([][]ast.Expr, len(node.Rows))
		for r, row := range node.Rows {
			rows[r] = make([]ast.Expr, len(row))
			for col, cell := range row {
				v, err := c.clean(cell)
				if err != nil {
					return nil, err
				}
				rows[r][col] = v
			}
		}
		return ast.NewMatrix(rows), nil
	}
	return expr.Clone(), nil
}

// reaches reports whether calling name can end up calling c.self.
func (c *cleaner) reaches(name string, seen map[string]bool) bool {
	if name == c.self {
		return true
	}
	if seen[name] {
		return false
	}
	seen[name] = true

	def, ok := c.env.Function(name)
	if !ok {
		return false
	}
	for _, callee := range calls(def.Body, nil) {
		if c.reaches(callee, seen) {
			return true
		}
	}
	return false
}

// calls appends the names of the functions called in expr to dst.
func calls(expr ast.Expr, dst []string) []string {
	switch node := expr.(type) {
	case *ast.Function:
		dst = append(dst, strings.ToLower(node.Name))
		return calls(node.Arg, dst)
	case *ast.Operation:
		return calls(node.Right, calls(node.Left, dst))
	case *ast.Matrix:
		for _, row := range node.Rows {
			for _, cell := range row {
				dst = calls(cell, dst)
			}
		}
	}
	return dst
}
