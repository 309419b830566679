package evaluator

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"computor/internal/ast"
)

// FunctionDef is a user function: its parameter name and cleaned body.
type FunctionDef struct {
	Param string
	Body  ast.Expr
}

// Environment holds the variable and function bindings. Names are stored
// lower-cased; lookups fold case.
type Environment struct {
	vars  map[string]ast.Expr
	funcs map[string]*FunctionDef

	mu sync.RWMutex
}

func NewEnvironment() *Environment {
	slog.Debug("------ new env ------")
	return &Environment{
		vars:  make(map[string]ast.Expr),
		funcs: make(map[string]*FunctionDef),
	}
}

func (e *Environment) Get(name string) (ast.Expr, bool) {
	e.mu.RLock()
	v, ok := e.vars[strings.ToLower(name)]
	e.mu.RUnlock()
	return v, ok
}

func (e *Environment) Function(name string) (*FunctionDef, bool) {
	e.mu.RLock()
	def, ok := e.funcs[strings.ToLower(name)]
	e.mu.RUnlock()
	return def, ok
}

// VariableNames returns the bound variable names in sorted order.
func (e *Environment) VariableNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.vars))
}

// FunctionNames returns the defined function names in sorted order.
func (e *Environment) FunctionNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.funcs))
}

// Clone returns a copy of e whose bindings can change independently.
func (e *Environment) Clone() *Environment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Environment{vars: maps.Clone(e.vars), funcs: maps.Clone(e.funcs)}
}

// Restore replaces every binding of e with those of from.
func (e *Environment) Restore(from *Environment) {
	from.mu.RLock()
	vars, funcs := maps.Clone(from.vars), maps.Clone(from.funcs)
	from.mu.RUnlock()

	e.mu.Lock()
	e.vars, e.funcs = vars, funcs
	e.mu.Unlock()
}

func (e *Environment) bindVariable(name string, val ast.Expr) {
	e.mu.Lock()
	e.vars[name] = val
	e.mu.Unlock()

	slog.Debug("binding variable",
		slog.String("name", name),
		slog.String("kind", val.Kind().String()),
		slog.String("value", val.String()))
}

func (e *Environment) bindFunction(name string, def *FunctionDef) {
	e.mu.Lock()
	e.funcs[name] = def
	e.mu.Unlock()

	slog.Debug("binding function",
		slog.String("name", name),
		slog.String("param", def.Param),
		slog.String("body", def.Body.String()))
}
