// Package repl reads calculator input line by line, runs it against an
// environment and prints what happened.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"computor/internal/ast"
	"computor/internal/evaluator"
	"computor/internal/history"
	"computor/internal/parser"
	"computor/internal/plot"
	"computor/internal/session"
	"computor/internal/util"
)

const PROMPT = "> "

const defaultHistory = 10

// Repl holds the state of one interactive session. History and Sessions
// are optional.
type Repl struct {
	Env      *evaluator.Environment
	History  *history.Store
	Sessions *session.Store
	Plot     plot.Options
	Prompt   string
}

func New(env *evaluator.Environment) *Repl {
	return &Repl{Env: env, Plot: plot.DefaultOptions(), Prompt: PROMPT}
}

// Start runs the read loop until in is exhausted or the user quits.
func (r *Repl) Start(ctx context.Context, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, r.Prompt)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.remember(ctx, line)
		if !r.Exec(ctx, line, out) {
			return
		}
	}
}

func (r *Repl) remember(ctx context.Context, line string) {
	if r.History == nil {
		return
	}
	if err := r.History.Append(ctx, line); err != nil {
		slog.Warn("history append failed", slog.Any("error", err))
	}
}

// Exec runs one line of input and reports whether the loop should go on.
func (r *Repl) Exec(ctx context.Context, line string, out io.Writer) bool {
	switch {
	case line == "exit" || line == "quit":
		return false
	case strings.HasPrefix(line, ":"):
		name, args, _ := strings.Cut(line[1:], " ")
		r.command(ctx, name, strings.TrimSpace(args), out)
		return true
	}

	stmt, err := parser.ParseLine(line)
	if err != nil {
		printError(out, line, err)
		return true
	}
	result, err := evaluator.Run(stmt, r.Env)
	if err != nil {
		printError(out, line, err)
		return true
	}
	if f, ok := result.(*ast.Function); ok {
		fmt.Fprintln(out, r.describe(f.Name))
		return true
	}
	fmt.Fprintln(out, result)
	return true
}

// describe renders a function definition with its body simplified against
// the current environment.
func (r *Repl) describe(name string) string {
	param, body, ok := evaluator.DescribeFunction(name, r.Env)
	if !ok {
		return fmt.Sprintf("error: %s is not defined", name)
	}
	if simplified, err := evaluator.Simplify(body, r.Env, param); err == nil {
		body = simplified
	}
	return fmt.Sprintf("%s(%s) = %s", name, param, body)
}

func (r *Repl) command(ctx context.Context, name, args string, out io.Writer) {
	switch name {
	case "vars":
		for _, v := range r.Env.VariableNames() {
			val, _ := r.Env.Get(v)
			fmt.Fprintf(out, "%s = %s\n", v, val)
		}

	case "funcs":
		for _, f := range r.Env.FunctionNames() {
			fmt.Fprintln(out, r.describe(f))
		}

	case "show":
		if args == "" {
			fmt.Fprintln(out, "usage: :show <function>")
			return
		}
		fmt.Fprintln(out, r.describe(strings.ToLower(args)))

	case "simplify":
		expr, err := parser.ParseExpr(args)
		if err != nil {
			printError(out, args, err)
			return
		}
		v, err := evaluator.Simplify(expr, r.Env)
		if err != nil {
			printError(out, args, err)
			return
		}
		fmt.Fprintln(out, v)

	case "history":
		r.showHistory(ctx, args, out)

	case "save", "load", "sessions", "delete":
		r.sessionCommand(name, args, out)

	case "plot":
		r.plot(args, out)

	case "help":
		fmt.Fprint(out, helpText)

	default:
		fmt.Fprintf(out, "error: unknown command :%s, try :help\n", name)
	}
}

func (r *Repl) showHistory(ctx context.Context, args string, out io.Writer) {
	if r.History == nil {
		fmt.Fprintln(out, "history is disabled")
		return
	}
	n := defaultHistory
	if args != "" {
		var err error
		if n, err = strconv.Atoi(args); err != nil || n <= 0 {
			fmt.Fprintf(out, "error: invalid history length %q\n", args)
			return
		}
	}
	entries, err := r.History.Recent(ctx, n)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%5d  %s\n", e.ID, e.Line)
	}
}

func (r *Repl) sessionCommand(name, args string, out io.Writer) {
	if r.Sessions == nil {
		fmt.Fprintln(out, "sessions are disabled")
		return
	}
	if name != "sessions" && args == "" {
		fmt.Fprintf(out, "usage: :%s <name>\n", name)
		return
	}

	switch name {
	case "save":
		if err := r.Sessions.Save(args, r.Env); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "saved session %s\n", args)
	case "load":
		vars, funcs, err := r.Sessions.Load(args, r.Env)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "loaded %d variables and %d functions from %s\n", vars, funcs, args)
	case "sessions":
		names, err := r.Sessions.List()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
	case "delete":
		if err := r.Sessions.Delete(args); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "deleted session %s\n", args)
	}
}

func (r *Repl) plot(args string, out io.Writer) {
	fields := strings.Fields(args)
	if len(fields) != 4 {
		fmt.Fprintln(out, "usage: :plot <function> <from> <to> <file.png>")
		return
	}
	from, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		fmt.Fprintf(out, "error: invalid bound %q\n", fields[1])
		return
	}
	to, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		fmt.Fprintf(out, "error: invalid bound %q\n", fields[2])
		return
	}
	if err := plot.Render(fields[0], from, to, fields[3], r.Plot, r.Env); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "wrote %s\n", fields[3])
}

func printError(out io.Writer, src string, err error) {
	var syntax *parser.SyntaxError
	if errors.As(err, &syntax) {
		fmt.Fprintln(out, util.GetContextLines(src, syntax.Pos))
		for _, msg := range syntax.Messages {
			fmt.Fprintln(out, "syntax error: "+msg)
		}
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}

const helpText = `  <expr>                     evaluate an expression
  <name> = <expr>            assign a variable
  <f>(<x>) = <expr>          define a function
  :vars                      list variables
  :funcs                     list functions
  :show <f>                  show a function definition
  :simplify <expr>           reduce an expression, keeping unknown names
  :history [n]               show the last n input lines
  :save <name>               save variables and functions
  :load <name>               load a saved session
  :sessions                  list saved sessions
  :delete <name>             delete a saved session
  :plot <f> <from> <to> <file.png>
                             plot a function to an image
  exit, quit                 leave
`
