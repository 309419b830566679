package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"computor/internal/evaluator"
	"computor/internal/history"
	"computor/internal/plot"
	"computor/internal/session"
)

func start(t *testing.T, r *Repl, input string) string {
	t.Helper()
	var out bytes.Buffer
	r.Start(context.Background(), strings.NewReader(input), &out)
	return out.String()
}

func TestStart(t *testing.T) {
	r := New(evaluator.NewEnvironment())
	input := "x = 3\nx * 2 + 1\n\nf(y) = y ^ 2 + x\nf(2)\n:vars\nexit\nx = 4\n"
	expected := "> 3\n> 7\n> > f(y) = y ^ 2 + 3\n> 7\n> x = 3\n> "

	if diff := cmp.Diff(expected, start(t, r, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if v, _ := r.Env.Get("x"); v.String() != "3" {
		t.Errorf("input after exit was run, x = %s", v)
	}
}

func TestExec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"evaluation", "2 * (3 + 4)", []string{"14"}},
		{"question mark", "2 ^ 10 = ?", []string{"1024"}},
		{"undefined variable", "y + 1", []string{"error: ", "y is not defined"}},
		{"syntax error", "1 + * 2", []string{"syntax error: ", "^"}},
		{"unknown command", ":frobnicate", []string{"unknown command :frobnicate"}},
		{"help", ":help", []string{":simplify <expr>", ":plot <f>"}},
		{"simplify", ":simplify (z + 2) + 3", []string{"z + 5"}},
		{"show undefined", ":show g", []string{"g is not defined"}},
		{"history disabled", ":history", []string{"history is disabled"}},
		{"sessions disabled", ":save work", []string{"sessions are disabled"}},
		{"plot usage", ":plot f 0", []string{"usage: :plot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := New(evaluator.NewEnvironment())
			if !r.Exec(context.Background(), tt.input, &out) {
				t.Fatal("Exec asked to stop")
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output %q does not contain %q", out.String(), want)
				}
			}
		})
	}
}

func TestFunctions(t *testing.T) {
	r := New(evaluator.NewEnvironment())
	input := "a = 2\nf(x) = 3 * (x + a)\ng(t) = f(t) - 1\n:funcs\n:show F\n" +
		"t = 10\nk(u) = u + t\nj(t) = k(2)\nj(5)\n"
	expected := "> 2\n" +
		"> f(x) = 3 * x + 6\n" +
		"> g(t) = 3 * t + 5\n" +
		"> f(x) = 3 * x + 6\ng(t) = 3 * t + 5\n" +
		"> f(x) = 3 * x + 6\n" +
		"> 10\n" +
		"> k(u) = u + 10\n" +
		"> j(t) = 12\n" +
		"> 12\n" +
		"> "

	if diff := cmp.Diff(expected, start(t, r, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	r := New(evaluator.NewEnvironment())
	r.History = store
	out := start(t, r, "x = 1\nx + 1\n:history 2\n:history zero\n")

	if !strings.Contains(out, "    2  x + 1\n    3  :history 2\n") {
		t.Errorf("history listing missing from %q", out)
	}
	if !strings.Contains(out, `invalid history length "zero"`) {
		t.Errorf("expected an invalid length error in %q", out)
	}
}

func TestSessionCommands(t *testing.T) {
	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	first := New(evaluator.NewEnvironment())
	first.Sessions = store
	out := start(t, first, "k = 7\nh(x) = x * k\n:save work\n:sessions\n")
	if !strings.Contains(out, "saved session work\n> work\n") {
		t.Errorf("unexpected save output %q", out)
	}

	second := New(evaluator.NewEnvironment())
	second.Sessions = store
	out = start(t, second, ":load work\nh(2)\n:delete work\n:load work\n")
	for _, want := range []string{
		"loaded 1 variables and 1 functions from work\n",
		"> 14\n",
		"deleted session work\n",
		"no session named work",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestPlotCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sq.png")
	r := New(evaluator.NewEnvironment())
	r.Plot = plot.DefaultOptions()
	r.Plot.Samples = 20

	out := start(t, r, "sq(x) = x * x\n:plot sq -1 1 "+path+"\n:plot sq a 1 "+path+"\n")
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("expected the plot to be written, got %q", out)
	}
	if !strings.Contains(out, `invalid bound "a"`) {
		t.Errorf("expected an invalid bound error, got %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.calc")
	second := filepath.Join(dir, "second.calc")
	if err := os.WriteFile(first, []byte("# powers\nx = 2\n\nx ^ 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("x + 1\nx = 5\nquit\nx = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := RunBatch(context.Background(), []string{first, second}, plot.DefaultOptions(), &out); err != nil {
		t.Fatal(err)
	}

	expected := "==> " + first + " <==\n" +
		"> x = 2\n2\n" +
		"> x ^ 3\n8\n" +
		"==> " + second + " <==\n" +
		"> x + 1\nerror: "
	if !strings.HasPrefix(out.String(), expected) {
		t.Errorf("output %q does not start with %q", out.String(), expected)
	}
	if !strings.HasSuffix(out.String(), "> x = 5\n5\n> quit\n") {
		t.Errorf("second script did not stop at quit: %q", out.String())
	}
}

func TestRunBatchMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.calc")
	if err := os.WriteFile(good, []byte("1 + 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := RunBatch(context.Background(), []string{filepath.Join(dir, "missing.calc"), good}, plot.DefaultOptions(), &out)
	if err == nil {
		t.Fatal("expected an error for the missing script")
	}
	if !strings.Contains(out.String(), "> 1 + 1\n2\n") {
		t.Errorf("the readable script did not run: %q", out.String())
	}
}
