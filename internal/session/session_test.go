package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"computor/internal/calcerr"
	"computor/internal/evaluator"
	"computor/internal/parser"

	"github.com/boltdb/bolt"
	"github.com/google/go-cmp/cmp"
)

func mustRun(t *testing.T, env *evaluator.Environment, line string) string {
	t.Helper()
	stmt, err := parser.ParseLine(line)
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	v, err := evaluator.Run(stmt, env)
	if err != nil {
		t.Fatalf("run %q: %v", line, err)
	}
	return v.String()
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTemp(t)

	env := evaluator.NewEnvironment()
	for _, line := range []string{
		"x = 3",
		"c = 1 - 2i",
		"m = [[1, 2.5]; [-3, 4]]",
		"f(y) = y ^ 2 + x",
		"g(y) = 2 * f(y)",
	} {
		mustRun(t, env, line)
	}
	if err := s.Save("work", env); err != nil {
		t.Fatal(err)
	}

	restored := evaluator.NewEnvironment()
	vars, funcs, err := s.Load("work", restored)
	if err != nil {
		t.Fatal(err)
	}
	if vars != 3 || funcs != 2 {
		t.Errorf("expected 3 variables and 2 functions, got %d and %d", vars, funcs)
	}

	for _, expr := range []string{"x", "c", "m", "g(2)"} {
		want := mustRun(t, env, expr)
		if got := mustRun(t, restored, expr); got != want {
			t.Errorf("%s: got %s after loading, want %s", expr, got, want)
		}
	}
}

func TestSaveReplacesSession(t *testing.T) {
	s := openTemp(t)

	env := evaluator.NewEnvironment()
	mustRun(t, env, "a = 1")
	mustRun(t, env, "b = 2")
	if err := s.Save("work", env); err != nil {
		t.Fatal(err)
	}

	smaller := evaluator.NewEnvironment()
	mustRun(t, smaller, "a = 5")
	if err := s.Save("work", smaller); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("other", smaller); err != nil {
		t.Fatal(err)
	}

	restored := evaluator.NewEnvironment()
	if _, _, err := s.Load("work", restored); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, restored.VariableNames()); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"other", "work"}, names); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete("other"); err != nil {
		t.Fatal(err)
	}
	if names, _ := s.List(); len(names) != 1 {
		t.Errorf("expected one session after delete, got %v", names)
	}
}

func TestLoadUnknownSession(t *testing.T) {
	s := openTemp(t)
	_, _, err := s.Load("missing", evaluator.NewEnvironment())
	if err == nil || !strings.Contains(err.Error(), "no session named missing") {
		t.Errorf("expected a missing session error, got %v", err)
	}
}

func TestFailedLoadLeavesEnvironmentUnchanged(t *testing.T) {
	s := openTemp(t)

	saved := evaluator.NewEnvironment()
	mustRun(t, saved, "a = 1")
	mustRun(t, saved, "b = 2")
	mustRun(t, saved, "g(x) = f(x) + a")
	if err := s.Save("calls f", saved); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("corrupt", saved); err != nil {
		t.Fatal(err)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("corrupt")).Bucket(varsBucket).Put([]byte("c"), []byte("1 +"))
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		session string
		check   func(error) bool
	}{
		{"calls f", func(err error) bool { return errors.Is(err, calcerr.RecursiveDefinition) }},
		{"corrupt", func(err error) bool { return err != nil && strings.Contains(err.Error(), "variable c") }},
	}

	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			env := evaluator.NewEnvironment()
			mustRun(t, env, "a = 5")
			mustRun(t, env, "f(x) = g(x)")

			vars, funcs, err := s.Load(tt.session, env)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if vars != 0 || funcs != 0 {
				t.Errorf("expected nothing loaded, got %d variables and %d functions", vars, funcs)
			}
			if diff := cmp.Diff([]string{"a"}, env.VariableNames()); diff != "" {
				t.Errorf("variables mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"f"}, env.FunctionNames()); diff != "" {
				t.Errorf("functions mismatch (-want +got):\n%s", diff)
			}
			if got := mustRun(t, env, "a"); got != "5" {
				t.Errorf("a changed to %s", got)
			}
		})
	}
}
