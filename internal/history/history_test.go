package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func lines(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Line
	}
	return out
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for _, line := range []string{"x = 3", "x * 2 + 1", "f(x) = x ^ 2"} {
		if err := s.Append(ctx, line); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x * 2 + 1", "f(x) = x ^ 2"}, lines(got)); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}
	if got[0].At.IsZero() || got[0].ID >= got[1].ID {
		t.Errorf("expected timestamps and increasing ids, got %+v", got)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if n, err := s.Prune(ctx, 5); err != nil || n != 0 {
		t.Fatalf("pruning an empty history: %d, %v", n, err)
	}

	for _, line := range []string{"1", "2", "3", "4"} {
		if err := s.Append(ctx, line); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted rows, got %d", n)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"4"}, lines(got)); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	if err == nil || !strings.Contains(err.Error(), "unsupported history driver") {
		t.Errorf("expected unsupported driver error, got %v", err)
	}
}

func TestNormalizeDSN(t *testing.T) {
	got, err := normalizeDSN("mysql", "calc:secret@tcp(localhost:3306)/calc")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "calc:secret@tcp(localhost:3306)/calc?") || !strings.Contains(got, "parseTime=true") {
		t.Errorf("unexpected mysql dsn %q", got)
	}

	if _, err := normalizeDSN("mysql", "not a dsn"); err == nil {
		t.Error("expected an invalid mysql dsn error")
	}

	got, err = normalizeDSN("postgres", "postgres://calc@localhost:5432/calc")
	if err != nil {
		t.Fatal(err)
	}
	for _, part := range []string{"dbname=calc", "host=localhost", "port=5432", "user=calc"} {
		if !strings.Contains(got, part) {
			t.Errorf("postgres dsn %q is missing %q", got, part)
		}
	}

	if got, _ := normalizeDSN("sqlite3", "file.db"); got != "file.db" {
		t.Errorf("sqlite dsn changed to %q", got)
	}
}
