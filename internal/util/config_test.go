package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "computor.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[history]
driver = "postgres"
dsn = "postgres://calc@localhost/calc?sslmode=disable"

[plot]
samples = 50
`)

	got := DefaultConfiguration()
	if err := LoadConfig(path, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultConfiguration()
	want.LogLevel = "debug"
	want.History.Driver = "postgres"
	want.History.DSN = "postgres://calc@localhost/calc?sslmode=disable"
	want.Plot.Samples = 50

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"unknown key", "colour = true\n", "unknown keys"},
		{"bad driver", "[history]\ndriver = \"oracle\"\n", "unsupported history driver"},
		{"few samples", "[plot]\nsamples = 1\n", "at least 2"},
		{"syntax", "[plot\n", "reading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfiguration()
			err := LoadConfig(writeConfig(t, tt.body), &config)
			if err == nil || !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestGetContextLines(t *testing.T) {
	src := "x = 1\ny = (2 +"
	got := GetContextLines(src, len(src))
	want := "       1 | x = 1\n" +
		"  >    2 | y = (2 +\n" +
		"                   ^"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}
