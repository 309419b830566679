package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"computor/internal/evaluator"
	"computor/internal/plot"
)

// RunBatch runs every file as a script in its own environment. Files are
// evaluated concurrently; their output is written to out in argument order,
// each under a header when there is more than one file. Lines that are blank
// or start with # are skipped. A script that can't be read doesn't stop the
// others; the first such error is returned.
func RunBatch(ctx context.Context, files []string, opts plot.Options, out io.Writer) error {
	outputs := make([]bytes.Buffer, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			return runScript(ctx, file, opts, &outputs[i])
		})
	}
	err := g.Wait()

	for i, file := range files {
		if len(files) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", file)
		}
		out.Write(outputs[i].Bytes())
	}
	return err
}

func runScript(ctx context.Context, path string, opts plot.Options, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	r := New(evaluator.NewEnvironment())
	r.Plot = opts

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines++
		fmt.Fprintf(out, "%s%s\n", r.Prompt, line)
		if !r.Exec(ctx, line, out) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	slog.Debug("script done", slog.String("file", path), slog.Int("lines", lines))
	return nil
}
