package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"gonum.org/v1/plot/vg"

	"computor/internal/evaluator"
	"computor/internal/history"
	"computor/internal/log"
	"computor/internal/plot"
	"computor/internal/repl"
	"computor/internal/session"
	"computor/internal/util"
)

var (
	// Version is set at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile    string
	historyDriver string
	historyDSN    string
	sessionFile   string
	batch         bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Read settings from a TOML file")
	// storage config
	flag.StringVar(&historyDriver, "history-driver", "", "History backend: sqlite3, mysql, postgres or none")
	flag.StringVar(&historyDSN, "history-dsn", "", "History data source name")
	flag.StringVar(&sessionFile, "session-file", "", "Session file path, empty with -session-file=none")
	flag.BoolVar(&batch, "batch", false, "Run the files given as arguments and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := configure()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logCloser := log.Init(config.LogLevel, config.LogFile)
	defer logCloser.Close()

	ctx := context.Background()
	opts := plot.Options{
		Samples: config.Plot.Samples,
		Width:   vg.Length(config.Plot.Width) * vg.Centimeter,
		Height:  vg.Length(config.Plot.Height) * vg.Centimeter,
	}

	if batch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := repl.RunBatch(ctx, flag.Args(), opts, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	r := repl.New(evaluator.NewEnvironment())
	r.Plot = opts
	r.Prompt = config.Repl.Prompt

	if config.History.Driver != "" {
		h, err := history.Open(ctx, config.History.Driver, config.History.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v; history is disabled\n", err)
		} else {
			defer h.Close()
			prune(ctx, h, config.History.Keep)
			defer prune(ctx, h, config.History.Keep)
			r.History = h
		}
	}

	if config.Session.File != "" {
		s, err := session.Open(config.Session.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v; sessions are disabled\n", err)
		} else {
			defer s.Close()
			r.Sessions = s
		}
	}

	slog.Info("computor started", slog.String("version", config.Version))
	r.Start(ctx, os.Stdin, os.Stdout)
}

// configure layers the defaults, the config file and the flags that were
// set explicitly, in that order.
func configure() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if configFile != "" {
		if err := util.LoadConfig(configFile, &config); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "history-driver":
			config.History.Driver = disabled(historyDriver)
		case "history-dsn":
			config.History.DSN = historyDSN
		case "session-file":
			config.Session.File = disabled(sessionFile)
		}
	})
	return config, config.Validate()
}

func disabled(v string) string {
	if v == "none" {
		return ""
	}
	return v
}

func prune(ctx context.Context, h *history.Store, keep int) {
	if keep == 0 {
		return
	}
	if _, err := h.Prune(ctx, keep); err != nil {
		slog.Warn("history prune failed", slog.Any("error", err))
	}
}

func printVersion() {
	fmt.Printf("computor version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: computor [options] [-batch file...]

Options:
  -config <path>           Read settings from a TOML file.
  -history-driver <name>   History backend: sqlite3, mysql, postgres or none. Default is 'sqlite3'.
  -history-dsn <dsn>       History data source name. Default is 'computor_history.db'.
  -session-file <path>     Session file, or none. Default is 'computor_sessions.db'.
  -batch                   Run the given files, each in its own environment, and exit.
  -help                    Display this help information and exit.
  -version                 Display version information and exit.
  -log-level <level>       Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>         Specify a log file to write logs. Default is stderr.

Details:
Computor evaluates expressions over real and complex numbers and matrices,
and keeps variables and single-parameter functions between lines.
Type :help at the prompt for the list of commands.

Examples:
  computor -log-level=debug              Start with debug logging enabled
  computor -history-driver=none          Start without keeping history
  computor -batch a.calc b.calc          Run two scripts

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
