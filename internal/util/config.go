package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Repl    ReplConfig    `toml:"repl"`
	History HistoryConfig `toml:"history"`
	Session SessionConfig `toml:"session"`
	Plot    PlotConfig    `toml:"plot"`
}

type ReplConfig struct {
	Prompt string `toml:"prompt"`
}

// HistoryConfig selects the database/sql driver the input history is kept
// in: sqlite3, mysql or postgres. An empty Driver disables history.
type HistoryConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
	Keep   int    `toml:"keep"`
}

type SessionConfig struct {
	File string `toml:"file"`
}

type PlotConfig struct {
	Samples int     `toml:"samples"`
	Width   float64 `toml:"width_cm"`
	Height  float64 `toml:"height_cm"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel: "none",
		Repl:     ReplConfig{Prompt: "> "},
		History: HistoryConfig{
			Driver: "sqlite3",
			DSN:    "computor_history.db",
			Keep:   1000,
		},
		Session: SessionConfig{File: "computor_sessions.db"},
		Plot:    PlotConfig{Samples: 200, Width: 12, Height: 8},
	}
}

// LoadConfig decodes the TOML file at path over config. Keys absent from
// the file keep their current value.
func LoadConfig(path string, config *Configuration) error {
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("reading config %s: unknown keys %v", path, undecoded)
	}
	return config.Validate()
}

func (c *Configuration) Validate() error {
	switch c.History.Driver {
	case "", "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported history driver %q", c.History.Driver)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history keep must not be negative, got %d", c.History.Keep)
	}
	if c.Plot.Samples < 2 {
		return fmt.Errorf("plot samples must be at least 2, got %d", c.Plot.Samples)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	return nil
}
