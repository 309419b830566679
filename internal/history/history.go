// Package history keeps the lines typed into the calculator in a SQL
// database. sqlite3 is the default backend; mysql and postgres share the
// same table layout.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const table = "computor_history"

type dialect struct {
	ddl         string
	quote       func(string) string
	placeholder func(n int) string
}

func question(int) string       { return "?" }
func dollar(n int) string       { return fmt.Sprintf("$%d", n) }
func backtick(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

var dialects = map[string]dialect{
	"sqlite3": {
		ddl:         "CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, line TEXT NOT NULL, created_at TIMESTAMP NOT NULL)",
		quote:       pq.QuoteIdentifier,
		placeholder: question,
	},
	"mysql": {
		ddl:         "CREATE TABLE IF NOT EXISTS %s (id BIGINT AUTO_INCREMENT PRIMARY KEY, line TEXT NOT NULL, created_at DATETIME(6) NOT NULL)",
		quote:       backtick,
		placeholder: question,
	},
	"postgres": {
		ddl:         "CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, line TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL)",
		quote:       pq.QuoteIdentifier,
		placeholder: dollar,
	},
}

type Entry struct {
	ID   int64
	Line string
	At   time.Time
}

type Store struct {
	db     *sql.DB
	driver string

	insert, recent, threshold, prune string
}

// Open connects to the history database and creates its table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s history: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s history: %w", driver, err)
	}

	t := d.quote(table)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(d.ddl, t)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	slog.Debug("history opened", slog.String("driver", driver))
	return &Store{
		db:        db,
		driver:    driver,
		insert:    fmt.Sprintf("INSERT INTO %s (line, created_at) VALUES (%s, %s)", t, d.placeholder(1), d.placeholder(2)),
		recent:    fmt.Sprintf("SELECT id, line, created_at FROM %s ORDER BY id DESC LIMIT %s", t, d.placeholder(1)),
		threshold: fmt.Sprintf("SELECT id FROM %s ORDER BY id DESC LIMIT 1 OFFSET %s", t, d.placeholder(1)),
		prune:     fmt.Sprintf("DELETE FROM %s WHERE id <= %s", t, d.placeholder(1)),
	}, nil
}

// normalizeDSN validates dsn for the driver. mysql DSNs get parseTime so
// timestamps scan into time.Time; postgres URLs become key=value strings.
func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			conn, err := pq.ParseURL(dsn)
			if err != nil {
				return "", fmt.Errorf("invalid postgres url: %w", err)
			}
			return conn, nil
		}
	}
	return dsn, nil
}

func (s *Store) Append(ctx context.Context, line string) error {
	if _, err := s.db.ExecContext(ctx, s.insert, line, time.Now().UTC()); err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// Recent returns the last n entries, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.recent, n)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Line, &e.At); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	slices.Reverse(entries)
	return entries, nil
}

// Prune deletes everything but the newest keep entries and reports how
// many rows went.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, s.threshold, keep).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.prune, id)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.Debug("history pruned", slog.String("driver", s.driver), slog.Int64("deleted", n))
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
