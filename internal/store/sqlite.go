// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening a private in-memory database (nothing is written to disk).
//   - Applying the embedded assets/sql/*.sql migrations (idempotent, recorded in _migrations).
//   - Saving and querying finished-game results.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-term/assets"
)

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens an in-memory SQLite database and applies migrations.
// The returned close func releases the database.
func OpenSQLite(ctx context.Context) (Store, func() error, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_busy_timeout=5000")
	if err != nil {
		return nil, nil, err
	}
	// Every new connection to :memory: is a fresh database, so pin one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return &sqliteStore{db: db}, db.Close, nil
}

// migrate applies embedded SQL migrations in lexical order.
// A _migrations table records applied files; each runs in its own transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(assets.FS, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Debug().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *sqliteStore) Save(ctx context.Context, r Result) error {
	if r.GameID == "" {
		return errors.New("store: empty game id")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO results (game_id, solution, guesses, won, finished_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(game_id) DO UPDATE SET
            solution=excluded.solution,
            guesses=excluded.guesses,
            won=excluded.won,
            finished_at=excluded.finished_at`,
		r.GameID, r.Solution, r.Guesses, r.Won, r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) Get(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT game_id, solution, guesses, won, finished_at
        FROM results WHERE game_id=?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	return r, err
}

func (s *sqliteStore) List(ctx context.Context) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, solution, guesses, won, finished_at
        FROM results ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Summary(ctx context.Context) (Summary, error) {
	rs, err := s.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(rs), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var r Result
	var finished string
	if err := row.Scan(&r.GameID, &r.Solution, &r.Guesses, &r.Won, &finished); err != nil {
		return Result{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, finished)
	if err != nil {
		return Result{}, fmt.Errorf("parse finished_at: %w", err)
	}
	r.FinishedAt = t
	return r, nil
}
