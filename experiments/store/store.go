// Package store persists evaluation results in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"playground/experiments/metrics"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}
		text, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(text)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// SaveGame stores one game and its moves atomically and returns the game id.
func (s *Store) SaveGame(ctx context.Context, run, agent string, g metrics.GameMetric, moves []metrics.MoveMetric) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO games
            (run, agent, game, status, score, total_moves, invalid_moves, start_time, end_time, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run, agent, g.Game, g.Status, g.Score, g.TotalMoves, g.InvalidMoves,
		g.StartTime.UTC(), g.EndTime.UTC(), g.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO moves
            (game_id, step, move, status, opponent, algorithm, depth, nodes, cutoffs, duration_us)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, m := range moves {
		if _, err := stmt.ExecContext(ctx, id, m.Step, m.Move, m.Status, m.Opponent,
			m.Algorithm, m.Depth, m.Nodes, m.Cutoffs, m.Duration.Microseconds()); err != nil {
			return 0, fmt.Errorf("insert move %d: %w", m.Step, err)
		}
	}
	return id, tx.Commit()
}

// Summary aggregates one game's results within a run.
type Summary struct {
	Game         string  `json:"game"`
	Played       int     `json:"played"`
	Wins         int     `json:"wins"`
	Ties         int     `json:"ties"`
	MeanScore    float64 `json:"mean_score"`
	InvalidMoves int     `json:"invalid_moves"`
}

func (s *Store) Summarize(ctx context.Context, run string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT game,
               COUNT(1),
               SUM(CASE WHEN status = 'WIN' THEN 1 ELSE 0 END),
               SUM(CASE WHEN status = 'TIE' THEN 1 ELSE 0 END),
               AVG(score),
               SUM(invalid_moves)
        FROM games
        WHERE run=?
        GROUP BY game
        ORDER BY game`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var r Summary
		if err := rows.Scan(&r.Game, &r.Played, &r.Wins, &r.Ties, &r.MeanScore, &r.InvalidMoves); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Moves returns the stored moves of one game in step order.
func (s *Store) Moves(ctx context.Context, gameID int64) ([]metrics.MoveMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT step, move, status, opponent, algorithm, depth, nodes, cutoffs
        FROM moves
        WHERE game_id=?
        ORDER BY step`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []metrics.MoveMetric{}
	for rows.Next() {
		var m metrics.MoveMetric
		if err := rows.Scan(&m.Step, &m.Move, &m.Status, &m.Opponent, &m.Algorithm, &m.Depth, &m.Nodes, &m.Cutoffs); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
