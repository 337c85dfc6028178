package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardgrid/scramble/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	action TEXT NOT NULL,
	outcome TEXT NOT NULL,
	row INTEGER NOT NULL,
	col INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_events_player ON game_events (player);
`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveEvents(ctx context.Context, events []*models.GameEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT INTO game_events (player, action, outcome, row, col, timestamp)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	for _, event := range events {
		if _, err := tx.ExecContext(ctx, q, event.Player, event.Action, event.Outcome, event.Row, event.Col, event.Timestamp); err != nil {
			return fmt.Errorf("failed to insert event: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error) {
	q := `
	SELECT
		COUNT(CASE WHEN action = 'flip' THEN 1 END),
		COUNT(CASE WHEN outcome = 'matched' THEN 1 END),
		COUNT(CASE WHEN outcome = 'mismatched' THEN 1 END),
		COUNT(CASE WHEN outcome = 'failed' THEN 1 END),
		COALESCE(MAX(timestamp), 0)
	FROM game_events WHERE player = ?;
	`
	stats := &models.PlayerStats{Player: player}
	var total int64
	row := r.db.QueryRowContext(ctx, q, player)
	if err := row.Scan(&stats.Flips, &stats.Matches, &stats.Mismatches, &stats.Failures, &stats.LastSeen); err != nil {
		return nil, fmt.Errorf("failed to scan stats: %v", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_events WHERE player = ?`, player).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to scan event count: %v", err)
	}
	if total == 0 {
		return nil, &ErrNotFound{}
	}
	return stats, nil
}
