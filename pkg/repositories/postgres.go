package repositories

import (
	"context"
	"fmt"

	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS game_events (
	id BIGSERIAL PRIMARY KEY,
	player TEXT NOT NULL,
	action TEXT NOT NULL,
	outcome TEXT NOT NULL,
	row_num INTEGER NOT NULL,
	col_num INTEGER NOT NULL,
	timestamp BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_events_player ON game_events (player);
`

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database at connStr and
// bootstraps the schema. The caller is responsible for calling Close()
// on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	var database string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&database); err != nil {
		return nil, fmt.Errorf("failed to query database: %v", err)
	}
	log.Info("Connected to database %s", database)

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveEvents(ctx context.Context, events []*models.GameEvent) error {
	batch := &pgx.Batch{}
	q := `
	INSERT INTO game_events (player, action, outcome, row_num, col_num, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, event := range events {
		batch.Queue(q, event.Player, event.Action, event.Outcome, event.Row, event.Col, event.Timestamp)
	}

	if err := r.conn.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert events: %v", err)
	}

	return nil
}

func (r *PostgresRepository) PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error) {
	q := `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE action = 'flip'),
		COUNT(*) FILTER (WHERE outcome = 'matched'),
		COUNT(*) FILTER (WHERE outcome = 'mismatched'),
		COUNT(*) FILTER (WHERE outcome = 'failed'),
		COALESCE(MAX(timestamp), 0)
	FROM game_events WHERE player = $1;
	`
	stats := &models.PlayerStats{Player: player}
	var total int64
	row := r.conn.QueryRow(ctx, q, player)
	if err := row.Scan(&total, &stats.Flips, &stats.Matches, &stats.Mismatches, &stats.Failures, &stats.LastSeen); err != nil {
		return nil, fmt.Errorf("failed to scan stats: %v", err)
	}
	if total == 0 {
		return nil, &ErrNotFound{}
	}
	return stats, nil
}
