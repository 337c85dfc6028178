// Package repositories stores the match history recorded while a game
// runs. Only events are persisted; board state itself never outlives
// the process.
package repositories

import (
	"context"

	"github.com/cardgrid/scramble/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	SaveEvents(ctx context.Context, events []*models.GameEvent) error
	PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error)
}
