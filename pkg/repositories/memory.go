package repositories

import (
	"context"
	"sync"

	"github.com/cardgrid/scramble/pkg/repositories/models"
)

// InMemoryRepository keeps the match history in process memory. It is
// the default when no database is configured, and is used in tests.
type InMemoryRepository struct {
	lock   sync.RWMutex
	events []*models.GameEvent
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveEvents(ctx context.Context, events []*models.GameEvent) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *InMemoryRepository) PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stats := &models.PlayerStats{Player: player}
	found := false
	for _, event := range r.events {
		if event.Player != player {
			continue
		}
		found = true
		tally(stats, event)
	}
	if !found {
		return nil, &ErrNotFound{}
	}
	return stats, nil
}

// Events returns a copy of everything saved so far.
func (r *InMemoryRepository) Events() []*models.GameEvent {
	r.lock.RLock()
	defer r.lock.RUnlock()
	events := make([]*models.GameEvent, len(r.events))
	copy(events, r.events)
	return events
}

func tally(stats *models.PlayerStats, event *models.GameEvent) {
	if event.Action == "flip" {
		stats.Flips++
	}
	switch event.Outcome {
	case "matched":
		stats.Matches++
	case "mismatched":
		stats.Mismatches++
	case "failed":
		stats.Failures++
	}
	if event.Timestamp > stats.LastSeen {
		stats.LastSeen = event.Timestamp
	}
}
