package workers

import (
	"context"
	"time"

	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/queue"
	"github.com/cardgrid/scramble/pkg/repositories"
	"github.com/cardgrid/scramble/pkg/repositories/models"
)

type StatsWorker struct {
	eventQueue queue.Queue
	repository repositories.Repository
	interval   time.Duration
}

type NewStatsWorkerOptions struct {
	EventQueue queue.Queue
	Repository repositories.Repository
	Interval   time.Duration
}

// NewStatsWorker creates a new StatsWorker. The worker periodically
// drains game events from the queue and batch-saves them to the
// repository.
func NewStatsWorker(opts NewStatsWorkerOptions) *StatsWorker {
	return &StatsWorker{
		eventQueue: opts.EventQueue,
		repository: opts.Repository,
		interval:   opts.Interval,
	}
}

func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(ctx)
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *StatsWorker) flush(ctx context.Context) {
	pending, err := w.eventQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read game events: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	events := make([]*models.GameEvent, 0, len(pending))
	for _, item := range pending {
		event, ok := item.(*models.GameEvent)
		if !ok {
			log.Error("Failed to cast item to models.GameEvent")
			continue
		}
		events = append(events, event)
	}

	if err := w.repository.SaveEvents(ctx, events); err != nil {
		log.Error("Failed to save %d game events: %v", len(events), err)
	}
}
