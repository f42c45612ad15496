package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	apprepository "pastebin-lite/internal/app/repository"
)

// EventRetention periodically prunes stored paste events older than the
// configured age.
type EventRetention struct {
	logger   *zap.Logger
	repo     apprepository.EventRepository
	maxAge   time.Duration
	interval time.Duration
	stopChan chan struct{}
}

// NewEventRetention creates a new retention sweeper for paste events.
func NewEventRetention(logger *zap.Logger, repo apprepository.EventRepository, maxAge time.Duration) *EventRetention {
	return &EventRetention{
		logger:   logger,
		repo:     repo,
		maxAge:   maxAge,
		interval: time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic pruning of old paste events.
func (r *EventRetention) Start() {
	go r.run()
}

// Stop stops the periodic pruning.
func (r *EventRetention) Stop() {
	close(r.stopChan)
}

func (r *EventRetention) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.pruneOldEvents()
		case <-r.stopChan:
			r.logger.Info("paste event retention stopped")
			return
		}
	}
}

func (r *EventRetention) pruneOldEvents() {
	ctx := context.Background()
	cutoff := time.Now().Add(-r.maxAge)

	affected, err := r.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.logger.Error("failed to prune old paste events", zap.Error(err))
		return
	}

	if affected > 0 {
		r.logger.Info("pruned old paste events",
			zap.Int64("count", affected),
			zap.Time("cutoff", cutoff),
		)
	}
}
