package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
)

// _maxDrainRounds bounds how many full batches one tick publishes back to back.
const _maxDrainRounds = 10

// EventStore is the slice of the image use-case the relay drives.
type EventStore interface {
	GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
	MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
	MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
	IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
	MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
	CleanupOutbox(ctx context.Context) error
}

type Config struct {
	PollInterval        time.Duration
	MarkFailedInterval  time.Duration
	CleanupInterval     time.Duration
	ProcessBatchTimeout time.Duration
	BatchSize           int
	MaxRetries          int
}

// Relay publishes committed regeneration events to the broker. Delivery is
// at least once: a failed publish returns the batch to pending.
type Relay struct {
	store  EventStore
	es     infrastructure.EventsSender
	logger logger.Interface
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(store EventStore, es infrastructure.EventsSender, l logger.Interface, cfg Config) *Relay {
	return &Relay{
		store:  store,
		es:     es,
		logger: l,
		cfg:    cfg,
	}
}

func (r *Relay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Relay - Start - already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	r.every(r.cfg.PollInterval, true, r.drain)

	r.every(r.cfg.MarkFailedInterval, false, func() {
		if err := r.store.MarkMaxRetriesAsFailed(r.ctx, r.cfg.MaxRetries); err != nil {
			r.logger.Error(err, "Relay - Start - r.store.MarkMaxRetriesAsFailed")
		}
	})

	r.every(r.cfg.CleanupInterval, false, func() {
		if err := r.store.CleanupOutbox(r.ctx); err != nil {
			r.logger.Error(err, "Relay - Start - r.store.CleanupOutbox")
		}
	})

	return nil
}

// drain keeps publishing while batches come back full, so a backlog left by
// a broker outage clears without waiting one poll interval per batch.
func (r *Relay) drain() {
	for round := 0; round < _maxDrainRounds; round++ {
		if r.ctx.Err() != nil {
			return
		}

		batchCtx, cancel := context.WithTimeout(r.ctx, r.cfg.ProcessBatchTimeout)
		n, ok := r.publishBatch(batchCtx)
		cancel()

		if !ok || n < r.cfg.BatchSize {
			return
		}
	}
}

// publishBatch reports how many events it claimed and whether they reached the broker.
func (r *Relay) publishBatch(ctx context.Context) (int, bool) {
	events, err := r.store.GetPendingEvents(ctx, r.cfg.MaxRetries, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error(err, "Relay - publishBatch - r.store.GetPendingEvents")
		return 0, false
	}
	if len(events) == 0 {
		return 0, true
	}

	if err = r.store.MarkAsProcessingBatch(ctx, events); err != nil {
		r.logger.Error(err, "Relay - publishBatch - r.store.MarkAsProcessingBatch")
		return len(events), false
	}

	if err = r.es.SendEvents(ctx, events); err != nil {
		r.logger.Warn("Relay - publishBatch - %d events back to pending: %v", len(events), err)
		if incErr := r.store.IncrementRetryCountBatch(ctx, events); incErr != nil {
			r.logger.Error(incErr, "Relay - publishBatch - r.store.IncrementRetryCountBatch")
		}
		return len(events), false
	}

	if err = r.store.MarkAsProcessedBatch(ctx, events); err != nil {
		r.logger.Error(err, "Relay - publishBatch - r.store.MarkAsProcessedBatch")
		return len(events), false
	}

	r.logger.Debug("Relay - published %d events", len(events))

	return len(events), true
}

func (r *Relay) every(interval time.Duration, immediately bool, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if immediately {
			task()
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

// Shutdown stops the loops and closes the sender once in-flight batches finish.
func (r *Relay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		if err := r.es.Close(); err != nil {
			r.logger.Error(err, "Relay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Relay - Shutdown: %w", ctx.Err())
	}
}
