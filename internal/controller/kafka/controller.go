package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	kafkapc "github.com/andreyxaxa/PixelVault/internal/infrastructure/kafka"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// EventReader is the consumer side the controller drives.
type EventReader interface {
	ReadEvent(ctx context.Context) (kafka.Message, error)
	CommitEvent(ctx context.Context, event kafka.Message) error
	Close() error
}

// Regenerator is the slice of the image use-case the controller drives.
type Regenerator interface {
	Regenerate(ctx context.Context, id int64) error
	RequeueRegeneration(ctx context.Context, payload entity.RegeneratePayload) error
}

type Config struct {
	CommitTimeout  time.Duration
	ProcessTimeout time.Duration
	Workers        int
	// RetryAttempts is how many times one delivery runs Regenerate before
	// the event is handed back to the outbox.
	RetryAttempts int
	RetryBackoff  time.Duration
	// MaxRequeues bounds how often one regeneration goes back to the outbox.
	MaxRequeues int
	ReadBackoff time.Duration
}

// KafkaController consumes regeneration events with a worker pool. Every
// fetched message is committed once handled: group commits are cumulative per
// partition, so a message left uncommitted is lost as soon as a later offset
// commits. Transient failures are retried in place and then re-queued
// through the outbox as a fresh event.
type KafkaController struct {
	img    Regenerator
	ec     EventReader
	logger logger.Interface
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(img Regenerator, ec EventReader, l logger.Interface, cfg Config) *KafkaController {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	return &KafkaController{
		img:    img,
		ec:     ec,
		logger: l,
		cfg:    cfg,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.cfg.Workers*2)

	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go c.read(tasks)

	return nil
}

func (c *KafkaController) read(tasks chan<- kafka.Message) {
	defer c.wg.Done()
	defer close(tasks)

	for c.ctx.Err() == nil {
		event, err := c.ec.ReadEvent(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Error(err, "KafkaController - read - c.ec.ReadEvent")

			if !c.sleep(c.cfg.ReadBackoff) {
				return
			}
			continue
		}

		select {
		case tasks <- event:
		case <-c.ctx.Done():
			return
		}
	}
}

// sleep waits d or until shutdown; false means the controller is stopping.
func (c *KafkaController) sleep(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}

	select {
	case <-c.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func permanent(err error) bool {
	return errors.Is(err, errs.ErrRecordNotFound) ||
		errors.Is(err, errs.ErrDataUnavailable) ||
		errors.Is(err, errs.ErrDecode)
}

// regenerate runs Regenerate up to RetryAttempts times, doubling the pause
// between tries. Permanent errors end the loop at once.
func (c *KafkaController) regenerate(payload entity.RegeneratePayload) error {
	backoff := c.cfg.RetryBackoff

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.ProcessTimeout)
		err := c.img.Regenerate(ctx, payload.ImageID)
		cancel()

		if err == nil || permanent(err) || attempt >= c.cfg.RetryAttempts {
			return err
		}

		c.logger.Warn("KafkaController - regenerate - image %d attempt %d/%d: %v",
			payload.ImageID, attempt, c.cfg.RetryAttempts, err)

		if !c.sleep(backoff) {
			return err
		}
		backoff *= 2
	}
}

// requeue hands a failed regeneration back to the outbox. It runs detached
// from shutdown so a stopping controller still records the event.
func (c *KafkaController) requeue(payload entity.RegeneratePayload) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.cfg.CommitTimeout)
	defer cancel()

	payload.Attempt++

	return c.img.RequeueRegeneration(ctx, payload)
}

// handle processes one event and reports whether it may be committed.
func (c *KafkaController) handle(event kafka.Message) (commit bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - handle - panic")
			commit = true
		}
	}()

	payload, err := kafkapc.DecodeRegenerate(event)
	if err != nil {
		c.logger.Warn("KafkaController - handle - dropping offset=%d: %v", event.Offset, err)
		return true
	}

	err = c.regenerate(payload)
	switch {
	case err == nil:
		return true
	case permanent(err):
		c.logger.Warn("KafkaController - handle - dropping image %d: %v", payload.ImageID, err)
		return true
	case payload.Attempt >= c.cfg.MaxRequeues:
		c.logger.Error(err, fmt.Sprintf("KafkaController - handle - giving up on image %d after %d requeues", payload.ImageID, payload.Attempt))
		return true
	}

	if rqErr := c.requeue(payload); rqErr != nil {
		c.logger.Error(errors.Join(err, rqErr), "KafkaController - handle - c.requeue")
		return false
	}

	c.logger.Warn("KafkaController - handle - image %d requeued: %v", payload.ImageID, err)

	return true
}

func (c *KafkaController) commit(event kafka.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.cfg.CommitTimeout)
	defer cancel()

	if err := c.ec.CommitEvent(ctx, event); err != nil {
		c.logger.Error(err, "KafkaController - commit - c.ec.CommitEvent")
	}
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		if c.handle(event) {
			c.commit(event)
		}
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	c.cancel()

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.ec.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.ec.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
