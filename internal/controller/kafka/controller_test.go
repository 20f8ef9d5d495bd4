package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	kafkapc "github.com/andreyxaxa/PixelVault/internal/infrastructure/kafka"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStorage = errors.New("s3: connection reset")

type fakeImages struct {
	mu       sync.Mutex
	calls    map[int64]int
	failures map[int64]int // calls that fail before Regenerate succeeds
	errs     map[int64]error
	requeued []entity.RegeneratePayload
	rqErr    error
}

func newFakeImages() *fakeImages {
	return &fakeImages{
		calls:    make(map[int64]int),
		failures: make(map[int64]int),
		errs:     make(map[int64]error),
	}
}

func (f *fakeImages) failWith(id int64, err error, times int) {
	f.errs[id] = err
	f.failures[id] = times
}

func (f *fakeImages) Regenerate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[id]++
	if f.calls[id] <= f.failures[id] {
		return f.errs[id]
	}
	return nil
}

func (f *fakeImages) RequeueRegeneration(_ context.Context, payload entity.RegeneratePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rqErr != nil {
		return f.rqErr
	}
	f.requeued = append(f.requeued, payload)
	return nil
}

func (f *fakeImages) callsFor(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[id]
}

type chanReader struct {
	events  chan kafka.Message
	readErr error
	reads   atomic.Int64

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func (r *chanReader) ReadEvent(ctx context.Context) (kafka.Message, error) {
	r.reads.Add(1)
	if r.readErr != nil {
		return kafka.Message{}, r.readErr
	}

	select {
	case msg := <-r.events:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) CommitEvent(_ context.Context, event kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.committed = append(r.committed, event.Offset)
	return nil
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

func (r *chanReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.committed...)
}

func regenerateMsg(offset int64, body string) kafka.Message {
	return kafka.Message{
		Offset:  offset,
		Value:   []byte(body),
		Headers: []kafka.Header{{Key: kafkapc.HeaderEventType, Value: []byte(entity.EventRegenerate)}},
	}
}

func testConfig() Config {
	return Config{
		CommitTimeout:  time.Second,
		ProcessTimeout: time.Second,
		Workers:        1,
		RetryAttempts:  3,
		RetryBackoff:   time.Millisecond,
		MaxRequeues:    2,
		ReadBackoff:    50 * time.Millisecond,
	}
}

func newTestController(images *fakeImages, reader *chanReader) *KafkaController {
	c := New(images, reader, logger.New("disabled"), testConfig())
	c.ctx = context.Background()
	return c
}

func TestHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      kafka.Message
		setup    func(*fakeImages)
		commit   bool
		calls    int
		requeued []entity.RegeneratePayload
	}{
		{
			name:   "regenerated",
			msg:    regenerateMsg(1, `{"image_id":1,"requested_by":7}`),
			commit: true,
			calls:  1,
		},
		{
			name:   "record gone is dropped",
			msg:    regenerateMsg(2, `{"image_id":1}`),
			setup:  func(f *fakeImages) { f.failWith(1, errs.ErrRecordNotFound, 10) },
			commit: true,
			calls:  1,
		},
		{
			name:   "missing original is dropped",
			msg:    regenerateMsg(3, `{"image_id":1}`),
			setup:  func(f *fakeImages) { f.failWith(1, errs.ErrDataUnavailable, 10) },
			commit: true,
			calls:  1,
		},
		{
			name:   "malformed payload is dropped",
			msg:    regenerateMsg(4, `not json`),
			commit: true,
		},
		{
			name:   "unknown type is dropped",
			msg:    kafka.Message{Offset: 5, Value: []byte(`{"image_id":1}`)},
			commit: true,
		},
		{
			name:   "transient failure recovers on retry",
			msg:    regenerateMsg(6, `{"image_id":1}`),
			setup:  func(f *fakeImages) { f.failWith(1, errStorage, 2) },
			commit: true,
			calls:  3,
		},
		{
			name:     "transient failure is requeued and committed",
			msg:      regenerateMsg(7, `{"image_id":1,"requested_by":7}`),
			setup:    func(f *fakeImages) { f.failWith(1, errStorage, 10) },
			commit:   true,
			calls:    3,
			requeued: []entity.RegeneratePayload{{ImageID: 1, RequestedBy: 7, Attempt: 1}},
		},
		{
			name:   "requeue budget spent",
			msg:    regenerateMsg(8, `{"image_id":1,"attempt":2}`),
			setup:  func(f *fakeImages) { f.failWith(1, errStorage, 10) },
			commit: true,
			calls:  3,
		},
		{
			name: "requeue failure keeps the message",
			msg:  regenerateMsg(9, `{"image_id":1}`),
			setup: func(f *fakeImages) {
				f.failWith(1, errStorage, 10)
				f.rqErr = errors.New("pg down")
			},
			commit: false,
			calls:  3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			images := newFakeImages()
			if tt.setup != nil {
				tt.setup(images)
			}
			c := newTestController(images, &chanReader{})

			assert.Equal(t, tt.commit, c.handle(tt.msg))
			assert.Equal(t, tt.calls, images.callsFor(1))
			assert.Equal(t, tt.requeued, images.requeued)
		})
	}
}

// A failed message must not hold back its partition: a later offset commits
// either way, so the failure has to be re-queued before that happens.
func TestWorkerCommitsTransientFailureAfterRequeue(t *testing.T) {
	t.Parallel()

	images := newFakeImages()
	images.failWith(5, errStorage, 100)
	reader := &chanReader{events: make(chan kafka.Message, 4)}

	c := New(images, reader, logger.New("disabled"), testConfig())
	require.NoError(t, c.Start(context.Background()))

	reader.events <- regenerateMsg(5, `{"image_id":5}`)
	reader.events <- regenerateMsg(6, `{"image_id":6}`)

	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	assert.Equal(t, []int64{5, 6}, reader.committedOffsets())
	assert.Equal(t, []entity.RegeneratePayload{{ImageID: 5, Attempt: 1}}, images.requeued)
}

func TestReadErrorsBackOff(t *testing.T) {
	t.Parallel()

	reader := &chanReader{readErr: errors.New("broker unreachable")}
	c := New(newFakeImages(), reader, logger.New("disabled"), testConfig())
	require.NoError(t, c.Start(context.Background()))

	time.Sleep(120 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	// 50ms backoff allows about three reads in 120ms
	assert.LessOrEqual(t, reader.reads.Load(), int64(5))
	assert.True(t, reader.closed)
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()

	images := newFakeImages()
	reader := &chanReader{events: make(chan kafka.Message, 4)}

	cfg := testConfig()
	cfg.Workers = 2
	c := New(images, reader, logger.New("disabled"), cfg)
	require.NoError(t, c.Start(context.Background()))
	require.Error(t, c.Start(context.Background()))

	reader.events <- regenerateMsg(1, `{"image_id":8}`)
	reader.events <- regenerateMsg(2, `{"image_id":9}`)

	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
	assert.True(t, reader.closed)
	assert.Equal(t, 1, images.callsFor(8))
}
