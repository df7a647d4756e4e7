package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingTrainer struct {
	release chan struct{}
	started chan struct{}
	err     error
	calls   atomic.Int32
	once    sync.Once
}

func (b *blockingTrainer) Train(_ context.Context) error {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	if b.release != nil {
		<-b.release
	}
	return b.err
}

func TestRetrainer_CoalescesTriggers(t *testing.T) {
	trainer := &blockingTrainer{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	r := NewRetrainer(trainer)
	require.NoError(t, r.Start(context.Background()))

	r.Trigger()
	<-trainer.started

	// While the first run is blocked, many triggers collapse into one.
	for i := 0; i < 10; i++ {
		r.Trigger()
	}
	close(trainer.release)

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, int32(2), trainer.calls.Load())

	runs, lastErr := r.Stats()
	assert.Equal(t, 2, runs)
	assert.NoError(t, lastErr)
}

func TestRetrainer_TriggerNeverBlocks(t *testing.T) {
	r := NewRetrainer(&blockingTrainer{started: make(chan struct{})})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Trigger()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked without a running worker")
	}
}

func TestRetrainer_StopFlushesPendingTrigger(t *testing.T) {
	trainer := &blockingTrainer{started: make(chan struct{})}
	r := NewRetrainer(trainer)

	r.Trigger()
	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop(context.Background()))

	assert.Equal(t, int32(1), trainer.calls.Load())
	assert.ErrorIs(t, r.Start(context.Background()), ErrStopped)
	assert.NoError(t, r.Stop(context.Background()))
}

func TestRetrainer_TriggerAfterCancelStillTrains(t *testing.T) {
	trainer := &blockingTrainer{started: make(chan struct{})}
	r := NewRetrainer(trainer)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	r.Trigger()
	require.NoError(t, r.Stop(context.Background()))

	assert.Equal(t, int32(1), trainer.calls.Load())
	runs, _ := r.Stats()
	assert.Equal(t, 1, runs)
}

func TestRetrainer_RecordsErrors(t *testing.T) {
	trainer := &blockingTrainer{
		started: make(chan struct{}),
		err:     errors.New("boom"),
	}
	r := NewRetrainer(trainer)
	require.NoError(t, r.Start(context.Background()))

	r.Trigger()
	require.NoError(t, r.Stop(context.Background()))

	runs, lastErr := r.Stats()
	assert.Equal(t, 1, runs)
	assert.EqualError(t, lastErr, "boom")
	// Non-retryable errors are not retried.
	assert.Equal(t, int32(1), trainer.calls.Load())
}

func TestRetrainer_RetriesBusyErrors(t *testing.T) {
	trainer := &blockingTrainer{
		started: make(chan struct{}),
		err:     common.ErrBusy,
	}
	r := NewRetrainer(trainer)
	r.retry.InitialDelay = time.Millisecond
	r.retry.MaxDelay = time.Millisecond
	require.NoError(t, r.Start(context.Background()))

	r.Trigger()
	require.NoError(t, r.Stop(context.Background()))

	assert.Equal(t, int32(3), trainer.calls.Load())
	_, lastErr := r.Stats()
	assert.ErrorIs(t, lastErr, common.ErrBusy)
}
