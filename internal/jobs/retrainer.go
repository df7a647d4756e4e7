// Package jobs runs background work for finsight.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/service"
)

// ErrStopped is returned when starting a retrainer that was already stopped.
var ErrStopped = errors.New("retrainer is stopped")

// Trainer rebuilds a model from the current feedback corpus.
type Trainer interface {
	Train(ctx context.Context) error
}

// Retrainer runs Train on a single background worker. Triggers never block:
// any number of triggers that arrive while a run is in flight collapse into
// one follow-up run.
type Retrainer struct {
	trainer   Trainer
	trigger   chan struct{}
	closeChan chan struct{}
	lastErr   error
	retry     service.RetryOptions
	wg        sync.WaitGroup
	mu        sync.Mutex
	runs      int
	started   bool
	closed    bool
}

// NewRetrainer creates a retrainer around trainer.
func NewRetrainer(trainer Trainer) *Retrainer {
	return &Retrainer{
		trainer:   trainer,
		trigger:   make(chan struct{}, 1),
		closeChan: make(chan struct{}),
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}
}

// Trigger schedules a retrain. It never blocks.
func (r *Retrainer) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
		// A run is already pending; it will read the latest corpus.
	}
}

// Start launches the worker. Runs inherit ctx values but not its
// cancellation: triggers accepted after ctx is cancelled still train. Only
// Stop ends the loop, after running any pending trigger.
func (r *Retrainer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStopped
	}
	if r.started {
		return nil
	}
	r.started = true

	r.wg.Add(1)
	go r.worker(ctx)
	return nil
}

func (r *Retrainer) worker(ctx context.Context) {
	defer r.wg.Done()

	runCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-r.closeChan:
			r.flush(runCtx)
			return
		case <-r.trigger:
			r.run(runCtx)
		}
	}
}

// flush runs a trigger that arrived just before shutdown, so accepted
// feedback is never left untrained.
func (r *Retrainer) flush(ctx context.Context) {
	select {
	case <-r.trigger:
		r.run(ctx)
	default:
	}
}

func (r *Retrainer) run(ctx context.Context) {
	start := time.Now()
	err := common.WithRetry(ctx, func() error {
		return r.trainer.Train(ctx)
	}, r.retry)

	r.mu.Lock()
	r.runs++
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		common.LogError(err, "Background retrain failed", common.Fields{
			"runs":     r.runsSoFar(),
			"duration": time.Since(start),
		})
		return
	}
	slog.Debug("Background retrain finished", "duration", time.Since(start))
}

// Stop ends the worker after any in-flight or pending run completes, or
// returns ctx.Err() if ctx expires first.
func (r *Retrainer) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.closeChan)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Retrainer) runsSoFar() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// Stats reports how many runs completed and the error of the most recent one.
func (r *Retrainer) Stats() (runs int, lastErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.lastErr
}
