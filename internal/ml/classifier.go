package ml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/finsight/internal/service"
)

// State is the lifecycle state of the statistical classifier.
type State int

const (
	// StateUntrained means no model is loaded in memory.
	StateUntrained State = iota
	// StateTrained means the in-memory model matches the last seen corpus.
	StateTrained
	// StateStale means feedback was added since the model was trained.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Classifier owns the trained model. Training is serialised; predictions
// run concurrently and always see a complete model.
type Classifier struct {
	feedback  service.FeedbackStore
	store     ModelStore
	isSavings func(category string) bool
	model     *Model
	loadOnce  sync.Once
	trainMu   sync.Mutex
	mu        sync.RWMutex
	stale     bool
	// loadedStale is set when the persisted model's fingerprint did not
	// match the corpus at load time.
	loadedStale bool
}

// NewClassifier creates a classifier. isSavings decides which feedback
// categories belong to the savings universe. store may be nil, in which
// case models live only in memory.
func NewClassifier(feedback service.FeedbackStore, store ModelStore, isSavings func(string) bool) *Classifier {
	return &Classifier{
		feedback:  feedback,
		store:     store,
		isSavings: isSavings,
	}
}

// State reports the current lifecycle state.
func (c *Classifier) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.model == nil:
		return StateUntrained
	case c.stale:
		return StateStale
	default:
		return StateTrained
	}
}

// MarkStale records that the feedback corpus changed. The current model,
// if any, keeps serving predictions until a retrain replaces it.
func (c *Classifier) MarkStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		c.stale = true
	}
}

// Current returns the model serving predictions, or nil.
func (c *Classifier) Current() *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Train rebuilds the model from the full feedback corpus. It is a no-op
// when the corpus is empty or unchanged since the last training.
func (c *Classifier) Train(ctx context.Context) error {
	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	samples, err := c.feedback.ListFeedback(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(samples) == 0 {
		slog.Info("No feedback samples available, skipping training")
		return nil
	}

	fingerprint := Fingerprint(samples)
	if current := c.Current(); current != nil && current.Fingerprint == fingerprint {
		slog.Info("Feedback corpus unchanged, skipping retrain", "samples", len(samples))
		c.mu.Lock()
		c.stale = false
		c.mu.Unlock()
		return nil
	}

	m := fitModel(samples, fingerprint, c.isSavings)

	if c.store != nil {
		if err := c.store.Save(ctx, m); err != nil {
			// The in-memory model is still usable; the next retrain persists again.
			slog.Warn("Failed to persist trained model", "error", err)
		}
	}

	c.mu.Lock()
	c.model = m
	c.stale = false
	c.mu.Unlock()

	heads := make([]string, 0, len(Heads))
	for _, h := range Heads {
		if m.HasHead(h) {
			heads = append(heads, string(h))
		}
	}
	slog.Info("Classifier trained",
		"samples", len(samples),
		"vocabulary", m.Vectorizer.Len(),
		"heads", heads)

	return nil
}

// PredictDebitType predicts Expense or Savings/Investment.
func (c *Classifier) PredictDebitType(ctx context.Context, desc string) (Prediction, error) {
	return c.predict(ctx, HeadDebitType, desc)
}

// PredictExpenseCategory predicts an expense category. The label may be the
// Other sentinel.
func (c *Classifier) PredictExpenseCategory(ctx context.Context, desc string) (Prediction, error) {
	return c.predict(ctx, HeadExpense, desc)
}

// PredictSavingsCategory predicts a savings category. The label may be the
// Other sentinel.
func (c *Classifier) PredictSavingsCategory(ctx context.Context, desc string) (Prediction, error) {
	return c.predict(ctx, HeadSavings, desc)
}

func (c *Classifier) predict(ctx context.Context, h Head, desc string) (Prediction, error) {
	m, err := c.ensureModel(ctx)
	if err != nil {
		return Prediction{}, err
	}
	if m == nil {
		return Prediction{}, nil
	}

	return m.Predict(h, desc), nil
}

// ensureModel implements the Untrained transitions: load the persisted model
// once per process, otherwise train synchronously if there is feedback. A
// persisted model whose fingerprint no longer matches the corpus is
// retrained before its first prediction.
func (c *Classifier) ensureModel(ctx context.Context) (*Model, error) {
	if m := c.Current(); m != nil {
		return m, nil
	}

	c.loadOnce.Do(func() {
		if c.store == nil {
			return
		}
		m, err := c.store.Load(ctx)
		switch {
		case errors.Is(err, ErrNoModel):
			slog.Debug("No persisted model found")
		case err != nil:
			slog.Warn("Failed to load persisted model", "error", err)
		default:
			stale := false
			if samples, err := c.feedback.ListFeedback(ctx); err == nil {
				stale = Fingerprint(samples) != m.Fingerprint
			}
			c.mu.Lock()
			if c.model == nil {
				c.model = m
				c.stale = stale
				c.loadedStale = stale
			}
			c.mu.Unlock()
			slog.Debug("Loaded persisted model", "samples", m.Samples, "stale", stale)
		}
	})

	if m := c.Current(); m != nil {
		if c.takeLoadedStale() {
			return c.retrainLoaded(ctx, m)
		}
		return m, nil
	}

	count, err := c.feedback.CountFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	if err := c.Train(ctx); err != nil {
		return nil, err
	}
	return c.Current(), nil
}

func (c *Classifier) takeLoadedStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	stale := c.loadedStale
	c.loadedStale = false
	return stale
}

// retrainLoaded replaces a stale persisted model. On failure the loaded model
// keeps serving.
func (c *Classifier) retrainLoaded(ctx context.Context, loaded *Model) (*Model, error) {
	if err := c.Train(ctx); err != nil {
		slog.Warn("Failed to retrain stale persisted model", "error", err)
		return loaded, nil
	}
	return c.Current(), nil
}
