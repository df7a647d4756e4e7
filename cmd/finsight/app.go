package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/analytics"
	"github.com/Veraticus/finsight/internal/budget"
	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/config"
	"github.com/Veraticus/finsight/internal/engine"
	"github.com/Veraticus/finsight/internal/festival"
	"github.com/Veraticus/finsight/internal/ingest"
	"github.com/Veraticus/finsight/internal/jobs"
	"github.com/Veraticus/finsight/internal/ml"
	"github.com/Veraticus/finsight/internal/storage"
	"github.com/Veraticus/finsight/internal/suggestion"
)

const shutdownTimeout = 30 * time.Second

// app holds every service a command may need, wired from configuration.
type app struct {
	cfg         *config.Config
	storage     *storage.SQLiteStorage
	models      *ml.BoltModelStore
	classifier  *ml.Classifier
	retrainer   *jobs.Retrainer
	engine      *engine.Engine
	pipeline    *ingest.Pipeline
	analytics   *analytics.Engine
	budgets     *budget.Service
	suggestions *suggestion.Service
	festivals   *festival.Service
}

// openApp loads configuration, opens storage and the model file, and starts
// the background retrainer. Callers must Close the app.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	taxonomy, err := classification.LoadTaxonomyFile(cfg.Classification.TaxonomyFile)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	models, err := ml.OpenBoltModelStore(cfg.Classifier.ModelPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		storage: store,
		models:  models,
	}

	a.classifier = ml.NewClassifier(store, models, taxonomy.IsSavings)
	a.retrainer = jobs.NewRetrainer(a.classifier)
	a.engine = engine.New(store, classification.NewRuleClassifier(taxonomy), a.classifier, engine.Config{
		Retrainer:           a.retrainer,
		ConfidenceThreshold: cfg.Classifier.ConfidenceThreshold,
	})
	a.pipeline = ingest.NewPipeline(store, a.engine)
	a.analytics = analytics.NewEngine(store, cfg.Analytics.AnomalyFactor)
	a.budgets = budget.NewService(store, budget.Policy{
		WarningRatio: cfg.Budget.WarningRatio,
		NeedsRatio:   cfg.Budget.NeedsRatio,
		WantsRatio:   cfg.Budget.WantsRatio,
		SavingsRatio: cfg.Budget.SavingsRatio,
	})
	a.suggestions = suggestion.NewService(store, a.budgets, suggestion.Policy{
		CurrencySymbol:          cfg.Currency.Symbol,
		SubscriptionSavingRatio: cfg.Suggestions.SubscriptionSavingRatio,
		WantsPctLimit:           cfg.Suggestions.WantsPctLimit,
		SavingsPctFloor:         cfg.Suggestions.SavingsPctFloor,
	})
	a.festivals = festival.NewService(store, store, festival.Config{
		CurrencySymbol:  cfg.Currency.Symbol,
		AlertDaysBefore: cfg.Festivals.AlertDaysBefore,
		BufferRatio:     cfg.Festivals.BufferRatio,
	})

	if err := a.festivals.SeedDefaults(ctx, cfg.DefaultFestivals()); err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to seed festivals: %w", err)
	}

	if err := a.retrainer.Start(ctx); err != nil {
		a.closeStores()
		return nil, err
	}

	return a, nil
}

// Close waits for a pending retrain and releases the stores.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.retrainer.Stop(ctx); err != nil {
		slog.Warn("Retrainer did not stop cleanly", "error", err)
	}
	a.closeStores()
}

func (a *app) closeStores() {
	if err := a.models.Close(); err != nil {
		slog.Warn("Failed to close model store", "error", err)
	}
	if err := a.storage.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
