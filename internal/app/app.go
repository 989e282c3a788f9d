// Package app wires configuration into a ready planning service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/outing-planner/internal/config"
	"github.com/ashureev/outing-planner/internal/history"
	"github.com/ashureev/outing-planner/internal/search"
	"github.com/ashureev/outing-planner/internal/store"
	"github.com/ashureev/outing-planner/internal/textgen"
	"github.com/ashureev/outing-planner/internal/workflow"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config       *config.Config
	Store        store.CheckpointStore
	Searcher     search.Searcher
	Generator    textgen.Generator
	Recorder     history.Recorder
	Orchestrator *workflow.Orchestrator

	closers []func() error
	logger  *slog.Logger
}

// Build creates every component named by cfg. On error, whatever was already
// opened is closed again.
func Build(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.Store, err = openStore(cfg.Store); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	profile, err := search.LoadProfile(cfg.Search.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load search profile: %w", err)
	}
	if cfg.Search.Concurrency > 0 {
		profile.Concurrency = cfg.Search.Concurrency
	}

	a.Searcher, err = search.NewKakaoClient(search.KakaoConfig{
		APIKey:  cfg.Search.KakaoAPIKey,
		BaseURL: cfg.Search.KakaoBaseURL,
		Timeout: cfg.Search.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if a.Generator, err = a.openGenerator(cfg.TextGen); err != nil {
		return nil, err
	}

	a.Recorder, err = history.New(history.Config{
		Enabled:   cfg.History.Enabled,
		Dir:       cfg.History.Dir,
		QueueSize: cfg.History.QueueSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	a.closers = append(a.closers, a.Recorder.Close)

	a.Orchestrator, err = workflow.New(workflow.Deps{
		Store:     a.Store,
		Searcher:  a.Searcher,
		Generator: a.Generator,
		Profile:   profile,
		Recorder:  a.Recorder,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func openStore(cfg config.StoreConfig) (store.CheckpointStore, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return store.NewMemory(), nil
	default:
		s, err := store.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		return s, nil
	}
}

func (a *App) openGenerator(cfg config.TextGenConfig) (textgen.Generator, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		a.logger.Info("Text generation disabled, using rule-based defaults")
		return nil, nil
	case config.ProviderGrpc:
		gc := textgen.DefaultGrpcConfig()
		gc.Address = cfg.GrpcAddr
		g, err := textgen.NewGrpcGenerator(gc, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { g.Close(); return nil })
		return g, nil
	default:
		return textgen.NewOllamaGenerator(textgen.OllamaConfig{
			ServerURL: cfg.OllamaURL,
			Model:     cfg.OllamaModel,
		}, a.logger)
	}
}

// Ping checks the checkpoint store.
func (a *App) Ping(ctx context.Context) error {
	return a.Store.Ping(ctx)
}

// Close releases components in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
