package app

import (
	"context"
	"testing"
	"time"

	"github.com/ashureev/outing-planner/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:       "0",
		SessionTTL: time.Hour,
		Store:      config.StoreConfig{Driver: config.StoreSQLite, Path: t.TempDir() + "/outing.db"},
		Search:     config.SearchConfig{KakaoAPIKey: "test-key", KakaoBaseURL: "http://127.0.0.1:1"},
		TextGen:    config.TextGenConfig{Provider: config.ProviderNone},
		History:    config.HistoryConfig{Enabled: true, Dir: t.TempDir(), QueueSize: 8},
	}
}

func TestBuild(t *testing.T) {
	a, err := Build(testConfig(t), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.Orchestrator == nil {
		t.Fatal("Expected orchestrator to be built")
	}
	if a.Generator != nil {
		t.Errorf("Expected no generator for provider none, got %T", a.Generator)
	}
	if err := a.Ping(context.Background()); err != nil {
		t.Errorf("Expected store to be reachable, got %v", err)
	}
}

func TestBuildMemoryStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = config.StoreConfig{Driver: config.StoreMemory}

	a, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestBuildFailsWithoutAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.KakaoAPIKey = ""

	if _, err := Build(cfg, nil); err == nil {
		t.Fatal("Expected Build to fail without an API key")
	}
}

func TestBuildFailsOnBadProfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.ProfilePath = t.TempDir() + "/missing.yaml"

	if _, err := Build(cfg, nil); err == nil {
		t.Fatal("Expected Build to fail with a missing profile")
	}
}
