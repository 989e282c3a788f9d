package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
	defaultTemperature = 0.7
)

// OllamaConfig holds configuration for the Ollama generator.
type OllamaConfig struct {
	ServerURL   string
	Model       string
	Temperature float64
}

// OllamaGenerator completes prompts with a local Ollama model.
type OllamaGenerator struct {
	llm         llms.Model
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewOllamaGenerator creates an Ollama-backed generator.
func NewOllamaGenerator(cfg OllamaConfig, logger *slog.Logger) (*OllamaGenerator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}

	client, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	logger.Info("Ollama generator configured", "url", cfg.ServerURL, "model", cfg.Model)
	return newOllamaGenerator(client, cfg, logger), nil
}

func newOllamaGenerator(model llms.Model, cfg OllamaConfig, logger *slog.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		llm:         model,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete implements Generator.
func (g *OllamaGenerator) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userText))

	resp, err := g.llm.GenerateContent(ctx, messages, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	g.logger.Debug("Ollama completion", "model", g.model, "chars", len(text))
	return text, nil
}
