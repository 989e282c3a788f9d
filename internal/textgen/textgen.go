// Package textgen is the text-generation boundary used for request analysis,
// keyword expansion and feedback classification.
package textgen

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a backend answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Generator completes a prompt into free text.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, systemPrompt, userText string) (string, error)

// Complete implements Generator.
func (f GeneratorFunc) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	return f(ctx, systemPrompt, userText)
}
