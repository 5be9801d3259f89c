// Package llm wraps the hosted language model behind a single-method
// interface so the vendor is swappable and tests can stub it out.
package llm

import (
	"context"
	"fmt"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/config"
)

// Generator produces a natural-language answer to a question, using the
// reference text as the only context. Implementations return the raw
// completion, unparsed beyond non-emptiness, and surface every failure as
// a generation error. No retries, no streaming, no fallback model.
type Generator interface {
	GenerateAnswer(ctx context.Context, question, referenceText string) (string, error)
}

// buildPrompt embeds the reference text and question into the fixed
// instruction template. The wording is part of the product behavior; keep
// it stable.
func buildPrompt(question, referenceText string) string {
	return fmt.Sprintf(`You are a helpful assistant. Answer the following question based only on the provided context.

Context: %s

Question: %s

Answer:`, referenceText, question)
}

// New constructs the generator selected by cfg.Provider. The provider is
// fixed for the life of the process; there is no per-request routing.
func New(ctx context.Context, cfg config.LLM) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderClaude, "":
		return newClaudeGenerator(cfg)
	case config.ProviderGemini:
		return newGeminiGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want %q or %q)", cfg.Provider, config.ProviderClaude, config.ProviderGemini)
	}
}

func generationErr(provider string, err error) error {
	return apperr.Generation("failed to generate answer via "+provider, err)
}
