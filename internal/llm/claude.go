package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phuslu/log"

	"github.com/sujalbistaa/askk/internal/config"
)

const defaultClaudeModel = "claude-3-5-haiku-latest"

// claudeGenerator answers questions with the Anthropic Messages API.
type claudeGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func newClaudeGenerator(cfg config.LLM) (*claudeGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required (set ANTHROPIC_API_KEY)")
	}

	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	g := &claudeGenerator{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
	}

	log.Info().
		Str("provider", "claude").
		Str("model", model).
		Dur("timeout", cfg.Timeout).
		Msg("answer generator ready")

	return g, nil
}

func (g *claudeGenerator) GenerateAnswer(ctx context.Context, question, referenceText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(question, referenceText))),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("claude completion failed")
		return "", generationErr("claude", err)
	}

	answer := textFromBlocks(resp.Content)
	if strings.TrimSpace(answer) == "" {
		return "", generationErr("claude", errors.New("empty completion"))
	}

	log.Debug().
		Str("model", g.model).
		Int("answer_length", len(answer)).
		Dur("duration", time.Since(start)).
		Msg("claude completion finished")

	return answer, nil
}

// textFromBlocks concatenates the text content blocks of a completion,
// skipping tool-use and other non-text blocks.
func textFromBlocks(blocks []anthropic.ContentBlockUnion) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
