package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phuslu/log"
	"google.golang.org/genai"

	"github.com/sujalbistaa/askk/internal/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiGenerator answers questions with the Gemini API via the Google
// genai SDK.
type geminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func newGeminiGenerator(ctx context.Context, cfg config.LLM) (*geminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Google API key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	log.Info().
		Str("provider", "gemini").
		Str("model", model).
		Dur("timeout", cfg.Timeout).
		Msg("answer generator ready")

	return &geminiGenerator{client: client, model: model, timeout: cfg.Timeout}, nil
}

func (g *geminiGenerator) GenerateAnswer(ctx context.Context, question, referenceText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(buildPrompt(question, referenceText))},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("gemini completion failed")
		return "", generationErr("gemini", err)
	}

	var answer strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					answer.WriteString(part.Text)
				}
			}
			if answer.Len() > 0 {
				break
			}
		}
	}
	if strings.TrimSpace(answer.String()) == "" {
		return "", generationErr("gemini", errors.New("empty completion"))
	}

	log.Debug().
		Str("model", g.model).
		Int("answer_length", answer.Len()).
		Dur("duration", time.Since(start)).
		Msg("gemini completion finished")

	return answer.String(), nil
}
