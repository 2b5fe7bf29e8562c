package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/redact"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = time.Second
	maxCardsPerCall   = 50
)

// defaultPrompt asks for a flat JSON list of question/answer pairs.
const defaultPrompt = `You are helping a student build flashcards.
Read the study material below and write concise flashcards covering its key facts.
Each card has a "front" (a question or prompt) and a "back" (the answer).
Respond with JSON only, in the form {"cards":[{"front":"...","back":"..."}]}.
Write the cards in the same language as the material.

Material:
{{.Text}}
`

// contentGenerator is the part of genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	logger         *slog.Logger
	models         contentGenerator
	model          string
	timeout        time.Duration
	promptTemplate *template.Template

	maxRetries int
	baseDelay  time.Duration
	rng        *rand.Rand
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator from cfg. It fails with
// generation.ErrInvalidConfig when the API key or model is missing.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, logger, cfg)
}

func newGenerator(models contentGenerator, log *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	tmpl, err := template.New("flashcards").Parse(defaultPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:         log.With(slog.String("component", "gemini_generator")),
		models:         models,
		model:          cfg.ModelName,
		timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
		promptTemplate: tmpl,
		maxRetries:     defaultMaxRetries,
		baseDelay:      defaultBaseDelay,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// GenerateCards implements generation.Generator.
func (g *GeminiGenerator) GenerateCards(ctx context.Context, text string, deckID int64) ([]*domain.Card, error) {
	prompt, err := g.createPrompt(text)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return g.parseResponse(ctx, response, deckID)
}

func (g *GeminiGenerator) createPrompt(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", generation.ErrEmptyText
	}
	if len(text) > generation.MaxSourceLength {
		return "", fmt.Errorf("%w: source text exceeds %d bytes", generation.ErrGenerationFailed, generation.MaxSourceLength)
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, promptData{Text: text}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callOnce performs a single request. The bool reports whether a retry may help.
func (g *GeminiGenerator) callOnce(ctx context.Context, prompt string) (*ResponseSchema, bool, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	switch {
	case err != nil:
		return nil, true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	case resp == nil || len(resp.Candidates) == 0:
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return nil, false, generation.ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return nil, false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(stripCodeFence(text.String())), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return &parsed, false, nil
}

func (g *GeminiGenerator) callWithRetry(ctx context.Context, prompt string) (*ResponseSchema, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	for attempt := 0; ; attempt++ {
		response, retryable, err := g.callOnce(ctx, prompt)
		if err == nil {
			log.Debug("gemini call succeeded", slog.Int("attempt", attempt+1))
			return response, nil
		}

		log.Warn("gemini call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", redact.Error(err)))

		if !retryable {
			return nil, err
		}
		if attempt >= g.maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, g.maxRetries)
		}

		// delay = base * 2^attempt * [0.5, 1.0)
		backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + g.rng.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *GeminiGenerator) parseResponse(ctx context.Context, response *ResponseSchema, deckID int64) ([]*domain.Card, error) {
	if response == nil || len(response.Cards) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
	}

	schemas := response.Cards
	if len(schemas) > maxCardsPerCall {
		schemas = schemas[:maxCardsPerCall]
	}

	cards := make([]*domain.Card, 0, len(schemas))
	for i, s := range schemas {
		card, err := domain.NewCard(deckID, s.Front, s.Back)
		if err != nil {
			if errors.Is(err, domain.ErrCardDeckIDEmpty) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: card %d: %v", generation.ErrInvalidResponse, i, err)
		}
		cards = append(cards, card)
	}

	logger.FromContextOrDefault(ctx, g.logger).Info("generated cards",
		slog.Int64("deck_id", deckID),
		slog.Int("count", len(cards)))
	return cards, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
