package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dancepulse/dancepulse/internal/models"
)

// ExtractorConfig configures the text-completion attribute extractor. The
// BaseURL points at any OpenAI-compatible endpoint; the batch typically runs
// against a self-hosted model rather than the hosted API.
type ExtractorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultExtractorConfig returns the defaults for the cleaning pass.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Model:       "qwen2.5-32b-instruct",
		Temperature: 0.2,
		MaxTokens:   600,
	}
}

// chatCompleter is the slice of the OpenAI client the extractor uses,
// narrowed so tests can fake it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor asks a text-completion model for the fixed six-field answer set
// and validates the response defensively: prose around the JSON is
// tolerated, malformed fields degrade to null, and a missing time falls back
// to a regex over the raw text. It never returns an event-fatal error for
// bad model output, only for transport failures.
type Extractor struct {
	client chatCompleter
	config ExtractorConfig
	logger *slog.Logger
}

// NewExtractor builds an extractor against an OpenAI-compatible endpoint.
func NewExtractor(config ExtractorConfig, logger *slog.Logger) *Extractor {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger.With("component", "extractor"),
	}
}

// Extract runs one completion for an event's text and returns the validated
// answer set.
func (e *Extractor) Extract(ctx context.Context, title, description, rawWhen string) (*models.ExtractionResult, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildExtractorUserPrompt(title, description, rawWhen)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	result := ParseExtraction(resp.Choices[0].Message.Content)
	SanitizeExtraction(result, description, rawWhen)
	return result, nil
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.+?\\})\\s*```")

	// currencyRe accepts "price" values that actually carry a currency
	// marker. Anything else the model invents is dropped.
	currencyRe = regexp.MustCompile(`[$€£¥]|R\$|\b(?:USD|EUR\.?|GBP|BRL|MXN|ARS|COP|CLP|PEN|reais|euros?|dolares|pesos)\b`)

	// timeTokenRe recognizes a plausible time-of-day in model output or in
	// the raw provider text ("8 PM", "7:00 p.m.", "20:00", "19h30"). The
	// trailing dot belongs to the token only in the dotted "p.m." form, so
	// a sentence-ending period after "9 PM" is left behind.
	timeTokenRe = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:[ap]\.\s?m\.?|[ap]m\b)|\b\d{1,2}[:h]\d{2}\b`)
)

// ParseExtraction pulls the first well-formed JSON object out of a model
// response and unmarshals it. Responses wrapped in prose or code fences are
// handled; anything unusable yields an all-null result, never an error.
func ParseExtraction(response string) *models.ExtractionResult {
	var result models.ExtractionResult

	payload := ""
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		payload = m[1]
	} else {
		payload = firstJSONObject(response)
	}
	if payload == "" {
		return &result
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		// Model output is untrusted; a broken object means no answers.
		return &models.ExtractionResult{}
	}
	return &result
}

// firstJSONObject scans for the first balanced top-level {...} block,
// respecting string literals and escapes.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// SanitizeExtraction enforces the answer contract in place: prices without a
// currency marker are nulled (except "Free"), and a missing or implausible
// time is recovered from the raw text when possible.
func SanitizeExtraction(result *models.ExtractionResult, description, rawWhen string) {
	if result.Price != nil {
		price := strings.TrimSpace(*result.Price)
		switch {
		case price == "":
			result.Price = nil
		case strings.EqualFold(price, "free") || strings.EqualFold(price, "gratis") || strings.EqualFold(price, "gratuito"):
			free := "Free"
			result.Price = &free
		case currencyRe.MatchString(price):
			result.Price = &price
		default:
			result.Price = nil
		}
	}

	if result.Time != nil && !timeTokenRe.MatchString(*result.Time) {
		result.Time = nil
	}
	if result.Time == nil {
		if fallback := timeTokenRe.FindString(rawWhen + " " + description); fallback != "" {
			t := strings.TrimSpace(fallback)
			result.Time = &t
		}
	}

	if result.RewrittenDescription != nil && strings.TrimSpace(*result.RewrittenDescription) == "" {
		result.RewrittenDescription = nil
	}
}
