package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-2.5-flash-lite"
	geminiConfidence   = 0.95
)

// contentGenerator is the part of *genai.GenerativeModel the lookup uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiLookup identifies merchants with a Gemini model.
type GeminiLookup struct {
	client     *genai.Client
	model      contentGenerator
	categories []string
	logger     logging.Logger
}

// NewGeminiLookup opens a Gemini client for model (the default model when
// empty). Close releases it.
func NewGeminiLookup(ctx context.Context, apiKey, model string, categories []string, logger logging.Logger) (*GeminiLookup, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", parsererror.ErrAIUnavailable)
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.1)

	return &GeminiLookup{
		client:     client,
		model:      gm,
		categories: categories,
		logger:     logging.OrDefault(logger),
	}, nil
}

func newGeminiLookupWithModel(model contentGenerator, categories []string, logger logging.Logger) *GeminiLookup {
	return &GeminiLookup{model: model, categories: categories, logger: logging.OrDefault(logger)}
}

func (g *GeminiLookup) Provider() string { return ProviderGemini }

// Close releases the underlying client.
func (g *GeminiLookup) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiLookup) Lookup(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	name := strings.TrimSpace(merchant)
	if name == "" {
		return nil, g.fail(merchant, errEmptyMerchant)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(lookupPrompt(name, g.categories)))
	if err != nil {
		return nil, g.fail(name, fmt.Errorf("generate content: %w", err))
	}

	text := responseText(resp)
	if text == "" {
		return nil, g.fail(name, errEmptyResponse)
	}

	info, err := parseLookupAnswer(name, text)
	if err != nil {
		return nil, g.fail(name, err)
	}
	if info.Confidence == 0 {
		info.Confidence = geminiConfidence
	}

	g.logger.Debug("Merchant identified",
		logging.F(logging.FieldProvider, ProviderGemini),
		logging.F(logging.FieldMerchant, name),
		logging.F(logging.FieldCategory, info.SuggestedCategory))
	return info, nil
}

func (g *GeminiLookup) fail(merchant string, err error) error {
	return &parsererror.LookupError{Merchant: merchant, Provider: ProviderGemini, Err: err}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
