package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-3-haiku-20240307"
	anthropicMaxTokens    = 300
	anthropicSystemPrompt = "You categorize merchants for bookkeeping. Respond only with the JSON object requested."
)

// AnthropicConfig configures an AnthropicLookup.
type AnthropicConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, for proxies and tests.
	BaseURL string
	Timeout time.Duration
	// Categories are offered to the model as the allowed answers.
	Categories []string
}

// AnthropicLookup identifies merchants through the Anthropic Messages API.
type AnthropicLookup struct {
	client     anthropic.Client
	model      string
	categories []string
	logger     logging.Logger
}

// NewAnthropicLookup requires an API key. Retries are left to the escalator,
// which records a failed lookup instead of blocking the batch.
func NewAnthropicLookup(cfg AnthropicConfig, logger logging.Logger) (*AnthropicLookup, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("anthropic API key is required: %w", parsererror.ErrAIUnavailable)
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicLookup{
		client:     anthropic.NewClient(opts...),
		model:      model,
		categories: cfg.Categories,
		logger:     logging.OrDefault(logger),
	}, nil
}

func (a *AnthropicLookup) Provider() string { return ProviderAnthropic }

func (a *AnthropicLookup) Lookup(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	name := strings.TrimSpace(merchant)
	if name == "" {
		return nil, a.fail(merchant, errEmptyMerchant)
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: anthropicSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(lookupPrompt(name, a.categories))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, a.fail(name, fmt.Errorf("anthropic API error (status %d): %w", apiErr.StatusCode, err))
		}
		return nil, a.fail(name, fmt.Errorf("request failed: %w", err))
	}

	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, a.fail(name, errors.New("no content in response"))
	}

	info, err := parseLookupAnswer(name, text)
	if err != nil {
		return nil, a.fail(name, err)
	}

	a.logger.Debug("Merchant identified",
		logging.F(logging.FieldProvider, ProviderAnthropic),
		logging.F(logging.FieldMerchant, name),
		logging.F(logging.FieldCategory, info.SuggestedCategory))
	return info, nil
}

func (a *AnthropicLookup) fail(merchant string, err error) error {
	return &parsererror.LookupError{Merchant: merchant, Provider: ProviderAnthropic, Err: err}
}
