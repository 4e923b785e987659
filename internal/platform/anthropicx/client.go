package anthropicx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/envutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

var errAPIKeyRequired = errors.New("missing ANTHROPIC_API_KEY")

// ErrEmptyOutput means the API answered without a text block.
var ErrEmptyOutput = errors.New("anthropic: no text content in response")

type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	Model() string
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:    envutil.String("ANTHROPIC_API_KEY", ""),
		BaseURL:   envutil.String("ANTHROPIC_BASE_URL", ""),
		Model:     envutil.String("ANTHROPIC_MODEL", "claude-haiku-4-5"),
		MaxTokens: int64(envutil.Int("ANTHROPIC_MAX_TOKENS", 1024)),
		Timeout:   envutil.Seconds("ANTHROPIC_TIMEOUT_SECONDS", 60*time.Second),
	}
}

type client struct {
	log       *logger.Logger
	sdk       anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errAPIKeyRequired
	}
	// SDK retries are disabled; the caller reports 429/5xx straight back.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &client{
		log:       log.With("service", "AnthropicClient"),
		sdk:       anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (c *client) Model() string { return string(c.model) }

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	t0 := time.Now()
	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	c.log.Debug("anthropic message complete",
		"model", string(c.model),
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"duration_ms", time.Since(t0).Milliseconds(),
	)
	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyOutput
	}
	return out.String(), nil
}

// StatusCode returns the HTTP status of an SDK API error, or 0.
func StatusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.StatusCode
	}
	return 0
}

// IsBillingError reports credit/billing rejections, which the API returns
// as 400 invalid_request_error with a descriptive message.
func IsBillingError(err error) bool {
	if StatusCode(err) == 0 {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "credit balance") || strings.Contains(msg, "billing")
}
