package analysis

import (
	"context"
	"errors"
	"net/http"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/anthropicx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/openai"
)

// Completer is the external text analysis capability. Implementations make
// exactly one attempt and return a classified *Error on failure.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Provider() string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type openAICompleter struct {
	client openai.Client
}

func NewOpenAICompleter(client openai.Client) Completer {
	return &openAICompleter{client: client}
}

func (c *openAICompleter) Provider() string { return ProviderOpenAI }

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	out, err := c.client.GenerateText(ctx, system, user)
	if err != nil {
		return "", classifyOpenAI(err)
	}
	return out, nil
}

func classifyOpenAI(err error) error {
	if errors.Is(err, openai.ErrEmptyOutput) {
		return newError(KindMalformed, ProviderOpenAI, err)
	}
	var he *openai.HTTPError
	if errors.As(err, &he) && he != nil {
		if he.ErrorCode() == "insufficient_quota" {
			return newError(KindQuotaExceeded, ProviderOpenAI, err)
		}
		return newError(kindForStatus(he.StatusCode), ProviderOpenAI, err)
	}
	return newError(KindUnavailable, ProviderOpenAI, err)
}

type anthropicCompleter struct {
	client anthropicx.Client
}

func NewAnthropicCompleter(client anthropicx.Client) Completer {
	return &anthropicCompleter{client: client}
}

func (c *anthropicCompleter) Provider() string { return ProviderAnthropic }

func (c *anthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	out, err := c.client.GenerateText(ctx, system, user)
	if err != nil {
		return "", classifyAnthropic(err)
	}
	return out, nil
}

func classifyAnthropic(err error) error {
	if errors.Is(err, anthropicx.ErrEmptyOutput) {
		return newError(KindMalformed, ProviderAnthropic, err)
	}
	if anthropicx.IsBillingError(err) {
		return newError(KindQuotaExceeded, ProviderAnthropic, err)
	}
	if code := anthropicx.StatusCode(err); code != 0 {
		return newError(kindForStatus(code), ProviderAnthropic, err)
	}
	return newError(KindUnavailable, ProviderAnthropic, err)
}

// kindForStatus maps a provider HTTP status. Client errors other than 429
// mean the request or credentials are wrong on our side, which the subject
// sees as the capability being unavailable.
func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusPaymentRequired:
		return KindQuotaExceeded
	default:
		return KindUnavailable
	}
}
