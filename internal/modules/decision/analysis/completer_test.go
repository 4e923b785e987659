package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/anthropicx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/openai"
)

func TestClassifyOpenAI(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"rate limited", &openai.HTTPError{StatusCode: 429, Body: `{"error":{"code":"rate_limit_exceeded"}}`}, KindRateLimited},
		{"quota", &openai.HTTPError{StatusCode: 429, Body: `{"error":{"code":"insufficient_quota"}}`}, KindQuotaExceeded},
		{"server", &openai.HTTPError{StatusCode: 503}, KindUnavailable},
		{"bad request", &openai.HTTPError{StatusCode: 400}, KindUnavailable},
		{"empty output", openai.ErrEmptyOutput, KindMalformed},
		{"network", errors.New("dial tcp: connection refused"), KindUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := KindOf(classifyOpenAI(tc.err))
			if !ok || got != tc.want {
				t.Fatalf("classifyOpenAI: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestAnthropicCompleterClassifies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"rate limited", 429, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, KindRateLimited},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`, KindUnavailable},
		{"billing", 400, `{"type":"error","error":{"type":"invalid_request_error","message":"Your credit balance is too low"}}`, KindQuotaExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			client, err := anthropicx.NewClient(logger.Nop(), anthropicx.Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = NewAnthropicCompleter(client).Complete(context.Background(), "s", "u")
			got, ok := KindOf(err)
			if !ok || got != tc.want {
				t.Fatalf("Complete: got kind %q (%v) want %q", got, err, tc.want)
			}
		})
	}
}
