package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) (Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth")
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m", MaxRetries: retries})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, &calls
}

func TestGenerateText(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[{"type":"reasoning"},{"type":"message","role":"assistant","content":[{"type":"output_text","text":"hello "},{"type":"output_text","text":"world"}]}]}`))
	}, 0)
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("GenerateText: want %q got %q", "hello world", got)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", atomic.LoadInt32(calls))
	}
}

func TestGenerateTextErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		retries  int
		wantCode string
		wantCall int32
	}{
		{name: "rate limited no retry", status: 429, body: `{"error":{"code":"rate_limit_exceeded"}}`, wantCode: "rate_limit_exceeded", wantCall: 1},
		{name: "quota never retried", status: 429, body: `{"error":{"code":"insufficient_quota"}}`, retries: 2, wantCode: "insufficient_quota", wantCall: 1},
		{name: "bad request not retried", status: 400, body: `{"error":{"type":"invalid_request_error"}}`, retries: 2, wantCode: "invalid_request_error", wantCall: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, tc.retries)
			_, err := c.GenerateText(context.Background(), "s", "u")
			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.StatusCode != tc.status || he.ErrorCode() != tc.wantCode {
				t.Fatalf("unexpected error %d/%q", he.StatusCode, he.ErrorCode())
			}
			if atomic.LoadInt32(calls) != tc.wantCall {
				t.Fatalf("expected %d calls, got %d", tc.wantCall, atomic.LoadInt32(calls))
			}
		})
	}
}

func TestGenerateTextEmptyOutput(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}, 0)
	if _, err := c.GenerateText(context.Background(), "s", "u"); !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("expected ErrEmptyOutput, got %v", err)
	}
}
