package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/redisx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
)

// Runs only against a live redis named by REDIS_TEST_ADDR.
func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := redisx.Connect(ctx, redisx.Config{Addr: addr})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer rdb.Close()

	b, err := NewRedisBus(logger.Nop(), rdb, "test:"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	want := realtime.SSEMessage{Channel: uuid.NewString(), Event: realtime.SSEEventDecisionLocked}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != want.Channel || m.Event != want.Event {
			t.Fatalf("forwarded: got %+v want %+v", m, want)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for forwarded message")
	}
}
