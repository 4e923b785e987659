package bus

import (
	"context"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
)

// Bus fans SSE messages out across instances. Each instance forwards what it
// receives into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
