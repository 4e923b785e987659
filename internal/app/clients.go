package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/analysis"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/anthropicx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/openai"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/redisx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime/bus"
)

type Clients struct {
	Redis     *goredis.Client
	SSEBus    bus.Bus
	Completer analysis.Completer
	Locker    analysis.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis (optional): cross-instance analysis lock and SSE fan-out.
	if rcfg := redisx.ConfigFromEnv(); rcfg.Enabled() {
		rdb, err := redisx.Connect(ctx, rcfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		b, err := bus.NewRedisBus(log, rdb, cfg.SSEChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.Redis = rdb
		out.SSEBus = b
		out.Locker = analysis.NewRedisLocker(rdb, "decision:analysis:")
	} else {
		log.Info("REDIS_ADDR not set; using in-process analysis lock and local SSE delivery")
		out.Locker = analysis.NewLocalLocker()
	}

	completer, err := newCompleter(log, cfg.AnalysisProvider)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Completer = completer
	return out, nil
}

func newCompleter(log *logger.Logger, provider string) (analysis.Completer, error) {
	switch provider {
	case ProviderAnthropic:
		c, err := anthropicx.NewClient(log, anthropicx.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init anthropic client: %w", err)
		}
		return analysis.NewAnthropicCompleter(c), nil
	default:
		c, err := openai.NewClient(log, openai.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return analysis.NewOpenAICompleter(c), nil
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
