package app

import (
	"strings"
	"time"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/envutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string

	JWTSecretKey string
	JWTIssuer    string

	AllowedOrigins []string

	AnalysisProvider string
	PromptsPath      string
	LockTTL          time.Duration
	WaitForPeer      time.Duration

	SSEChannel string

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:             envutil.String("PORT", "8080"),
		Environment:      envutil.String("APP_ENV", "development"),
		JWTSecretKey:     envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:        envutil.String("JWT_ISSUER", ""),
		AllowedOrigins:   envutil.List("CORS_ALLOWED_ORIGINS", nil),
		AnalysisProvider: strings.ToLower(envutil.String("ANALYSIS_PROVIDER", ProviderOpenAI)),
		PromptsPath:      envutil.String("PROMPTS_PATH", ""),
		LockTTL:          envutil.Seconds("ANALYSIS_LOCK_TTL_SECONDS", 90*time.Second),
		WaitForPeer:      envutil.Seconds("ANALYSIS_WAIT_FOR_PEER_SECONDS", 0),
		SSEChannel:       envutil.String("SSE_REDIS_CHANNEL", "decision:sse"),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "decisionclarity"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,
		},
	}
	if cfg.AnalysisProvider != ProviderAnthropic {
		cfg.AnalysisProvider = ProviderOpenAI
	}
	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is empty; every authenticated request will be rejected")
	}
	return cfg
}
