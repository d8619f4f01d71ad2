package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/config"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/observability/metrics"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// LLM is the assembled completion client plus the model id reported in logs.
type LLM struct {
	Client  conversation.LLMClient
	ModelID string
	Close   func()
}

// BuildLLMClient wires Gemini as the primary model and Bedrock as the
// fallback. Either one alone is accepted; awsCfg may be nil when Bedrock is
// not configured.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, m *metrics.BookingMetrics, logger *logging.Logger) (*LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	out := &LLM{Close: func() {}}

	var primary conversation.LLMClient
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := conversation.NewGeminiLLMClient(ctx, key, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		primary = gemini
		out.ModelID = cfg.GeminiModelID
		out.Close = func() { _ = gemini.Close() }
	}

	var fallback conversation.LLMClient
	if model := strings.TrimSpace(cfg.BedrockModelID); model != "" {
		if awsCfg == nil {
			logger.Warn("bedrock model configured without AWS config; skipping fallback", "model", model)
		} else {
			fallback = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), model)
		}
	}

	switch {
	case primary != nil && fallback != nil:
		logger.Info("llm configured", "primary", cfg.GeminiModelID, "fallback", cfg.BedrockModelID)
		out.Client = conversation.NewFallbackLLMClient(primary, fallback, m, logger)
	case primary != nil:
		logger.Info("llm configured", "primary", cfg.GeminiModelID)
		out.Client = primary
	case fallback != nil:
		logger.Info("llm configured", "primary", cfg.BedrockModelID)
		out.Client = fallback
		out.ModelID = cfg.BedrockModelID
	default:
		return nil, fmt.Errorf("bootstrap: no LLM configured (set GEMINI_API_KEY or BEDROCK_MODEL_ID)")
	}
	return out, nil
}

// BuildSessionStore persists chat sessions in Redis when it is reachable and
// falls back to process memory otherwise.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) conversation.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	client := BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		logger.Info("using in-memory session store", "ttl", cfg.SessionTTL)
		return conversation.NewMemorySessionStore(cfg.SessionTTL)
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return conversation.NewRedisSessionStore(client, cfg.SessionTTL, nil)
}
