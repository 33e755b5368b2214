package provider

import (
	"fmt"

	"go.uber.org/zap"
)

// New selects a provider adapter from configuration. The choice is
// made exactly once, at startup; the rest of the runtime only sees
// the Provider interface.
func New(cfg Config, logger *zap.Logger) (Provider, error) {
	switch cfg.Type {
	case "openai":
		return NewOpenAIProvider(cfg, logger), nil
	case "anthropic":
		return NewAnthropicProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Type)
	}
}
