package provider

import (
	"context"
	"time"
)

// Provider is the capability the agent core needs from an LLM backend:
// prompt in, text out. Vendor-specific request and response shaping
// lives entirely inside each adapter.
type Provider interface {
	ID() string
	Name() string
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	HealthCheck(ctx context.Context) error
}

// Config holds configuration for a provider instance.
type Config struct {
	Type     string        `json:"type"` // "openai" or "anthropic"
	Model    string        `json:"model"`
	Endpoint string        `json:"endpoint"`
	APIKey   string        `json:"api_key"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}
