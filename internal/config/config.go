package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `json:"server"`
	TheHive  TheHiveConfig  `json:"thehive"`
	LLM      LLMConfig      `json:"llm"`
	Soul     SoulConfig     `json:"soul"`
	Behavior BehaviorConfig `json:"behavior"`
	Database DatabaseConfig `json:"database"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

type TheHiveConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type LLMConfig struct {
	Provider string `json:"provider"` // "openai" or "anthropic"
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint,omitempty"`
}

// SoulConfig selects the agent identity: either an inline personality
// or one of the built-in presets.
type SoulConfig struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Preset      string `json:"preset,omitempty"`
}

// BehaviorConfig tunes the heartbeat loop. The probability fields are
// pointers so an explicit 0 is distinguishable from an omitted key.
type BehaviorConfig struct {
	HeartbeatInterval  int      `json:"heartbeat_interval"` // seconds
	PostProbability    *float64 `json:"post_probability"`
	CommentProbability *float64 `json:"comment_probability"`
	MaxPostsPerDay     int      `json:"max_posts_per_day"`
	MaxCommentsPerDay  int      `json:"max_comments_per_day"`
	FeedLimit          int      `json:"feed_limit"`
	FeedSort           string   `json:"feed_sort"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `json:"postgres"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// Behavior defaults, matching the platform's recommended cadence.
const (
	DefaultHeartbeatInterval  = 300
	DefaultPostProbability    = 0.1
	DefaultCommentProbability = 0.3
	DefaultMaxPostsPerDay     = 10
	DefaultMaxCommentsPerDay  = 20
	DefaultFeedLimit          = 20
	DefaultFeedSort           = "new"
)

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file, substitutes environment variable
// references, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Behavior.HeartbeatInterval == 0 {
		c.Behavior.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Behavior.PostProbability == nil {
		p := DefaultPostProbability
		c.Behavior.PostProbability = &p
	}
	if c.Behavior.CommentProbability == nil {
		p := DefaultCommentProbability
		c.Behavior.CommentProbability = &p
	}
	if c.Behavior.MaxPostsPerDay == 0 {
		c.Behavior.MaxPostsPerDay = DefaultMaxPostsPerDay
	}
	if c.Behavior.MaxCommentsPerDay == 0 {
		c.Behavior.MaxCommentsPerDay = DefaultMaxCommentsPerDay
	}
	if c.Behavior.FeedLimit == 0 {
		c.Behavior.FeedLimit = DefaultFeedLimit
	}
	if c.Behavior.FeedSort == "" {
		c.Behavior.FeedSort = DefaultFeedSort
	}
}

// Validate rejects configurations the runtime cannot start with.
func (c *Config) Validate() error {
	if c.TheHive.APIKey == "" {
		return fmt.Errorf("thehive.api_key is required")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	case "":
		return fmt.Errorf("llm.provider is required")
	default:
		return fmt.Errorf("llm.provider must be openai or anthropic, got %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.Soul.Preset == "" && (c.Soul.Name == "" || c.Soul.Personality == "") {
		return fmt.Errorf("soul requires either a preset or a name and personality")
	}
	if c.Behavior.HeartbeatInterval <= 0 {
		return fmt.Errorf("behavior.heartbeat_interval must be positive, got %d", c.Behavior.HeartbeatInterval)
	}
	if p := *c.Behavior.PostProbability; p < 0 || p > 1 {
		return fmt.Errorf("behavior.post_probability must be in [0,1], got %v", p)
	}
	if p := *c.Behavior.CommentProbability; p < 0 || p > 1 {
		return fmt.Errorf("behavior.comment_probability must be in [0,1], got %v", p)
	}
	if c.Behavior.FeedLimit < 0 {
		return fmt.Errorf("behavior.feed_limit must not be negative, got %d", c.Behavior.FeedLimit)
	}
	switch c.Behavior.FeedSort {
	case "hot", "new", "top":
	default:
		return fmt.Errorf("behavior.feed_sort must be hot, new or top, got %q", c.Behavior.FeedSort)
	}
	return nil
}
