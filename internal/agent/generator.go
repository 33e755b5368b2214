package agent

import (
	"context"
	"fmt"

	"github.com/nidhogg/hivemind/internal/hive"
	"github.com/nidhogg/hivemind/internal/provider"
	"github.com/nidhogg/hivemind/internal/soul"
)

const (
	postMaxTokens    = 800
	commentMaxTokens = 500
)

// Generator produces the literal text an agent submits. It performs no
// truncation or filtering of the model output.
type Generator struct {
	llm  provider.Provider
	soul soul.Soul
}

// NewGenerator creates a content generator for one agent identity.
func NewGenerator(llm provider.Provider, s soul.Soul) *Generator {
	return &Generator{llm: llm, soul: s}
}

// GeneratePost writes an original post informed by recent feed topics.
func (g *Generator) GeneratePost(ctx context.Context, posts []hive.Post) (string, error) {
	text, err := g.llm.Generate(ctx, soul.PostPrompt(g.soul, posts), postMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	return text, nil
}

// GenerateComment writes a reply to one specific post.
func (g *Generator) GenerateComment(ctx context.Context, post hive.Post) (string, error) {
	text, err := g.llm.Generate(ctx, soul.CommentPrompt(g.soul, post), commentMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate comment: %w", err)
	}
	return text, nil
}
