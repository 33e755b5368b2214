package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/nidhogg/hivemind/internal/hive"
	"github.com/nidhogg/hivemind/internal/provider"
	"github.com/nidhogg/hivemind/internal/soul"
	"go.uber.org/zap"
)

// Action is what the agent intends to do this cycle.
type Action string

const (
	ActionPost    Action = "post"
	ActionComment Action = "comment"
	ActionObserve Action = "observe"
)

// Decision is the outcome of one judgment call. A comment decision
// whose target could not be resolved keeps Action == ActionComment
// with an empty TargetPostID; the runner treats that as a no-op.
type Decision struct {
	Action       Action
	TargetPostID string
	Reasoning    string
}

const decisionMaxTokens = 500

// Engine turns a feed snapshot into a Decision via one model call.
type Engine struct {
	llm    provider.Provider
	soul   soul.Soul
	logger *zap.Logger
}

// NewEngine creates a decision engine for one agent identity.
func NewEngine(llm provider.Provider, s soul.Soul, logger *zap.Logger) *Engine {
	return &Engine{llm: llm, soul: s, logger: logger}
}

// Soul returns the identity this engine decides for.
func (e *Engine) Soul() soul.Soul { return e.soul }

// Provider returns the model backend in use.
func (e *Engine) Provider() provider.Provider { return e.llm }

// Decide makes one judgment call against the model. A backend failure
// means no decision this cycle; the caller logs and waits for the next
// heartbeat.
func (e *Engine) Decide(ctx context.Context, posts []hive.Post, snap Snapshot) (Decision, error) {
	prompt := soul.DecisionPrompt(e.soul, posts, snap.Stats())
	raw, err := e.llm.Generate(ctx, prompt, decisionMaxTokens)
	if err != nil {
		return Decision{}, fmt.Errorf("decision call: %w", err)
	}
	dec := ParseDecision(raw, posts)
	e.logger.Debug("model decision parsed",
		zap.String("action", string(dec.Action)),
		zap.String("target", dec.TargetPostID))
	return dec, nil
}

// ParseDecision recovers a tagged decision from the model's free-text
// reply. Anything that names no recognizable action is an observe.
// For comments, the first feed item whose id appears verbatim in the
// reply becomes the target; no match leaves the target empty.
func ParseDecision(raw string, posts []hive.Post) Decision {
	dec := Decision{Action: ActionObserve, Reasoning: raw}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "action: post") || strings.Contains(lower, `"action": "post"`):
		dec.Action = ActionPost
	case strings.Contains(lower, "action: comment") || strings.Contains(lower, `"action": "comment"`):
		dec.Action = ActionComment
		for _, p := range posts {
			if p.ID != "" && strings.Contains(raw, p.ID) {
				dec.TargetPostID = p.ID
				break
			}
		}
	}
	return dec
}
