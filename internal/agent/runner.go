package agent

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nidhogg/hivemind/internal/hive"
	"go.uber.org/zap"
)

// Feed is the slice of TheHive API the heartbeat loop needs.
// *hive.Client satisfies it.
type Feed interface {
	GetFeed(ctx context.Context, limit, offset int, sort string) ([]hive.Post, error)
	CreatePost(ctx context.Context, content string) (*hive.Post, error)
	CreateComment(ctx context.Context, postID, content string) (*hive.Comment, error)
}

// ActionRecord describes one confirmed submission, for the journal.
type ActionRecord struct {
	CycleID      string
	Kind         string // "post" or "comment"
	TargetPostID string
	RemoteID     string
	Content      string
}

// RecordFunc receives confirmed submissions. It must not fail the
// cycle; errors are the recorder's own problem.
type RecordFunc func(ctx context.Context, rec ActionRecord)

// Options tune the heartbeat loop.
type Options struct {
	Interval           time.Duration
	PostProbability    float64
	CommentProbability float64
	FeedLimit          int
	FeedSort           string
}

// Status is a point-in-time view of the runner for the ops surface.
type Status struct {
	Agent         string    `json:"agent"`
	Provider      string    `json:"provider"`
	Cycles        uint64    `json:"cycles"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Budget        Snapshot  `json:"budget"`
}

// Runner owns the heartbeat loop: fetch feed, decide, maybe generate,
// maybe submit, sleep. Exactly one heartbeat runs at a time; the sleep
// is measured from the end of the previous cycle, so slow external
// calls stretch the effective period instead of overlapping cycles.
type Runner struct {
	feed     Feed
	engine   *Engine
	gen      *Generator
	budget   *Budget
	opts     Options
	rng      *rand.Rand
	recordFn RecordFunc
	wake     chan struct{}
	logger   *zap.Logger

	mu       sync.Mutex
	cycles   uint64
	lastBeat time.Time
}

// NewRunner wires the heartbeat loop. A nil rng gets a time-seeded
// source; tests pass a fixed seed for determinism.
func NewRunner(feed Feed, engine *Engine, gen *Generator, budget *Budget, opts Options, rng *rand.Rand, logger *zap.Logger) *Runner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Runner{
		feed:   feed,
		engine: engine,
		gen:    gen,
		budget: budget,
		opts:   opts,
		rng:    rng,
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// SetRecorder installs an optional journal callback for confirmed actions.
func (r *Runner) SetRecorder(fn RecordFunc) { r.recordFn = fn }

// Run executes heartbeats until ctx is canceled. Cancellation is
// honored during the sleep, never mid-cycle, so the budget is never
// observed half-updated.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("agent runner started",
		zap.String("agent", r.engine.Soul().Name),
		zap.Duration("interval", r.opts.Interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("agent runner stopped")
			return
		default:
		}

		r.Heartbeat(context.Background())

		timer := time.NewTimer(r.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("agent runner stopped")
			return
		case <-timer.C:
		case <-r.wake:
			timer.Stop()
			r.logger.Info("woken for immediate heartbeat")
		}
	}
}

// Wake requests an immediate heartbeat from the run loop without
// starting one concurrently. Safe to call from any goroutine.
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Status reports the runner's current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	cycles, last := r.cycles, r.lastBeat
	r.mu.Unlock()
	return Status{
		Agent:         r.engine.Soul().Name,
		Provider:      r.engine.Provider().Name(),
		Cycles:        cycles,
		LastHeartbeat: last,
		Budget:        r.budget.Snapshot(),
	}
}

// Heartbeat runs one full cycle. Every failure is terminal to the
// cycle only: log, leave the budget untouched, let the next tick start
// fresh. Nothing is retried and no generated content outlives the
// cycle that produced it.
func (r *Runner) Heartbeat(ctx context.Context) {
	cycleID := uuid.New().String()
	log := r.logger.With(zap.String("cycle", cycleID[:8]))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("heartbeat panic", zap.Any("panic", rec))
		}
	}()

	if r.budget.CheckAndReset(time.Now()) {
		log.Info("daily counters reset")
	}

	r.mu.Lock()
	r.cycles++
	r.lastBeat = time.Now()
	r.mu.Unlock()

	posts, err := r.feed.GetFeed(ctx, r.opts.FeedLimit, 0, r.opts.FeedSort)
	if err != nil {
		log.Warn("feed fetch failed",
			zap.Bool("transient", hive.IsTransient(err)),
			zap.Error(err))
		return
	}
	if len(posts) == 0 {
		log.Info("feed empty, observing")
		return
	}
	log.Debug("feed fetched", zap.Int("posts", len(posts)))

	dec, err := r.engine.Decide(ctx, posts, r.budget.Snapshot())
	if err != nil {
		log.Warn("decision failed", zap.Error(err))
		return
	}
	log.Info("decision made",
		zap.String("action", string(dec.Action)),
		zap.String("target", dec.TargetPostID))

	switch dec.Action {
	case ActionPost:
		r.executePost(ctx, log, cycleID, posts)
	case ActionComment:
		r.executeComment(ctx, log, cycleID, posts, dec)
	default:
		log.Info("observing")
	}
}

func (r *Runner) executePost(ctx context.Context, log *zap.Logger, cycleID string, posts []hive.Post) {
	if !r.budget.CanPost() {
		log.Info("post budget exhausted, observing")
		return
	}
	if r.rng.Float64() >= r.opts.PostProbability {
		log.Info("post intent gated off this cycle")
		return
	}

	content, err := r.gen.GeneratePost(ctx, posts)
	if err != nil {
		log.Warn("post generation failed", zap.Error(err))
		return
	}
	created, err := r.feed.CreatePost(ctx, content)
	if err != nil {
		log.Warn("post submission failed",
			zap.Bool("transient", hive.IsTransient(err)),
			zap.Error(err))
		return
	}
	r.budget.RecordPost()
	log.Info("posted",
		zap.String("post_id", created.ID),
		zap.String("preview", preview(content)))
	r.record(ctx, ActionRecord{CycleID: cycleID, Kind: "post", RemoteID: created.ID, Content: content})
}

func (r *Runner) executeComment(ctx context.Context, log *zap.Logger, cycleID string, posts []hive.Post, dec Decision) {
	if dec.TargetPostID == "" {
		log.Info("comment intent without resolvable target, skipping")
		return
	}
	target := findPost(posts, dec.TargetPostID)
	if target == nil {
		log.Info("comment target not in current snapshot, skipping",
			zap.String("target", dec.TargetPostID))
		return
	}
	if !r.budget.CanComment() {
		log.Info("comment budget exhausted, observing")
		return
	}
	if r.rng.Float64() >= r.opts.CommentProbability {
		log.Info("comment intent gated off this cycle")
		return
	}

	content, err := r.gen.GenerateComment(ctx, *target)
	if err != nil {
		log.Warn("comment generation failed", zap.Error(err))
		return
	}
	created, err := r.feed.CreateComment(ctx, target.ID, content)
	if err != nil {
		log.Warn("comment submission failed",
			zap.Bool("transient", hive.IsTransient(err)),
			zap.Error(err))
		return
	}
	r.budget.RecordComment()
	log.Info("commented",
		zap.String("post_id", target.ID),
		zap.String("comment_id", created.ID),
		zap.String("preview", preview(content)))
	r.record(ctx, ActionRecord{
		CycleID:      cycleID,
		Kind:         "comment",
		TargetPostID: target.ID,
		RemoteID:     created.ID,
		Content:      content,
	})
}

func (r *Runner) record(ctx context.Context, rec ActionRecord) {
	if r.recordFn != nil {
		r.recordFn(ctx, rec)
	}
}

func findPost(posts []hive.Post, id string) *hive.Post {
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i]
		}
	}
	return nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= 100 {
		return content
	}
	return string(runes[:100]) + "..."
}
