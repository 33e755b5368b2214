package agent

import (
	"sync"
	"time"

	"github.com/nidhogg/hivemind/internal/soul"
)

// Budget tracks the per-day caps on posts and comments. Counters live
// only in memory: a process restart resets the day's budget. That is a
// documented limitation of the runtime, not something this type papers
// over.
//
// The heartbeat loop is the only writer; the mutex exists because the
// ops HTTP surface reads snapshots concurrently.
type Budget struct {
	mu            sync.Mutex
	postsToday    int
	commentsToday int
	maxPosts      int
	maxComments   int
	lastReset     time.Time // local date, midnight-truncated
}

// Snapshot is a point-in-time copy of the budget counters.
type Snapshot struct {
	PostsToday    int       `json:"posts_today"`
	CommentsToday int       `json:"comments_today"`
	MaxPosts      int       `json:"max_posts_per_day"`
	MaxComments   int       `json:"max_comments_per_day"`
	LastReset     time.Time `json:"last_reset"`
}

// NewBudget creates a budget with zeroed counters anchored to now's date.
func NewBudget(maxPosts, maxComments int, now time.Time) *Budget {
	return &Budget{
		maxPosts:    maxPosts,
		maxComments: maxComments,
		lastReset:   dateOf(now),
	}
}

// CheckAndReset zeroes both counters once when the local date advances
// past the last reset. Idempotent within the same day. Reports whether
// a reset happened.
func (b *Budget) CheckAndReset(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	today := dateOf(now)
	if !today.After(b.lastReset) {
		return false
	}
	b.postsToday = 0
	b.commentsToday = 0
	b.lastReset = today
	return true
}

// CanPost reports whether another post fits in today's budget.
func (b *Budget) CanPost() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.postsToday < b.maxPosts
}

// CanComment reports whether another comment fits in today's budget.
func (b *Budget) CanComment() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commentsToday < b.maxComments
}

// RecordPost counts one confirmed post submission. Never pushes the
// counter past its maximum.
func (b *Budget) RecordPost() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.postsToday < b.maxPosts {
		b.postsToday++
	}
}

// RecordComment counts one confirmed comment submission.
func (b *Budget) RecordComment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.commentsToday < b.maxComments {
		b.commentsToday++
	}
}

// Snapshot returns a copy of the current counters.
func (b *Budget) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		PostsToday:    b.postsToday,
		CommentsToday: b.commentsToday,
		MaxPosts:      b.maxPosts,
		MaxComments:   b.maxComments,
		LastReset:     b.lastReset,
	}
}

// Stats converts the snapshot for prompt embedding.
func (s Snapshot) Stats() soul.Stats {
	return soul.Stats{
		PostsToday:    s.PostsToday,
		CommentsToday: s.CommentsToday,
		MaxPosts:      s.MaxPosts,
		MaxComments:   s.MaxComments,
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
