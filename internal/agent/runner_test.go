package agent

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nidhogg/hivemind/internal/hive"
	"github.com/nidhogg/hivemind/internal/soul"
	"go.uber.org/zap"
)

// fakeLLM satisfies provider.Provider with a scripted response function.
type fakeLLM struct {
	mu      sync.Mutex
	fn      func(prompt string) (string, error)
	prompts []string
}

func (f *fakeLLM) ID() string                          { return "fake" }
func (f *fakeLLM) Name() string                        { return "fake" }
func (f *fakeLLM) HealthCheck(_ context.Context) error { return nil }

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ int) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.fn(prompt)
}

// callCount returns how many recorded prompts contain the marker.
func (f *fakeLLM) callCount(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

// fakeFeed satisfies Feed with canned posts and recorded submissions.
type fakeFeed struct {
	posts      []hive.Post
	feedErr    error
	postErr    error
	commentErr error

	createdPosts    []string
	createdComments []struct{ postID, content string }
}

func (f *fakeFeed) GetFeed(_ context.Context, _, _ int, _ string) ([]hive.Post, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	return f.posts, nil
}

func (f *fakeFeed) CreatePost(_ context.Context, content string) (*hive.Post, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.createdPosts = append(f.createdPosts, content)
	return &hive.Post{ID: "created-post", Content: content}, nil
}

func (f *fakeFeed) CreateComment(_ context.Context, postID, content string) (*hive.Comment, error) {
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	f.createdComments = append(f.createdComments, struct{ postID, content string }{postID, content})
	return &hive.Comment{ID: "created-comment", PostID: postID, Content: content}, nil
}

func testSoul() soul.Soul {
	return soul.Soul{Name: "TestBot", Personality: "terse and factual"}
}

// newTestRunner wires a runner around fakes with a fixed random seed.
func newTestRunner(feed *fakeFeed, llm *fakeLLM, maxPosts, maxComments int, postProb, commentProb float64) (*Runner, *Budget) {
	logger := zap.NewNop()
	budget := NewBudget(maxPosts, maxComments, time.Now())
	engine := NewEngine(llm, testSoul(), logger)
	gen := NewGenerator(llm, testSoul())
	runner := NewRunner(feed, engine, gen, budget, Options{
		Interval:           time.Minute,
		PostProbability:    postProb,
		CommentProbability: commentProb,
		FeedLimit:          20,
		FeedSort:           "new",
	}, rand.New(rand.NewSource(1)), logger)
	return runner, budget
}

func alwaysDecide(action string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		if strings.Contains(prompt, "decide what to do") {
			return "ACTION: " + action, nil
		}
		return "generated text", nil
	}
}

func TestHeartbeatFeedFailure(t *testing.T) {
	feed := &fakeFeed{feedErr: errors.New("connection refused")}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	before := budget.Snapshot()
	runner.Heartbeat(context.Background())
	after := budget.Snapshot()

	if len(llm.prompts) != 0 {
		t.Errorf("got %d model calls after feed failure, want 0", len(llm.prompts))
	}
	if len(feed.createdPosts) != 0 || len(feed.createdComments) != 0 {
		t.Error("unexpected submission after feed failure")
	}
	if before != after {
		t.Errorf("budget changed on failed cycle: %+v -> %+v", before, after)
	}
}

func TestHeartbeatEmptyFeed(t *testing.T) {
	feed := &fakeFeed{}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	runner.Heartbeat(context.Background())

	if len(llm.prompts) != 0 {
		t.Errorf("got %d model calls on empty feed, want 0", len(llm.prompts))
	}
	if got := budget.Snapshot().PostsToday; got != 0 {
		t.Errorf("got %d posts, want 0", got)
	}
}

func TestPostProbabilityZeroNeverPosts(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture()}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, _ := newTestRunner(feed, llm, 10, 20, 0.0, 0.0)

	for i := 0; i < 50; i++ {
		runner.Heartbeat(context.Background())
	}
	if len(feed.createdPosts) != 0 {
		t.Errorf("got %d posts with probability 0, want 0", len(feed.createdPosts))
	}
	// Gate fires before generation: only decision calls should exist.
	if n := llm.callCount("Write your post now"); n != 0 {
		t.Errorf("got %d generation calls with probability 0, want 0", n)
	}
}

func TestPostProbabilityOneUntilCap(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture()}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, budget := newTestRunner(feed, llm, 3, 20, 1.0, 1.0)

	for i := 0; i < 7; i++ {
		runner.Heartbeat(context.Background())
	}
	if len(feed.createdPosts) != 3 {
		t.Errorf("got %d posts, want 3 (the cap)", len(feed.createdPosts))
	}
	if got := budget.Snapshot().PostsToday; got != 3 {
		t.Errorf("got posts_today %d, want 3", got)
	}
	// Once the cap is hit, no further generation calls are wasted.
	if n := llm.callCount("Write your post now"); n != 3 {
		t.Errorf("got %d generation calls, want 3", n)
	}
}

func TestCommentEndToEnd(t *testing.T) {
	posts := feedFixture()
	feed := &fakeFeed{posts: posts}
	llm := &fakeLLM{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "decide what to do") {
			return "ACTION: comment\nTARGET_POST_ID: post-bbb\nREASONING: relevant", nil
		}
		return "a thoughtful reply", nil
	}}
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	runner.Heartbeat(context.Background())

	if n := llm.callCount("Write your reply now"); n != 1 {
		t.Fatalf("got %d comment generations, want 1", n)
	}
	if n := llm.callCount(posts[1].Content); n == 0 {
		t.Error("comment prompt does not embed the target post content")
	}
	if len(feed.createdComments) != 1 {
		t.Fatalf("got %d comment submissions, want 1", len(feed.createdComments))
	}
	if got := feed.createdComments[0]; got.postID != "post-bbb" || got.content != "a thoughtful reply" {
		t.Errorf("got submission %+v, want post-bbb/a thoughtful reply", got)
	}
	if got := budget.Snapshot().CommentsToday; got != 1 {
		t.Errorf("got comments_today %d, want 1", got)
	}
}

func TestCommentWithoutTargetIsNoOp(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture()}
	llm := &fakeLLM{fn: alwaysDecide("comment")} // names no post id
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	runner.Heartbeat(context.Background())

	if len(feed.createdComments) != 0 {
		t.Errorf("got %d submissions for target-less comment, want 0", len(feed.createdComments))
	}
	if n := llm.callCount("Write your reply now"); n != 0 {
		t.Errorf("got %d generation calls, want 0", n)
	}
	if got := budget.Snapshot().CommentsToday; got != 0 {
		t.Errorf("got comments_today %d, want 0", got)
	}
}

func TestDecisionFailureAbortsCycle(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture()}
	llm := &fakeLLM{fn: func(string) (string, error) {
		return "", errors.New("rate limited")
	}}
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	runner.Heartbeat(context.Background())

	if len(feed.createdPosts) != 0 || len(feed.createdComments) != 0 {
		t.Error("unexpected submission after decision failure")
	}
	snap := budget.Snapshot()
	if snap.PostsToday != 0 || snap.CommentsToday != 0 {
		t.Errorf("budget changed on failed cycle: %+v", snap)
	}
}

func TestSubmitFailureLeavesBudgetUnchanged(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture(), postErr: &hive.APIError{StatusCode: 503, Body: "down"}}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, budget := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	runner.Heartbeat(context.Background())

	if got := budget.Snapshot().PostsToday; got != 0 {
		t.Errorf("got posts_today %d after failed submission, want 0", got)
	}
}

func TestRecorderReceivesConfirmedActions(t *testing.T) {
	feed := &fakeFeed{posts: feedFixture()}
	llm := &fakeLLM{fn: alwaysDecide("post")}
	runner, _ := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	var recs []ActionRecord
	runner.SetRecorder(func(_ context.Context, rec ActionRecord) {
		recs = append(recs, rec)
	})

	runner.Heartbeat(context.Background())

	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Kind != "post" || recs[0].RemoteID != "created-post" {
		t.Errorf("got record %+v, want kind=post remote=created-post", recs[0])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	feed := &fakeFeed{}
	llm := &fakeLLM{fn: alwaysDecide("observe")}
	runner, _ := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	// Let at least one cycle start, then cancel during the sleep.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop promptly after cancel")
	}

	if got := runner.Status().Cycles; got == 0 {
		t.Error("expected at least one cycle before cancel")
	}
}

func TestWakeTriggersImmediateCycle(t *testing.T) {
	feed := &fakeFeed{}
	llm := &fakeLLM{fn: alwaysDecide("observe")}
	runner, _ := newTestRunner(feed, llm, 10, 20, 1.0, 1.0)
	runner.opts.Interval = time.Hour // sleep would outlive the test

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for runner.Status().Cycles < 1 {
		select {
		case <-deadline:
			t.Fatal("first cycle never ran")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	runner.Wake()
	deadline = time.After(2 * time.Second)
	for runner.Status().Cycles < 2 {
		select {
		case <-deadline:
			t.Fatal("wake did not trigger a second cycle")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	<-done
}
