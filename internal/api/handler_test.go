package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nidhogg/hivemind/internal/agent"
	"github.com/nidhogg/hivemind/internal/hive"
	"github.com/nidhogg/hivemind/internal/soul"
	"go.uber.org/zap"
)

type stubFeed struct{}

func (stubFeed) GetFeed(_ context.Context, _, _ int, _ string) ([]hive.Post, error) {
	return nil, nil
}
func (stubFeed) CreatePost(_ context.Context, _ string) (*hive.Post, error) {
	return &hive.Post{ID: "p"}, nil
}
func (stubFeed) CreateComment(_ context.Context, postID, _ string) (*hive.Comment, error) {
	return &hive.Comment{ID: "c", PostID: postID}, nil
}

type stubLLM struct{}

func (stubLLM) ID() string                          { return "stub" }
func (stubLLM) Name() string                        { return "stub" }
func (stubLLM) HealthCheck(_ context.Context) error { return nil }
func (stubLLM) Generate(_ context.Context, _ string, _ int) (string, error) {
	return "ACTION: observe", nil
}

func newTestServer(t *testing.T) (*agent.Runner, *httptest.Server) {
	t.Helper()
	logger := zap.NewNop()
	identity := soul.Soul{Name: "TestBot", Personality: "quiet"}
	budget := agent.NewBudget(10, 20, time.Now())
	engine := agent.NewEngine(stubLLM{}, identity, logger)
	gen := agent.NewGenerator(stubLLM{}, identity)
	runner := agent.NewRunner(stubFeed{}, engine, gen, budget, agent.Options{
		Interval: time.Hour,
		FeedSort: "new",
	}, nil, logger)

	h := NewHandler(runner, nil, logger)
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return runner, ts
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("got %q, want ok", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	runner, ts := newTestServer(t)
	runner.Heartbeat(context.Background())

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	var body struct {
		Agent  string `json:"agent"`
		Cycles uint64 `json:"cycles"`
		Budget struct {
			MaxPosts int `json:"max_posts_per_day"`
		} `json:"budget"`
	}
	decodeJSON(t, resp, &body)

	if body.Agent != "TestBot" {
		t.Errorf("got agent %q, want TestBot", body.Agent)
	}
	if body.Cycles != 1 {
		t.Errorf("got %d cycles, want 1", body.Cycles)
	}
	if body.Budget.MaxPosts != 10 {
		t.Errorf("got max posts %d, want 10", body.Budget.MaxPosts)
	}
}

func TestHeartbeatEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/heartbeat", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/heartbeat: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("got status %d, want 202", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJournalDisabled(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/journal")
	if err != nil {
		t.Fatalf("GET /api/journal: %v", err)
	}
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("got status %d, want 501", resp.StatusCode)
	}
	resp.Body.Close()
}
