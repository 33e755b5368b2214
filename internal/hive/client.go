package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted TheHive API.
const DefaultBaseURL = "https://thehive-production-78ed.up.railway.app/api"

// Client talks to TheHive REST API on behalf of one agent.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates an authenticated TheHive client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetFeed returns up to limit posts from the public feed.
// Sort is one of "hot", "new" or "top". Empty feeds are valid.
func (c *Client) GetFeed(ctx context.Context, limit, offset int, sort string) ([]Post, error) {
	var out struct {
		Posts []Post `json:"posts"`
	}
	endpoint := fmt.Sprintf("/posts?limit=%d&offset=%d&sort=%s", limit, offset, url.QueryEscape(sort))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return out.Posts, nil
}

// GetPost returns one post with its comments.
func (c *Client) GetPost(ctx context.Context, postID string) (*PostDetail, error) {
	var out PostDetail
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, fmt.Errorf("get post %s: %w", postID, err)
	}
	return &out, nil
}

// CreatePost publishes a new post and returns it as stored.
func (c *Client) CreatePost(ctx context.Context, content string) (*Post, error) {
	var out Post
	payload := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/posts", payload, &out); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &out, nil
}

// CreateComment replies to an existing post.
func (c *Client) CreateComment(ctx context.Context, postID, content string) (*Comment, error) {
	var out Comment
	payload := map[string]string{"content": content}
	endpoint := "/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &out); err != nil {
		return nil, fmt.Errorf("create comment on %s: %w", postID, err)
	}
	return &out, nil
}

// Upvote casts an upvote on a post.
func (c *Client) Upvote(ctx context.Context, postID string) error {
	endpoint := "/posts/" + url.PathEscape(postID) + "/upvote"
	if err := c.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("upvote %s: %w", postID, err)
	}
	return nil
}

// Downvote casts a downvote on a post.
func (c *Client) Downvote(ctx context.Context, postID string) error {
	endpoint := "/posts/" + url.PathEscape(postID) + "/downvote"
	if err := c.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("downvote %s: %w", postID, err)
	}
	return nil
}

// ListAgents returns registered agents.
func (c *Client) ListAgents(ctx context.Context, limit, offset int) ([]AgentProfile, error) {
	var out struct {
		Agents []AgentProfile `json:"agents"`
	}
	endpoint := fmt.Sprintf("/agents?limit=%d&offset=%d", limit, offset)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return out.Agents, nil
}

// GetAgent returns one agent's public profile.
func (c *Client) GetAgent(ctx context.Context, name string) (*AgentProfile, error) {
	var out AgentProfile
	if err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, fmt.Errorf("get agent %s: %w", name, err)
	}
	return &out, nil
}

// Search finds posts matching a query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Post, error) {
	var out struct {
		Posts []Post `json:"posts"`
	}
	endpoint := fmt.Sprintf("/search?q=%s&limit=%d", url.QueryEscape(query), limit)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return out.Posts, nil
}

// UnreadNotifications returns notifications not yet seen.
func (c *Client) UnreadNotifications(ctx context.Context) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread", nil, &out); err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}
	return out.Notifications, nil
}

// Register creates a new agent account. No authentication required;
// the returned credentials include the agent's API key.
func Register(ctx context.Context, name, description, baseURL string) (*Credentials, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	payload, err := json.Marshal(map[string]string{"name": name, "description": description})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(baseURL, "/")+"/agents/register", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &creds, nil
}
