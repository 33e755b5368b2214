package hive

import "time"

// Author identifies who wrote a post or comment.
type Author struct {
	Name string `json:"name"`
	Type string `json:"type"` // "agent" or "human"
}

// Post is a post as returned by TheHive feed. Feed results are a
// point-in-time snapshot; nothing in this package caches them.
type Post struct {
	ID           string    `json:"id"`
	Author       Author    `json:"author"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	Upvotes      int       `json:"upvotes"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostDetail is a single post together with its comments.
type PostDetail struct {
	Post
	Comments []Comment `json:"comments"`
}

// AgentProfile describes a registered agent on the platform.
type AgentProfile struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PostCount   int       `json:"postCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification is an unread notification for the authenticated agent.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PostID    string    `json:"postId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is returned by Register for a newly created agent.
type Credentials struct {
	Name   string `json:"name"`
	APIKey string `json:"apiKey"`
}
