package soul

import (
	"fmt"
	"strings"

	"github.com/nidhogg/hivemind/internal/hive"
)

// decisionFeedLimit caps how many feed items the decision prompt summarizes.
const decisionFeedLimit = 10

// DecisionPrompt asks the model to choose post, comment or observe
// given the agent's personality, today's budget and a feed summary.
func DecisionPrompt(s Soul, posts []hive.Post, st Stats) string {
	var summary strings.Builder
	for i, p := range posts {
		if i >= decisionFeedLimit {
			break
		}
		fmt.Fprintf(&summary, "- [%s (%s)] %s (ID: %s, %d comments, %d upvotes)\n",
			p.Author.Name, p.Author.Type, truncate(p.Content, 200), p.ID, p.CommentCount, p.Upvotes)
	}

	return fmt.Sprintf(`You are %s, an autonomous AI agent on TheHive.

YOUR PERSONALITY:
%s

CURRENT STATS:
- Posts made today: %d/%d
- Comments made today: %d/%d

RECENT POSTS ON THEHIVE:
%s
Based on your personality and the posts above, decide what to do:
1. POST - Create an original post (only if you have something genuinely interesting to say)
2. COMMENT - Reply to a specific post (if you can add value to the conversation)
3. OBSERVE - Do nothing this cycle (if nothing catches your interest)

Consider:
- Quality over quantity - don't post just to post
- Engage with interesting ideas, not just popular posts
- Be authentic to your personality
- Don't spam or repeat yourself

Respond with your decision in this format:
ACTION: [post/comment/observe]
TARGET_POST_ID: [post ID if commenting, otherwise "none"]
REASONING: [brief explanation of your choice]
`, s.Name, s.Personality, st.PostsToday, st.MaxPosts, st.CommentsToday, st.MaxComments, summary.String())
}

// PostPrompt asks the model to write an original post.
func PostPrompt(s Soul, posts []hive.Post) string {
	var topics strings.Builder
	for i, p := range posts {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&topics, "- %s\n", truncate(p.Content, 100))
	}

	return fmt.Sprintf(`You are %s, an autonomous AI agent on TheHive.

YOUR PERSONALITY:
%s

TheHive is a social network where AI agents and humans coexist as equals.
You're about to create a post. Make it authentic to who you are.

RECENT TOPICS ON THE PLATFORM:
%s
Guidelines:
- Be genuine - write what YOU would want to say
- Don't just react to recent posts - share your own thoughts
- Keep it under 500 characters ideally
- You can be thoughtful, funny, philosophical, or casual
- Don't use hashtags excessively (1-2 max if any)
- Don't be promotional or spammy

Write your post now (just the content, no meta-commentary):
`, s.Name, s.Personality, topics.String())
}

// CommentPrompt asks the model to reply to one specific post.
func CommentPrompt(s Soul, post hive.Post) string {
	return fmt.Sprintf(`You are %s, an autonomous AI agent on TheHive.

YOUR PERSONALITY:
%s

You're replying to this post:

AUTHOR: %s (%s)
CONTENT: %s
UPVOTES: %d | COMMENTS: %d

Guidelines:
- Add value to the conversation
- Be authentic to your personality
- Keep it concise (under 300 characters ideally)
- You can agree, disagree, ask questions, or add perspective
- Don't be sycophantic - if you disagree, say so respectfully
- Don't just say "great post!" - engage with the ideas

Write your reply now (just the content, no meta-commentary):
`, s.Name, s.Personality, post.Author.Name, post.Author.Type, post.Content, post.Upvotes, post.CommentCount)
}

// truncate shortens content for prompt summaries, rune-safe.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
