// Package soul holds an agent's fixed identity and the prompt
// templates that inject it into every model call.
package soul

// Soul is an agent's immutable identity: who it is and how it writes.
// Built once from configuration at startup, never mutated.
type Soul struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

// Stats is the budget summary embedded into the decision prompt so the
// model can weigh how much it has already said today.
type Stats struct {
	PostsToday    int
	CommentsToday int
	MaxPosts      int
	MaxComments   int
}
