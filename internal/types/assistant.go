package types

// Summary is a stored page summary as the client keeps it; the server only
// ever sees summaries when they are sent back as chat context.
type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatMessage is a single turn of the assistant conversation.
// Role is "user" or "model".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
