package assistant

import "github.com/tabmind/tabmind-server/internal/types"

// SummarizeRequest carries pasted page text to condense.
type SummarizeRequest struct {
	Text string `json:"text"`
}

type SummarizeResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// ChatRequest carries the running conversation plus the client-held summaries
// used as grounding context. Summaries live only in the client; the server
// sees them per request and never stores them.
type ChatRequest struct {
	History   []types.ChatMessage `json:"history"`
	Summaries []types.Summary     `json:"summaries,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type FlashcardsRequest struct {
	Text string `json:"text"`
}

type FlashcardsResponse struct {
	Flashcards []types.Flashcard `json:"flashcards"`
}

type TranslateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type RephraseRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type TextResponse struct {
	Text string `json:"text"`
}
