package assistant

import (
	"fmt"
	"strings"

	"github.com/tabmind/tabmind-server/internal/types"
)

func summarizePrompt(text string) string {
	return fmt.Sprintf("Summarize the following content from a web page. Also, provide a short, concise title (5 words or less) for it. Return the response as a JSON object with two keys: \"title\" and \"summary\".\n\nCONTENT:\n%s", text)
}

func flashcardsPrompt(text string) string {
	return fmt.Sprintf("Based on the following text, generate a set of 3 to 5 flashcards. Each flashcard should have a clear question and a concise answer. The questions should test the key concepts from the text. Format the output as a JSON array of objects, where each object has \"question\" and \"answer\" keys.\n\nTEXT:\n%s", text)
}

func translatePrompt(text, language string) string {
	return fmt.Sprintf("Translate the following text into %s:\n\n%s", language, text)
}

func rephrasePrompt(text, tone string) string {
	return fmt.Sprintf("Rephrase the following text to have a more %s tone:\n\n%s", tone, text)
}

// chatSystemInstruction assembles the grounding context from the client-held
// summaries.
func chatSystemInstruction(summaries []types.Summary) string {
	var b strings.Builder
	b.WriteString("You are TabMind, an AI assistant. Answer the user's question based on the provided CONTEXT (a list of web page summaries) and the conversation HISTORY. If the answer is not in the context, say so.\n\n--- CONTEXT ---\n")
	if len(summaries) > 0 {
		parts := make([]string, 0, len(summaries))
		for _, s := range summaries {
			parts = append(parts, fmt.Sprintf("Title: %s\nSummary: %s", s.Title, s.Summary))
		}
		b.WriteString(strings.Join(parts, "\n\n"))
	} else {
		b.WriteString("No summaries available.")
	}
	b.WriteString("\n--- END CONTEXT ---")
	return b.String()
}
