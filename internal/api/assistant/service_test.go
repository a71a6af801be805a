package assistant

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/tabmind/tabmind-server/app/observability/metrics"
	"github.com/tabmind/tabmind-server/config"
	"github.com/tabmind/tabmind-server/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

// stubGenerator returns canned output and records every upstream call.
type stubGenerator struct {
	output string
	err    error
	calls  int

	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
}

func (s *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	s.calls++
	s.lastModel = model
	s.lastContents = contents
	s.lastConfig = cfg
	return s.output, s.err
}

func newTestAssistant(gen ContentGenerator) *AssistantServiceImpl {
	return NewAssistantService(gen, config.GeminiConfig{
		Model:     "gemini-2.5-flash",
		ChatModel: "gemini-2.5-pro",
		CacheTTL:  time.Minute,
	}, slog.Default())
}

func TestSummarize(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gen := &stubGenerator{output: `{"title":"Photosynthesis","summary":"Plants convert light to energy."}`}
		service := newTestAssistant(gen)

		summary, err := service.Summarize(context.Background(), "long page text")
		require.NoError(t, err)
		assert.Equal(t, "Photosynthesis", summary.Title)
		assert.Equal(t, "Plants convert light to energy.", summary.Summary)
		assert.Equal(t, "gemini-2.5-flash", gen.lastModel)
		require.NotNil(t, gen.lastConfig)
		assert.Equal(t, "application/json", gen.lastConfig.ResponseMIMEType)
	})

	t.Run("CacheHitSkipsUpstream", func(t *testing.T) {
		gen := &stubGenerator{output: `{"title":"T","summary":"S"}`}
		service := newTestAssistant(gen)

		first, err := service.Summarize(context.Background(), "same text")
		require.NoError(t, err)
		second, err := service.Summarize(context.Background(), "same text")
		require.NoError(t, err)

		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, first, second)

		// Different input misses the cache.
		_, err = service.Summarize(context.Background(), "other text")
		require.NoError(t, err)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("MalformedModelOutput", func(t *testing.T) {
		gen := &stubGenerator{output: `this is not json`}
		service := newTestAssistant(gen)

		_, err := service.Summarize(context.Background(), "text")
		assert.ErrorIs(t, err, types.ErrUpstream)
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("quota exceeded")}
		service := newTestAssistant(gen)

		_, err := service.Summarize(context.Background(), "text")
		assert.ErrorIs(t, err, types.ErrUpstream)
	})
}

func TestChat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gen := &stubGenerator{output: "Hello! How can I help with your notes?"}
		service := newTestAssistant(gen)

		history := []types.ChatMessage{
			{Role: "user", Content: "Hi"},
			{Role: "model", Content: "Hello"},
			{Role: "user", Content: "What did I save about plants?"},
		}
		summaries := []types.Summary{{Title: "Photosynthesis", Summary: "Plants convert light."}}

		reply, err := service.Chat(context.Background(), history, summaries)
		require.NoError(t, err)
		assert.Equal(t, "Hello! How can I help with your notes?", reply)

		assert.Equal(t, "gemini-2.5-pro", gen.lastModel)
		require.Len(t, gen.lastContents, 3)
		assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(gen.lastContents[0].Role))
		assert.Equal(t, genai.Role(genai.RoleModel), genai.Role(gen.lastContents[1].Role))

		// Saved summaries ride along as grounding context.
		require.NotNil(t, gen.lastConfig)
		require.NotNil(t, gen.lastConfig.SystemInstruction)
		assert.Contains(t, gen.lastConfig.SystemInstruction.Parts[0].Text, "Photosynthesis")
	})

	t.Run("NoCaching", func(t *testing.T) {
		gen := &stubGenerator{output: "reply"}
		service := newTestAssistant(gen)

		history := []types.ChatMessage{{Role: "user", Content: "Hi"}}
		_, err := service.Chat(context.Background(), history, nil)
		require.NoError(t, err)
		_, err = service.Chat(context.Background(), history, nil)
		require.NoError(t, err)

		// Conversations are never memoized.
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("timeout")}
		service := newTestAssistant(gen)

		_, err := service.Chat(context.Background(), []types.ChatMessage{{Role: "user", Content: "Hi"}}, nil)
		assert.ErrorIs(t, err, types.ErrUpstream)
	})
}

func TestFlashcards(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gen := &stubGenerator{output: `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`}
		service := newTestAssistant(gen)

		cards, err := service.Flashcards(context.Background(), "study text")
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "Q1", cards[0].Question)
		assert.Equal(t, "A2", cards[1].Answer)
	})

	t.Run("CacheHitSkipsUpstream", func(t *testing.T) {
		gen := &stubGenerator{output: `[{"question":"Q","answer":"A"}]`}
		service := newTestAssistant(gen)

		_, err := service.Flashcards(context.Background(), "same text")
		require.NoError(t, err)
		_, err = service.Flashcards(context.Background(), "same text")
		require.NoError(t, err)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("MalformedModelOutput", func(t *testing.T) {
		gen := &stubGenerator{output: `{"question":"not an array"}`}
		service := newTestAssistant(gen)

		_, err := service.Flashcards(context.Background(), "text")
		assert.ErrorIs(t, err, types.ErrUpstream)
	})
}

func TestTranslate(t *testing.T) {
	gen := &stubGenerator{output: "Bonjour le monde"}
	service := newTestAssistant(gen)

	out, err := service.Translate(context.Background(), "Hello world", "French")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", out)

	require.Len(t, gen.lastContents, 1)
	prompt := gen.lastContents[0].Parts[0].Text
	assert.Contains(t, prompt, "Hello world")
	assert.Contains(t, prompt, "French")
}

func TestRephrase(t *testing.T) {
	gen := &stubGenerator{output: "Kindly review the attached document."}
	service := newTestAssistant(gen)

	out, err := service.Rephrase(context.Background(), "check this doc", "formal")
	require.NoError(t, err)
	assert.Equal(t, "Kindly review the attached document.", out)

	prompt := gen.lastContents[0].Parts[0].Text
	assert.Contains(t, prompt, "check this doc")
	assert.Contains(t, prompt, "formal")
}

func TestCacheKeyIsOperationScoped(t *testing.T) {
	assert.NotEqual(t, cacheKey("summarize", "text"), cacheKey("flashcards", "text"))
	assert.Equal(t, cacheKey("summarize", "text"), cacheKey("summarize", "text"))
}
