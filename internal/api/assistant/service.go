package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	appmetrics "github.com/tabmind/tabmind-server/app/observability/metrics"
	"github.com/tabmind/tabmind-server/config"
	"github.com/tabmind/tabmind-server/internal/types"
)

var _ AssistantService = (*AssistantServiceImpl)(nil)

// AssistantService exposes the five text operations backed by the generative
// model. All remote failures surface as types.ErrUpstream; there is no retry.
type AssistantService interface {
	Summarize(ctx context.Context, text string) (*types.Summary, error)
	Chat(ctx context.Context, history []types.ChatMessage, summaries []types.Summary) (string, error)
	Flashcards(ctx context.Context, text string) ([]types.Flashcard, error)
	Translate(ctx context.Context, text, language string) (string, error)
	Rephrase(ctx context.Context, text, tone string) (string, error)
}

// ContentGenerator is the thin seam over the genai client so tests can stub
// the upstream call.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)
}

// GeminiClient wraps the genai SDK client.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

type AssistantServiceImpl struct {
	gen    ContentGenerator
	cfg    config.GeminiConfig
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewAssistantService(gen ContentGenerator, cfg config.GeminiConfig, logger *slog.Logger) *AssistantServiceImpl {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AssistantServiceImpl{
		gen:    gen,
		cfg:    cfg,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// cacheKey derives a stable key from the operation and its input text;
// identical pasted text is common and the upstream call is expensive.
func cacheKey(op, text string) string {
	sum := sha256.Sum256([]byte(op + "\x00" + text))
	return op + ":" + hex.EncodeToString(sum[:])
}

func (s *AssistantServiceImpl) generate(ctx context.Context, op, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	m := appmetrics.Get()
	m.AssistantRequestsTotal.Add(ctx, 1)

	start := time.Now()
	out, err := s.gen.GenerateContent(ctx, model, contents, cfg)
	m.AssistantDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "Generative call failed",
			slog.String("operation", op),
			slog.String("model", model),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%s: %w", op, types.ErrUpstream)
	}
	return out, nil
}

func (s *AssistantServiceImpl) Summarize(ctx context.Context, text string) (*types.Summary, error) {
	key := cacheKey("summarize", text)
	if cached, ok := s.cache.Get(key); ok {
		summary := cached.(types.Summary)
		return &summary, nil
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":   {Type: genai.TypeString},
				"summary": {Type: genai.TypeString},
			},
			Required: []string{"title", "summary"},
		},
	}

	out, err := s.generate(ctx, "summarize", s.cfg.Model, genai.Text(summarizePrompt(text)), cfg)
	if err != nil {
		return nil, err
	}

	var summary types.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		s.logger.ErrorContext(ctx, "Model returned malformed summary JSON", slog.Any("error", err))
		return nil, fmt.Errorf("summarize: %w", types.ErrUpstream)
	}

	s.cache.SetDefault(key, summary)
	return &summary, nil
}

func (s *AssistantServiceImpl) Chat(ctx context.Context, history []types.ChatMessage, summaries []types.Summary) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemInstruction(summaries), genai.RoleUser),
	}

	return s.generate(ctx, "chat", s.cfg.ChatModel, contents, cfg)
}

func (s *AssistantServiceImpl) Flashcards(ctx context.Context, text string) ([]types.Flashcard, error) {
	key := cacheKey("flashcards", text)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]types.Flashcard), nil
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"answer":   {Type: genai.TypeString},
				},
				Required: []string{"question", "answer"},
			},
		},
	}

	out, err := s.generate(ctx, "flashcards", s.cfg.Model, genai.Text(flashcardsPrompt(text)), cfg)
	if err != nil {
		return nil, err
	}

	var cards []types.Flashcard
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		s.logger.ErrorContext(ctx, "Model returned malformed flashcard JSON", slog.Any("error", err))
		return nil, fmt.Errorf("flashcards: %w", types.ErrUpstream)
	}

	s.cache.SetDefault(key, cards)
	return cards, nil
}

func (s *AssistantServiceImpl) Translate(ctx context.Context, text, language string) (string, error) {
	return s.generate(ctx, "translate", s.cfg.Model, genai.Text(translatePrompt(text, language)), nil)
}

func (s *AssistantServiceImpl) Rephrase(ctx context.Context, text, tone string) (string, error) {
	return s.generate(ctx, "rephrase", s.cfg.Model, genai.Text(rephrasePrompt(text, tone)), nil)
}
