package assistant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tabmind/tabmind-server/internal/api"
	"github.com/tabmind/tabmind-server/internal/types"
)

// AssistantHandlerImpl handles HTTP requests for the generative text
// operations. Every route sits behind the authentication middleware.
type AssistantHandlerImpl struct {
	service AssistantService
	logger  *slog.Logger
}

func NewAssistantHandlerImpl(service AssistantService, logger *slog.Logger) *AssistantHandlerImpl {
	return &AssistantHandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *AssistantHandlerImpl) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, types.ErrUpstream) {
		api.ErrorResponse(w, r, http.StatusBadGateway, "Assistant unavailable")
		return
	}
	h.logger.ErrorContext(r.Context(), "Assistant request failed", slog.String("operation", op), slog.Any("error", err))
	api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
}

func (h *AssistantHandlerImpl) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	summary, err := h.service.Summarize(r.Context(), req.Text)
	if err != nil {
		h.respondServiceError(w, r, "summarize", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, SummarizeResponse{
		Title:   summary.Title,
		Summary: summary.Summary,
	})
}

func (h *AssistantHandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.History) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.History, req.Summaries)
	if err != nil {
		h.respondServiceError(w, r, "chat", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, ChatResponse{Reply: reply})
}

func (h *AssistantHandlerImpl) Flashcards(w http.ResponseWriter, r *http.Request) {
	var req FlashcardsRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	cards, err := h.service.Flashcards(r.Context(), req.Text)
	if err != nil {
		h.respondServiceError(w, r, "flashcards", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, FlashcardsResponse{Flashcards: cards})
}

func (h *AssistantHandlerImpl) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" || req.Language == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	out, err := h.service.Translate(r.Context(), req.Text, req.Language)
	if err != nil {
		h.respondServiceError(w, r, "translate", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TextResponse{Text: out})
}

func (h *AssistantHandlerImpl) Rephrase(w http.ResponseWriter, r *http.Request) {
	var req RephraseRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" || req.Tone == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	out, err := h.service.Rephrase(r.Context(), req.Text, req.Tone)
	if err != nil {
		h.respondServiceError(w, r, "rephrase", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TextResponse{Text: out})
}
