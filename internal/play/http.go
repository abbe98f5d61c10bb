package play

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-session/internal/auth"
	"github.com/gokatarajesh/quiz-session/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-session/internal/logging"
	"github.com/gokatarajesh/quiz-session/internal/quiz"
	"github.com/gokatarajesh/quiz-session/internal/session"
	httperrors "github.com/gokatarajesh/quiz-session/pkg/http/errors"
	"github.com/gokatarajesh/quiz-session/pkg/http/ws"
)

// Handlers provides the REST and websocket endpoints for quiz sessions.
type Handlers struct {
	service *Service
	tokens  *jwt.Manager
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewHandlers creates HTTP handlers for session endpoints.
func NewHandlers(service *Service, tokens *jwt.Manager, hub *ws.Hub, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		tokens:  tokens,
		hub:     hub,
		logger:  logger.With().Str("component", "play_http").Logger(),
	}
}

// Routes mounts the session API on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/v1/topics", h.ListTopics)
	r.Get("/v1/results", h.ListResults)
	r.Post("/v1/sessions", h.CreateSession)

	r.Route("/v1/sessions/{"+auth.SessionParam+"}", func(r chi.Router) {
		r.Use(auth.RequireSession(h.tokens, h.logger))
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Post("/topic", h.SelectTopic)
		r.Post("/generate", h.StartGeneration)
		r.Post("/answers", h.SelectAnswer)
		r.Post("/next", h.NextQuestion)
		r.Post("/previous", h.PreviousQuestion)
		r.Post("/submit", h.Submit)
		r.Post("/reset", h.Reset)
		r.Get("/ws", h.HandleWebSocket)
	})
}

// CreateSessionResponse is returned by POST /v1/sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	Session   View   `json:"session"`
}

// SelectTopicRequest names a catalogue topic, or a custom one via ID and Name.
type SelectTopicRequest struct {
	TopicID string `json:"topic_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

// SelectAnswerRequest records an answer for one question.
type SelectAnswerRequest struct {
	QuestionID  string `json:"question_id"`
	OptionIndex *int   `json:"option_index"`
}

// ListTopics handles GET /v1/topics
func (h *Handlers) ListTopics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"topics": quiz.Catalog})
}

// CreateSession handles POST /v1/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Create(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(view.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", view.ID).Msg("failed to issue session token")
		httperrors.RespondInternalError(w, "Failed to issue session token")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: view.ID,
		Token:     token,
		Session:   view,
	})
}

// GetSession handles GET /v1/sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.hub.CloseSession(id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectTopic handles POST /v1/sessions/{id}/topic
func (h *Handlers) SelectTopic(w http.ResponseWriter, r *http.Request) {
	var req SelectTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	var topic quiz.Topic
	switch {
	case req.TopicID != "":
		t, ok := quiz.LookupTopic(req.TopicID)
		if !ok {
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidTopic, "Unknown topic_id", "topic_id")
			return
		}
		topic = t
	case req.ID != "" || req.Name != "":
		topic = quiz.Topic{ID: strings.TrimSpace(req.ID), Name: strings.TrimSpace(req.Name)}
	default:
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "topic_id or id and name are required", "topic_id")
		return
	}

	view, err := h.service.SelectTopic(r.Context(), sessionID(r), topic)
	h.respond(w, r, http.StatusOK, view, err)
}

// StartGeneration handles POST /v1/sessions/{id}/generate
func (h *Handlers) StartGeneration(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.StartGeneration(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusAccepted, view, err)
}

// SelectAnswer handles POST /v1/sessions/{id}/answers
func (h *Handlers) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}
	if req.OptionIndex == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "option_index is required", "option_index")
		return
	}

	view, err := h.service.SelectAnswer(r.Context(), sessionID(r), req.QuestionID, *req.OptionIndex)
	h.respond(w, r, http.StatusOK, view, err)
}

// NextQuestion handles POST /v1/sessions/{id}/next
func (h *Handlers) NextQuestion(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.NextQuestion(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

// PreviousQuestion handles POST /v1/sessions/{id}/previous
func (h *Handlers) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.PreviousQuestion(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

// Submit handles POST /v1/sessions/{id}/submit
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Submit(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Reset(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

// ListResults handles GET /v1/results?limit=N
func (h *Handlers) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "limit must be a positive integer", "limit")
			return
		}
		limit = n
	}

	results, err := h.service.RecentResults(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, auth.SessionParam)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, view View, err error) {
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, status, view)
}

func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("request failed")
	}

	var terr *session.TransitionError
	if errors.As(err, &terr) {
		httperrors.RespondErrorWithDetails(w, status, code, message, map[string]interface{}{
			"transition": terr.Transition,
			"state":      terr.State,
		})
		return
	}
	httperrors.RespondError(w, status, code, message)
}

// classify maps service errors onto HTTP status and error code.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, httperrors.ErrCodeSessionNotFound, "Session not found"
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, httperrors.ErrCodeInvalidTransition, err.Error()
	case errors.Is(err, session.ErrNoTopic):
		return http.StatusConflict, httperrors.ErrCodeNoTopic, "Select a topic before generating questions"
	case errors.Is(err, session.ErrInvalidTopic):
		return http.StatusBadRequest, httperrors.ErrCodeInvalidTopic, err.Error()
	case errors.Is(err, session.ErrUnknownQuestion):
		return http.StatusBadRequest, httperrors.ErrCodeUnknownQuestion, err.Error()
	case errors.Is(err, session.ErrInvalidOption):
		return http.StatusBadRequest, httperrors.ErrCodeInvalidOption, err.Error()
	case session.IsContractViolation(err):
		return http.StatusConflict, httperrors.ErrCodeContractViolation, err.Error()
	case errors.Is(err, ErrArchiveDisabled):
		return http.StatusServiceUnavailable, httperrors.ErrCodeFeatureNotAvailable, "Results archive is not configured"
	default:
		return http.StatusInternalServerError, httperrors.ErrCodeInternalError, "Internal error"
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
