package play

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-session/internal/auth"
	httperrors "github.com/gokatarajesh/quiz-session/pkg/http/errors"
	"github.com/gokatarajesh/quiz-session/pkg/http/ws"
)

// HubPublisher fans session views out to websocket subscribers.
type HubPublisher struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewHubPublisher(hub *ws.Hub, logger zerolog.Logger) *HubPublisher {
	return &HubPublisher{hub: hub, logger: logger.With().Str("component", "ws_publisher").Logger()}
}

func (p *HubPublisher) Publish(view View) {
	if p.hub.Subscribers(view.ID) == 0 {
		return
	}
	msg, err := ws.NewMessage(ws.TypeSessionSnapshot, view)
	if err != nil {
		p.logger.Error().Err(err).Str("session_id", view.ID).Msg("encode snapshot failed")
		return
	}
	_ = p.hub.BroadcastToSession(view.ID, msg)
}

// HandleWebSocket upgrades an authenticated request and streams the
// session's views to the client. Clients may also select answers and move
// the cursor over the socket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, auth.SessionParam)
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewConnection(conn, h.logger)
	h.hub.Subscribe(id, client)
	go client.WritePump()

	h.sendView(client, view)
	client.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(id, client, msg)
	})
	h.hub.Unsubscribe(id, client)
}

func (h *Handlers) handleMessage(id string, client *ws.Connection, msg ws.Message) error {
	ctx := context.Background()

	switch msg.Type {
	case ws.TypePing:
		return client.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})

	case ws.TypeRequestSnapshot:
		view, err := h.service.Get(ctx, id)
		if err != nil {
			return h.sendError(client, msg.RequestID, err)
		}
		h.sendView(client, view)
		return nil

	case ws.TypeSelectAnswer:
		var payload ws.SelectAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendWSError(client, msg.RequestID, httperrors.ErrCodeInvalidPayload, "invalid select_answer payload")
		}
		if _, err := h.service.SelectAnswer(ctx, id, payload.QuestionID, payload.OptionIndex); err != nil {
			return h.sendError(client, msg.RequestID, err)
		}
		return nil

	case ws.TypeNavigate:
		var payload ws.NavigatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendWSError(client, msg.RequestID, httperrors.ErrCodeInvalidPayload, "invalid navigate payload")
		}
		var err error
		switch payload.Direction {
		case "next":
			_, err = h.service.NextQuestion(ctx, id)
		case "previous":
			_, err = h.service.PreviousQuestion(ctx, id)
		default:
			return h.sendWSError(client, msg.RequestID, httperrors.ErrCodeInvalidPayload, "direction must be next or previous")
		}
		if err != nil {
			return h.sendError(client, msg.RequestID, err)
		}
		return nil

	default:
		return h.sendWSError(client, msg.RequestID, httperrors.ErrCodeUnknownMessageType, "unknown message type: "+msg.Type)
	}
}

func (h *Handlers) sendView(client *ws.Connection, view View) {
	msg, err := ws.NewMessage(ws.TypeSessionSnapshot, view)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode snapshot failed")
		return
	}
	if err := client.Send(msg); err != nil {
		h.logger.Warn().Err(err).Msg("send snapshot failed")
	}
}

func (h *Handlers) sendError(client *ws.Connection, requestID string, err error) error {
	_, code, message := classify(err)
	return h.sendWSError(client, requestID, code, message)
}

func (h *Handlers) sendWSError(client *ws.Connection, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return client.Send(msg)
}
