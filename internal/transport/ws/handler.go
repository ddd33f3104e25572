package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"shiritori/internal/app"
	"shiritori/internal/domain"
)

// Handler upgrades websocket connections and routes client messages to the
// match session.
type Handler struct {
	hub      *app.MatchHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates the websocket handler
func NewHandler(hub *app.MatchHub, logger *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws?match=CODE&participant=ID
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	matchCode := r.URL.Query().Get("match")
	participantID := r.URL.Query().Get("participant")

	if matchCode == "" || participantID == "" {
		http.Error(w, "match and participant are required", http.StatusBadRequest)
		return
	}

	session, ok := h.hub.GetSession(matchCode)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	if _, ok := session.GetParticipant(participantID); !ok {
		http.Error(w, "unknown participant", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(conn, participantID, matchCode, h, h.logger)
	session.RegisterClient(participantID, client)

	go client.writePump()
	go client.readPump()

	client.Send(NewServerMessage(MsgConnected, map[string]interface{}{
		"matchCode":     matchCode,
		"participantId": participantID,
		"state":         session.GetState(),
	}))

	h.logger.Info("client connected",
		zap.String("matchCode", matchCode),
		zap.String("participantID", participantID),
	)
}

func (h *Handler) disconnect(c *Client) {
	if session, ok := h.hub.GetSession(c.matchCode); ok {
		session.UnregisterClient(c.participantID)
	}
	h.logger.Info("client disconnected",
		zap.String("matchCode", c.matchCode),
		zap.String("participantID", c.participantID),
	)
}

func (h *Handler) handleMessage(c *Client, msg *ClientMessage) {
	session, ok := h.hub.GetSession(c.matchCode)
	if !ok {
		c.Send(NewServerMessage(MsgError, &domain.ErrorPayload{
			Code:    "MATCH_NOT_FOUND",
			Message: "match no longer exists",
		}))
		return
	}

	switch msg.Type {
	case MsgStartMatch:
		if err := session.Start(); err != nil {
			h.sendError(c, "CANNOT_START", err)
		}

	case MsgSubmitWord:
		var payload SubmitWordPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendError(c, "INVALID_PAYLOAD", err)
			return
		}
		outcome := session.SubmitWord(c.participantID, payload.Word)
		c.Send(NewServerMessage(MsgSubmissionResult, outcome))

	case MsgPauseMatch:
		if err := session.Pause(); err != nil {
			h.sendError(c, "CANNOT_PAUSE", err)
		}

	case MsgResumeMatch:
		if err := session.Resume(); err != nil {
			h.sendError(c, "CANNOT_RESUME", err)
		}

	case MsgEndMatch:
		session.Quit()

	case MsgPass:
		// A player declaring they have no word forfeits their place
		if err := session.PassTurn(c.participantID); err != nil {
			h.sendError(c, "CANNOT_PASS", err)
		}

	case MsgPing:
		c.Send(NewServerMessage(MsgPong, nil))

	default:
		c.Send(NewServerMessage(MsgError, &domain.ErrorPayload{
			Code:    "UNKNOWN_MESSAGE",
			Message: "unknown message type",
		}))
	}
}

func (h *Handler) sendError(c *Client, code string, err error) {
	c.Send(NewServerMessage(MsgError, &domain.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	}))
}
