package feed

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Handler serves the question change feed over WebSocket.
type Handler struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a feed handler that registers clients with hub.
func NewHandler(hub *ws.Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "question_feed").Logger(),
	}
}

// HandleWebSocket upgrades the request and streams question events until the client leaves.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.New()
	logger := h.logger.With().Str("connection_id", id.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.RegisterConnection(id, wsConn)

	go wsConn.WritePump()

	// Every reply goes through the hub so a connection replaced or dropped
	// by the hub stops receiving frames.
	reply := func(msg ws.Message) error {
		return h.hub.SendTo(id, msg)
	}

	welcome, err := ws.NewMessage(ws.TypeWelcome, ws.WelcomePayload{ConnectionID: id.String()})
	if err == nil {
		err = reply(welcome)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("welcome not sent")
	}

	// Clients only ever ping; everything else is answered with an error frame.
	wsConn.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return reply(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		}
		rejected, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{
			Code:    "unknown_message_type",
			Message: "Unknown message type: " + msg.Type,
		})
		if err != nil {
			return err
		}
		rejected.RequestID = msg.RequestID
		return reply(rejected)
	})

	h.hub.UnregisterConnection(id)
}
