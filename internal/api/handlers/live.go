package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/ports"
	"triptracks-service/internal/session"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type LiveHandler struct {
	Broadcaster *session.Broadcaster
	Upgrader    websocket.Upgrader
}

// Connect upgrades the request to a websocket and joins the caller to the
// trip's live session until the socket closes.
func (h *LiveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	tripID := strings.TrimSpace(r.PathValue("trip_id"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if tripID == "" || userID == "" || username == "" {
		writeError(w, r, http.StatusBadRequest, "trip_id, user_id and username are required")
		return
	}

	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newWSConn(ws, userID, username)
	go conn.writePump()
	defer conn.Close()

	// The request context is not canceled by a client disconnect after hijack.
	ctx := context.WithoutCancel(r.Context())

	if err := h.Broadcaster.Join(ctx, tripID, conn); err != nil {
		zap.L().Error("join live session", zap.String("trip_id", tripID), zap.Error(err))
		return
	}
	defer h.Broadcaster.Leave(ctx, tripID, conn)

	ws.SetReadLimit(wsMaxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Info("websocket closed unexpectedly", zap.String("trip_id", tripID), zap.Error(err))
			}
			return
		}

		var in dto.InboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			zap.L().Debug("ignoring malformed live frame", zap.String("trip_id", tripID), zap.Error(err))
			continue
		}

		if err := h.Broadcaster.Relay(ctx, tripID, conn, session.Inbound{
			Type: in.Type,
			Text: in.Text,
			Lat:  in.Lat,
			Lng:  in.Lng,
		}); err != nil {
			zap.L().Warn("relay live event", zap.String("trip_id", tripID), zap.Error(err))
		}
	}
}

type ChatHandler struct {
	Chats ports.ChatRepository
}

// History returns the trip's most recent chat messages, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	tripID := strings.TrimSpace(r.PathValue("trip_id"))
	if tripID == "" {
		writeError(w, r, http.StatusBadRequest, "trip_id is required")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	events, err := h.Chats.ListMessages(r.Context(), tripID, limit)
	if err != nil {
		zap.L().Error("list chat history failed", zap.String("trip_id", tripID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ChatHistoryResponse{TripID: tripID, Messages: make([]dto.EventMessage, 0, len(events))}
	for _, ev := range events {
		res.Messages = append(res.Messages, dto.NewEventMessage(ev))
	}

	writeJSON(w, r, http.StatusOK, res)
}
