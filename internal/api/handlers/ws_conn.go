package handlers

import (
	"context"
	"errors"
	"sync"
	"time"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxFrameBytes  = 8 << 10
	wsSendBufferSize = 64
)

var (
	errConnClosed     = errors.New("websocket connection closed")
	errSendBufferFull = errors.New("websocket send buffer full")
)

// wsConn adapts a gorilla websocket to session.Conn. Outbound events are
// queued on a bounded channel and written by a single writer goroutine.
type wsConn struct {
	id       string
	userID   string
	username string

	ws        *websocket.Conn
	send      chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn, userID, username string) *wsConn {
	return &wsConn{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		ws:       ws,
		send:     make(chan domain.Event, wsSendBufferSize),
		done:     make(chan struct{}),
	}
}

func (c *wsConn) ID() string       { return c.id }
func (c *wsConn) UserID() string   { return c.userID }
func (c *wsConn) Username() string { return c.username }

// Send queues ev without blocking. A full buffer drops the event.
func (c *wsConn) Send(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump owns all data writes to the socket and closes it on exit.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteJSON(dto.NewEventMessage(ev)); err != nil {
				zap.L().Debug("websocket write failed", zap.String("conn_id", c.id), zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		}
	}
}
