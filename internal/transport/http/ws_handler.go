package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/core"
	"github.com/ametelkin/onair-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to the coordinator.
// Each connection gets a fresh id; the coordinator learns about it through
// Connect/Disconnect and reaches it back through the ConnTable.
type WSHandler struct {
	coord   *core.Coordinator
	table   *ConnTable
	msgRate int
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. msgRate limits inbound
// messages per connection per minute; zero disables the limit.
func NewWSHandler(coord *core.Coordinator, table *ConnTable, msgRate int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{coord: coord, table: table, msgRate: msgRate, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	connID := uuid.NewString()
	outbound := h.table.Add(connID)
	// Leave the table before Disconnect runs so the departure broadcast
	// only reaches remaining connections.
	defer h.coord.Disconnect(connID)
	defer h.table.Remove(connID)

	h.coord.Connect(connID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, connID)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, outbound)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", connID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, connID string) error {
	limiter := newRateLimiter(h.msgRate)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}
		if !limiter.allow() {
			h.log.Warn().Str("conn_id", connID).Msg("inbound rate limit exceeded, message dropped")
			continue
		}
		h.dispatch(connID, inbound)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan proto.Outbound) error {
	for {
		select {
		case out, ok := <-outbound:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
