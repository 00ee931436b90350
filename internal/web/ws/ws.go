package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Envelope is the JSON frame sent for each room event
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Options configures the upgrade
type Options struct {
	// OriginPatterns lists extra hosts allowed to open a socket cross-origin
	OriginPatterns []string
}

// Serve upgrades the request and pushes hub events until either side closes.
// The socket is push-only: anything the client sends is discarded.
func Serve(w http.ResponseWriter, r *http.Request, hub *sse.Hub, userID model.UserID, opts Options, onConnect func(), logger *slog.Logger) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	client := sse.NewClient(hub, userID, sse.TransportWebsocket)
	if !hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "room stream closed")
		return
	}
	defer hub.Unregister(client)

	// CloseRead reads and discards client frames and cancels ctx once the
	// peer goes away
	ctx := conn.CloseRead(r.Context())

	if err := write(ctx, conn, Envelope{Event: "connected", Data: json.RawMessage(`{"status":"connected"}`)}); err != nil {
		return
	}
	if onConnect != nil {
		onConnect()
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.Messages():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "room stream closed")
				return
			}
			if err := write(ctx, conn, Envelope{Event: message.Event, Data: message.Data}); err != nil {
				logClose(logger, userID, err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logClose(logger, userID, err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, env Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, conn, env)
}

func logClose(logger *slog.Logger, userID model.UserID, err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		return
	}
	logger.Debug("websocket closed",
		slog.String("user_id", string(userID)),
		slog.String("error", err.Error()),
	)
}
