package server

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// handleEvents streams bus events to a websocket client until it goes away.
// The first frame confirms the subscription. Messages from the client are
// ignored. Cross-origin pages must match one of origins.
func handleEvents(logger *slog.Logger, broker *Broker, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		ctx := conn.CloseRead(r.Context())
		if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"`+FrameSubscribed+`"}`)); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}
		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket closed", "error", ctx.Err())
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
