package api

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// eventsHandler streams session events over a websocket. The client gets
// every append/update/reset from the moment of subscription; it should
// fetch a snapshot first and reconcile by instance id.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.AllowedOrigins,
	})
	if err != nil {
		slog.Warn("Server.eventsHandler: websocket accept failed", "error", err, "sessionID", sess.ID())
		return
	}
	defer conn.CloseNow()

	events, cancel := sess.Subscribe()
	defer cancel()

	// No client messages are expected; CloseRead surfaces disconnects
	// through context cancellation.
	ctx := conn.CloseRead(r.Context())
	slog.Debug("Server.eventsHandler: subscribed", "sessionID", sess.ID())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				slog.Debug("Server.eventsHandler: write failed, dropping subscriber", "error", err, "sessionID", sess.ID())
				return
			}
		}
	}
}
