package api

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleWS streams state snapshots to the client: the current state on
// connect, then one message per committed mutation. Slow clients see
// the latest snapshot, not every intermediate one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// The feed is one-way; CloseRead surfaces client disconnects via ctx.
	ctx := conn.CloseRead(r.Context())

	feed, cancel := s.store.Subscribe()
	defer cancel()

	if err := wsjson.Write(ctx, conn, s.store.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot, ok := <-feed:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "store closed")
				return
			}
			if err := wsjson.Write(ctx, conn, snapshot); err != nil {
				return
			}
		}
	}
}
