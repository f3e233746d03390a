package api_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/questhub/questhub/internal/hub"
)

func TestWS_InitialSnapshotAndUpdates(t *testing.T) {
	srv, store := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var initial hub.AppData
	if err := wsjson.Read(ctx, conn, &initial); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(initial.Quests) != 1 {
		t.Fatalf("initial quests = %d, want 1", len(initial.Quests))
	}
	if initial.Stats.CurrentXP != 0 {
		t.Errorf("initial CurrentXP = %d, want 0", initial.Stats.CurrentXP)
	}

	store.ToggleTask(context.Background(), "q1", "t1")

	var update hub.AppData
	if err := wsjson.Read(ctx, conn, &update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Stats.CurrentXP != 50 {
		t.Errorf("update CurrentXP = %d, want 50", update.Stats.CurrentXP)
	}
}
