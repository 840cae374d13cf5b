package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gaitlab/gait-service/internal/types"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func receive(t *testing.T, c *Client) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil, false
	}
}

func TestHubDeliversToWorkspace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	client := NewClient(nil, "ws-1", hub)
	hub.RegisterClient(client)
	waitFor(t, func() bool { return hub.IsWorkspaceConnected("ws-1") })

	hub.BroadcastToWorkspace("ws-1", types.NewEvent(types.EventVideosRefreshed, []types.MediaRecord{}))
	hub.BroadcastToWorkspace("ws-other", types.NewEvent(types.EventVideosRefreshed, nil))

	msg, ok := receive(t, client)
	if !ok {
		t.Fatal("send channel closed unexpectedly")
	}
	var event types.Event
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != types.EventVideosRefreshed {
		t.Fatalf("unexpected event type %s", event.Type)
	}
}

func TestReplacedClientDoesNotEvictSuccessor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	first := NewClient(nil, "ws-1", hub)
	second := NewClient(nil, "ws-1", hub)
	hub.RegisterClient(first)
	hub.RegisterClient(second)

	if _, ok := receive(t, first); ok {
		t.Fatal("replaced client should have its channel closed")
	}

	// The old connection's read pump unregisters on its way out
	hub.UnregisterClient(first)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })
	if !hub.IsWorkspaceConnected("ws-1") {
		t.Fatal("successor connection must survive")
	}
}

func TestHubShutdownReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(nil, "ws-1", hub)
	hub.RegisterClient(client)
	waitFor(t, func() bool { return hub.IsWorkspaceConnected("ws-1") })

	cancel()
	<-stopped

	if _, ok := receive(t, client); ok {
		t.Fatal("client channel should be closed on shutdown")
	}
	// Must not block once the hub is gone
	hub.UnregisterClient(client)
}
