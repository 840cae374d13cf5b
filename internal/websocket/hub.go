package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gaitlab/gait-service/internal/types"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients mapped by workspace ID
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel to broadcast events
	broadcast chan *BroadcastMessage

	// Closed once Run returns
	done chan struct{}
}

// BroadcastMessage represents a message to be broadcast to specific workspaces
type BroadcastMessage struct {
	WorkspaceIDs []string     `json:"workspace_ids"`
	Event        *types.Event `json:"event"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.closeSend()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			// A workspace keeps a single live connection
			if existing, exists := h.clients[client.workspaceID]; exists {
				existing.closeSend()
				slog.Info("Replaced existing WebSocket connection", slog.String("workspace_id", client.workspaceID))
			}
			h.clients[client.workspaceID] = client
			h.mu.Unlock()
			slog.Info("WebSocket client connected", slog.String("workspace_id", client.workspaceID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.workspaceID]; ok && current == client {
				delete(h.clients, client.workspaceID)
				slog.Info("WebSocket client disconnected", slog.String("workspace_id", client.workspaceID))
			}
			client.closeSend()
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToWorkspaces(message.WorkspaceIDs, message.Event)
		}
	}
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToWorkspaces sends an event to specific workspaces
func (h *Hub) BroadcastToWorkspaces(workspaceIDs []string, event *types.Event) {
	message := &BroadcastMessage{
		WorkspaceIDs: workspaceIDs,
		Event:        event,
	}

	select {
	case h.broadcast <- message:
	default:
		slog.Warn("Broadcast channel is full, dropping message")
	}
}

// BroadcastToWorkspace sends an event to a single workspace
func (h *Hub) BroadcastToWorkspace(workspaceID string, event *types.Event) {
	h.BroadcastToWorkspaces([]string{workspaceID}, event)
}

// broadcastToWorkspaces is the internal method that actually sends messages to clients
func (h *Hub) broadcastToWorkspaces(workspaceIDs []string, event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, workspaceID := range workspaceIDs {
		if client, ok := h.clients[workspaceID]; ok {
			err := client.SendEvent(event)
			if err != nil {
				slog.Error("Failed to send event to client",
					slog.String("workspace_id", workspaceID),
					slog.String("error", err.Error()))
				// Remove the client if sending fails
				go h.UnregisterClient(client)
			}
		}
	}
}

// IsWorkspaceConnected checks if a workspace currently has a live connection
func (h *Hub) IsWorkspaceConnected(workspaceID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, exists := h.clients[workspaceID]
	return exists
}

// DisconnectWorkspace drops the connection of an evicted workspace
func (h *Hub) DisconnectWorkspace(workspaceID string) {
	h.mu.RLock()
	client, ok := h.clients[workspaceID]
	h.mu.RUnlock()
	if ok {
		go h.UnregisterClient(client)
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
