package events

import (
	"github.com/gaitlab/gait-service/internal/types"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishNotifications(workspaceID string, notifications []types.Notification)
	PublishVideos(workspaceID string, videos []types.MediaRecord)
	PublishUploadStatus(workspaceID string, status types.UploadStatusEvent)
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToWorkspace(workspaceID string, event *types.Event)
	IsWorkspaceConnected(workspaceID string) bool
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishNotifications sends the current notification list to the workspace
func (p *EventPublisher) PublishNotifications(workspaceID string, notifications []types.Notification) {
	p.publish(workspaceID, types.EventNotificationsChanged, notifications)
}

// PublishVideos sends the refreshed video list to the workspace
func (p *EventPublisher) PublishVideos(workspaceID string, videos []types.MediaRecord) {
	p.publish(workspaceID, types.EventVideosRefreshed, videos)
}

// PublishUploadStatus sends the upload batch state to the workspace
func (p *EventPublisher) PublishUploadStatus(workspaceID string, status types.UploadStatusEvent) {
	p.publish(workspaceID, types.EventUploadStatus, status)
}

func (p *EventPublisher) publish(workspaceID string, eventType types.EventType, data interface{}) {
	// Only send if the workspace has a live connection
	if !p.hub.IsWorkspaceConnected(workspaceID) {
		return
	}
	p.hub.BroadcastToWorkspace(workspaceID, types.NewEvent(eventType, data))
}
