package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventNotificationsChanged EventType = "notifications.changed"
	EventVideosRefreshed      EventType = "videos.refreshed"
	EventUploadStatus         EventType = "upload.status"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// UploadStatusEvent is emitted at the start and end of an upload batch
type UploadStatusEvent struct {
	Uploading bool   `json:"uploading"`
	Status    string `json:"status"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
