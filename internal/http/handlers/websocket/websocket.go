package websocket

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/utils/jwt"
	"github.com/gaitlab/gait-service/internal/utils/response"
	wsClient "github.com/gaitlab/gait-service/internal/websocket"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for development
		// In production, you should check the origin properly
		return true
	},
}

// WebSocketHandler handles WebSocket connections
// @Summary Workspace event stream
// @Description Pushes notification changes, refreshed video lists and upload status of one workspace.
// @Tags events
// @Param token query string true "Workspace token"
// @Success 101 "Switching protocols"
// @Failure 401 {object} response.Response "Unauthorized"
// @Router /ws [get]
func WebSocketHandler(hub *wsClient.Hub, workspaces middleware.WorkspaceLookup, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Get JWT token from query parameter
		token := r.URL.Query().Get("token")
		if token == "" {
			slog.Warn("WebSocket connection attempted without token")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("token required")))
			return
		}

		workspaceID, err := jwt.ExtractWorkspaceIDFromToken(token, jwtSecret)
		if err != nil {
			slog.Warn("WebSocket connection attempted with invalid token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid token")))
			return
		}

		ws, ok := workspaces.Get(workspaceID)
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace expired")))
			return
		}

		// Upgrade connection to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		// Create new client and register with hub
		client := wsClient.NewClient(conn, workspaceID, hub)
		hub.RegisterClient(client)

		// Start client goroutines
		client.Start()

		// Bring the new connection up to date
		hub.BroadcastToWorkspace(workspaceID, types.NewEvent(types.EventNotificationsChanged, ws.Notifications.List()))
		hub.BroadcastToWorkspace(workspaceID, types.NewEvent(types.EventVideosRefreshed, ws.Workflow.Videos()))

		slog.Info("WebSocket connection established", slog.String("workspace_id", workspaceID))
	}
}
