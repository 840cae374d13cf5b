package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/utils/jwt"
	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/gaitlab/gait-service/internal/workspace"
)

// Workspaces is the part of the registry the handlers use
type Workspaces interface {
	Open() *workspace.Workspace
	Close(id string) bool
}

type OpenResponse struct {
	WorkspaceID string   `json:"workspace_id"`
	Token       string   `json:"token"`
	Warnings    []string `json:"warnings"`
}

type StatusResponse struct {
	Database bool     `json:"database"`
	Storage  bool     `json:"storage"`
	Cache    bool     `json:"cache"`
	Warnings []string `json:"warnings"`
}

// Open creates a workspace and returns its bearer token
// @Summary Open a workspace
// @Description Creates the server-side state of one client and returns the token naming it.
// @Tags session
// @Produce json
// @Success 201 {object} OpenResponse "Workspace opened"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /session [post]
func Open(workspaces Workspaces, jwtSecret string, tokenTTL time.Duration, warnings []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaces.Open()

		token, err := jwt.CreateToken(ws.ID, jwtSecret, tokenTTL)
		if err != nil {
			slog.Error("failed to sign workspace token", slog.String("error", err.Error()))
			workspaces.Close(ws.ID)
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		if warnings == nil {
			warnings = []string{}
		}
		response.WriteJSON(w, http.StatusCreated, OpenResponse{
			WorkspaceID: ws.ID,
			Token:       token,
			Warnings:    warnings,
		})
	}
}

// Close destroys the workspace of the caller
// @Summary Close the workspace
// @Tags session
// @Produce json
// @Success 200 {object} response.Response "Workspace closed"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /session [delete]
func Close(workspaces Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetWorkspaceIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}

		workspaces.Close(id)
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Workspace closed", nil))
	}
}

// State returns everything the client renders
// @Summary Get workspace state
// @Description Session, notifications, visible videos, upload status, overlay and configuration warnings.
// @Tags session
// @Produce json
// @Success 200 {object} workspace.Snapshot "Workspace state"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /state [get]
func State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}
		response.WriteJSON(w, http.StatusOK, ws.Snapshot())
	}
}

// Status reports which backends are configured
// @Summary Service status
// @Tags session
// @Produce json
// @Success 200 {object} StatusResponse "Configuration status"
// @Router /status [get]
func Status(status StatusResponse) http.HandlerFunc {
	if status.Warnings == nil {
		status.Warnings = []string{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, status)
	}
}
