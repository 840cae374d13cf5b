package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gaitlab/gait-service/internal/utils/jwt"
	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/gaitlab/gait-service/internal/workspace"
)

type contextKey string

const (
	WorkspaceIDKey contextKey = "workspaceID"
	workspaceKey   contextKey = "workspace"
)

// WorkspaceLookup resolves a workspace id to the live workspace
type WorkspaceLookup interface {
	Get(id string) (*workspace.Workspace, bool)
}

// AuthMiddleware creates a middleware that validates the bearer token and
// loads the workspace it names
func AuthMiddleware(jwtSecret string, workspaces WorkspaceLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Authorization header required")))
				return
			}

			// Check if the header starts with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid authorization header format")))
				return
			}

			// Extract the token
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Token not provided")))
				return
			}

			workspaceID, err := jwt.ExtractWorkspaceIDFromToken(token, jwtSecret)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid token")))
				return
			}

			ws, ok := workspaces.Get(workspaceID)
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Workspace expired, open a new session")))
				return
			}

			ctx := context.WithValue(r.Context(), WorkspaceIDKey, workspaceID)
			ctx = context.WithValue(ctx, workspaceKey, ws)
			r = r.WithContext(ctx)

			// Call the next handler
			next.ServeHTTP(w, r)
		})
	}
}

// GetWorkspaceIDFromContext extracts the workspace ID from the request context
func GetWorkspaceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(WorkspaceIDKey).(string)
	return id, ok
}

// GetWorkspaceFromContext returns the workspace loaded by AuthMiddleware
func GetWorkspaceFromContext(ctx context.Context) (*workspace.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey).(*workspace.Workspace)
	return ws, ok
}

// WithWorkspace stores ws in ctx the way AuthMiddleware does
func WithWorkspace(ctx context.Context, ws *workspace.Workspace) context.Context {
	ctx = context.WithValue(ctx, WorkspaceIDKey, ws.ID)
	return context.WithValue(ctx, workspaceKey, ws)
}
