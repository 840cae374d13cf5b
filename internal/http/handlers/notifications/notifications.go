package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/utils/response"
)

// List returns the live notifications, oldest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} response.Response "Notifications"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /notifications [get]
func List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Notifications retrieved successfully", ws.Notifications.List()))
	}
}

// Dismiss removes a notification. Unknown ids are ignored.
// @Summary Dismiss a notification
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response "Remaining notifications"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func Dismiss() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}

		id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid notification id")))
			return
		}

		ws.Notifications.Dismiss(id)
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Notification dismissed", ws.Notifications.List()))
	}
}
