package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/gaitlab/gait-service/internal/workflow"
	"github.com/gaitlab/gait-service/internal/workspace"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

type MediaHandlers struct {
	maxRequestSize int64
}

type OpenVideoResponse struct {
	URL string `json:"url"`
}

// NewMediaHandlers creates a new media handlers instance
func NewMediaHandlers(maxRequestSize int64) *MediaHandlers {
	return &MediaHandlers{
		maxRequestSize: maxRequestSize,
	}
}

func workspaceFrom(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
	}
	return ws, ok
}

func videoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid video id")))
		return 0, false
	}
	return id, true
}

// List refreshes and returns the videos visible to the signed-in identity
// @Summary List videos
// @Description Patients see their own videos, doctors see every video. Newest first.
// @Tags videos
// @Produce json
// @Success 200 {object} response.Response "Visible videos"
// @Failure 401 {object} response.Response "Not signed in"
// @Failure 502 {object} response.Response "Gateway failure"
// @Failure 503 {object} response.Response "Gateway not configured"
// @Security BearerAuth
// @Router /videos [get]
func (h *MediaHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}

		videos, err := ws.Refresh(r.Context())
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Videos retrieved successfully", videos))
	}
}

// Upload stores a batch of videos
// @Summary Upload videos
// @Description Uploads every file of the "files" field. A batch with any file above the size limit is rejected as a whole. Other failures are reported per file.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Video files"
// @Success 200 {object} response.Response "Batch result"
// @Failure 400 {object} response.Response "File too large or no files"
// @Failure 401 {object} response.Response "Not signed in"
// @Failure 413 {object} response.Response "Request too large"
// @Failure 503 {object} response.Response "Storage not configured"
// @Security BearerAuth
// @Router /videos [post]
func (h *MediaHandlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(errors.New("request too large")))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			response.FromError(w, apperr.New(apperr.ErrValidation, "Select at least one file."))
			return
		}

		files := make([]workflow.File, 0, len(headers))
		for _, fh := range headers {
			files = append(files, fileFromHeader(fh))
		}

		// A started batch runs to completion even if the client goes away
		result, err := ws.Upload(context.WithoutCancel(r.Context()), files)
		if err != nil {
			response.FromError(w, err)
			return
		}

		slog.Info("upload request finished",
			slog.String("workspace_id", ws.ID),
			slog.Int("uploaded", len(result.Uploaded)),
			slog.Int("failed", len(result.Failed)))
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Upload finished", result))
	}
}

func fileFromHeader(fh *multipart.FileHeader) workflow.File {
	return workflow.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// OpenVideo shows a video in the player overlay
// @Summary Open the video player
// @Tags overlay
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} OpenVideoResponse "Opened"
// @Failure 404 {object} response.Response "Video not found"
// @Security BearerAuth
// @Router /videos/{id}/open [post]
func (h *MediaHandlers) OpenVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		url, err := ws.OpenVideo(id)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Video opened", OpenVideoResponse{URL: url}))
	}
}

// CloseVideo closes the player overlay
// @Summary Close the video player
// @Tags overlay
// @Produce json
// @Success 200 {object} response.Response "Closed"
// @Security BearerAuth
// @Router /overlay/video [delete]
func (h *MediaHandlers) CloseVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}
		ws.CloseVideo()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Video closed", ws.Overlay.Snapshot()))
	}
}

// RequestDelete asks for confirmation before deleting a video
// @Summary Request a delete confirmation
// @Tags overlay
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} response.Response "Awaiting confirmation"
// @Failure 404 {object} response.Response "Video not found"
// @Security BearerAuth
// @Router /videos/{id}/delete-request [post]
func (h *MediaHandlers) RequestDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		rec, err := ws.RequestDelete(id)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Awaiting confirmation", rec))
	}
}

// CancelDelete drops the pending delete confirmation
// @Summary Cancel a delete confirmation
// @Tags overlay
// @Produce json
// @Success 200 {object} response.Response "Cancelled"
// @Security BearerAuth
// @Router /overlay/delete [delete]
func (h *MediaHandlers) CancelDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}
		ws.CancelDelete()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Delete cancelled", ws.Overlay.Snapshot()))
	}
}

// ConfirmDelete deletes the video awaiting confirmation
// @Summary Confirm a delete
// @Description Removes the stored object first and the record only once the object is gone.
// @Tags overlay
// @Produce json
// @Success 200 {object} response.Response "Deleted, or nothing was pending"
// @Failure 404 {object} response.Response "Video not found"
// @Failure 502 {object} response.Response "Storage or gateway failure"
// @Security BearerAuth
// @Router /overlay/delete/confirm [post]
func (h *MediaHandlers) ConfirmDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspaceFrom(w, r)
		if !ok {
			return
		}

		if err := ws.ConfirmDelete(context.WithoutCancel(r.Context())); err != nil {
			response.FromError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Delete confirmed", ws.Workflow.Videos()))
	}
}
