package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/session"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AuthRequest is one submission of the sign-in form
type AuthRequest struct {
	Mode      string `json:"mode" validate:"required,oneof=login register"`
	Username  string `json:"username"`
	Role      string `json:"role" validate:"required,oneof=patient doctor"`
	DoctorKey string `json:"doctor_key"`
}

type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=login register"`
}

type CreateDoctorRequest struct {
	Username string `json:"username" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

// DoctorRegistrar runs the privileged doctor registration procedure
type DoctorRegistrar interface {
	RegisterDoctor(ctx context.Context, username, secret string) error
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// Submit handles sign-in and registration
// @Summary Sign in or register
// @Description Registers an account or signs the workspace in as (username, role). A doctor registration needs the doctor key.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AuthRequest true "Sign-in form"
// @Success 200 {object} response.Response "Signed in or registered"
// @Failure 400 {object} response.Response "Validation error"
// @Failure 401 {object} response.Response "Invalid doctor key"
// @Failure 404 {object} response.Response "User not found or role is incorrect"
// @Failure 409 {object} response.Response "Username already taken"
// @Failure 503 {object} response.Response "Gateway not configured"
// @Security BearerAuth
// @Router /auth [post]
func Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}

		var req AuthRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		err := ws.Submit(r.Context(), session.Request{
			Mode:       types.AuthMode(req.Mode),
			Username:   req.Username,
			Role:       types.Role(req.Role),
			Credential: req.DoctorKey,
		})
		if err != nil {
			response.FromError(w, err)
			return
		}

		message := "Signed in"
		if req.Mode == string(types.AuthModeRegister) {
			message = "Registration successful"
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK(message, ws.Session.Snapshot()))
	}
}

// SetMode switches between the sign-in and register forms
// @Summary Switch auth mode
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ModeRequest true "Mode"
// @Success 200 {object} response.Response "Mode changed"
// @Failure 400 {object} response.Response "Bad request"
// @Security BearerAuth
// @Router /auth/mode [put]
func SetMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}

		var req ModeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		ws.Session.SetMode(types.AuthMode(req.Mode))
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Mode changed", ws.Session.Snapshot()))
	}
}

// Logout ends the signed-in identity of the workspace
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response "Signed out"
// @Security BearerAuth
// @Router /logout [post]
func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := middleware.GetWorkspaceFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("workspace not authenticated")))
			return
		}

		ws.Logout()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Signed out", ws.Session.Snapshot()))
	}
}

// CreateDoctor runs the privileged doctor registration procedure directly
// @Summary Create a doctor account
// @Description Creates a doctor account when the registration secret matches.
// @Tags functions
// @Accept json
// @Produce json
// @Param request body CreateDoctorRequest true "Doctor registration"
// @Success 201 {object} response.Response "Doctor account created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Invalid doctor registration key"
// @Failure 409 {object} response.Response "Username already taken"
// @Failure 503 {object} response.Response "Gateway not configured"
// @Router /functions/create-doctor [post]
func CreateDoctor(registrar DoctorRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		username := strings.TrimSpace(req.Username)
		if utf8.RuneCountInString(username) < 3 {
			response.FromError(w, apperr.New(apperr.ErrValidation, "Username must be at least 3 characters."))
			return
		}
		if err := registrar.RegisterDoctor(r.Context(), username, req.Secret); err != nil {
			slog.Warn("create-doctor failed", slog.String("username", username), slog.String("error", err.Error()))
			response.FromError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Doctor account created", map[string]string{
			"username": username,
		}))
	}
}
