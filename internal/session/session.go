// Package session holds the signed-in identity of one workspace and the
// sign-in/register flow that produces it.
//
// Sign-in matches (username, role) only. No password is checked for either
// role; the doctor registration key guards account creation, not sign-in.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
)

const minUsernameLength = 3

// Registrar runs the privileged doctor registration procedure.
type Registrar interface {
	RegisterDoctor(ctx context.Context, username, secret string) error
}

// Notifier receives user-facing messages.
type Notifier interface {
	Push(message string, kind types.NotificationKind) uint64
}

// Authenticator performs the gateway calls behind sign-in and registration.
// It keeps no per-user state and is shared by every workspace.
type Authenticator struct {
	storage   storage.Storage
	registrar Registrar
}

// NewAuthenticator returns an Authenticator. A nil storage disables it with
// ErrConfigMissing.
func NewAuthenticator(s storage.Storage, r Registrar) *Authenticator {
	return &Authenticator{storage: s, registrar: r}
}

// Request is one submission of the sign-in form.
type Request struct {
	Mode       types.AuthMode
	Username   string
	Role       types.Role
	Credential string
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	Mode          types.AuthMode `json:"mode"`
	Username      string         `json:"username"`
	Role          types.Role     `json:"role"`
	Authenticated bool           `json:"authenticated"`
}

type Session struct {
	auth     *Authenticator
	notifier Notifier

	mu sync.Mutex
	// form inputs
	mode       types.AuthMode
	username   string
	role       types.Role
	credential string
	// identity is set only by a successful sign-in.
	identity      types.Identity
	authenticated bool
}

func New(auth *Authenticator, notifier Notifier) *Session {
	return &Session{
		auth:     auth,
		notifier: notifier,
		mode:     types.AuthModeLogin,
		role:     types.RolePatient,
	}
}

// Submit validates req, runs it against the gateway and pushes one
// notification describing the outcome.
func (s *Session) Submit(ctx context.Context, req Request) error {
	s.mu.Lock()
	s.mode = req.Mode
	s.username = strings.TrimSpace(req.Username)
	s.role = req.Role
	s.credential = req.Credential
	s.mu.Unlock()

	err := s.submit(ctx, req)
	if err != nil {
		slog.Warn("auth submission failed",
			slog.String("mode", string(req.Mode)),
			slog.String("username", req.Username),
			slog.String("error", err.Error()))
		s.notifier.Push(apperr.Message(err, "A database error occurred."), types.NotificationError)
	}
	return err
}

func (s *Session) submit(ctx context.Context, req Request) error {
	if s.auth == nil || s.auth.storage == nil {
		return apperr.New(apperr.ErrConfigMissing, "Gateway connection is missing.")
	}

	username := strings.TrimSpace(req.Username)
	if utf8.RuneCountInString(username) < minUsernameLength {
		return apperr.New(apperr.ErrValidation, "Username must be at least 3 characters.")
	}
	if !req.Role.Valid() {
		return apperr.New(apperr.ErrValidation, "Unknown role.")
	}

	switch req.Mode {
	case types.AuthModeRegister:
		return s.register(ctx, username, req.Role, req.Credential)
	case types.AuthModeLogin:
		return s.login(ctx, username, req.Role)
	default:
		return apperr.New(apperr.ErrValidation, fmt.Sprintf("Unknown mode %q.", req.Mode))
	}
}

func (s *Session) register(ctx context.Context, username string, role types.Role, credential string) error {
	if role == types.RoleDoctor && strings.TrimSpace(credential) == "" {
		return apperr.New(apperr.ErrValidation, "Doctor registration key is required.")
	}

	// Advisory only; the unique constraint on users.username is authoritative.
	if _, err := s.auth.storage.GetAccount(ctx, username); err == nil {
		return apperr.New(apperr.ErrConflict, "This username is already taken.")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return apperr.Wrap(apperr.ErrBackend, err.Error(), err)
	}

	if role == types.RoleDoctor {
		if s.auth.registrar == nil {
			return apperr.New(apperr.ErrConfigMissing, "Doctor registration is not available.")
		}
		if err := s.auth.registrar.RegisterDoctor(ctx, username, credential); err != nil {
			var classified *apperr.Error
			if errors.As(err, &classified) {
				return err
			}
			return apperr.Wrap(apperr.ErrBackend, err.Error(), err)
		}
	} else {
		if _, err := s.auth.storage.CreateAccount(ctx, username, role); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.Wrap(apperr.ErrConflict, "This username is already taken.", err)
			}
			return apperr.Wrap(apperr.ErrBackend, err.Error(), err)
		}
	}

	s.mu.Lock()
	s.mode = types.AuthModeLogin
	s.credential = ""
	s.mu.Unlock()

	slog.Info("account registered", slog.String("username", username), slog.String("role", string(role)))
	s.notifier.Push("Registration successful! You can now sign in.", types.NotificationSuccess)
	return nil
}

func (s *Session) login(ctx context.Context, username string, role types.Role) error {
	if _, err := s.auth.storage.GetAccountWithRole(ctx, username, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "User not found or role is incorrect.", err)
		}
		return apperr.Wrap(apperr.ErrBackend, err.Error(), err)
	}

	s.mu.Lock()
	s.identity = types.Identity{Username: username, Role: role}
	s.authenticated = true
	s.mu.Unlock()

	slog.Info("session authenticated", slog.String("username", username), slog.String("role", string(role)))
	s.notifier.Push(fmt.Sprintf("Welcome, %s", username), types.NotificationSuccess)
	return nil
}

// Logout ends the authenticated state. The username and role inputs are kept.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.identity = types.Identity{}
}

// SetMode switches between the sign-in and register forms.
func (s *Session) SetMode(mode types.AuthMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Identity returns the signed-in identity, if any.
func (s *Session) Identity() (types.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return types.Identity{}, false
	}
	return s.identity, true
}

// Credential returns the transient registration key field.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Snapshot reports the signed-in identity while authenticated and the form
// inputs otherwise.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authenticated {
		return Snapshot{
			Mode:          s.mode,
			Username:      s.identity.Username,
			Role:          s.identity.Role,
			Authenticated: true,
		}
	}
	return Snapshot{
		Mode:          s.mode,
		Username:      s.username,
		Role:          s.role,
		Authenticated: s.authenticated,
	}
}
