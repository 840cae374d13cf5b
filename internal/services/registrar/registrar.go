// Package registrar implements the privileged doctor registration procedure.
// The registration key is checked server-side against a bcrypt hash and is
// never stored.
package registrar

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
	"golang.org/x/crypto/bcrypt"
)

const invalidSecretMessage = "Invalid doctor registration key!"

type Local struct {
	storage    storage.Storage
	secretHash []byte
}

// NewLocal returns a registrar that inserts doctor accounts into s.
// An empty secretHash rejects every request.
func NewLocal(s storage.Storage, secretHash string) *Local {
	return &Local{storage: s, secretHash: []byte(secretHash)}
}

// RegisterDoctor creates a doctor account when secret matches.
func (l *Local) RegisterDoctor(ctx context.Context, username, secret string) error {
	if l.storage == nil {
		return apperr.New(apperr.ErrConfigMissing, "Gateway connection is missing.")
	}
	if len(l.secretHash) == 0 {
		slog.Warn("doctor registration attempted without a configured secret hash")
		return apperr.New(apperr.ErrInvalidCredential, invalidSecretMessage)
	}
	if err := bcrypt.CompareHashAndPassword(l.secretHash, []byte(secret)); err != nil {
		return apperr.Wrap(apperr.ErrInvalidCredential, invalidSecretMessage, err)
	}

	if _, err := l.storage.CreateAccount(ctx, username, types.RoleDoctor); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.Wrap(apperr.ErrConflict, "This username is already taken.", err)
		}
		return apperr.Wrap(apperr.ErrBackend, err.Error(), err)
	}

	slog.Info("doctor account registered", slog.String("username", username))
	return nil
}

// HashSecret returns the bcrypt hash to place in the configuration.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
