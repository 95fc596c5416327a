package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/utils"
	"github.com/avetrov/go-idm-core/models"
)

// credentialService is the concrete implementation of [CredentialManager].
// It hashes plaintext secrets with bcrypt and keeps the one-credential-per-
// account invariant: password changes replace the stored hash in place.
type credentialService struct {
	credentialRepository store.CredentialRepository
	queue                NotificationQueue
	bcryptCost           int
	logger               *logger.Logger
}

// NewCredentialService constructs a [CredentialManager] wired to the given
// repository and background notification queue.
func NewCredentialService(credentialRepository store.CredentialRepository, queue NotificationQueue, cfg config.Auth, logger *logger.Logger) CredentialManager {
	return &credentialService{
		credentialRepository: credentialRepository,
		queue:                queue,
		bcryptCost:           cfg.BcryptCost,
		logger:               logger,
	}
}

// UpsertCredential hashes plaintext and persists it for the account: an
// existing credential gets its hash replaced, a missing one is inserted. Both
// statements join the caller's transaction when tx is non-nil, so a failed
// provisioning flow leaves no credential behind.
//
// When sendWelcome is set, a welcome notification is placed on the background
// queue; dispatch failures are logged by the worker and never surface here.
//
// A hashing failure aborts before any statement runs and surfaces as a
// wrapped [ErrHashingPassword].
func (s *credentialService) UpsertCredential(ctx context.Context, tx *sql.Tx, accountID int64, plaintext string, sendWelcome bool) (models.Credential, error) {
	log := logger.FromContext(ctx)

	hash, err := utils.HashPassword(plaintext, s.bcryptCost)
	if err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("password hashing failed")
		return models.Credential{}, fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	existing, err := s.credentialRepository.GetCredentialByUserID(ctx, tx, accountID)
	switch {
	case err == nil:
		existing, err = s.credentialRepository.UpdateCredentialHash(ctx, tx, accountID, hash)
		if err != nil {
			log.Err(err).Int64("account_id", accountID).Msg("credential hash update failed")
			return models.Credential{}, fmt.Errorf("credential hash update failed: %w", err)
		}
	case errors.Is(err, store.ErrCredentialNotFound):
		existing, err = s.credentialRepository.CreateCredential(ctx, tx, models.Credential{UserID: accountID, PasswordHash: hash})
		if err != nil {
			log.Err(err).Int64("account_id", accountID).Msg("credential creation failed")
			return models.Credential{}, fmt.Errorf("credential creation failed: %w", err)
		}
	default:
		log.Err(err).Int64("account_id", accountID).Msg("credential lookup failed")
		return models.Credential{}, fmt.Errorf("credential lookup failed: %w", err)
	}

	if sendWelcome {
		s.queue.Enqueue(models.Notification{Template: models.TemplateWelcome, AccountID: accountID})
	}

	return existing, nil
}
