package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
	"github.com/jackc/pgerrcode"
)

// credentialRepository is the PostgreSQL-backed implementation of
// [CredentialRepository]. It manages the single hashed secret bound to each
// account in the "user_credentials" table.
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by the
// provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCredential persists a new credential row for an account that has
// none yet. The unique constraint on user_id guards the 1:1 invariant.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → wrapped [ErrExecutingStatement],
//     since a second credential for the same account means the caller skipped
//     the find-before-create step.
func (r *credentialRepository) CreateCredential(ctx context.Context, tx *sql.Tx, credential models.Credential) (models.Credential, error) {
	log := logger.FromContext(ctx)

	row := querierFor(r.db, tx).QueryRowContext(ctx, createCredential, credential.UserID, credential.PasswordHash)

	var saved models.Credential
	if err := row.Scan(&saved.ID, &saved.UserID, &saved.PasswordHash, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		log.Err(err).Str("func", "*credentialRepository.CreateCredential").Int64("user_id", credential.UserID).Msg("error: creating credential")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Credential{}, fmt.Errorf("%w: credential already exists for user %d", ErrExecutingStatement, credential.UserID)
		default:
			return models.Credential{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return saved, nil
}

// GetCredentialByUserID retrieves the credential row for the given account.
//
// Returns [ErrCredentialNotFound] when the account has no credential yet,
// which the upsert path treats as the signal to insert instead of update.
func (r *credentialRepository) GetCredentialByUserID(ctx context.Context, tx *sql.Tx, userID int64) (models.Credential, error) {
	log := logger.FromContext(ctx)

	var credential models.Credential
	row := querierFor(r.db, tx).QueryRowContext(ctx, getCredentialByUserID, userID)

	if err := row.Scan(&credential.ID, &credential.UserID, &credential.PasswordHash, &credential.CreatedAt, &credential.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrCredentialNotFound
		}
		log.Err(err).Str("func", "*credentialRepository.GetCredentialByUserID").Int64("user_id", userID).Msg("error: scanning credential")
		return models.Credential{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return credential, nil
}

// UpdateCredentialHash replaces the stored hash in place, keeping the same
// credential row. Password changes never append a second row.
//
// Returns [ErrCredentialNotFound] when the account has no credential.
func (r *credentialRepository) UpdateCredentialHash(ctx context.Context, tx *sql.Tx, userID int64, passwordHash string) (models.Credential, error) {
	log := logger.FromContext(ctx)

	row := querierFor(r.db, tx).QueryRowContext(ctx, updateCredentialHash, userID, passwordHash)

	var updated models.Credential
	if err := row.Scan(&updated.ID, &updated.UserID, &updated.PasswordHash, &updated.CreatedAt, &updated.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrCredentialNotFound
		}
		log.Err(err).Str("func", "*credentialRepository.UpdateCredentialHash").Int64("user_id", userID).Msg("error: updating credential hash")
		return models.Credential{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return updated, nil
}
