package store

import (
	"context"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
)

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository]. One row per live login in the "tokens" table,
// inserted at login and removed at logout.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSessionRepository constructs a [SessionRepository] backed by the
// provided database connection and logger.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession persists a new session row for a successful login and
// returns it with server-assigned fields.
func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session) (models.Session, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createSession, session.UserID, session.Token, session.DeviceOS)

	var saved models.Session
	if err := row.Scan(&saved.ID, &saved.UserID, &saved.Token, &saved.DeviceOS, &saved.CreatedAt); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Int64("user_id", session.UserID).Msg("error: creating session")
		return models.Session{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// DeleteSession removes the session row matching (userID, token).
//
// Returns [ErrSessionNotFound] when no such session exists, which logout
// surfaces as an unauthorized request.
func (r *sessionRepository) DeleteSession(ctx context.Context, userID int64, token string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteSession, userID, token)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.DeleteSession").Int64("user_id", userID).Msg("failed to delete session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
