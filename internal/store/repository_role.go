package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
)

// roleRepository is the PostgreSQL-backed implementation of [RoleRepository].
// It maintains the invariant that an account carries at most one ACTIVE role:
// assignment first deactivates every prior role, then inserts the new one,
// both inside the caller's transaction.
type roleRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRoleRepository constructs a [RoleRepository] backed by the provided
// database connection and logger.
func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRole persists a new role row and returns it with server-assigned
// fields. The caller decides the status; provisioning always inserts ACTIVE
// roles after deactivating the previous ones.
func (r *roleRepository) CreateRole(ctx context.Context, tx *sql.Tx, role models.Role) (models.Role, error) {
	log := logger.FromContext(ctx)

	row := querierFor(r.db, tx).QueryRowContext(ctx, createRole,
		role.UserID, role.OrganizationID, role.Name, role.Type, role.Status)

	var saved models.Role
	if err := row.Scan(&saved.ID, &saved.UserID, &saved.OrganizationID, &saved.Name, &saved.Type, &saved.Status, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		log.Err(err).Str("func", "*roleRepository.CreateRole").Int64("user_id", role.UserID).Msg("error: creating role")
		return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// DeactivateRoles flips every ACTIVE role of the account to INACTIVE.
// Zero affected rows is not an error: a freshly provisioned account has no
// roles to deactivate.
func (r *roleRepository) DeactivateRoles(ctx context.Context, tx *sql.Tx, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := querierFor(r.db, tx).ExecContext(ctx, deactivateUserRoles, userID); err != nil {
		log.Err(err).Str("func", "*roleRepository.DeactivateRoles").Int64("user_id", userID).Msg("failed to deactivate roles")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// GetActiveRole retrieves the account's current ACTIVE role.
//
// Returns [ErrRoleNotFound] when the account has no active role.
func (r *roleRepository) GetActiveRole(ctx context.Context, userID int64) (models.Role, error) {
	log := logger.FromContext(ctx)

	var role models.Role
	row := r.db.QueryRowContext(ctx, getActiveRoleByUserID, userID)

	if err := row.Scan(&role.ID, &role.UserID, &role.OrganizationID, &role.Name, &role.Type, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Role{}, ErrRoleNotFound
		}
		log.Err(err).Str("func", "*roleRepository.GetActiveRole").Int64("user_id", userID).Msg("error: scanning role")
		return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return role, nil
}

// UpdateRole applies an in-place change to an existing role identified by
// (roleID, userID). The organization is passed as an already-resolved ID so
// resolution and update share the caller's transaction.
//
// Returns [ErrRoleNotFound] when no row matches the identifier pair.
func (r *roleRepository) UpdateRole(ctx context.Context, tx *sql.Tx, roleID, userID int64, patch models.RolePatch, organizationID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRolePatchQuery(roleID, userID, patch, organizationID)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.UpdateRole").Int64("role_id", roleID).Msg("failed to build role patch query")
		return err
	}

	result, err := querierFor(r.db, tx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.UpdateRole").Int64("role_id", roleID).Msg("failed to execute role patch query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRoleNotFound
	}

	return nil
}
