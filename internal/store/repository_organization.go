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

// organizationRepository is the PostgreSQL-backed implementation of
// [OrganizationRepository]. Organizations are shared tenant rows identified
// by the (name, type) natural key; both methods run inside the caller's
// provisioning transaction when one is supplied.
type organizationRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewOrganizationRepository constructs an [OrganizationRepository] backed by
// the provided database connection and logger.
func NewOrganizationRepository(db *DB, logger *logger.Logger) OrganizationRepository {
	logger.Debug().Msg("creating organization repository")
	return &organizationRepository{
		db:     db,
		logger: logger,
	}
}

// FindOrganizationByNameAndType retrieves the organization matching the
// exact (name, type) pair.
//
// An empty result surfaces as [sql.ErrNoRows] so the resolver can fall
// through to create.
func (r *organizationRepository) FindOrganizationByNameAndType(ctx context.Context, tx *sql.Tx, name, orgType string) (models.Organization, error) {
	log := logger.FromContext(ctx)

	var organization models.Organization
	row := querierFor(r.db, tx).QueryRowContext(ctx, findOrganizationByNameAndType, name, orgType)

	if err := row.Scan(&organization.ID, &organization.Name, &organization.Type, &organization.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Organization{}, sql.ErrNoRows
		}
		log.Err(err).Str("func", "*organizationRepository.FindOrganizationByNameAndType").Str("name", name).Str("type", orgType).Msg("error: scanning organization")
		return models.Organization{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return organization, nil
}

// CreateOrganization persists a new organization row and returns it with
// server-assigned fields.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) on the (name, type) index →
//     [ErrOrganizationConflict], meaning a concurrent transaction created
//     the same organization between the caller's find and this insert.
func (r *organizationRepository) CreateOrganization(ctx context.Context, tx *sql.Tx, organization models.Organization) (models.Organization, error) {
	log := logger.FromContext(ctx)

	row := querierFor(r.db, tx).QueryRowContext(ctx, createOrganization, organization.Name, organization.Type)

	var saved models.Organization
	if err := row.Scan(&saved.ID, &saved.Name, &saved.Type, &saved.CreatedAt); err != nil {
		log.Err(err).Str("func", "*organizationRepository.CreateOrganization").Str("name", organization.Name).Str("type", organization.Type).Msg("error: creating organization")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Organization{}, ErrOrganizationConflict
		default:
			return models.Organization{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return saved, nil
}
