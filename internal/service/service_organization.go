package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/models"
)

// organizationService is the concrete implementation of
// [OrganizationResolver]. Organizations are deduplicated on the (name, type)
// natural key: resolution is always find-before-create, and a lost creation
// race is absorbed by re-reading the winner's row.
type organizationService struct {
	organizationRepository store.OrganizationRepository
	logger                 *logger.Logger
}

// NewOrganizationService constructs an [OrganizationResolver] backed by the
// given repository.
func NewOrganizationService(organizationRepository store.OrganizationRepository, logger *logger.Logger) OrganizationResolver {
	return &organizationService{
		organizationRepository: organizationRepository,
		logger:                 logger,
	}
}

// Resolve returns the organization with the given (name, type), creating it
// when absent. Both the lookup and the insert run inside the caller's
// transaction when tx is non-nil.
//
// A unique-index collision on create means a concurrent caller created the
// same organization between our find and insert. Outside a transaction the
// winner's row is simply re-read. Inside a transaction the violation has
// already aborted it, so the conflict propagates and the caller retries the
// whole workflow.
func (s *organizationService) Resolve(ctx context.Context, tx *sql.Tx, name, orgType string) (models.Organization, error) {
	log := logger.FromContext(ctx)

	found, err := s.organizationRepository.FindOrganizationByNameAndType(ctx, tx, name, orgType)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).Str("name", name).Str("type", orgType).Msg("organization lookup failed")
		return models.Organization{}, fmt.Errorf("organization lookup failed: %w", err)
	}

	created, err := s.organizationRepository.CreateOrganization(ctx, tx, models.Organization{Name: name, Type: orgType})
	if err != nil {
		if errors.Is(err, store.ErrOrganizationConflict) && tx == nil {
			log.Warn().Str("name", name).Str("type", orgType).Msg("lost organization creation race, re-reading winner")
			return s.organizationRepository.FindOrganizationByNameAndType(ctx, tx, name, orgType)
		}
		log.Err(err).Str("name", name).Str("type", orgType).Msg("organization creation failed")
		return models.Organization{}, fmt.Errorf("organization creation failed: %w", err)
	}

	return created, nil
}
