package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/validators"
	"github.com/avetrov/go-idm-core/models"
)

// provisionService is the concrete implementation of [AccountProvisioner].
// Every mutating workflow runs one READ COMMITTED transaction covering all
// touched tables, with rollback guaranteed on any error path.
type provisionService struct {
	db                   *store.DB
	accountRepository    store.AccountRepository
	roleRepository       store.RoleRepository
	organizationResolver OrganizationResolver
	credentialManager    CredentialManager
	validator            validators.Validator
	logger               *logger.Logger
}

// NewProvisionService constructs an [AccountProvisioner] wired to the given
// repositories and collaborators.
func NewProvisionService(
	db *store.DB,
	accountRepository store.AccountRepository,
	roleRepository store.RoleRepository,
	organizationResolver OrganizationResolver,
	credentialManager CredentialManager,
	validator validators.Validator,
	logger *logger.Logger,
) AccountProvisioner {
	return &provisionService{
		db:                   db,
		accountRepository:    accountRepository,
		roleRepository:       roleRepository,
		organizationResolver: organizationResolver,
		credentialManager:    credentialManager,
		validator:            validator,
		logger:               logger,
	}
}

// CreateAccount provisions a new account: the account row, the optional
// organization with an ACTIVE role binding, and the credential, all in one
// transaction. The plaintext password is stripped from the input before the
// account row is written and only ever reaches the credential manager.
//
// Returns the persisted account or:
//   - [ErrEmailAlreadyExists] when the email is already taken (checked both
//     before the transaction and at the unique index).
//   - A wrapped [ErrInvalidEmail] / [ErrInvalidDataProvided] for validation
//     failures, detected before any row is written.
//   - A wrapped storage error for any persistence failure, after rollback.
func (s *provisionService) CreateAccount(ctx context.Context, input models.AccountInput) (models.Account, error) {
	log := logger.FromContext(ctx)

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.accountRepository.FindAccountByEmail(ctx, input.Email); err == nil {
		log.Warn().Str("email", input.Email).Msg("account already exists")
		return models.Account{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, store.ErrNoAccountWasFound) {
		log.Err(err).Msg("duplicate check failed")
		return models.Account{}, fmt.Errorf("duplicate check failed: %w", err)
	}

	if err := s.validator.Validate(ctx, input); err != nil {
		log.Error().Err(err).Msg("invalid account input")
		return models.Account{}, wrapValidationError(err)
	}

	password := input.Password
	input.Password = ""

	account := input.Account
	account.Status = models.StatusProcessing

	saved, err := s.provisionAccountTx(ctx, account, password, input.Organization, input.Role)
	if err != nil && s.db.IsRetryable(err) {
		// Deadlocks and serialization failures leave no rows behind, so the
		// whole transaction is safe to run once more.
		log.Warn().Err(err).Str("email", account.Email).Msg("transient database error, retrying provisioning")
		saved, err = s.provisionAccountTx(ctx, account, password, input.Organization, input.Role)
	}
	if err != nil {
		return models.Account{}, err
	}

	log.Info().Int64("account_id", saved.ID).Msg("account provisioned")

	return saved, nil
}

// provisionAccountTx runs one provisioning attempt: account row, optional
// organization and role, credential, all inside a single transaction.
func (s *provisionService) provisionAccountTx(ctx context.Context, account models.Account, password string, organization *models.Organization, roleOverride *models.Role) (models.Account, error) {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginReadCommitted(ctx)
	if err != nil {
		log.Err(err).Msg("failed to begin provisioning transaction")
		return models.Account{}, err
	}
	defer tx.Rollback()

	saved, err := s.accountRepository.CreateAccount(ctx, tx, account)
	if err != nil {
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return models.Account{}, ErrEmailAlreadyExists
		}
		log.Err(err).Msg("account creation failed")
		return models.Account{}, fmt.Errorf("account creation failed: %w", err)
	}

	if organization != nil {
		if err := s.assignRole(ctx, tx, saved.ID, *organization, roleOverride); err != nil {
			return models.Account{}, err
		}
	}

	if _, err := s.credentialManager.UpsertCredential(ctx, tx, saved.ID, password, true); err != nil {
		return models.Account{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Int64("account_id", saved.ID).Msg("failed to commit provisioning transaction")
		return models.Account{}, fmt.Errorf("%w: %w", store.ErrCommitingTransaction, err)
	}

	return saved, nil
}

// UpdateAccount applies a partial update. An embedded role patch is handled
// first, inside the same transaction: without a role id every existing role
// is deactivated and a fresh ACTIVE one inserted; with a role id that role is
// updated in place. Account-level fields follow, written only when the patch
// actually sets any.
func (s *provisionService) UpdateAccount(ctx context.Context, accountID int64, patch models.AccountPatch) error {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, patch); err != nil {
		log.Error().Err(err).Int64("account_id", accountID).Msg("invalid account patch")
		return wrapValidationError(err)
	}
	if patch.Role != nil && patch.Role.ID == 0 && patch.Role.Organization == nil {
		log.Error().Int64("account_id", accountID).Msg("role replacement requires an organization")
		return fmt.Errorf("%w: role replacement requires an organization", ErrInvalidDataProvided)
	}

	tx, err := s.db.BeginReadCommitted(ctx)
	if err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("failed to begin update transaction")
		return err
	}
	defer tx.Rollback()

	if patch.Role != nil {
		if err := s.applyRolePatch(ctx, tx, accountID, *patch.Role); err != nil {
			return err
		}
	}

	if !patch.IsZero() {
		if err := s.accountRepository.UpdateAccount(ctx, tx, accountID, patch); err != nil {
			if errors.Is(err, store.ErrNoAccountWasFound) {
				return ErrAccountNotFound
			}
			log.Err(err).Int64("account_id", accountID).Msg("account patch failed")
			return fmt.Errorf("account patch failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("failed to commit update transaction")
		return fmt.Errorf("%w: %w", store.ErrCommitingTransaction, err)
	}

	return nil
}

// GetAccount retrieves a single account by id, together with its current
// ACTIVE role when one exists.
//
// Returns [ErrAccountNotFound] when no such account exists.
func (s *provisionService) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	account, err := s.accountRepository.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNoAccountWasFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}

	role, err := s.roleRepository.GetActiveRole(ctx, accountID)
	switch {
	case err == nil:
		account.Role = &role
	case errors.Is(err, store.ErrRoleNotFound):
		// accounts without an organization binding have no active role
	default:
		return models.Account{}, fmt.Errorf("active role lookup failed: %w", err)
	}

	return account, nil
}

// assignRole resolves the organization and binds the account to it through a
// fresh ACTIVE role, deactivating any prior roles first. Role name and type
// default to an EMPLOYEE role when no override is given.
func (s *provisionService) assignRole(ctx context.Context, tx *sql.Tx, accountID int64, organization models.Organization, override *models.Role) error {
	log := logger.FromContext(ctx)

	resolved, err := s.organizationResolver.Resolve(ctx, tx, organization.Name, organization.Type)
	if err != nil {
		return err
	}

	if err := s.roleRepository.DeactivateRoles(ctx, tx, accountID); err != nil {
		return err
	}

	role := models.Role{
		UserID:         accountID,
		OrganizationID: resolved.ID,
		Name:           organization.Name,
		Type:           models.RoleTypeEmployee,
		Status:         models.RoleStatusActive,
	}
	if override != nil {
		if override.Name != "" {
			role.Name = override.Name
		}
		if override.Type != "" {
			role.Type = override.Type
		}
	}

	if _, err := s.roleRepository.CreateRole(ctx, tx, role); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("role creation failed")
		return fmt.Errorf("role creation failed: %w", err)
	}

	return nil
}

// applyRolePatch routes an embedded role patch: replacement (no id) or
// in-place update (with id).
func (s *provisionService) applyRolePatch(ctx context.Context, tx *sql.Tx, accountID int64, rolePatch models.RolePatch) error {
	log := logger.FromContext(ctx)

	if rolePatch.ID == 0 {
		override := &models.Role{}
		if rolePatch.Name != nil {
			override.Name = *rolePatch.Name
		}
		if rolePatch.Type != nil {
			override.Type = *rolePatch.Type
		}
		return s.assignRole(ctx, tx, accountID, *rolePatch.Organization, override)
	}

	var organizationID int64
	if rolePatch.Organization != nil {
		resolved, err := s.organizationResolver.Resolve(ctx, tx, rolePatch.Organization.Name, rolePatch.Organization.Type)
		if err != nil {
			return err
		}
		organizationID = resolved.ID
	}

	if err := s.roleRepository.UpdateRole(ctx, tx, rolePatch.ID, accountID, rolePatch, organizationID); err != nil {
		if errors.Is(err, store.ErrRoleNotFound) {
			return fmt.Errorf("%w: role %d", ErrRoleNotFound, rolePatch.ID)
		}
		log.Err(err).Int64("account_id", accountID).Int64("role_id", rolePatch.ID).Msg("role patch failed")
		return fmt.Errorf("role patch failed: %w", err)
	}

	return nil
}

// wrapValidationError maps validator sentinels onto the service taxonomy:
// email-shape failures surface as [ErrInvalidEmail], everything else as
// [ErrInvalidDataProvided].
func wrapValidationError(err error) error {
	if errors.Is(err, validators.ErrInvalidEmail) || errors.Is(err, validators.ErrEmptyEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
}
