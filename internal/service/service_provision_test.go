package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/mock"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/validators"
	"github.com/avetrov/go-idm-core/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type provisionMocks struct {
	accountRepo *mock.MockAccountRepository
	roleRepo    *mock.MockRoleRepository
	resolver    *mock.MockOrganizationResolver
	credentials *mock.MockCredentialManager
	dbMock      sqlmock.Sqlmock
}

// newTestProvisionSvc is a helper creating a provisionService with mocked
// repositories and a sqlmock-backed transaction source. The validator is the
// real one so validation failures are exercised end to end.
func newTestProvisionSvc(t *testing.T, ctrl *gomock.Controller) (*provisionService, provisionMocks) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := provisionMocks{
		accountRepo: mock.NewMockAccountRepository(ctrl),
		roleRepo:    mock.NewMockRoleRepository(ctrl),
		resolver:    mock.NewMockOrganizationResolver(ctrl),
		credentials: mock.NewMockCredentialManager(ctrl),
		dbMock:      dbMock,
	}

	svc := &provisionService{
		db:                   store.NewDB(db, logger.NewLogger("test")),
		accountRepository:    m.accountRepo,
		roleRepository:       m.roleRepo,
		organizationResolver: m.resolver,
		credentialManager:    m.credentials,
		validator:            validators.NewAccountValidator(),
		logger:               logger.NewLogger("test"),
	}

	return svc, m
}

func validInput() models.AccountInput {
	return models.AccountInput{
		Account: models.Account{
			Email:     "john.doe@example.com",
			FirstName: "John",
			LastName:  "Doe",
		},
		Password: "s3cret!",
	}
}

func TestProvisionService_CreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	input := validInput()

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	var created models.Account
	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *sql.Tx, account models.Account) (models.Account, error) {
				require.NotNil(t, tx)
				created = account
				account.ID = 42
				return account, nil
			}),
		m.credentials.EXPECT().UpsertCredential(ctx, gomock.Any(), int64(42), "s3cret!", true).Return(models.Credential{ID: 1, UserID: 42}, nil),
	)

	saved, err := svc.CreateAccount(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	assert.Equal(t, models.StatusProcessing, created.Status)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_CreateAccount_WithOrganization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	input := validInput()
	input.Organization = &models.Organization{Name: "Acme", Type: "CUSTOMER"}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *sql.Tx, account models.Account) (models.Account, error) {
				account.ID = 42
				return account, nil
			}),
		m.resolver.EXPECT().Resolve(ctx, gomock.Any(), "Acme", "CUSTOMER").Return(models.Organization{ID: 7, Name: "Acme", Type: "CUSTOMER"}, nil),
		m.roleRepo.EXPECT().DeactivateRoles(ctx, gomock.Any(), int64(42)).Return(nil),
		m.roleRepo.EXPECT().CreateRole(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *sql.Tx, role models.Role) (models.Role, error) {
				assert.Equal(t, int64(42), role.UserID)
				assert.Equal(t, int64(7), role.OrganizationID)
				assert.Equal(t, "Acme", role.Name)
				assert.Equal(t, models.RoleTypeEmployee, role.Type)
				assert.Equal(t, models.RoleStatusActive, role.Status)
				role.ID = 1
				return role, nil
			}),
		m.credentials.EXPECT().UpsertCredential(ctx, gomock.Any(), int64(42), "s3cret!", true).Return(models.Credential{ID: 1, UserID: 42}, nil),
	)

	_, err := svc.CreateAccount(ctx, input)

	require.NoError(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_CreateAccount_EmailNormalised(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	input := validInput()
	input.Email = "  John.Doe@Example.COM "

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *sql.Tx, account models.Account) (models.Account, error) {
				assert.Equal(t, "john.doe@example.com", account.Email)
				account.ID = 42
				return account, nil
			}),
		m.credentials.EXPECT().UpsertCredential(ctx, gomock.Any(), int64(42), "s3cret!", true).Return(models.Credential{}, nil),
	)

	_, err := svc.CreateAccount(ctx, input)

	require.NoError(t, err)
}

func TestProvisionService_CreateAccount_DuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{ID: 1}, nil)

	_, err := svc.CreateAccount(ctx, validInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	// no transaction was ever opened
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

// The unique index is the last line of defence against a concurrent signup
// slipping between the duplicate check and the insert.
func TestProvisionService_CreateAccount_DuplicateRaceAtIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).Return(models.Account{}, store.ErrEmailAlreadyExists),
	)

	_, err := svc.CreateAccount(ctx, validInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_CreateAccount_RetriesOnDeadlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()
	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).
			Return(models.Account{}, &pgconn.PgError{Code: pgerrcode.DeadlockDetected}),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *sql.Tx, account models.Account) (models.Account, error) {
				account.ID = 42
				return account, nil
			}),
		m.credentials.EXPECT().UpsertCredential(ctx, gomock.Any(), int64(42), "s3cret!", true).Return(models.Credential{ID: 1, UserID: 42}, nil),
	)

	saved, err := svc.CreateAccount(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_CreateAccount_NoRetryOnPermanentError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).
			Return(models.Account{}, &pgconn.PgError{Code: pgerrcode.NotNullViolation}),
	)

	_, err := svc.CreateAccount(ctx, validInput())

	require.Error(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_CreateAccount_InvalidEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	input := validInput()
	input.Email = "not-an-email"

	m.accountRepo.EXPECT().FindAccountByEmail(ctx, "not-an-email").Return(models.Account{}, store.ErrNoAccountWasFound)

	_, err := svc.CreateAccount(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestProvisionService_CreateAccount_RollbackOnCredentialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()

	gomock.InOrder(
		m.accountRepo.EXPECT().FindAccountByEmail(ctx, "john.doe@example.com").Return(models.Account{}, store.ErrNoAccountWasFound),
		m.accountRepo.EXPECT().CreateAccount(ctx, gomock.Any(), gomock.Any()).Return(models.Account{ID: 42}, nil),
		m.credentials.EXPECT().UpsertCredential(ctx, gomock.Any(), int64(42), "s3cret!", true).Return(models.Credential{}, errors.New("hash store unavailable")),
	)

	_, err := svc.CreateAccount(ctx, validInput())

	require.Error(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_UpdateAccount_AccountFieldsOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	firstName := "Jane"
	patch := models.AccountPatch{FirstName: &firstName}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	m.accountRepo.EXPECT().UpdateAccount(ctx, gomock.Any(), int64(42), patch).Return(nil)

	err := svc.UpdateAccount(ctx, 42, patch)

	require.NoError(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_UpdateAccount_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	firstName := "Jane"
	patch := models.AccountPatch{FirstName: &firstName}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()

	m.accountRepo.EXPECT().UpdateAccount(ctx, gomock.Any(), int64(42), patch).Return(store.ErrNoAccountWasFound)

	err := svc.UpdateAccount(ctx, 42, patch)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

// A role replacement (no role id) must name the organization the new role
// binds to; rejecting early keeps the transaction from ever being opened.
func TestProvisionService_UpdateAccount_RoleReplacementRequiresOrganization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	patch := models.AccountPatch{Role: &models.RolePatch{}}

	err := svc.UpdateAccount(ctx, 42, patch)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_UpdateAccount_RoleReplacement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	roleType := models.RoleTypeAdmin
	patch := models.AccountPatch{
		Role: &models.RolePatch{
			Type:         &roleType,
			Organization: &models.Organization{Name: "Acme", Type: "CUSTOMER"},
		},
	}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	gomock.InOrder(
		m.resolver.EXPECT().Resolve(ctx, gomock.Any(), "Acme", "CUSTOMER").Return(models.Organization{ID: 7}, nil),
		m.roleRepo.EXPECT().DeactivateRoles(ctx, gomock.Any(), int64(42)).Return(nil),
		m.roleRepo.EXPECT().CreateRole(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *sql.Tx, role models.Role) (models.Role, error) {
				assert.Equal(t, models.RoleTypeAdmin, role.Type)
				assert.Equal(t, models.RoleStatusActive, role.Status)
				return role, nil
			}),
	)

	// the patch carries no account-level fields, so no account update runs
	err := svc.UpdateAccount(ctx, 42, patch)

	require.NoError(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_UpdateAccount_RoleInPlaceUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	roleName := "Lead"
	rolePatch := models.RolePatch{ID: 9, Name: &roleName}
	patch := models.AccountPatch{Role: &rolePatch}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectCommit()

	m.roleRepo.EXPECT().UpdateRole(ctx, gomock.Any(), int64(9), int64(42), rolePatch, int64(0)).Return(nil)

	err := svc.UpdateAccount(ctx, 42, patch)

	require.NoError(t, err)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_UpdateAccount_RoleInPlaceUpdate_MissingRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	roleName := "Lead"
	rolePatch := models.RolePatch{ID: 9, Name: &roleName}
	patch := models.AccountPatch{Role: &rolePatch}

	m.dbMock.ExpectBegin()
	m.dbMock.ExpectRollback()

	m.roleRepo.EXPECT().UpdateRole(ctx, gomock.Any(), int64(9), int64(42), rolePatch, int64(0)).Return(store.ErrRoleNotFound)

	err := svc.UpdateAccount(ctx, 42, patch)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, m.dbMock.ExpectationsWereMet())
}

func TestProvisionService_GetAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.accountRepo.EXPECT().GetAccountByID(ctx, int64(42)).Return(models.Account{ID: 42, Email: "john.doe@example.com"}, nil)
	m.roleRepo.EXPECT().GetActiveRole(ctx, int64(42)).Return(models.Role{ID: 7, UserID: 42, Name: "Acme", Status: models.RoleStatusActive}, nil)

	got, err := svc.GetAccount(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	require.NotNil(t, got.Role)
	assert.Equal(t, int64(7), got.Role.ID)
}

func TestProvisionService_GetAccount_NoActiveRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.accountRepo.EXPECT().GetAccountByID(ctx, int64(42)).Return(models.Account{ID: 42}, nil)
	m.roleRepo.EXPECT().GetActiveRole(ctx, int64(42)).Return(models.Role{}, store.ErrRoleNotFound)

	got, err := svc.GetAccount(ctx, 42)

	require.NoError(t, err)
	assert.Nil(t, got.Role)
}

func TestProvisionService_GetAccount_RoleLookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.accountRepo.EXPECT().GetAccountByID(ctx, int64(42)).Return(models.Account{ID: 42}, nil)
	m.roleRepo.EXPECT().GetActiveRole(ctx, int64(42)).Return(models.Role{}, store.ErrExecutingQuery)

	_, err := svc.GetAccount(ctx, 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrExecutingQuery)
}

func TestProvisionService_GetAccount_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestProvisionSvc(t, ctrl)
	ctx := context.Background()

	m.accountRepo.EXPECT().GetAccountByID(ctx, int64(99)).Return(models.Account{}, store.ErrNoAccountWasFound)

	_, err := svc.GetAccount(ctx, 99)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
