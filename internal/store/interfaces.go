package store

import (
	"context"
	"database/sql"

	"github.com/avetrov/go-idm-core/models"
)

// Repository methods that participate in multi-table provisioning accept an
// optional *sql.Tx. A nil tx means the statement runs directly against the
// connection pool; a non-nil tx joins the caller's transaction so the whole
// flow commits or rolls back as one unit.

type AccountRepository interface {
	CreateAccount(ctx context.Context, tx *sql.Tx, account models.Account) (models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	UpdateAccount(ctx context.Context, tx *sql.Tx, accountID int64, patch models.AccountPatch) error
	UpdateResetState(ctx context.Context, account models.Account) (models.Account, error)
	UpdateLastLogin(ctx context.Context, accountID int64) error
}

type CredentialRepository interface {
	CreateCredential(ctx context.Context, tx *sql.Tx, credential models.Credential) (models.Credential, error)
	GetCredentialByUserID(ctx context.Context, tx *sql.Tx, userID int64) (models.Credential, error)
	UpdateCredentialHash(ctx context.Context, tx *sql.Tx, userID int64, passwordHash string) (models.Credential, error)
}

type OrganizationRepository interface {
	FindOrganizationByNameAndType(ctx context.Context, tx *sql.Tx, name, orgType string) (models.Organization, error)
	CreateOrganization(ctx context.Context, tx *sql.Tx, organization models.Organization) (models.Organization, error)
}

type RoleRepository interface {
	CreateRole(ctx context.Context, tx *sql.Tx, role models.Role) (models.Role, error)
	DeactivateRoles(ctx context.Context, tx *sql.Tx, userID int64) error
	GetActiveRole(ctx context.Context, userID int64) (models.Role, error)
	UpdateRole(ctx context.Context, tx *sql.Tx, roleID, userID int64, patch models.RolePatch, organizationID int64) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) (models.Session, error)
	DeleteSession(ctx context.Context, userID int64, token string) error
}
