package service

import (
	"context"
	"database/sql"

	"github.com/avetrov/go-idm-core/models"
)

// AccountProvisioner drives the multi-table account workflows. Each mutating
// call runs one READ COMMITTED transaction covering the account row, the
// optional organization and role rows, and the credential.
type AccountProvisioner interface {
	CreateAccount(ctx context.Context, input models.AccountInput) (models.Account, error)
	UpdateAccount(ctx context.Context, accountID int64, patch models.AccountPatch) error
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)
}

// OrganizationResolver finds or creates the organization identified by the
// (name, type) natural key, inside the caller's transaction when one is given.
type OrganizationResolver interface {
	Resolve(ctx context.Context, tx *sql.Tx, name, orgType string) (models.Organization, error)
}

// CredentialManager owns the hashed secret lifecycle. UpsertCredential hashes
// the plaintext and either replaces the existing hash in place or inserts the
// account's first credential. When sendWelcome is set, a welcome notification
// is queued for background dispatch.
type CredentialManager interface {
	UpsertCredential(ctx context.Context, tx *sql.Tx, accountID int64, plaintext string, sendWelcome bool) (models.Credential, error)
}

type AuthService interface {
	VerifyCredentials(ctx context.Context, email, password string) (models.Account, error)
	Login(ctx context.Context, email, password, deviceOS string) (models.Account, models.Token, error)
	Logout(ctx context.Context, userID int64, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResendWelcomeEmail(ctx context.Context, email string) error
	CreateToken(ctx context.Context, account models.Account) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// NotificationDispatcher performs one synchronous, awaited dispatch to the
// external email service.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification models.Notification) error
}

// NotificationQueue accepts fire-and-forget notifications consumed by the
// background dispatch worker. Enqueue never blocks the caller's workflow.
type NotificationQueue interface {
	Enqueue(notification models.Notification)
}

// LoginLimiter throttles authentication attempts per identifier. A nil
// limiter disables throttling entirely. Reset clears the identifier's
// counter once its credentials verify, so earlier failed attempts do not
// linger against it.
type LoginLimiter interface {
	Allow(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// KeyGenerator produces opaque single-use secrets such as reset keys.
type KeyGenerator interface {
	Generate() string
}
