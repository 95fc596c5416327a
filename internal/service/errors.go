package service

import "errors"

var (
	// ErrInvalidDataProvided covers structural validation failures other than
	// the email shape.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidEmail is returned when the email fails the local@domain.tld
	// shape check.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrEmailAlreadyExists is returned when provisioning collides with an
	// existing account, either at the explicit duplicate check or at the
	// unique index.
	ErrEmailAlreadyExists = errors.New("account with this email already exists")

	// ErrAccountNotFound is returned by lookups and password-reset flows for
	// a non-existent account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRoleNotFound is returned when an in-place role patch targets a role
	// id the account does not have.
	ErrRoleNotFound = errors.New("role not found")

	// ErrInvalidCredentials is the deliberately generic authentication
	// failure: empty email, unknown email and missing credential all collapse
	// into it so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is the distinct failure for a present credential whose
	// hash does not match the supplied password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrResetLimitExceeded is returned when an account exhausts its daily
	// password-reset allowance.
	ErrResetLimitExceeded = errors.New("password reset request limit exceeded")

	// ErrTooManyLoginAttempts is returned when the optional login throttle
	// denies further attempts for the identifier.
	ErrTooManyLoginAttempts = errors.New("too many login attempts")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrHashingPassword is returned when bcrypt fails on the plaintext,
	// aborting the surrounding transaction.
	ErrHashingPassword = errors.New("failed to hash password")

	// ErrNotificationDispatchFailed is returned when an awaited notification
	// dispatch (the reset-password mail) does not succeed.
	ErrNotificationDispatchFailed = errors.New("notification dispatch failed")
)
