package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/utils"
	"github.com/avetrov/go-idm-core/models"
)

// authService is the concrete implementation of AuthService.
// It handles credential verification, the session-token lifecycle and the
// rate-limited password-reset flow.
type authService struct {
	// accountRepository is the data-access layer for account lookups and the
	// reset-state columns.
	accountRepository store.AccountRepository

	// credentialRepository reads the stored bcrypt hash during verification.
	credentialRepository store.CredentialRepository

	// sessionRepository persists one row per live login.
	sessionRepository store.SessionRepository

	// dispatcher performs the awaited reset-password mail dispatch.
	dispatcher NotificationDispatcher

	// queue carries fire-and-forget welcome notifications.
	queue NotificationQueue

	// loginLimiter throttles attempts per email. Nil disables throttling.
	loginLimiter LoginLimiter

	// keyGenerator mints the opaque reset keys.
	keyGenerator KeyGenerator

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// resetDailyLimit caps reset requests per UTC calendar day. Zero selects
	// the built-in default.
	resetDailyLimit int

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given repositories
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(
	accountRepository store.AccountRepository,
	credentialRepository store.CredentialRepository,
	sessionRepository store.SessionRepository,
	dispatcher NotificationDispatcher,
	queue NotificationQueue,
	loginLimiter LoginLimiter,
	cfg config.Auth,
	logger *logger.Logger,
) AuthService {
	return &authService{
		accountRepository:    accountRepository,
		credentialRepository: credentialRepository,
		sessionRepository:    sessionRepository,
		dispatcher:           dispatcher,
		queue:                queue,
		loginLimiter:         loginLimiter,
		keyGenerator:         utils.NewUUIDGenerator(),
		tokenSignKey:         cfg.TokenSignKey,
		tokenIssuer:          cfg.TokenIssuer,
		tokenDuration:        cfg.TokenDuration,
		resetDailyLimit:      cfg.ResetDailyLimit,
		logger:               logger,
	}
}

// VerifyCredentials authenticates an email/password pair.
//
// The error contract is deliberately asymmetric: an empty email, an unknown
// email and an account without a credential all collapse to the generic
// [ErrInvalidCredentials], while a present credential whose hash does not
// match fails with the distinct [ErrWrongPassword].
func (a *authService) VerifyCredentials(ctx context.Context, email, password string) (models.Account, error) {
	log := logger.FromContext(ctx)

	if email == "" {
		return models.Account{}, ErrInvalidCredentials
	}

	account, err := a.accountRepository.FindAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNoAccountWasFound) {
			return models.Account{}, ErrInvalidCredentials
		}
		log.Err(err).Msg("account lookup failed during verification")
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}

	credential, err := a.credentialRepository.GetCredentialByUserID(ctx, nil, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrCredentialNotFound) {
			return models.Account{}, ErrInvalidCredentials
		}
		log.Err(err).Int64("account_id", account.ID).Msg("credential lookup failed during verification")
		return models.Account{}, fmt.Errorf("credential lookup failed: %w", err)
	}

	if err := utils.VerifyPassword(credential.PasswordHash, password); err != nil {
		log.Warn().Int64("account_id", account.ID).Msg("wrong password")
		return models.Account{}, ErrWrongPassword
	}

	return account, nil
}

// Login authenticates the account, issues a signed JWT, persists the session
// row and stamps last_login. The optional throttle is consulted before any
// credential work so a flooded identifier never reaches the database.
func (a *authService) Login(ctx context.Context, email, password, deviceOS string) (models.Account, models.Token, error) {
	log := logger.FromContext(ctx)

	if a.loginLimiter != nil {
		if err := a.loginLimiter.Allow(ctx, strings.ToLower(email)); err != nil {
			log.Warn().Str("email", email).Msg("login throttled")
			return models.Account{}, models.Token{}, fmt.Errorf("%w: %w", ErrTooManyLoginAttempts, err)
		}
	}

	account, err := a.VerifyCredentials(ctx, email, password)
	if err != nil {
		return models.Account{}, models.Token{}, err
	}

	// Verified credentials clear the throttle counter; a Redis hiccup here
	// only delays the window expiry, so the error is logged and ignored.
	if a.loginLimiter != nil {
		if err := a.loginLimiter.Reset(ctx, strings.ToLower(email)); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("failed to reset login throttle")
		}
	}

	token, err := a.CreateToken(ctx, account)
	if err != nil {
		return models.Account{}, models.Token{}, err
	}

	if _, err := a.sessionRepository.CreateSession(ctx, models.Session{
		UserID:   account.ID,
		Token:    token.SignedString,
		DeviceOS: deviceOS,
	}); err != nil {
		log.Err(err).Int64("account_id", account.ID).Msg("session creation failed")
		return models.Account{}, models.Token{}, fmt.Errorf("session creation failed: %w", err)
	}

	if err := a.accountRepository.UpdateLastLogin(ctx, account.ID); err != nil {
		log.Err(err).Int64("account_id", account.ID).Msg("last login update failed")
		return models.Account{}, models.Token{}, fmt.Errorf("last login update failed: %w", err)
	}

	return account, token, nil
}

// Logout removes the session row matching (userID, token). Deleting an
// absent session is not an error, so repeated logouts are idempotent.
func (a *authService) Logout(ctx context.Context, userID int64, token string) error {
	log := logger.FromContext(ctx)

	if err := a.sessionRepository.DeleteSession(ctx, userID, token); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		log.Err(err).Int64("account_id", userID).Msg("session deletion failed")
		return fmt.Errorf("session deletion failed: %w", err)
	}

	return nil
}

// RequestPasswordReset runs the daily-limited reset flow: look up the
// account, advance the reset state machine, persist the new state and
// dispatch the reset-password mail. The dispatch is awaited; its failure
// surfaces as [ErrNotificationDispatchFailed] after the state was already
// persisted.
//
// A denied request (over the daily limit) persists nothing.
func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	account, err := a.accountRepository.FindAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNoAccountWasFound) {
			return ErrAccountNotFound
		}
		log.Err(err).Msg("account lookup failed for password reset")
		return fmt.Errorf("account lookup failed: %w", err)
	}

	updated, err := updateResetRequestLimit(account, time.Now().UTC(), a.resetDailyLimit, a.keyGenerator.Generate)
	if err != nil {
		log.Warn().Int64("account_id", account.ID).Int("reset_count", account.ResetCount).Msg("password reset request denied")
		return err
	}

	if _, err := a.accountRepository.UpdateResetState(ctx, updated); err != nil {
		log.Err(err).Int64("account_id", account.ID).Msg("failed to persist reset state")
		return fmt.Errorf("failed to persist reset state: %w", err)
	}

	if err := a.dispatcher.Dispatch(ctx, models.Notification{Template: models.TemplateResetPassword, AccountID: account.ID}); err != nil {
		log.Err(err).Int64("account_id", account.ID).Msg("reset-password dispatch failed")
		return fmt.Errorf("%w: %w", ErrNotificationDispatchFailed, err)
	}

	return nil
}

// ResendWelcomeEmail queues another welcome notification for the account.
// The dispatch itself is fire-and-forget; only a missing account fails.
func (a *authService) ResendWelcomeEmail(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	account, err := a.accountRepository.FindAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNoAccountWasFound) {
			return ErrAccountNotFound
		}
		log.Err(err).Msg("account lookup failed for welcome resend")
		return fmt.Errorf("account lookup failed: %w", err)
	}

	a.queue.Enqueue(models.Notification{Template: models.TemplateWelcome, AccountID: account.ID})

	return nil
}

// CreateToken issues a signed JWT for the given account.
//
// The token is signed with the configured tokenSignKey, carries the
// configured tokenIssuer as the "iss" claim, and expires after tokenDuration.
//
// Returns the token model on success or a wrapped error if JWT generation fails.
func (a *authService) CreateToken(ctx context.Context, account models.Account) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, account.ID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
