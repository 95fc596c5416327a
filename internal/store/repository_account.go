package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
	"github.com/jackc/pgerrcode"
)

// accountRepository is the PostgreSQL-backed implementation of
// [AccountRepository]. It handles account creation, lookup, partial updates
// and the password-reset counters against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type accountRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAccountRepository constructs an [AccountRepository] backed by the
// provided database connection and logger.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	logger.Debug().Msg("creating account repository")
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAccount persists a new account record and returns the fully populated
// [models.Account] with server-assigned fields (ID, CreatedAt, UpdatedAt).
// The email is lowercased by the INSERT itself so uniqueness stays
// case-insensitive regardless of caller normalization.
//
// When tx is non-nil the INSERT joins the caller's transaction; provisioning
// runs account, credential, organization and role writes as one unit.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *accountRepository) CreateAccount(ctx context.Context, tx *sql.Tx, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	attrs, err := json.Marshal(account.Attributes)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error marshalling account attributes")
		return models.Account{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := querierFor(r.db, tx).QueryRowContext(ctx, createAccount,
		account.Email, account.FirstName, account.LastName, account.Phone, account.Status,
		account.AddressLine1, account.AddressLine2, account.City, account.Country,
		account.ZipCode, account.Designation, attrs)

	saved, err := scanAccount(row)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error: creating account")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Account{}, ErrEmailAlreadyExists
		default:
			return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return saved, nil
}

// GetAccountByID retrieves a single account by its primary key.
//
// Returns [ErrNoAccountWasFound] when no row matches.
func (r *accountRepository) GetAccountByID(ctx context.Context, id int64) (models.Account, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getAccountByID, id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNoAccountWasFound
		}
		log.Err(err).Str("func", "*accountRepository.GetAccountByID").Int64("account_id", id).Msg("error: scanning account")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return account, nil
}

// FindAccountByEmail retrieves the account whose email matches the given one,
// compared case-insensitively.
//
// Returns [ErrNoAccountWasFound] when no row matches. Callers in the
// authentication path are expected to collapse that into a generic
// invalid-credentials error so probing for registered emails stays blind.
func (r *accountRepository) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findAccountByEmail, email)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNoAccountWasFound
		}
		log.Err(err).Str("func", "*accountRepository.FindAccountByEmail").Msg("error: scanning account")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return account, nil
}

// UpdateAccount applies a partial update to the account row. Only the fields
// the patch sets are written; everything else keeps its stored value.
//
// Returns [ErrNoAccountWasFound] when the account does not exist. A patch
// cannot change the email, so no uniqueness conflict can arise here.
func (r *accountRepository) UpdateAccount(ctx context.Context, tx *sql.Tx, accountID int64, patch models.AccountPatch) error {
	log := logger.FromContext(ctx)

	query, args, err := buildAccountPatchQuery(accountID, patch)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.UpdateAccount").Int64("account_id", accountID).Msg("failed to build patch query")
		return err
	}

	result, err := querierFor(r.db, tx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.UpdateAccount").Int64("account_id", accountID).Msg("failed to execute patch query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.UpdateAccount").Int64("account_id", accountID).Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoAccountWasFound
	}

	return nil
}

// UpdateResetState persists the password-reset fields (key, counter and both
// timestamps) computed by the service layer and returns the updated account.
//
// The counters are only ever written through this method so a denied reset
// request leaves the stored state untouched.
func (r *accountRepository) UpdateResetState(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, updateAccountResetState,
		account.ID, account.ResetKey, account.ResetCount, account.ResetTimestamp, account.ResetKeyTimestamp)

	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNoAccountWasFound
		}
		log.Err(err).Str("func", "*accountRepository.UpdateResetState").Int64("account_id", account.ID).Msg("error: scanning account")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return updated, nil
}

// UpdateLastLogin stamps the account's last_login column with the database
// clock. Called after a successful credential verification.
func (r *accountRepository) UpdateLastLogin(ctx context.Context, accountID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateAccountLastLogin, accountID, time.Now().UTC())
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.UpdateLastLogin").Int64("account_id", accountID).Msg("failed to update last login")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoAccountWasFound
	}

	return nil
}

// scanAccount reads one users row into a [models.Account]. Nullable columns
// (last_login, reset timestamps) map to their Go zero values, and the jsonb
// attributes column is unmarshalled into the side map.
func scanAccount(s scanner) (models.Account, error) {
	var account models.Account
	var lastLogin, resetTimestamp, resetKeyTimestamp sql.NullTime
	var resetKey sql.NullString
	var attrs []byte

	err := s.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.Phone,
		&account.Status,
		&account.AddressLine1,
		&account.AddressLine2,
		&account.City,
		&account.Country,
		&account.ZipCode,
		&account.Designation,
		&lastLogin,
		&resetKey,
		&account.ResetCount,
		&resetTimestamp,
		&resetKeyTimestamp,
		&attrs,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return models.Account{}, err
	}

	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}
	account.ResetKey = resetKey.String
	account.ResetTimestamp = resetTimestamp.Time
	account.ResetKeyTimestamp = resetKeyTimestamp.Time

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &account.Attributes); err != nil {
			return models.Account{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
	}

	return account, nil
}
