package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var accountTestColumns = []string{
	"id", "email", "first_name", "last_name", "phone", "status",
	"address_line_1", "address_line_2", "city", "country", "zip_code", "designation",
	"last_login", "reset_key", "reset_count", "reset_timestamp", "reset_key_timestamp",
	"attributes", "created_at", "updated_at",
}

func newTestAccountRepo(t *testing.T) (*accountRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &accountRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func accountRow(id int64, email string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(accountTestColumns).
		AddRow(id, email, "John", "Doe", "+15550100", models.StatusProcessing,
			"1 Main St", "", "Springfield", "US", "12345", "Engineer",
			nil, nil, 0, nil, nil,
			[]byte(`{"department":"R&D"}`), now, now)
}

func TestCreateAccount_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	account := models.Account{
		Email:     "John.Doe@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Status:    models.StatusProcessing,
	}

	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(account.Email, account.FirstName, account.LastName, account.Phone, account.Status,
			account.AddressLine1, account.AddressLine2, account.City, account.Country,
			account.ZipCode, account.Designation, sqlmock.AnyArg()).
		WillReturnRows(accountRow(1, "john.doe@example.com", now))

	created, err := repo.CreateAccount(ctx, nil, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected ID=1, got %d", created.ID)
	}
	if created.Email != "john.doe@example.com" {
		t.Errorf("expected lowercased email, got %s", created.Email)
	}
	if created.Attributes["department"] != "R&D" {
		t.Errorf("expected attributes to round-trip, got %v", created.Attributes)
	}
}

func TestCreateAccount_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateAccount(ctx, nil, models.Account{Email: "john.doe@example.com"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestCreateAccount_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateAccount(ctx, nil, models.Account{Email: "john.doe@example.com"})
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestCreateAccount_InTransaction(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(accountRow(7, "jane@example.com", now))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}

	created, err := repo.CreateAccount(ctx, tx, models.Account{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("expected ID=7, got %d", created.ID)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit tx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetAccountByID_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(int64(42)).
		WillReturnRows(accountRow(42, "john.doe@example.com", now))

	account, err := repo.GetAccountByID(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != 42 {
		t.Errorf("expected ID=42, got %d", account.ID)
	}
}

func TestGetAccountByID_NotFound(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAccountByID(ctx, 42)
	if !errors.Is(err, ErrNoAccountWasFound) {
		t.Fatalf("expected ErrNoAccountWasFound, got %v", err)
	}
}

func TestFindAccountByEmail_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("John.Doe@Example.com").
		WillReturnRows(accountRow(42, "john.doe@example.com", now))

	account, err := repo.FindAccountByEmail(ctx, "John.Doe@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Email != "john.doe@example.com" {
		t.Errorf("expected stored email, got %s", account.Email)
	}
}

func TestFindAccountByEmail_NotFound(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindAccountByEmail(ctx, "missing@example.com")
	if !errors.Is(err, ErrNoAccountWasFound) {
		t.Fatalf("expected ErrNoAccountWasFound, got %v", err)
	}
}

func TestUpdateAccount_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	firstName := "Jane"
	patch := models.AccountPatch{FirstName: &firstName}

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateAccount(ctx, nil, 42, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateAccount_NotFound(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	status := models.StatusInactive
	patch := models.AccountPatch{Status: &status}

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAccount(ctx, nil, 42, patch)
	if !errors.Is(err, ErrNoAccountWasFound) {
		t.Fatalf("expected ErrNoAccountWasFound, got %v", err)
	}
}

func TestUpdateResetState_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	account := models.Account{
		ID:                42,
		ResetKey:          "0191e8a0-0000-7000-8000-000000000000",
		ResetCount:        3,
		ResetTimestamp:    now,
		ResetKeyTimestamp: now,
	}

	rows := sqlmock.NewRows(accountTestColumns).
		AddRow(42, "john.doe@example.com", "John", "Doe", "", models.StatusActive,
			"", "", "", "US", "", "",
			nil, account.ResetKey, account.ResetCount, now, now,
			[]byte(`{}`), now, now)

	mock.ExpectQuery("UPDATE users").
		WithArgs(account.ID, account.ResetKey, account.ResetCount, account.ResetTimestamp, account.ResetKeyTimestamp).
		WillReturnRows(rows)

	updated, err := repo.UpdateResetState(ctx, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ResetCount != 3 {
		t.Errorf("expected ResetCount=3, got %d", updated.ResetCount)
	}
	if updated.ResetKey != account.ResetKey {
		t.Errorf("expected reset key to persist, got %s", updated.ResetKey)
	}
}

func TestUpdateResetState_NotFound(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("UPDATE users").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateResetState(ctx, models.Account{ID: 42})
	if !errors.Is(err, ErrNoAccountWasFound) {
		t.Fatalf("expected ErrNoAccountWasFound, got %v", err)
	}
}

func TestUpdateLastLogin_Success(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("UPDATE users").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastLogin(ctx, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateLastLogin_NotFound(t *testing.T) {
	repo, mock, db := newTestAccountRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("UPDATE users").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLastLogin(ctx, 42)
	if !errors.Is(err, ErrNoAccountWasFound) {
		t.Fatalf("expected ErrNoAccountWasFound, got %v", err)
	}
}
