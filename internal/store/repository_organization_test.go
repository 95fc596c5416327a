package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
	"github.com/jackc/pgerrcode"
)

var organizationTestColumns = []string{"id", "name", "type", "created_at"}

func newTestOrganizationRepo(t *testing.T) (*organizationRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &organizationRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestFindOrganizationByNameAndType_Success(t *testing.T) {
	repo, mock, db := newTestOrganizationRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(organizationTestColumns).
		AddRow(1, "Acme", "CUSTOMER", now)

	mock.ExpectQuery("SELECT (.+) FROM organizations").
		WithArgs("Acme", "CUSTOMER").
		WillReturnRows(rows)

	organization, err := repo.FindOrganizationByNameAndType(ctx, nil, "Acme", "CUSTOMER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if organization.ID != 1 {
		t.Errorf("expected ID=1, got %d", organization.ID)
	}
}

func TestFindOrganizationByNameAndType_NoRows(t *testing.T) {
	repo, mock, db := newTestOrganizationRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM organizations").
		WithArgs("Missing", "CUSTOMER").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOrganizationByNameAndType(ctx, nil, "Missing", "CUSTOMER")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateOrganization_Success(t *testing.T) {
	repo, mock, db := newTestOrganizationRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(organizationTestColumns).
		AddRow(5, "Acme", "CUSTOMER", now)

	mock.ExpectQuery("INSERT INTO organizations").
		WithArgs("Acme", "CUSTOMER").
		WillReturnRows(rows)

	created, err := repo.CreateOrganization(ctx, nil, models.Organization{Name: "Acme", Type: "CUSTOMER"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 5 {
		t.Errorf("expected ID=5, got %d", created.ID)
	}
}

func TestCreateOrganization_Conflict(t *testing.T) {
	repo, mock, db := newTestOrganizationRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO organizations").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateOrganization(ctx, nil, models.Organization{Name: "Acme", Type: "CUSTOMER"})
	if !errors.Is(err, ErrOrganizationConflict) {
		t.Fatalf("expected ErrOrganizationConflict, got %v", err)
	}
}

func TestOrganization_FindThenCreateInTransaction(t *testing.T) {
	repo, mock, db := newTestOrganizationRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM organizations").
		WithArgs("Acme", "CUSTOMER").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO organizations").
		WithArgs("Acme", "CUSTOMER").
		WillReturnRows(sqlmock.NewRows(organizationTestColumns).AddRow(9, "Acme", "CUSTOMER", now))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}

	_, err = repo.FindOrganizationByNameAndType(ctx, tx, "Acme", "CUSTOMER")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on find, got %v", err)
	}

	created, err := repo.CreateOrganization(ctx, tx, models.Organization{Name: "Acme", Type: "CUSTOMER"})
	if err != nil {
		t.Fatalf("unexpected error on create: %v", err)
	}
	if created.ID != 9 {
		t.Errorf("expected ID=9, got %d", created.ID)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit tx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
