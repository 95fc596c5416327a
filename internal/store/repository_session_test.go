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
)

var sessionTestColumns = []string{"id", "user_id", "token", "device_os", "created_at"}

func newTestSessionRepo(t *testing.T) (*sessionRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &sessionRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestCreateSession_Success(t *testing.T) {
	repo, mock, db := newTestSessionRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	session := models.Session{UserID: 42, Token: "header.payload.signature", DeviceOS: "linux"}

	rows := sqlmock.NewRows(sessionTestColumns).
		AddRow(1, session.UserID, session.Token, session.DeviceOS, now)

	mock.ExpectQuery("INSERT INTO tokens").
		WithArgs(session.UserID, session.Token, session.DeviceOS).
		WillReturnRows(rows)

	created, err := repo.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected ID=1, got %d", created.ID)
	}
	if created.Token != session.Token {
		t.Errorf("expected token to persist, got %s", created.Token)
	}
}

func TestCreateSession_DBError(t *testing.T) {
	repo, mock, db := newTestSessionRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO tokens").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateSession(ctx, models.Session{UserID: 42, Token: "t"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDeleteSession_Success(t *testing.T) {
	repo, mock, db := newTestSessionRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("DELETE FROM tokens").
		WithArgs(int64(42), "header.payload.signature").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteSession(ctx, 42, "header.payload.signature"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	repo, mock, db := newTestSessionRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("DELETE FROM tokens").
		WithArgs(int64(42), "unknown-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteSession(ctx, 42, "unknown-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
