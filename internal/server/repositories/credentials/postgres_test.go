package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+credentials`).
		WithArgs("c-1", "u-1", nil, "github", "alice", "aa:bb", "").
		WillReturnRows(rows)

	cred := &models.Credential{
		ID: "c-1", UserID: "u-1", Service: "github", Username: "alice", EncryptedSecret: "aa:bb",
	}
	got, err := repo.Create(context.Background(), cred)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestGetByID_FiltersByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// Owner id is part of the WHERE clause: another user's credential id
	// behaves exactly like a missing row.
	mock.ExpectQuery(`(?s)WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("c-1", "intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "intruder", "c-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListByUser_FolderFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	folderID := "f-1"
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "folder_id", "service", "username", "encrypted_secret", "notes", "created_at", "updated_at",
	}).AddRow("c-1", "u-1", folderID, "github", "alice", "aa:bb", "", time.Now(), time.Now())

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*user_id,\s*folder_id`).
		WithArgs("u-1", "f-1").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u-1", &folderID)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c-1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+credentials`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u-1", "missing", &models.CredentialUpdate{})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+credentials`).
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-1", "c-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+credentials`).
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1", "c-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDetachFolder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+credentials\s+SET\s+folder_id\s*=\s*NULL`).
		WithArgs("u-1", "f-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DetachFolder(context.Background(), "u-1", "f-1"); err != nil {
		t.Fatalf("DetachFolder error: %v", err)
	}
}
