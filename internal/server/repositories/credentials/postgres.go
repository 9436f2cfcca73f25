// Package credentials provides the PostgreSQL-backed credential repository.
// Rows store only the encrypted secret blob; plaintext never reaches this
// layer.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/dbx"
	"github.com/okolodev/credvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (id, user_id, folder_id, service, username, encrypted_secret, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		cred.ID, cred.UserID, cred.FolderID, cred.Service, cred.Username, cred.EncryptedSecret, cred.Notes).
		Scan(&cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

// ListByUser returns the user's credentials, newest first, optionally
// filtered by folder.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, folderID *string) ([]*models.Credential, error) {
	query :=
		`SELECT id, user_id, folder_id, service, username, encrypted_secret, notes, created_at, updated_at
		 FROM credentials
		 WHERE user_id = $1 AND ($2::uuid IS NULL OR folder_id = $2)
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Credential
	for rows.Next() {
		var item models.Credential
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.FolderID, &item.Service, &item.Username,
			&item.EncryptedSecret, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, credID string) (*models.Credential, error) {
	query :=
		`SELECT id, user_id, folder_id, service, username, encrypted_secret, notes, created_at, updated_at
		 FROM credentials
		 WHERE id = $1 AND user_id = $2
		 `

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, credID, userID).Scan(
		&cred.ID, &cred.UserID, &cred.FolderID, &cred.Service, &cred.Username,
		&cred.EncryptedSecret, &cred.Notes, &cred.CreatedAt, &cred.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

// Update applies a partial update; nil fields keep the stored value.
// The ownership filter makes an unowned id return common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, userID, credID string, upd *models.CredentialUpdate) (*models.Credential, error) {
	query :=
		`UPDATE credentials SET
			service = COALESCE($3, service),
			username = COALESCE($4, username),
			folder_id = COALESCE($5, folder_id),
			notes = COALESCE($6, notes),
			encrypted_secret = COALESCE($7, encrypted_secret),
			updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, folder_id, service, username, encrypted_secret, notes, created_at, updated_at
		 `

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, credID, userID,
		upd.Service, upd.Username, upd.FolderID, upd.Notes, upd.EncryptedSecret).Scan(
		&cred.ID, &cred.UserID, &cred.FolderID, &cred.Service, &cred.Username,
		&cred.EncryptedSecret, &cred.Notes, &cred.CreatedAt, &cred.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, credID string) error {
	query :=
		`DELETE FROM credentials
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, credID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DetachFolder clears folder_id on all of the user's credentials in the
// given folder. Run inside the same transaction as the folder delete.
func (r *PostgresRepository) DetachFolder(ctx context.Context, userID, folderID string) error {
	query :=
		`UPDATE credentials SET folder_id = NULL
		 WHERE user_id = $1 AND folder_id = $2
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, folderID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
