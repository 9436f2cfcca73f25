package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/dbx"
	"github.com/okolodev/credvault/internal/server/models"
	"github.com/okolodev/credvault/internal/server/repositories/repomanager"
)

// FolderService manages a user's folders. All operations are scoped to the
// authenticated owner.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

func (s *FolderService) Create(ctx context.Context, userID, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", common.ErrorValidation)
	}

	folder := &models.Folder{ID: uuid.NewString(), UserID: userID, Name: name}
	repo := s.repomanager.Folders(s.db)
	f, err := repo.Create(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return f, nil
}

func (s *FolderService) List(ctx context.Context, userID string) ([]*models.Folder, error) {
	repo := s.repomanager.Folders(s.db)
	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}
	return list, nil
}

// Delete removes the folder and detaches its credentials (folder_id -> NULL)
// in a single transaction. An unowned or missing folder yields
// ErrorNotFound.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Credentials(tx).DetachFolder(ctx, userID, folderID); err != nil {
			return fmt.Errorf("error detaching credentials: %w", err)
		}
		return s.repomanager.Folders(tx).Delete(ctx, userID, folderID)
	})
}
