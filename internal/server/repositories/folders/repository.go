package folders

import (
	"context"

	"github.com/okolodev/credvault/internal/server/models"
)

// Repository operations are ownership-scoped: every query filters by the
// owning user id, so an unowned folder behaves exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Folder, error)
	Delete(ctx context.Context, userID, folderID string) error
}
