package credentials

import (
	"context"

	"github.com/okolodev/credvault/internal/server/models"
)

// Repository operations are ownership-scoped: every query filters by the
// owning user id, so an unowned credential behaves exactly like a missing
// one.
type Repository interface {
	Create(ctx context.Context, cred *models.Credential) (*models.Credential, error)
	ListByUser(ctx context.Context, userID string, folderID *string) ([]*models.Credential, error)
	GetByID(ctx context.Context, userID, credID string) (*models.Credential, error)
	Update(ctx context.Context, userID, credID string, upd *models.CredentialUpdate) (*models.Credential, error)
	Delete(ctx context.Context, userID, credID string) error
	DetachFolder(ctx context.Context, userID, folderID string) error
}
