package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/dbx"
	"github.com/okolodev/credvault/internal/server/models"
	"github.com/okolodev/credvault/internal/server/repositories/credentials"
	"github.com/okolodev/credvault/internal/server/repositories/folders"
	"github.com/okolodev/credvault/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends map-backed repositories. It ignores the
// DBTX argument, so there is no transaction isolation; useful for tests and
// local experiments, not for production.
type InMemoryRepositoryManager struct {
	users       *inMemoryUsers
	folders     *inMemoryFolders
	credentials *inMemoryCredentials
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:       &inMemoryUsers{byID: map[string]*models.User{}},
		folders:     &inMemoryFolders{byID: map[string]*models.Folder{}},
		credentials: &inMemoryCredentials{byID: map[string]*models.Credential{}},
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return m.folders
}

func (m *InMemoryRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return m.credentials
}

type inMemoryUsers struct {
	mu   sync.RWMutex
	byID map[string]*models.User
}

func (r *inMemoryUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	clone := *user
	r.byID[user.ID] = &clone
	return user, nil
}

func (r *inMemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *inMemoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *u
	return &clone, nil
}

type inMemoryFolders struct {
	mu   sync.RWMutex
	byID map[string]*models.Folder
	ids  []string
}

func (r *inMemoryFolders) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *folder
	r.byID[folder.ID] = &clone
	r.ids = append(r.ids, folder.ID)
	return folder, nil
}

func (r *inMemoryFolders) ListByUser(ctx context.Context, userID string) ([]*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.Folder
	// Newest first, matching the SQL ordering.
	for i := len(r.ids) - 1; i >= 0; i-- {
		f, ok := r.byID[r.ids[i]]
		if !ok || f.UserID != userID {
			continue
		}
		clone := *f
		result = append(result, &clone)
	}
	return result, nil
}

func (r *inMemoryFolders) Delete(ctx context.Context, userID, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[folderID]
	if !ok || f.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, folderID)
	return nil
}

type inMemoryCredentials struct {
	mu   sync.RWMutex
	byID map[string]*models.Credential
	ids  []string
}

func (r *inMemoryCredentials) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cred
	r.byID[cred.ID] = &clone
	r.ids = append(r.ids, cred.ID)
	return cred, nil
}

func (r *inMemoryCredentials) ListByUser(ctx context.Context, userID string, folderID *string) ([]*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.Credential
	for i := len(r.ids) - 1; i >= 0; i-- {
		c, ok := r.byID[r.ids[i]]
		if !ok || c.UserID != userID {
			continue
		}
		if folderID != nil && (c.FolderID == nil || *c.FolderID != *folderID) {
			continue
		}
		clone := *c
		result = append(result, &clone)
	}
	return result, nil
}

func (r *inMemoryCredentials) GetByID(ctx context.Context, userID, credID string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[credID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *inMemoryCredentials) Update(ctx context.Context, userID, credID string, upd *models.CredentialUpdate) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[credID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if upd.Service != nil {
		c.Service = *upd.Service
	}
	if upd.Username != nil {
		c.Username = *upd.Username
	}
	if upd.FolderID != nil {
		c.FolderID = upd.FolderID
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	if upd.EncryptedSecret != nil {
		c.EncryptedSecret = *upd.EncryptedSecret
	}
	clone := *c
	return &clone, nil
}

func (r *inMemoryCredentials) Delete(ctx context.Context, userID, credID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[credID]
	if !ok || c.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, credID)
	return nil
}

func (r *inMemoryCredentials) DetachFolder(ctx context.Context, userID, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.UserID == userID && c.FolderID != nil && *c.FolderID == folderID {
			c.FolderID = nil
		}
	}
	return nil
}
