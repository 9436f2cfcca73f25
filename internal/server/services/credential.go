package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/cryptox"
	"github.com/okolodev/credvault/internal/server/models"
	"github.com/okolodev/credvault/internal/server/repositories/repomanager"
)

// CredentialService manages stored service logins. Secrets are encrypted
// before the store call and decrypted only by the explicit Decrypt
// operation; the repository layer never sees plaintext. All operations are
// scoped to the authenticated owner, so cross-owner access surfaces as
// ErrorNotFound.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.Cipher) *CredentialService {
	return &CredentialService{db: db, repomanager: m, cipher: cipher}
}

// CredentialInput carries the client-supplied fields for a new credential.
type CredentialInput struct {
	Service  string
	Username string
	Secret   string
	FolderID *string
	Notes    string
}

// Create validates, encrypts the secret, and persists the credential.
// Service, username, and secret are required after trimming; an empty
// secret is rejected before it could be stored unencryptable.
func (s *CredentialService) Create(ctx context.Context, userID string, in CredentialInput) (*models.Credential, error) {
	service := strings.TrimSpace(in.Service)
	username := strings.TrimSpace(in.Username)
	secret := strings.TrimSpace(in.Secret)
	if service == "" || username == "" || secret == "" {
		return nil, fmt.Errorf("%w: service, username and secret are required", common.ErrorValidation)
	}

	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("error encrypting secret: %w", err)
	}

	cred := &models.Credential{
		ID:              uuid.NewString(),
		UserID:          userID,
		FolderID:        in.FolderID,
		Service:         service,
		Username:        username,
		EncryptedSecret: encrypted,
		Notes:           strings.TrimSpace(in.Notes),
	}

	repo := s.repomanager.Credentials(s.db)
	c, err := repo.Create(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("error creating credential: %w", err)
	}
	return c, nil
}

// List returns the user's credentials, optionally filtered by folder.
func (s *CredentialService) List(ctx context.Context, userID string, folderID *string) ([]*models.Credential, error) {
	repo := s.repomanager.Credentials(s.db)
	list, err := repo.ListByUser(ctx, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("error listing credentials: %w", err)
	}
	return list, nil
}

// CredentialPatch carries optional updates; nil fields are left unchanged.
// A new Secret is re-encrypted before storage; service/username/secret
// values that trim to empty are ignored rather than stored blank.
type CredentialPatch struct {
	Service  *string
	Username *string
	Secret   *string
	FolderID *string
	Notes    *string
}

// Update applies a partial update to an owned credential.
func (s *CredentialService) Update(ctx context.Context, userID, credID string, p CredentialPatch) (*models.Credential, error) {
	upd := &models.CredentialUpdate{FolderID: p.FolderID}

	if p.Service != nil {
		if v := strings.TrimSpace(*p.Service); v != "" {
			upd.Service = &v
		}
	}
	if p.Username != nil {
		if v := strings.TrimSpace(*p.Username); v != "" {
			upd.Username = &v
		}
	}
	if p.Notes != nil {
		v := strings.TrimSpace(*p.Notes)
		upd.Notes = &v
	}
	if p.Secret != nil {
		if v := strings.TrimSpace(*p.Secret); v != "" {
			encrypted, err := s.cipher.Encrypt(v)
			if err != nil {
				return nil, fmt.Errorf("error encrypting secret: %w", err)
			}
			upd.EncryptedSecret = &encrypted
		}
	}

	repo := s.repomanager.Credentials(s.db)
	c, err := repo.Update(ctx, userID, credID, upd)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes an owned credential.
func (s *CredentialService) Delete(ctx context.Context, userID, credID string) error {
	repo := s.repomanager.Credentials(s.db)
	return repo.Delete(ctx, userID, credID)
}

// Decrypt is the explicit, separately authorized read of a stored secret.
// The lookup is ownership-filtered, so another user's record id yields
// ErrorNotFound, not a forbidden error, to avoid confirming existence.
func (s *CredentialService) Decrypt(ctx context.Context, userID, credID string) (string, error) {
	repo := s.repomanager.Credentials(s.db)
	cred, err := repo.GetByID(ctx, userID, credID)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Decrypt(cred.EncryptedSecret)
	if err != nil {
		return "", fmt.Errorf("error decrypting secret: %w", err)
	}
	return plaintext, nil
}
