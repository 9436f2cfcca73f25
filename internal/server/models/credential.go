package models

import "time"

// Credential is a stored service login. EncryptedSecret holds the cipher
// wire format ("iv_hex:ciphertext_hex"); the plaintext secret never reaches
// the repository layer, and the blob is never serialized to clients outside
// the explicit decrypt operation.
type Credential struct {
	ID              string
	UserID          string
	FolderID        *string
	Service         string
	Username        string
	EncryptedSecret string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CredentialUpdate describes a partial update. Nil fields are left
// unchanged; EncryptedSecret, when set, must already be encrypted.
type CredentialUpdate struct {
	Service         *string
	Username        *string
	FolderID        *string
	Notes           *string
	EncryptedSecret *string
}
