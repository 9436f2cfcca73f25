package httpapi

import (
	"net/http"
	"time"

	"github.com/okolodev/credvault/internal/server/models"
	"github.com/okolodev/credvault/internal/server/services"
)

// credentialJSON is the client-facing shape. The encrypted blob is
// deliberately absent: stored secrets leave the server only through the
// explicit decrypt endpoint.
type credentialJSON struct {
	ID        string    `json:"id"`
	FolderID  *string   `json:"folderId"`
	Service   string    `json:"service"`
	Username  string    `json:"username"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCredentialJSON(c *models.Credential) credentialJSON {
	return credentialJSON{
		ID:        c.ID,
		FolderID:  c.FolderID,
		Service:   c.Service,
		Username:  c.Username,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Service  string  `json:"service"`
		Username string  `json:"username"`
		Secret   string  `json:"secret"`
		FolderID *string `json:"folderId"`
		Notes    string  `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "service, username and secret are required")
		return
	}

	cred, err := s.credentials.Create(r.Context(), userIDFromContext(r.Context()), services.CredentialInput{
		Service:  req.Service,
		Username: req.Username,
		Secret:   req.Secret,
		FolderID: req.FolderID,
		Notes:    req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "credential": toCredentialJSON(cred)})
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if v := r.URL.Query().Get("folderId"); v != "" && v != "null" {
		folderID = &v
	}

	list, err := s.credentials.List(r.Context(), userIDFromContext(r.Context()), folderID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result := make([]credentialJSON, 0, len(list))
	for _, c := range list {
		result = append(result, toCredentialJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "credentials": result})
}

func (s *Server) handleUpdateCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Service  *string `json:"service"`
		Username *string `json:"username"`
		Secret   *string `json:"secret"`
		FolderID *string `json:"folderId"`
		Notes    *string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := s.credentials.Update(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"), services.CredentialPatch{
		Service:  req.Service,
		Username: req.Username,
		Secret:   req.Secret,
		FolderID: req.FolderID,
		Notes:    req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "credential": toCredentialJSON(cred)})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	err := s.credentials.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "credential deleted"})
}

func (s *Server) handleDecryptCredential(w http.ResponseWriter, r *http.Request) {
	plaintext, err := s.credentials.Decrypt(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "decryptedSecret": plaintext})
}
