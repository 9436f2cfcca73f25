package httpapi

import (
	"net/http"
	"time"

	"github.com/okolodev/credvault/internal/server/models"
)

type folderJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFolderJSON(f *models.Folder) folderJSON {
	return folderJSON{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "folder name is required")
		return
	}

	folder, err := s.folders.Create(r.Context(), userIDFromContext(r.Context()), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "folder": toFolderJSON(folder)})
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	list, err := s.folders.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result := make([]folderJSON, 0, len(list))
	for _, f := range list {
		result = append(result, toFolderJSON(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "folders": result})
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	err := s.folders.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "folder deleted"})
}
