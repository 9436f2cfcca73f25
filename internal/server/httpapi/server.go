// Package httpapi exposes the vault over an HTTP JSON API and enforces the
// authentication boundary: every credential- or folder-touching route runs
// behind the bearer-token middleware, and handlers only ever see an
// authenticated user id.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okolodev/credvault/internal/logging"
	"github.com/okolodev/credvault/internal/server/services"
)

// Server wires the HTTP routes to the service layer.
type Server struct {
	addr        string
	logger      logging.Logger
	users       *services.UserService
	folders     *services.FolderService
	credentials *services.CredentialService
}

func NewServer(addr string, logger logging.Logger, us *services.UserService, fs *services.FolderService, cs *services.CredentialService) *Server {
	return &Server{addr: addr, logger: logger, users: us, folders: fs, credentials: cs}
}

// Handler builds the route table. Exported so tests can drive the full
// middleware chain through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("POST /api/folders", s.authenticate(http.HandlerFunc(s.handleCreateFolder)))
	mux.Handle("GET /api/folders", s.authenticate(http.HandlerFunc(s.handleListFolders)))
	mux.Handle("DELETE /api/folders/{id}", s.authenticate(http.HandlerFunc(s.handleDeleteFolder)))

	mux.Handle("POST /api/credentials", s.authenticate(http.HandlerFunc(s.handleCreateCredential)))
	mux.Handle("GET /api/credentials", s.authenticate(http.HandlerFunc(s.handleListCredentials)))
	mux.Handle("PUT /api/credentials/{id}", s.authenticate(http.HandlerFunc(s.handleUpdateCredential)))
	mux.Handle("DELETE /api/credentials/{id}", s.authenticate(http.HandlerFunc(s.handleDeleteCredential)))
	mux.Handle("POST /api/credentials/{id}/decrypt", s.authenticate(http.HandlerFunc(s.handleDecryptCredential)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
