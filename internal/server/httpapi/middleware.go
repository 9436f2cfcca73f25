package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okolodev/credvault/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user id attached by the
// middleware. Handlers behind authenticate may rely on it being present.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authenticate is the authorization gate: it extracts the bearer token,
// verifies it, and confirms the subject still maps to an account before the
// downstream handler runs. A missing token yields 401; a malformed, expired
// or forged token yields 403; a valid token whose account was deleted in
// the interim yields 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "access token not provided")
			return
		}

		userID, err := s.users.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		user, err := s.users.ResolveSubject(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrUnknownSubject) {
				writeError(w, http.StatusUnauthorized, "user not found")
				return
			}
			s.logger.Error(r.Context(), "subject lookup failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
