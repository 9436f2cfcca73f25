package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/okolodev/credvault/internal/cryptox"
	"github.com/okolodev/credvault/internal/logging"
	"github.com/okolodev/credvault/internal/server/auth"
	"github.com/okolodev/credvault/internal/server/config"
	"github.com/okolodev/credvault/internal/server/repositories/repomanager"
	"github.com/okolodev/credvault/internal/server/services"
)

const testTokenSecret = "httpapi-test-signing-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		TokenSecret:           testTokenSecret,
		TokenValidityDuration: time.Hour,
	}

	key, err := cryptox.NormalizeKey("httpapi-test-master-key")
	if err != nil {
		t.Fatalf("NormalizeKey error: %v", err)
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	// The in-memory repositories hold the state; folder deletion still
	// opens a transaction on the *sql.DB handle, so give it a permissive
	// sqlmock connection.
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 8; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	rm := repomanager.NewInMemoryRepositoryManager()
	us := services.NewUserService(db, rm, cfg)
	fs := services.NewFolderService(db, rm)
	cs := services.NewCredentialService(db, rm, cipher)

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(":0", logger, us, fs, cs)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
		}
	}
	return rec, decoded
}

func registerUser(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	rec, body := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": "pw123456"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, rec.Code, rec.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t).Handler()

	rec, body := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "alice@example.com", "password": "pw123456"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user in response: %+v", body)
	}

	// Duplicate email.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "alice@example.com", "password": "other"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", rec.Code)
	}

	// Missing fields.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "", "password": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty register: expected 400, got %d", rec.Code)
	}

	// Login with the same credentials; the token subject is alice's id.
	rec, body = doJSON(t, handler, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "pw123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	token, _ := body["token"].(string)
	subject, err := auth.GetUserIDFromToken(token, []byte(testTokenSecret))
	if err != nil {
		t.Fatalf("token verify error: %v", err)
	}
	if subject != user["id"] {
		t.Fatalf("token subject %q does not match registered id %v", subject, user["id"])
	}

	// Bad password.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
}

func TestAuthorizationGate(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t).Handler()

	// Missing token.
	rec, _ := doJSON(t, handler, http.MethodGet, "/api/credentials", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}

	// Malformed token.
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/credentials", "not.a.jwt", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("malformed token: expected 403, got %d", rec.Code)
	}

	// Expired token.
	expired, err := auth.GenerateToken(uuid.NewString(), []byte(testTokenSecret), -time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/credentials", expired, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expired token: expected 403, got %d", rec.Code)
	}

	// Forged token (wrong signing secret).
	forged, err := auth.GenerateToken(uuid.NewString(), []byte("attacker-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/credentials", forged, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("forged token: expected 403, got %d", rec.Code)
	}

	// Valid signature, but the subject no longer exists.
	orphan, err := auth.GenerateToken(uuid.NewString(), []byte(testTokenSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/credentials", orphan, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown subject: expected 401, got %d", rec.Code)
	}
}

func TestCredentialEndToEnd(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t).Handler()

	aliceToken := registerUser(t, handler, "alice@example.com")
	bobToken := registerUser(t, handler, "bob@example.com")

	// Store a credential; the response must not leak the secret in any form.
	rec, body := doJSON(t, handler, http.MethodPost, "/api/credentials", aliceToken,
		map[string]string{"service": "github", "username": "alice", "secret": "s3cr3t"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create credential: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("s3cr3t")) {
		t.Fatalf("create response leaks the plaintext secret")
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("encryptedSecret")) {
		t.Fatalf("create response leaks the encrypted blob")
	}
	cred, _ := body["credential"].(map[string]any)
	credID, _ := cred["id"].(string)
	if credID == "" {
		t.Fatalf("no credential id in response: %+v", body)
	}

	// Listing shows the record but neither plaintext nor blob.
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/credentials", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("s3cr3t")) || bytes.Contains(rec.Body.Bytes(), []byte("encryptedSecret")) {
		t.Fatalf("list response leaks secret material")
	}

	// The explicit decrypt endpoint returns the plaintext to the owner.
	rec, body = doJSON(t, handler, http.MethodPost, "/api/credentials/"+credID+"/decrypt", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("decrypt: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if body["decryptedSecret"] != "s3cr3t" {
		t.Fatalf("unexpected decrypt result: %+v", body)
	}

	// Bob targeting alice's record id gets 404, not 403.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/credentials/"+credID+"/decrypt", bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner decrypt: expected 404, got %d", rec.Code)
	}
	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/credentials/"+credID, bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: expected 404, got %d", rec.Code)
	}

	// Updating the secret re-encrypts; decrypt returns the new value.
	rec, _ = doJSON(t, handler, http.MethodPut, "/api/credentials/"+credID, aliceToken,
		map[string]string{"secret": "rotated"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec, body = doJSON(t, handler, http.MethodPost, "/api/credentials/"+credID+"/decrypt", aliceToken, nil)
	if rec.Code != http.StatusOK || body["decryptedSecret"] != "rotated" {
		t.Fatalf("decrypt after update: got %d %+v", rec.Code, body)
	}

	// Owner delete succeeds and the record is gone.
	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/credentials/"+credID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/credentials/"+credID+"/decrypt", aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("decrypt after delete: expected 404, got %d", rec.Code)
	}
}

func TestFolders(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t).Handler()

	aliceToken := registerUser(t, handler, "alice@example.com")
	bobToken := registerUser(t, handler, "bob@example.com")

	rec, body := doJSON(t, handler, http.MethodPost, "/api/folders", aliceToken,
		map[string]string{"name": "work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create folder: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	folder, _ := body["folder"].(map[string]any)
	folderID, _ := folder["id"].(string)

	// Empty name.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/folders", aliceToken,
		map[string]string{"name": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty folder name: expected 400, got %d", rec.Code)
	}

	// Bob does not see alice's folders and cannot delete them.
	rec, body = doJSON(t, handler, http.MethodGet, "/api/folders", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list folders: expected 200, got %d", rec.Code)
	}
	if folders, _ := body["folders"].([]any); len(folders) != 0 {
		t.Fatalf("expected empty folder list for bob, got %+v", folders)
	}
	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/folders/"+folderID, bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner folder delete: expected 404, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t).Handler()

	rec, body := doJSON(t, handler, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health payload: %+v", body)
	}
}
