package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"vitatrack/auth"
	"vitatrack/infrastructure/storage"
	"vitatrack/services"
)

const testSecret = "a-test-secret-that-is-long-enough-0123"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.DiscardHandler)
	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	service := services.NewAccountService(storage.NewUserRepository(db, log), tokens)

	mux := http.NewServeMux()
	NewAccountServer(log, service, tokens).Register(mux)
	return WithCORS(mux)
}

type response struct {
	Message string           `json:"message"`
	User    services.Account `json:"user"`
	Token   string           `json:"token"`
	Error   string           `json:"error"`
}

func call(t *testing.T, h http.Handler, method, path, token, body string) (int, response) {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var resp response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

const aliceRegistration = `{"name":"Alice","email":"alice@example.com","password":"ComplexPass123!","weight":60,"height":168}`

func TestAccountServer_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	h := newTestHandler(t)

	// When Alice registers
	status, resp := call(t, h, http.MethodPost, "/api/auth/register", "", aliceRegistration)
	req.Equal(http.StatusOK, status)
	req.Equal("Success", resp.Message)
	req.NotEmpty(resp.Token)
	req.Equal("alice@example.com", resp.User.Email)

	// Then she cannot register twice
	status, resp = call(t, h, http.MethodPost, "/api/auth/register", "", aliceRegistration)
	req.Equal(http.StatusBadRequest, status)
	req.Equal("User already exists!", resp.Error)

	// And she can log in with any email casing
	status, resp = call(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"ALICE@example.com","password":"ComplexPass123!"}`)
	req.Equal(http.StatusOK, status)
	req.NotEmpty(resp.Token)

	status, resp = call(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"alice@example.com","password":"WrongPass123!"}`)
	req.Equal(http.StatusUnauthorized, status)
	req.Equal("Invalid Credentials", resp.Error)
}

func TestAccountServer_Register_BadInput(t *testing.T) {
	req := require.New(t)
	h := newTestHandler(t)

	status, _ := call(t, h, http.MethodPost, "/api/auth/register", "", `{not json`)
	req.Equal(http.StatusBadRequest, status)

	status, resp := call(t, h, http.MethodPost, "/api/auth/register", "",
		`{"name":"Bob","email":"bob@example.com","password":"weakpassword"}`)
	req.Equal(http.StatusBadRequest, status)
	req.Equal(msgWeakPassword, resp.Error)

	// Validator details stay on the server side
	status, resp = call(t, h, http.MethodPost, "/api/auth/register", "",
		`{"name":"Bob","email":"not-an-email","password":"ComplexPass123!"}`)
	req.Equal(http.StatusBadRequest, status)
	req.Equal(msgInvalidInput, resp.Error)
	req.NotContains(resp.Error, "RegisterRequest")
}

func TestAccountServer_Profile(t *testing.T) {
	req := require.New(t)
	h := newTestHandler(t)
	_, alice := call(t, h, http.MethodPost, "/api/auth/register", "", aliceRegistration)
	_, bob := call(t, h, http.MethodPost, "/api/auth/register", "",
		`{"name":"Bob","email":"bob@example.com","password":"ComplexPass456!"}`)
	profile := fmt.Sprintf("/api/profile/%s", alice.User.ID)

	// Reading a profile is public
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, profile, nil))
	req.Equal(http.StatusOK, w.Code)
	var account services.Account
	req.NoError(json.Unmarshal(w.Body.Bytes(), &account))
	req.Equal("Alice", account.Name)
	req.NotContains(w.Body.String(), "argon2")

	status, resp := call(t, h, http.MethodGet, "/api/profile/unknown", "", "")
	req.Equal(http.StatusNotFound, status)
	req.Equal("User not found", resp.Error)

	// Updating requires a token
	status, _ = call(t, h, http.MethodPut, profile, "", `{"weight":58}`)
	req.Equal(http.StatusUnauthorized, status)

	// For the same user
	status, _ = call(t, h, http.MethodPut, profile, bob.Token, `{"weight":58}`)
	req.Equal(http.StatusForbidden, status)

	status, resp = call(t, h, http.MethodPut, profile, alice.Token, `{"name":"Alicia","weight":58}`)
	req.Equal(http.StatusOK, status)
	req.Equal("Profile Updated", resp.Message)
	req.Equal("Alicia", resp.User.Name)
	req.Equal(58.0, resp.User.Weight)
	req.Equal(168.0, resp.User.Height)
}

func TestWithCORS_Preflight(t *testing.T) {
	req := require.New(t)
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil))

	req.Equal(http.StatusNoContent, w.Code)
	req.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}
