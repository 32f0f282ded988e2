package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"vitatrack/auth"
	"vitatrack/errors"
	"vitatrack/services"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalidInput = "Invalid input"
	msgWeakPassword = "Password must be 12 to 72 characters with upper case, lower case, digit and symbol"
)

type AccountServer struct {
	accountService services.IAccountService
	tokens         *auth.TokenIssuer
	log            *slog.Logger
}

func NewAccountServer(log *slog.Logger, accountService services.IAccountService, tokens *auth.TokenIssuer) *AccountServer {
	return &AccountServer{accountService: accountService, tokens: tokens, log: log}
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name   *string  `json:"name"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
}

type accountResponse struct {
	Message string           `json:"message"`
	User    services.Account `json:"user"`
	Token   string           `json:"token,omitempty"`
}

// Register mounts the account routes on mux.
func (s *AccountServer) Register(mux *http.ServeMux) {
	requireToken := auth.RequireToken(s.tokens)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/profile/{userId}", s.getProfile)
	mux.Handle("PUT /api/profile/{userId}", requireToken(http.HandlerFunc(s.updateProfile)))
}

func (s *AccountServer) register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if !s.decode(w, r, &body) {
		return
	}
	account, token, err := s.accountService.Register(auth.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Weight:   body.Weight,
		Height:   body.Height,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("User registered", "user_id", account.ID)
	writeJSON(w, http.StatusOK, accountResponse{Message: "Success", User: account, Token: token.String()})
}

func (s *AccountServer) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !s.decode(w, r, &body) {
		return
	}
	account, token, err := s.accountService.Login(body.Email, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("User logged in", "user_id", account.ID)
	writeJSON(w, http.StatusOK, accountResponse{Message: "Success", User: account, Token: token.String()})
}

func (s *AccountServer) getProfile(w http.ResponseWriter, r *http.Request) {
	account, err := s.accountService.GetProfile(r.PathValue("userId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *AccountServer) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if caller, ok := auth.UserIDFromContext(r.Context()); !ok || caller != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}

	var body updateProfileRequest
	if !s.decode(w, r, &body) {
		return
	}
	account, err := s.accountService.UpdateProfile(userID, auth.ProfileUpdate{
		Name:   body.Name,
		Weight: body.Weight,
		Height: body.Height,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("Profile updated", "user_id", account.ID)
	writeJSON(w, http.StatusOK, accountResponse{Message: "Profile Updated", User: account})
}

func (s *AccountServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors to HTTP answers. Unknown errors are logged
// and reported as a generic failure.
func (s *AccountServer) writeError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "Internal error"
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		status, msg = http.StatusBadRequest, "User already exists!"
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid Credentials"
	case stderrors.Is(err, errors.ErrNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case stderrors.Is(err, errors.ErrInvalidPassword):
		status, msg = http.StatusBadRequest, msgWeakPassword
	case stderrors.Is(err, errors.ErrInvalidInput):
		s.log.Debug("Rejected account input", "error", err)
		status, msg = http.StatusBadRequest, msgInvalidInput
	default:
		s.log.Error("Account request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WithCORS allows browser clients from any origin, answering preflight requests directly.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
