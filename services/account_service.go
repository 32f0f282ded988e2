package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vitatrack/auth"
	"vitatrack/errors"
	"vitatrack/infrastructure/storage"
)

type IAccountService interface {
	Register(req auth.RegisterRequest) (Account, Token, error)
	Login(email, password string) (Account, Token, error)
	GetProfile(userID string) (Account, error)
	UpdateProfile(userID string, update auth.ProfileUpdate) (Account, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

// Account is the public view of a user: no password hash.
type Account struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Weight   float64   `json:"weight"`
	Height   float64   `json:"height"`
	Roles    []string  `json:"roles"`
	JoinedAt time.Time `json:"joined"`
}

type AccountService struct {
	userRepository storage.IUserRepository
	tokens         *auth.TokenIssuer
	now            func() time.Time
}

func NewAccountService(repo storage.IUserRepository, tokens *auth.TokenIssuer) *AccountService {
	return &AccountService{userRepository: repo, tokens: tokens, now: time.Now}
}

func (s *AccountService) Register(req auth.RegisterRequest) (Account, Token, error) {
	// Validation runs before any expensive hashing.
	if err := auth.ValidateRegister(req); err != nil {
		return Account{}, "", err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return Account{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	user := storage.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        storage.NormalizeEmail(req.Email),
		PasswordHash: hashedPassword,
		Weight:       req.Weight,
		Height:       req.Height,
		Roles:        []string{"user"},
		JoinedAt:     s.now().UTC(),
	}
	if err := s.userRepository.CreateUser(user); err != nil {
		return Account{}, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return Account{}, "", errors.ErrTokenGeneration
	}
	return toAccount(user), Token(token), nil
}

func (s *AccountService) Login(email, password string) (Account, Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return Account{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Account{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return Account{}, "", errors.ErrTokenGeneration
	}
	return toAccount(user), Token(token), nil
}

func (s *AccountService) GetProfile(userID string) (Account, error) {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return Account{}, err
	}
	return toAccount(user), nil
}

// UpdateProfile applies the non-nil fields of update. Only name, weight and height are mutable.
func (s *AccountService) UpdateProfile(userID string, update auth.ProfileUpdate) (Account, error) {
	if err := auth.ValidateProfileUpdate(update); err != nil {
		return Account{}, err
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return Account{}, err
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Weight != nil {
		user.Weight = *update.Weight
	}
	if update.Height != nil {
		user.Height = *update.Height
	}

	if err := s.userRepository.UpdateUser(user); err != nil {
		return Account{}, err
	}
	return toAccount(user), nil
}

func toAccount(user storage.User) Account {
	return Account{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Weight:   user.Weight,
		Height:   user.Height,
		Roles:    user.Roles,
		JoinedAt: user.JoinedAt,
	}
}
