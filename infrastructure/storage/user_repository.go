//go:generate go run go.uber.org/mock/mockgen -source=user_repository.go -destination=../../mocks/mock_user_repository.go -package=mocks
package storage

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"vitatrack/errors"
)

const (
	UserIDPrefix    = "user:id:"
	userEmailPrefix = "user:email:"
)

type IUserRepository interface {
	CreateUser(user User) error
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	UpdateUser(user User) error
}

// User is the stored account record. Email is kept normalized (trimmed, lower case).
type User struct {
	ID           string    `msgpack:"id"`
	Name         string    `msgpack:"name"`
	Email        string    `msgpack:"email"`
	PasswordHash string    `msgpack:"password_hash"`
	Weight       float64   `msgpack:"weight"`
	Height       float64   `msgpack:"height"`
	Roles        []string  `msgpack:"roles"`
	JoinedAt     time.Time `msgpack:"joined_at"`
}

type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{db: db, log: log}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func idKey(id string) []byte {
	return []byte(UserIDPrefix + id)
}

func emailKey(email string) []byte {
	return []byte(userEmailPrefix + NormalizeEmail(email))
}

func EncodeUser(user User) ([]byte, error) {
	return msgpack.Marshal(&user)
}

func DecodeUser(data []byte) (User, error) {
	var user User
	err := msgpack.Unmarshal(data, &user)
	return user, err
}

// CreateUser stores the record and its email index in one transaction.
// An email already in use yields errors.ErrUserAlreadyExists.
func (r *UserRepository) CreateUser(user User) error {
	user.Email = NormalizeEmail(user.Email)
	data, err := EncodeUser(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(user.Email))
		if err == nil {
			return errors.ErrUserAlreadyExists
		}
		if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(idKey(user.ID), data)
	})
	if err != nil && !stderrors.Is(err, errors.ErrUserAlreadyExists) {
		r.log.Error("Failed to create user", "user_id", user.ID, "error", err)
	}
	return err
}

func (r *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	return user, mapNotFound(err)
}

func (r *UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, mapNotFound(err)
}

// UpdateUser overwrites an existing record. The email index is left untouched.
func (r *UserRepository) UpdateUser(user User) error {
	data, err := EncodeUser(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(idKey(user.ID)); err != nil {
			return err
		}
		return txn.Set(idKey(user.ID), data)
	})
	err = mapNotFound(err)
	if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
		r.log.Error("Failed to update user", "user_id", user.ID, "error", err)
	}
	return err
}

func getUser(txn *badger.Txn, id string) (User, error) {
	item, err := txn.Get(idKey(id))
	if err != nil {
		return User{}, err
	}
	var user User
	err = item.Value(func(val []byte) error {
		user, err = DecodeUser(val)
		return err
	})
	return user, err
}

func mapNotFound(err error) error {
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	return err
}
