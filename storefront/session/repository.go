package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yashrajoria/course-store/storefront/storage"
)

// Storage keys shared with the cart; Clear on the scope drops all of them.
const (
	KeyToken = "userToken"
	KeyUser  = "userData"
)

// ErrMalformedProfile means userData exists but does not decode.
var ErrMalformedProfile = errors.New("malformed stored profile")

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Repository interface {
	Token() (string, bool, error)
	User() (*User, bool, error)
	// Save writes token and profile in one batch.
	Save(token string, user User) error
	// ClearAll empties the whole storage scope, cart included.
	ClearAll() error
}

type StorageRepository struct {
	store storage.Storage
}

func NewRepository(s storage.Storage) *StorageRepository {
	return &StorageRepository{store: s}
}

func (r *StorageRepository) Token() (string, bool, error) {
	tok, ok, err := r.store.Get(KeyToken)
	if err != nil || !ok || tok == "" {
		return "", false, err
	}
	return tok, true, nil
}

func (r *StorageRepository) User() (*User, bool, error) {
	raw, ok, err := r.store.Get(KeyUser)
	if err != nil || !ok {
		return nil, false, err
	}

	var u *User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMalformedProfile, err)
	}
	if u == nil {
		return nil, false, nil
	}
	return u, true, nil
}

func (r *StorageRepository) Save(token string, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.store.SetItems(map[string]string{
		KeyToken: token,
		KeyUser:  string(data),
	})
}

func (r *StorageRepository) ClearAll() error {
	return r.store.Clear()
}
