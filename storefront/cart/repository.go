package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yashrajoria/course-store/storefront/storage"
)

const KeyCart = "cart"

var ErrMalformedCart = errors.New("malformed stored cart")

type Repository interface {
	Load() ([]Item, error)
	Save(items []Item) error
	Clear() error
}

type StorageRepository struct {
	store storage.Storage
}

func NewRepository(s storage.Storage) *StorageRepository {
	return &StorageRepository{store: s}
}

// Load returns nil for an absent cart.
func (r *StorageRepository) Load() ([]Item, error) {
	raw, ok, err := r.store.Get(KeyCart)
	if err != nil || !ok {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}
	return items, nil
}

func (r *StorageRepository) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.Set(KeyCart, string(data))
}

func (r *StorageRepository) Clear() error {
	return r.store.Remove(KeyCart)
}
