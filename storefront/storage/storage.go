// Package storage is the durable, synchronous key-value substrate the
// storefront keeps its session and cart in. One Storage is one scope: Clear
// wipes every key the storefront owns and nothing else.
package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable wraps every backend failure (disk, network, quota).
var ErrUnavailable = errors.New("storage unavailable")

type Storage interface {
	// Get returns ok=false when key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// SetItems writes all pairs or none.
	SetItems(items map[string]string) error
	Remove(key string) error
	Clear() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
