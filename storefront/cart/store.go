// Package cart keeps the shopping cart in local storage. It never talks to
// the network.
package cart

import (
	"errors"
	"slices"

	"go.uber.org/zap"
)

var ErrInvalidItem = errors.New("cart item needs an id")

// Badge shows the number of items in the cart.
type Badge interface {
	SetCount(n int)
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithBadge(b Badge) Option {
	return func(s *Store) { s.badge = b }
}

type Store struct {
	repo  Repository
	log   *zap.Logger
	badge Badge
}

func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{repo: repo, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns the cart in insertion order. Unreadable carts read as empty.
func (s *Store) Items() []Item {
	items, err := s.repo.Load()
	if err != nil {
		s.log.Warn("Failed to read cart", zap.Error(err))
		return []Item{}
	}
	if items == nil {
		return []Item{}
	}
	return items
}

// Add appends item unless an item with the same id is already there.
func (s *Store) Add(item Item) error {
	if item.ID == "" {
		return ErrInvalidItem
	}
	items := s.Items()
	if slices.ContainsFunc(items, func(it Item) bool { return it.ID == item.ID }) {
		return nil
	}
	return s.save(append(items, item))
}

// Remove drops every item with id. The cart is rewritten even when nothing matched.
func (s *Store) Remove(id string) error {
	items := slices.DeleteFunc(s.Items(), func(it Item) bool { return it.ID == id })
	return s.save(items)
}

func (s *Store) Clear() error {
	if err := s.repo.Clear(); err != nil {
		s.log.Error("Failed to clear cart", zap.Error(err))
		return err
	}
	s.RefreshUI()
	return nil
}

func (s *Store) Total() float64 {
	var total float64
	for _, it := range s.Items() {
		total += it.Price
	}
	return total
}

func (s *Store) RefreshUI() {
	if s.badge == nil {
		return
	}
	s.badge.SetCount(len(s.Items()))
}

func (s *Store) save(items []Item) error {
	if err := s.repo.Save(items); err != nil {
		s.log.Error("Failed to persist cart", zap.Error(err))
		return err
	}
	s.RefreshUI()
	return nil
}
