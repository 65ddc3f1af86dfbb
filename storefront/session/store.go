// Package session keeps the signed-in customer's token and profile in local
// storage and talks to the auth API.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yashrajoria/course-store/storefront/clients"
)

// Authenticator is the remote auth API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*clients.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*clients.AuthResponse, error)
}

// ProfileView renders the header profile area.
type ProfileView interface {
	ShowLoggedIn(name, avatar string)
	ShowLoggedOut()
}

// Navigator moves the user back to the landing page after logout.
type Navigator interface {
	ToLanding()
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithView(v ProfileView) Option {
	return func(s *Store) { s.view = v }
}

func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.nav = n }
}

type Store struct {
	repo Repository
	api  Authenticator
	log  *zap.Logger
	view ProfileView
	nav  Navigator
}

func NewStore(repo Repository, api Authenticator, opts ...Option) *Store {
	s := &Store{repo: repo, api: api, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the persisted token. Unreadable storage reads as logged out.
func (s *Store) Token() (string, bool) {
	tok, ok, err := s.repo.Token()
	if err != nil {
		s.log.Warn("Failed to read session token", zap.Error(err))
		return "", false
	}
	return tok, ok
}

// User returns the cached profile. A malformed profile reads as absent.
func (s *Store) User() (*User, bool) {
	u, ok, err := s.repo.User()
	if err != nil {
		s.log.Warn("Failed to read session profile", zap.Error(err))
		return nil, false
	}
	return u, ok
}

func (s *Store) IsLoggedIn() bool {
	_, ok := s.Token()
	return ok
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		var se *clients.StatusError
		if errors.As(err, &se) {
			return &AuthError{Kind: InvalidCredentials, Err: err}
		}
		return fmt.Errorf("login: %w", err)
	}
	return s.establish(res)
}

func (s *Store) Register(ctx context.Context, name, email, password string) error {
	if err := validateRegistration(name, email, password); err != nil {
		return err
	}

	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		var se *clients.StatusError
		if errors.As(err, &se) {
			if se.StatusCode == http.StatusConflict {
				return &AuthError{Kind: DuplicateEmail, Err: err}
			}
			return &AuthError{Kind: RegistrationFailed, Err: err}
		}
		return fmt.Errorf("register: %w", err)
	}
	return s.establish(res)
}

// Logout forgets the session and the cart. It never calls the API.
func (s *Store) Logout() {
	if err := s.repo.ClearAll(); err != nil {
		s.log.Error("Failed to clear storage on logout", zap.Error(err))
	}
	s.RefreshUI()
	if s.nav != nil {
		s.nav.ToLanding()
	}
}

// RefreshUI projects the session onto the view. A token without a profile
// shows as logged out.
func (s *Store) RefreshUI() {
	if s.view == nil {
		return
	}
	if s.IsLoggedIn() {
		if u, ok := s.User(); ok {
			s.view.ShowLoggedIn(u.Name, Avatar(u.Name))
			return
		}
	}
	s.view.ShowLoggedOut()
}

// Avatar is the upper-cased first letter of name, or "" for an empty name.
func Avatar(name string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r))
}

func (s *Store) establish(res *clients.AuthResponse) error {
	user := User{ID: res.User.ID, Name: res.User.Name, Email: res.User.Email}
	if err := s.repo.Save(res.Token, user); err != nil {
		s.log.Error("Failed to persist session", zap.Error(err))
		return err
	}
	s.log.Info("Session established", zap.String("user_id", user.ID))
	s.RefreshUI()
	return nil
}

func validateRegistration(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &ValidationError{Kind: MissingField, Field: "name"}
	case strings.TrimSpace(email) == "":
		return &ValidationError{Kind: MissingField, Field: "email"}
	case password == "":
		return &ValidationError{Kind: MissingField, Field: "password"}
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return &ValidationError{Kind: WeakPassword, Field: "password"}
	}
	return nil
}
