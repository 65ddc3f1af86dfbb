package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yashrajoria/course-store/storefront/clients"
	"github.com/yashrajoria/course-store/storefront/storage"
)

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*clients.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, name, email, password string) (*clients.AuthResponse, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.AuthResponse), args.Error(1)
}

// recordingStorage counts writes and can be made to fail them.
type recordingStorage struct {
	*storage.Memory
	writes  int
	failErr error
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{Memory: storage.NewMemory()}
}

func (r *recordingStorage) write(fn func() error) error {
	r.writes++
	if r.failErr != nil {
		return r.failErr
	}
	return fn()
}

func (r *recordingStorage) Set(k, v string) error {
	return r.write(func() error { return r.Memory.Set(k, v) })
}

func (r *recordingStorage) SetItems(items map[string]string) error {
	return r.write(func() error { return r.Memory.SetItems(items) })
}

func (r *recordingStorage) Remove(k string) error {
	return r.write(func() error { return r.Memory.Remove(k) })
}

func (r *recordingStorage) Clear() error {
	return r.write(func() error { return r.Memory.Clear() })
}

type fakeView struct {
	loggedIn bool
	name     string
	avatar   string
	renders  int
}

func (v *fakeView) ShowLoggedIn(name, avatar string) {
	v.loggedIn, v.name, v.avatar = true, name, avatar
	v.renders++
}

func (v *fakeView) ShowLoggedOut() {
	v.loggedIn, v.name, v.avatar = false, "", ""
	v.renders++
}

type fakeNav struct{ visits int }

func (n *fakeNav) ToLanding() { n.visits++ }

var adaResponse = &clients.AuthResponse{
	Token: "tok-123",
	User:  clients.User{ID: "u-1", Name: "ada", Email: "ada@example.com"},
}

func TestLoginPersistsSession(t *testing.T) {
	store := newRecordingStorage()
	api := new(MockAuthenticator)
	view := &fakeView{}
	s := NewStore(NewRepository(store), api, WithView(view))

	api.On("Login", mock.Anything, "ada@example.com", "secret1").Return(adaResponse, nil).Once()

	require.NoError(t, s.Login(context.Background(), "ada@example.com", "secret1"))

	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-123", tok)
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, User{ID: "u-1", Name: "ada", Email: "ada@example.com"}, *u)
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, 1, store.writes, "token and profile are written in one batch")

	assert.True(t, view.loggedIn)
	assert.Equal(t, "ada", view.name)
	assert.Equal(t, "A", view.avatar)
}

func TestLoginRejected(t *testing.T) {
	store := newRecordingStorage()
	api := new(MockAuthenticator)
	s := NewStore(NewRepository(store), api)

	api.On("Login", mock.Anything, "ada@example.com", "wrong").
		Return(nil, &clients.StatusError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}).Once()

	err := s.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, s.IsLoggedIn())
	assert.Zero(t, store.writes)
}

func TestLoginTransportFailure(t *testing.T) {
	api := new(MockAuthenticator)
	s := NewStore(NewRepository(storage.NewMemory()), api)
	api.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()

	err := s.Login(context.Background(), "ada@example.com", "secret1")
	require.Error(t, err)
	var ae *AuthError
	assert.False(t, errors.As(err, &ae))
}

func TestRegister(t *testing.T) {
	t.Run("success behaves like login", func(t *testing.T) {
		store := newRecordingStorage()
		api := new(MockAuthenticator)
		s := NewStore(NewRepository(store), api)
		api.On("Register", mock.Anything, "ada", "ada@example.com", "secret1").Return(adaResponse, nil).Once()

		require.NoError(t, s.Register(context.Background(), "ada", "ada@example.com", "secret1"))
		assert.True(t, s.IsLoggedIn())
		assert.Equal(t, 1, store.writes)
	})

	t.Run("duplicate email", func(t *testing.T) {
		api := new(MockAuthenticator)
		s := NewStore(NewRepository(storage.NewMemory()), api)
		api.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &clients.StatusError{StatusCode: http.StatusConflict}).Once()

		err := s.Register(context.Background(), "ada", "ada@example.com", "secret1")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NotErrorIs(t, err, ErrRegistrationFailed)
	})

	t.Run("other refusal", func(t *testing.T) {
		api := new(MockAuthenticator)
		s := NewStore(NewRepository(storage.NewMemory()), api)
		api.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &clients.StatusError{StatusCode: http.StatusBadRequest}).Once()

		err := s.Register(context.Background(), "ada", "ada@example.com", "secret1")
		assert.ErrorIs(t, err, ErrRegistrationFailed)
		assert.False(t, s.IsLoggedIn())
	})
}

func TestRegisterValidatesLocally(t *testing.T) {
	cases := []struct {
		name, userName, email, password string
		want                            error
		field                           string
	}{
		{"weak password", "ada", "ada@example.com", "12345", ErrWeakPassword, "password"},
		{"missing name", " ", "ada@example.com", "secret1", ErrMissingField, "name"},
		{"missing email", "ada", "", "secret1", ErrMissingField, "email"},
		{"missing password", "ada", "ada@example.com", "", ErrMissingField, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newRecordingStorage()
			api := new(MockAuthenticator)
			s := NewStore(NewRepository(store), api)

			err := s.Register(context.Background(), tc.userName, tc.email, tc.password)

			assert.ErrorIs(t, err, tc.want)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, store.writes)
		})
	}
}

func TestLogoutClearsSessionAndCart(t *testing.T) {
	store := newRecordingStorage()
	require.NoError(t, store.Memory.SetItems(map[string]string{
		KeyToken: "tok",
		KeyUser:  `{"id":"u-1","name":"ada","email":"ada@example.com"}`,
		"cart":   `[{"id":"c1","title":"Go","price":10}]`,
	}))
	view := &fakeView{loggedIn: true}
	nav := &fakeNav{}
	s := NewStore(NewRepository(store), new(MockAuthenticator), WithView(view), WithNavigator(nav))

	s.Logout()

	assert.False(t, s.IsLoggedIn())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Zero(t, store.Len())
	assert.False(t, view.loggedIn)
	assert.Equal(t, 1, nav.visits)
}

func TestLogoutStorageFailureStillNavigates(t *testing.T) {
	store := newRecordingStorage()
	store.failErr = fmt.Errorf("%w: disk full", storage.ErrUnavailable)
	nav := &fakeNav{}
	s := NewStore(NewRepository(store), new(MockAuthenticator), WithNavigator(nav))

	assert.NotPanics(t, s.Logout)
	assert.Equal(t, 1, nav.visits)
}

func TestSaveFailureSurfacesUnavailable(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := newRecordingStorage()
	store.failErr = fmt.Errorf("%w: quota exceeded", storage.ErrUnavailable)
	api := new(MockAuthenticator)
	api.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(adaResponse, nil).Once()
	s := NewStore(NewRepository(store), api, WithLogger(zap.New(core)))

	err := s.Login(context.Background(), "ada@example.com", "secret1")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Equal(t, 1, logs.FilterMessage("Failed to persist session").Len())
}

func TestMalformedProfileDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := storage.NewMemory()
	require.NoError(t, store.SetItems(map[string]string{KeyToken: "tok", KeyUser: "{not json"}))
	view := &fakeView{}
	s := NewStore(NewRepository(store), new(MockAuthenticator), WithView(view), WithLogger(zap.New(core)))

	u, ok := s.User()
	assert.Nil(t, u)
	assert.False(t, ok)
	assert.True(t, s.IsLoggedIn(), "token without profile is still a session")

	s.RefreshUI()
	assert.False(t, view.loggedIn)
	assert.GreaterOrEqual(t, logs.FilterMessage("Failed to read session profile").Len(), 1)
}

func TestNullProfileIsAbsent(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(KeyUser, "null"))
	s := NewStore(NewRepository(store), new(MockAuthenticator))

	_, ok := s.User()
	assert.False(t, ok)
}

func TestEmptyTokenIsLoggedOut(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(KeyToken, ""))
	s := NewStore(NewRepository(store), new(MockAuthenticator))
	assert.False(t, s.IsLoggedIn())
}

func TestRefreshUIWithoutViewIsNoop(t *testing.T) {
	s := NewStore(NewRepository(storage.NewMemory()), new(MockAuthenticator))
	assert.NotPanics(t, s.RefreshUI)
}

func TestAvatar(t *testing.T) {
	assert.Equal(t, "A", Avatar("ada"))
	assert.Equal(t, "É", Avatar("émile"))
	assert.Equal(t, "", Avatar(""))
	assert.Equal(t, "", Avatar("   "))
}
