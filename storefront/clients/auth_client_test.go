package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, LoginPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "ada@example.com", "password": "secret1"}, body)

		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"1","name":"Ada","email":"ada@example.com"}}`))
	}))
	defer srv.Close()

	res, err := NewAuthClient(srv.URL+"/", time.Second).Login(t.Context(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, User{ID: "1", Name: "Ada", Email: "ada@example.com"}, res.User)
}

func TestAuthClientStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RegisterPath {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":409,"message":"Email already registered"}`))
			return
		}
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := NewAuthClient(srv.URL, time.Second)

	_, err := c.Register(t.Context(), "Ada", "ada@example.com", "secret1")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "Email already registered", se.Message)

	_, err = c.Login(t.Context(), "ada@example.com", "bad")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "nope", se.Message)
}

func TestAuthClientMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json": `<html>`,
		"no token": `{"user":{"id":"1"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewAuthClient(srv.URL, time.Second).Login(t.Context(), "a", "b")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestAuthClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAuthClient(url, time.Second).Login(t.Context(), "a", "b")
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
