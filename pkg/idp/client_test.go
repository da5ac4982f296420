package idp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(Options{BaseURL: url + "/", APIKey: "anon", Timeout: time.Second, Retries: retries, Backoff: time.Millisecond})
}

func TestFetchUser_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","email":"jo@example.com","user_metadata":{"name":"Jo"}}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL, 2).FetchUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Jo", user.DisplayName())
}

func TestFetchUser_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-1","email":"jo@example.com"}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL, 2).FetchUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchUser_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).FetchUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchUser_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).FetchUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchUser_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Retries: 0})
	start := time.Now()
	_, err := c.FetchUser(context.Background(), "tok")
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Less(t, time.Since(start), time.Second)
}

func TestDiscover(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		// an auth error still proves the host is a live provider
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer healthy.Close()

	host, err := Discover(context.Background(), []string{"", "http://127.0.0.1:1", failing.URL, healthy.URL + "/"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, healthy.URL, host)

	_, err = Discover(context.Background(), []string{failing.URL}, time.Second)
	assert.ErrorIs(t, err, ErrNoHost)
}
