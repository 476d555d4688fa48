package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	mu    sync.Mutex
	token string
}

func (s *staticTokens) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *staticTokens) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	token string
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.token, f.err
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestAuthTransport_BearerInjection(t *testing.T) {
	t.Run("sets the header when a token exists", func(t *testing.T) {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL}, WithTokenSource(&staticTokens{token: "tok-1"}))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-1", got)
	})

	t.Run("request goes out unauthenticated without a token", func(t *testing.T) {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL}, WithTokenSource(&staticTokens{}))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestAuthTransport_RefreshAndRetry(t *testing.T) {
	t.Run("retries once with the refreshed token", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte("[]"))
		}))
		t.Cleanup(server.Close)

		refresher := &fakeRefresher{token: "fresh"}
		c, err := New(Config{BaseURL: server.URL},
			WithTokenSource(&staticTokens{token: "stale"}),
			WithRefresher(refresher))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
		assert.Equal(t, 1, refresher.callCount())
	})

	t.Run("a 401 on the retried request is final", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)

		refresher := &fakeRefresher{token: "fresh"}
		c, err := New(Config{BaseURL: server.URL},
			WithTokenSource(&staticTokens{token: "stale"}),
			WithRefresher(refresher))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
		assert.Equal(t, 2, requests)
		assert.Equal(t, 1, refresher.callCount(), "exactly one refresh per original 401")
	})

	t.Run("failed refresh propagates the original 401", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
		}))
		t.Cleanup(server.Close)

		refresher := &fakeRefresher{err: context.DeadlineExceeded}
		c, err := New(Config{BaseURL: server.URL},
			WithTokenSource(&staticTokens{token: "stale"}),
			WithRefresher(refresher))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "token expired", apiErr.Message)
		assert.Equal(t, 1, requests, "no retry without a fresh token")
	})

	t.Run("request bodies are replayed on retry", func(t *testing.T) {
		var bodies []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(data))
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":1,"title":"spring campaign"}`))
		}))
		t.Cleanup(server.Close)

		refresher := &fakeRefresher{token: "fresh"}
		c, err := New(Config{BaseURL: server.URL},
			WithTokenSource(&staticTokens{token: "stale"}),
			WithRefresher(refresher))
		require.NoError(t, err)

		contest, err := c.Contests.Create(context.Background(), ContestCreate{
			Title:    "spring campaign",
			Deadline: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), contest.ID)

		require.Len(t, bodies, 2)
		assert.JSONEq(t, bodies[0], bodies[1])
		assert.NotEmpty(t, bodies[1])
	})

	t.Run("no refresher means no retry", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL}, WithTokenSource(&staticTokens{token: "stale"}))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.Error(t, err)
		assert.Equal(t, 1, requests)
	})
}

func TestRequestIDTransport(t *testing.T) {
	t.Run("tags every request, stable across the retry", func(t *testing.T) {
		var ids []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids = append(ids, r.Header.Get("X-Request-Id"))
			if len(ids) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte("[]"))
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL},
			WithTokenSource(&staticTokens{token: "stale"}),
			WithRefresher(&fakeRefresher{token: "fresh"}))
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.NoError(t, err)

		require.Len(t, ids, 2)
		assert.NotEmpty(t, ids[0])
		assert.Equal(t, ids[0], ids[1])
	})
}

func TestCachingTransport(t *testing.T) {
	t.Run("serves cacheable listings from the cache", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Cache-Control", "max-age=300")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"title":"spring campaign"}]`))
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL}, WithCache(""))
		require.NoError(t, err)

		for range 2 {
			contests, err := c.Contests.List(context.Background(), ContestListOptions{})
			require.NoError(t, err)
			require.Len(t, contests, 1)
		}

		assert.Equal(t, 1, requests)
	})
}

func TestClient_Do(t *testing.T) {
	t.Run("decodes the error envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"error": "title is required"})
		}))
		t.Cleanup(server.Close)

		c, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = c.Contests.Create(context.Background(), ContestCreate{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "title is required", apiErr.Message)
		assert.False(t, IsNetworkError(err))
	})

	t.Run("network failures are not API errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // refuse connections

		c, err := New(Config{BaseURL: server.URL, Timeout: time.Second})
		require.NoError(t, err)

		_, err = c.Contests.List(context.Background(), ContestListOptions{})
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.Zero(t, StatusOf(err))
	})
}
