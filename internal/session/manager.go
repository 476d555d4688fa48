package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ocontest/ocontest-cli/internal/client"
)

// ErrSessionExpired is returned when the refresh token could not be
// exchanged for a new access token. The local session is already
// cleared by the time callers see it.
var ErrSessionExpired = errors.New("session expired")

// State is an immutable snapshot of the session for guards and UI.
type State struct {
	User    *UserRecord
	Loading bool
}

// Authenticated is derived strictly from the presence of a user.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Manager owns the session: it is the only component that mutates
// credentials or the cached user record. Construct one per process and
// pass it by reference; there is deliberately no package-level instance.
type Manager struct {
	store *Store
	api   *client.Client

	mu      sync.Mutex
	user    *UserRecord
	loading bool

	// refresh is the pending single-flight exchange, nil when idle.
	// Concurrent 401 handlers wait on the same result instead of each
	// spending the refresh token on its own round trip.
	refresh *refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// NewManager creates a session manager. The client must be built
// without a Refresher so auth endpoint calls cannot recurse into
// refresh-and-retry. The session stays in the loading state until
// Hydrate runs.
func NewManager(store *Store, api *client.Client) *Manager {
	return &Manager{
		store:   store,
		api:     api,
		loading: true,
	}
}

// Hydrate reads persisted credentials into memory once at startup.
// The cached user is restored even when the access token has already
// expired, so the first authenticated call can silently refresh.
func (m *Manager) Hydrate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = false

	raw, err := m.store.Get(userKey)
	if err != nil {
		return
	}

	var user UserRecord
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Debug().Err(err).Msg("discarding unreadable stored user record")
		return
	}

	if _, err := m.store.Get(accessTokenKey); err != nil {
		return
	}

	m.user = &user
	log.Debug().Str("email", user.Email).Str("role", user.Role).Msg("session hydrated")
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{User: m.user, Loading: m.loading}
}

// Login exchanges credentials for a token pair and the account record.
// On failure nothing stored changes; the returned error is a
// *client.APIError whose RequireVerification flag routes the caller to
// the email-verification flow instead of a credentials error.
func (m *Manager) Login(ctx context.Context, email, password string) (*UserRecord, error) {
	resp, err := m.api.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := flattenUser(resp.User)

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user record: %w", err)
	}

	if err := m.store.Set(accessTokenKey, resp.Tokens.Access); err != nil {
		return nil, err
	}
	if err := m.store.Set(refreshTokenKey, resp.Tokens.Refresh); err != nil {
		return nil, err
	}
	if err := m.store.Set(userKey, string(userJSON)); err != nil {
		return nil, err
	}
	// Kept for sessions written by older releases; nothing reads it.
	if err := m.store.Set(legacyUserIDKey, strconv.FormatInt(user.ID, 10)); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	log.Info().Str("email", user.Email).Str("role", user.Role).Msg("logged in")

	return user, nil
}

// Register creates an account. It never logs the user in: most
// accounts need email verification before their first login.
func (m *Manager) Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error) {
	return m.api.Auth.Register(ctx, req)
}

// Logout clears the session. Local clearing always succeeds; the
// server-side call is best-effort and its failure is only logged.
func (m *Manager) Logout(ctx context.Context) {
	accessToken, _ := m.store.Get(accessTokenKey)

	for _, key := range []string{accessTokenKey, refreshTokenKey, userKey, legacyUserIDKey} {
		if err := m.store.Remove(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove stored credential")
		}
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	if accessToken != "" {
		if err := m.api.Auth.Logout(ctx, accessToken); err != nil {
			log.Debug().Err(err).Msg("server-side logout failed")
		}
	}

	log.Info().Msg("logged out")
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share a single in-flight exchange. With no stored
// refresh token it returns ErrSessionExpired without a network call;
// if the exchange itself fails the session is cleared first.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if call := m.refresh; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	m.refresh = call
	m.mu.Unlock()

	call.token, call.err = m.doRefresh(ctx)

	m.mu.Lock()
	m.refresh = nil
	m.mu.Unlock()
	close(call.done)

	return call.token, call.err
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	refreshToken, err := m.store.Get(refreshTokenKey)
	if err != nil {
		return "", ErrSessionExpired
	}

	access, err := m.api.Auth.RefreshToken(ctx, refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("token refresh rejected, clearing session")
		m.Logout(ctx)
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if err := m.store.Set(accessTokenKey, access); err != nil {
		return "", err
	}

	log.Debug().Msg("access token refreshed")

	return access, nil
}

// AccessToken implements client.TokenSource. It returns the stored
// token even when expired; the server's 401 drives the refresh path.
func (m *Manager) AccessToken() string {
	token, err := m.store.Get(accessTokenKey)
	if err != nil {
		return ""
	}
	return token
}

// CurrentUser returns the cached record without a network call, or nil
// unless storage holds an unexpired access token.
func (m *Manager) CurrentUser() *UserRecord {
	token, err := m.store.Get(accessTokenKey)
	if err != nil || IsExpired(token) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}
