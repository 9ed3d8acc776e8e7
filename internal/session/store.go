package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrEmptyToken is returned by Login when no token is supplied; a session
// without a token would violate the "role present iff token present" rule.
var ErrEmptyToken = errors.New("session token must not be empty")

// Storage is the durable backend a Store persists the session to.
type Storage interface {
	// Load returns the persisted session, or a zero session when none exists.
	Load() (Session, error)
	// Save persists the session.
	Save(s Session) error
	// Clear removes any persisted session. Clearing an empty storage is not an error.
	Clear() error
}

// Store is the single owner and writer of the client session. All other
// components read it through Current/IsAuthenticated/Token or observe
// changes via Subscribe. Both session fields change atomically: a reader
// never sees a token without its role or vice versa.
type Store struct {
	mu          sync.RWMutex
	current     Session
	storage     Storage
	subscribers []func(Session)
	logger      *slog.Logger
}

// NewStore creates a session store rehydrated from durable storage, so a
// restart preserves an existing login until explicit logout.
func NewStore(storage Storage, logger *slog.Logger) (*Store, error) {
	s, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load persisted session: %w", err)
	}
	return &Store{
		current: s,
		storage: storage,
		logger:  logger.With("component", "session"),
	}, nil
}

// Login overwrites the session with the given token and role, persists it,
// and notifies subscribers before returning. An invalid role falls back to
// customer rather than leaving the session half-formed. Storage is written
// before subscribers run: a subscriber may react by logging out again, and
// its Clear must be the last storage write, not overwritten by this login.
func (st *Store) Login(token string, role Role) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !role.Valid() {
		st.logger.Warn("Unknown role on login, defaulting to customer", "role", string(role))
		role = RoleCustomer
	}
	next := Session{Token: token, Role: role}

	st.mu.Lock()
	st.current = next
	subs := st.subscribers
	st.mu.Unlock()

	if err := st.storage.Save(next); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	st.logger.Info("Session established", "role", string(role))

	st.notify(subs, next)
	return nil
}

// Logout clears both session fields, removes the persisted session, and
// notifies subscribers before returning. As in Login, storage is updated
// before subscribers run.
func (st *Store) Logout() error {
	st.mu.Lock()
	st.current = Session{}
	subs := st.subscribers
	st.mu.Unlock()

	if err := st.storage.Clear(); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	st.logger.Info("Session cleared")

	st.notify(subs, Session{})
	return nil
}

// Current returns a copy of the session.
func (st *Store) Current() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// IsAuthenticated reports whether a token is currently held.
func (st *Store) IsAuthenticated() bool {
	return st.Current().Authenticated()
}

// Token returns the current bearer token, implementing api.TokenSource.
func (st *Store) Token() string {
	return st.Current().Token
}

// Role returns the role of the current login.
func (st *Store) Role() Role {
	return st.Current().Role
}

// Subscribe registers a callback invoked synchronously on every state
// change, after both the in-memory session and durable storage are
// updated. A callback may itself log out; state it writes wins over the
// change it was notified about.
func (st *Store) Subscribe(fn func(Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subscribers = append(st.subscribers, fn)
}

// notify runs outside the store lock so subscribers may read the store.
func (st *Store) notify(subs []func(Session), s Session) {
	for _, fn := range subs {
		fn(s)
	}
}
