package session

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	saved   Session
	present bool
	loadErr error
}

func (m *memStorage) Load() (Session, error) {
	if m.loadErr != nil {
		return Session{}, m.loadErr
	}
	if !m.present {
		return Session{}, nil
	}
	return m.saved, nil
}

func (m *memStorage) Save(s Session) error {
	m.saved = s
	m.present = true
	return nil
}

func (m *memStorage) Clear() error {
	m.saved = Session{}
	m.present = false
	return nil
}

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	store, err := NewStore(storage, slog.Default())
	require.NoError(t, err)
	return store
}

func Test_Store_AuthenticatedTracksToken(t *testing.T) {
	store := newTestStore(t, &memStorage{})

	// isAuthenticated must equal "token present" at every observation point
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Login("token-1", RoleCustomer))
	assert.True(t, store.IsAuthenticated())

	require.NoError(t, store.Logout())
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Login("token-2", RoleSeller))
	require.NoError(t, store.Login("token-3", RoleCustomer))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "token-3", store.Token())

	require.NoError(t, store.Logout())
	require.NoError(t, store.Logout())
	assert.False(t, store.IsAuthenticated())
}

func Test_Store_RoleIffToken(t *testing.T) {
	store := newTestStore(t, &memStorage{})

	require.NoError(t, store.Login("token-1", RoleSeller))
	cur := store.Current()
	assert.Equal(t, "token-1", cur.Token)
	assert.Equal(t, RoleSeller, cur.Role)

	require.NoError(t, store.Logout())
	cur = store.Current()
	assert.Empty(t, cur.Token)
	assert.Empty(t, cur.Role)
}

func Test_Store_Login_EmptyTokenRejected(t *testing.T) {
	store := newTestStore(t, &memStorage{})

	err := store.Login("", RoleSeller)

	require.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, store.IsAuthenticated())
}

func Test_Store_Login_UnknownRoleDefaultsToCustomer(t *testing.T) {
	store := newTestStore(t, &memStorage{})

	require.NoError(t, store.Login("token-1", Role("admin")))

	assert.Equal(t, RoleCustomer, store.Role())
}

func Test_Store_Logout_ClearsDurableStorage(t *testing.T) {
	storage := &memStorage{}
	store := newTestStore(t, storage)
	require.NoError(t, store.Login("token-1", RoleCustomer))
	require.True(t, storage.present)

	require.NoError(t, store.Logout())

	assert.False(t, storage.present)
	assert.Empty(t, storage.saved.Token)
	assert.Empty(t, storage.saved.Role)
}

func Test_Store_RehydratesFromStorage(t *testing.T) {
	storage := &memStorage{saved: Session{Token: "persisted", Role: RoleSeller}, present: true}

	store := newTestStore(t, storage)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "persisted", store.Token())
	assert.Equal(t, RoleSeller, store.Role())
}

func Test_Store_SubscribersNotifiedSynchronously(t *testing.T) {
	store := newTestStore(t, &memStorage{})

	var observed []Session
	store.Subscribe(func(s Session) {
		observed = append(observed, s)
		// Subscribers may read the store; the new state must already be visible.
		assert.Equal(t, s.Authenticated(), store.IsAuthenticated())
	})

	require.NoError(t, store.Login("token-1", RoleSeller))
	require.NoError(t, store.Logout())

	require.Len(t, observed, 2)
	assert.Equal(t, Session{Token: "token-1", Role: RoleSeller}, observed[0])
	assert.Equal(t, Session{}, observed[1])
}

func Test_Store_SubscriberLogoutDuringLoginWins(t *testing.T) {
	storage := &memStorage{}
	store := newTestStore(t, storage)

	// A subscriber may discover during the login notification that the new
	// token is already dead (a 401 on its first fetch) and log out again.
	// Its Clear must be the final word in both memory and storage.
	store.Subscribe(func(s Session) {
		if s.Authenticated() {
			require.NoError(t, store.Logout())
		}
	})

	require.NoError(t, store.Login("expired-token", RoleCustomer))

	assert.False(t, store.IsAuthenticated())
	assert.False(t, storage.present)
	assert.Empty(t, storage.saved.Token)
	assert.Empty(t, storage.saved.Role)
}

func Test_FileStorage_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	storage := NewFileStorage(path)

	// missing file means no session
	s, err := storage.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	require.NoError(t, storage.Save(Session{Token: "token-1", Role: RoleSeller}))
	s, err = storage.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "token-1", Role: RoleSeller}, s)

	require.NoError(t, storage.Clear())
	s, err = storage.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	// clearing twice is not an error
	require.NoError(t, storage.Clear())
}

func Test_FileStorage_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := newTestStore(t, NewFileStorage(path))
	require.NoError(t, first.Login("token-1", RoleCustomer))

	// a new store over the same file sees the persisted session
	second := newTestStore(t, NewFileStorage(path))
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, RoleCustomer, second.Role())
}
