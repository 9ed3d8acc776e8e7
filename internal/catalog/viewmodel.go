// Package catalog owns the locally cached product list and the operations
// that mutate inventory. The cache is synchronized with the backend on
// every session or search change and replaced wholesale on each fetch.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/session"
)

// State is the synchronization state of the view-model.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Messages surfaced for the re-authentication and connectivity paths.
const (
	MsgSessionExpired = "Session expired or unauthorized. Please log in again."
	MsgUnreachable    = "Could not connect to the API. Check the backend server."
)

// Fetcher is the slice of the API client the view-model uses.
type Fetcher interface {
	Products(ctx context.Context, search string) ([]api.Product, error)
}

// SessionStore is what the view-model needs from the session store: the
// current token, forced invalidation on 401, and change notifications.
type SessionStore interface {
	Current() session.Session
	Logout() error
	Subscribe(fn func(session.Session))
}

// ViewModel keeps a local view of the catalog consistent with server
// state. Fetches are keyed by (token, search term); each key change issues
// exactly one fetch, and a monotonic sequence number discards the result
// of any fetch that has been superseded before completing.
type ViewModel struct {
	fetcher  Fetcher
	sessions SessionStore
	logger   *slog.Logger

	seq atomic.Uint64

	mu        sync.Mutex
	state     State
	snapshot  []api.Product
	message   string
	term      string
	listeners []func()
}

// NewViewModel creates the view-model and subscribes it to session
// changes: a token appearing triggers a fetch, a token disappearing drops
// the snapshot and returns to idle.
func NewViewModel(fetcher Fetcher, sessions SessionStore, logger *slog.Logger) *ViewModel {
	vm := &ViewModel{
		fetcher:  fetcher,
		sessions: sessions,
		logger:   logger.With("component", "catalog"),
		state:    StateIdle,
	}
	sessions.Subscribe(func(s session.Session) {
		if s.Authenticated() {
			vm.Refresh(context.Background())
			return
		}
		vm.reset()
	})
	return vm
}

// SetSearchTerm updates the search term. A changed term triggers exactly
// one fetch while a token is present; setting the same term is a no-op.
func (vm *ViewModel) SetSearchTerm(ctx context.Context, term string) {
	vm.mu.Lock()
	if vm.term == term {
		vm.mu.Unlock()
		return
	}
	vm.term = term
	vm.mu.Unlock()

	if vm.sessions.Current().Authenticated() {
		vm.Refresh(ctx)
	}
}

// Refresh fetches the catalog for the current (token, search term) pair
// and replaces the snapshot wholesale. A completion that has been
// superseded by a newer fetch is discarded so a late-arriving stale
// response can never overwrite fresher data.
func (vm *ViewModel) Refresh(ctx context.Context) {
	cur := vm.sessions.Current()
	if !cur.Authenticated() {
		vm.reset()
		return
	}

	seq := vm.seq.Add(1)

	vm.mu.Lock()
	term := vm.term
	vm.state = StateLoading
	vm.message = ""
	listeners := vm.listeners
	vm.mu.Unlock()
	vm.notify(listeners)

	products, err := vm.fetcher.Products(ctx, term)

	if seq != vm.seq.Load() {
		// A newer fetch was issued while this one was in flight.
		vm.logger.Debug("Discarding stale catalog fetch", "seq", seq)
		return
	}

	if err != nil {
		vm.handleFetchError(err)
		return
	}

	vm.mu.Lock()
	vm.state = StateReady
	vm.snapshot = products
	listeners = vm.listeners
	vm.mu.Unlock()
	vm.notify(listeners)
	vm.logger.Debug("Catalog synchronized", "count", len(products), "term", term)
}

// handleFetchError maps a fetch failure to the corresponding state. A 401
// invalidates the session; no retry is attempted on any path.
func (vm *ViewModel) handleFetchError(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		if lerr := vm.sessions.Logout(); lerr != nil {
			vm.logger.Error("Forced logout failed", "error", lerr)
		}
		vm.mu.Lock()
		vm.state = StateIdle
		vm.snapshot = nil
		vm.message = MsgSessionExpired
		listeners := vm.listeners
		vm.mu.Unlock()
		vm.notify(listeners)
		return
	}

	message := MsgUnreachable
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		message = serverErr.Detail
	}

	vm.mu.Lock()
	vm.state = StateError
	vm.message = message
	listeners := vm.listeners
	vm.mu.Unlock()
	vm.notify(listeners)
	vm.logger.Warn("Catalog fetch failed", "error", err)
}

// reset drops the snapshot and any status message and returns to idle,
// used when the session ends.
func (vm *ViewModel) reset() {
	vm.mu.Lock()
	vm.state = StateIdle
	vm.snapshot = nil
	vm.message = ""
	listeners := vm.listeners
	vm.mu.Unlock()
	vm.notify(listeners)
}

// State returns the current synchronization state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Snapshot returns a copy of the last successfully fetched catalog.
func (vm *ViewModel) Snapshot() []api.Product {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]api.Product, len(vm.snapshot))
	copy(out, vm.snapshot)
	return out
}

// Message returns the current status message, if any.
func (vm *ViewModel) Message() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.message
}

// SearchTerm returns the active search term.
func (vm *ViewModel) SearchTerm() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.term
}

// OnChange registers a callback invoked after every state change.
func (vm *ViewModel) OnChange(fn func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.listeners = append(vm.listeners, fn)
}

// notify runs outside the lock so listeners may read the view-model.
func (vm *ViewModel) notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
