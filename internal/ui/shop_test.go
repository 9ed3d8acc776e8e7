package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/catalog"
	"github.com/abgdnv/sweetshop/internal/session"
)

// fakeSessions satisfies both the view-model's and the shop view's session
// interfaces.
type fakeSessions struct {
	mu      sync.Mutex
	current session.Session
	subs    []func(session.Session)
}

func (f *fakeSessions) Current() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSessions) IsAuthenticated() bool { return f.Current().Authenticated() }

func (f *fakeSessions) Role() session.Role { return f.Current().Role }

func (f *fakeSessions) Logout() error {
	f.mu.Lock()
	f.current = session.Session{}
	subs := f.subs
	f.mu.Unlock()
	for _, fn := range subs {
		fn(session.Session{})
	}
	return nil
}

func (f *fakeSessions) Subscribe(fn func(session.Session)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *fakeSessions) login(role session.Role) {
	f.mu.Lock()
	f.current = session.Session{Token: "token", Role: role}
	f.mu.Unlock()
}

// fakeFetcher serves a fixed catalog.
type fakeFetcher struct {
	products []api.Product
}

func (f *fakeFetcher) Products(_ context.Context, _ string) ([]api.Product, error) {
	return f.products, nil
}

// spyCommands counts mutation calls.
type spyCommands struct {
	mu        sync.Mutex
	purchases []int64
	restocks  []catalog.RestockInput
	creates   []catalog.CreateInput
}

func (s *spyCommands) Purchase(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, id)
	return "Purchased!", nil
}

func (s *spyCommands) Restock(_ context.Context, in catalog.RestockInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restocks = append(s.restocks, in)
	return "Restocked.", nil
}

func (s *spyCommands) Create(_ context.Context, in catalog.CreateInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, in)
	return "Added.", nil
}

func newShopFixture(t *testing.T, role session.Role, products []api.Product, script string) (*ShopView, *spyCommands, *strings.Builder) {
	t.Helper()
	sessions := &fakeSessions{}
	sessions.login(role)
	vm := catalog.NewViewModel(&fakeFetcher{products: products}, sessions, slog.Default())
	commands := &spyCommands{}
	out := &strings.Builder{}
	view := NewShopView(vm, commands, sessions, strings.NewReader(script), out)
	return view, commands, out
}

func Test_ShopView_Buy_OutOfStockNeverIssuesPurchase(t *testing.T) {
	products := []api.Product{
		{ID: 1, Name: "Toffee", Price: 2.50, Quantity: 3},
		{ID: 4, Name: "Marzipan", Price: 4.00, Quantity: 0},
	}
	view, commands, out := newShopFixture(t, session.RoleCustomer, products, "buy 4\nquit\n")

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Empty(t, commands.purchases, "purchase must not be issued for an out-of-stock product")
	assert.Contains(t, out.String(), "Marzipan is out of stock")
}

func Test_ShopView_Buy_InStockIssuesPurchase(t *testing.T) {
	products := []api.Product{{ID: 1, Name: "Toffee", Price: 2.50, Quantity: 3}}
	view, commands, out := newShopFixture(t, session.RoleCustomer, products, "buy 1\nquit\n")

	_, err := view.Render(context.Background())

	require.NoError(t, err)
	require.Equal(t, []int64{1}, commands.purchases)
	assert.Contains(t, out.String(), "Purchased!")
}

func Test_ShopView_Buy_UnknownID(t *testing.T) {
	products := []api.Product{{ID: 1, Name: "Toffee", Price: 2.50, Quantity: 3}}
	view, commands, out := newShopFixture(t, session.RoleCustomer, products, "buy 99\nquit\n")

	_, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Empty(t, commands.purchases)
	assert.Contains(t, out.String(), "no product with ID 99")
}

func Test_ShopView_SellerOnlyCommands(t *testing.T) {
	products := []api.Product{{ID: 1, Name: "Toffee", Price: 2.50, Quantity: 3}}

	t.Run("customer is refused", func(t *testing.T) {
		view, commands, out := newShopFixture(t, session.RoleCustomer, products, "restock 1 5\nadd Fudge 3.20 10\nquit\n")

		_, err := view.Render(context.Background())

		require.NoError(t, err)
		assert.Empty(t, commands.restocks)
		assert.Empty(t, commands.creates)
		assert.Contains(t, out.String(), "seller role")
	})

	t.Run("seller commands pass through", func(t *testing.T) {
		view, commands, _ := newShopFixture(t, session.RoleSeller, products, "restock 1 5\nadd Chocolate Fudge 3.20 10\nquit\n")

		_, err := view.Render(context.Background())

		require.NoError(t, err)
		require.Equal(t, []catalog.RestockInput{{ID: 1, Quantity: 5}}, commands.restocks)
		require.Len(t, commands.creates, 1)
		assert.Equal(t, catalog.CreateInput{Name: "Chocolate Fudge", Price: 3.20, Quantity: 10}, commands.creates[0])
	})
}

func Test_ShopView_UnauthenticatedReturnsToLogin(t *testing.T) {
	view, _, _ := newShopFixture(t, session.RoleCustomer, nil, "")
	sessions := view.sessions.(*fakeSessions)
	require.NoError(t, sessions.Logout())

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ViewLogin, next)
}

func Test_UserMessage(t *testing.T) {
	detail := &api.ServerError{Status: 400, Detail: "Insufficient stock. Only 2 available."}
	assert.Equal(t, "Insufficient stock. Only 2 available.", userMessage(detail))
}
