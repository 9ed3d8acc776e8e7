package ui

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGuard is a Guard with a settable answer.
type fakeGuard struct {
	authenticated bool
}

func (f *fakeGuard) IsAuthenticated() bool { return f.authenticated }

// stubView is a View that records renders.
type stubView struct {
	renders int
	next    string
}

func (s *stubView) Render(_ context.Context) (string, error) {
	s.renders++
	return s.next, nil
}

func Test_Router_Resolve(t *testing.T) {
	testCases := []struct {
		name          string
		authenticated bool
		requested     string
		expectedView  string
	}{
		{
			name:          "unauthenticated navigation to protected view redirects to login",
			authenticated: false,
			requested:     ViewShop,
			expectedView:  ViewLogin,
		},
		{
			name:          "authenticated navigation to protected view renders it",
			authenticated: true,
			requested:     ViewShop,
			expectedView:  ViewShop,
		},
		{
			name:          "public views render regardless of session",
			authenticated: false,
			requested:     ViewRegister,
			expectedView:  ViewRegister,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			guard := &fakeGuard{authenticated: tc.authenticated}
			router := NewRouter(guard, slog.Default())
			router.Register(ViewLogin, &stubView{})
			router.Register(ViewRegister, &stubView{})
			router.RegisterProtected(ViewShop, &stubView{})

			name, view, err := router.Resolve(tc.requested)

			require.NoError(t, err)
			require.NotNil(t, view)
			assert.Equal(t, tc.expectedView, name)
		})
	}
}

func Test_Router_Resolve_ReEvaluatesGuard(t *testing.T) {
	guard := &fakeGuard{authenticated: true}
	router := NewRouter(guard, slog.Default())
	router.Register(ViewLogin, &stubView{})
	router.RegisterProtected(ViewShop, &stubView{})

	name, _, err := router.Resolve(ViewShop)
	require.NoError(t, err)
	require.Equal(t, ViewShop, name)

	// the decision must not be cached across navigations
	guard.authenticated = false
	name, _, err = router.Resolve(ViewShop)
	require.NoError(t, err)
	assert.Equal(t, ViewLogin, name)
}

func Test_Router_Resolve_UnknownView(t *testing.T) {
	router := NewRouter(&fakeGuard{}, slog.Default())

	_, _, err := router.Resolve("dashboard")

	require.Error(t, err)
}

func Test_Router_Run_FollowsNextView(t *testing.T) {
	guard := &fakeGuard{authenticated: false}
	login := &stubView{next: ""}
	shop := &stubView{}
	router := NewRouter(guard, slog.Default())
	router.Register(ViewLogin, login)
	router.RegisterProtected(ViewShop, shop)

	// starting at the protected shop view lands on login, which exits
	require.NoError(t, router.Run(context.Background(), ViewShop))

	assert.Equal(t, 1, login.renders)
	assert.Zero(t, shop.renders)
}
