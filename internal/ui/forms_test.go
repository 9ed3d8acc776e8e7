package ui

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/auth"
	"github.com/abgdnv/sweetshop/internal/session"
)

// scriptedService answers credential submissions with canned results.
type scriptedService struct {
	tokenResp   *api.TokenResponse
	tokenErr    error
	registerErr error
}

func (s *scriptedService) Token(_ context.Context, _, _ string) (*api.TokenResponse, error) {
	return s.tokenResp, s.tokenErr
}

func (s *scriptedService) Register(_ context.Context, in api.RegisterInput) (*api.RegisteredUser, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &api.RegisteredUser{ID: 1, Username: in.Username, Email: in.Email, Role: in.Role}, nil
}

type sessionSpy struct {
	logins int
}

func (s *sessionSpy) Login(_ string, _ session.Role) error {
	s.logins++
	return nil
}

func newLoginFixture(service *scriptedService, script string) (*LoginView, *sessionSpy, *strings.Builder) {
	sessions := &sessionSpy{}
	flow := auth.NewFlow(service, sessions, slog.Default())
	out := &strings.Builder{}
	return NewLoginView(flow, strings.NewReader(script), out), sessions, out
}

func Test_LoginView_SuccessNavigatesToShop(t *testing.T) {
	service := &scriptedService{tokenResp: &api.TokenResponse{AccessToken: "granted", TokenType: "bearer"}}
	view, sessions, _ := newLoginFixture(service, "alice\ns3cret\n")

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ViewShop, next)
	assert.Equal(t, 1, sessions.logins)
}

func Test_LoginView_RejectedCredentialsStayOnLogin(t *testing.T) {
	service := &scriptedService{tokenErr: &api.ServerError{Status: 401, Detail: "Incorrect username or password"}}
	view, sessions, out := newLoginFixture(service, "alice\nwrong\n")

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ViewLogin, next)
	assert.Zero(t, sessions.logins)
	assert.Contains(t, out.String(), "Login failed: Incorrect username or password")
}

func Test_LoginView_Navigation(t *testing.T) {
	testCases := []struct {
		name         string
		script       string
		expectedView string
	}{
		{name: "register shortcut", script: ":register\n", expectedView: ViewRegister},
		{name: "quit shortcut", script: ":quit\n", expectedView: ""},
		{name: "EOF exits", script: "", expectedView: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			view, sessions, _ := newLoginFixture(&scriptedService{}, tc.script)

			next, err := view.Render(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tc.expectedView, next)
			assert.Zero(t, sessions.logins)
		})
	}
}

func Test_RegisterView_SuccessRedirectsToLogin(t *testing.T) {
	service := &scriptedService{}
	flow := auth.NewFlow(service, &sessionSpy{}, slog.Default())
	out := &strings.Builder{}
	view := NewRegisterView(flow, strings.NewReader("alice\nalice@example.com\ns3cret\nseller\n"), out, 0)

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ViewLogin, next)
	assert.Contains(t, out.String(), "Registration successful! Redirecting to login...")
}

func Test_RegisterView_DuplicateStaysOnRegister(t *testing.T) {
	service := &scriptedService{registerErr: &api.ServerError{Status: 400, Detail: "Username or email already registered"}}
	flow := auth.NewFlow(service, &sessionSpy{}, slog.Default())
	out := &strings.Builder{}
	view := NewRegisterView(flow, strings.NewReader("alice\nalice@example.com\ns3cret\ncustomer\n"), out, 0)

	next, err := view.Render(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ViewRegister, next)
	assert.Contains(t, out.String(), "Registration failed: Username or email already registered")
}
