package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abgdnv/sweetshop/internal/auth"
)

// LoginView collects credentials and submits them through the auth flow.
type LoginView struct {
	flow *auth.Flow
	in   *bufio.Reader
	out  io.Writer
}

// NewLoginView creates the login form.
func NewLoginView(flow *auth.Flow, in io.Reader, out io.Writer) *LoginView {
	return &LoginView{flow: flow, in: bufio.NewReader(in), out: out}
}

func (v *LoginView) Render(ctx context.Context) (string, error) {
	fmt.Fprintln(v.out, "== Login to Sweet Shop ==")
	fmt.Fprintln(v.out, "(type :register to create an account, :quit to exit)")

	username, ok := prompt(v.in, v.out, "Username: ")
	if !ok {
		return "", nil
	}
	switch username {
	case ":quit":
		return "", nil
	case ":register":
		return ViewRegister, nil
	}
	password, ok := prompt(v.in, v.out, "Password: ")
	if !ok {
		return "", nil
	}

	if err := v.flow.Login(ctx, auth.LoginInput{Username: username, Password: password}); err != nil {
		fmt.Fprintf(v.out, "Login failed: %s\n", userMessage(err))
		return ViewLogin, nil
	}
	return ViewShop, nil
}

// RegisterView collects account details and submits them through the auth flow.
type RegisterView struct {
	flow *auth.Flow
	in   *bufio.Reader
	out  io.Writer

	// redirectDelay is how long the success message stays visible before
	// the view navigates back to login.
	redirectDelay time.Duration
}

// NewRegisterView creates the registration form.
func NewRegisterView(flow *auth.Flow, in io.Reader, out io.Writer, redirectDelay time.Duration) *RegisterView {
	return &RegisterView{flow: flow, in: bufio.NewReader(in), out: out, redirectDelay: redirectDelay}
}

func (v *RegisterView) Render(ctx context.Context) (string, error) {
	fmt.Fprintln(v.out, "== Register for Sweet Shop ==")
	fmt.Fprintln(v.out, "(type :login to go back, :quit to exit)")

	username, ok := prompt(v.in, v.out, "Username: ")
	if !ok {
		return "", nil
	}
	switch username {
	case ":quit":
		return "", nil
	case ":login":
		return ViewLogin, nil
	}
	email, ok := prompt(v.in, v.out, "Email: ")
	if !ok {
		return "", nil
	}
	password, ok := prompt(v.in, v.out, "Password: ")
	if !ok {
		return "", nil
	}
	role, ok := prompt(v.in, v.out, "Role (customer/seller): ")
	if !ok {
		return "", nil
	}
	if role == "" {
		role = "customer"
	}

	message, err := v.flow.Register(ctx, auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		fmt.Fprintf(v.out, "Registration failed: %s\n", userMessage(err))
		return ViewRegister, nil
	}

	fmt.Fprintln(v.out, message)
	select {
	case <-time.After(v.redirectDelay):
	case <-ctx.Done():
	}
	return ViewLogin, nil
}

// prompt reads one trimmed line, returning false on EOF.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
