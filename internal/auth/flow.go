// Package auth implements the credential submission flows: login and
// registration. A session is established only from a confirmed-successful,
// server-issued token; no failure path grants access.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

// Service is the slice of the API client the flows use.
type Service interface {
	Token(ctx context.Context, username, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, in api.RegisterInput) (*api.RegisteredUser, error)
}

// SessionWriter establishes the session on successful login.
type SessionWriter interface {
	Login(token string, role session.Role) error
}

// Flow submits credentials to the backend and updates the session store.
type Flow struct {
	service  Service
	sessions SessionWriter
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFlow creates a credential submission flow.
func NewFlow(service Service, sessions SessionWriter, logger *slog.Logger) *Flow {
	return &Flow{
		service:  service,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With("component", "auth"),
	}
}

// LoginInput is the login form payload.
type LoginInput struct {
	Username string `validate:"required,max=50"`
	Password string `validate:"required,max=72"`
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,max=72"`
	Role     string `validate:"required,oneof=customer seller"`
}

// Login exchanges the credentials for a token and, only when the server
// confirms them, establishes the session. The role is read from the
// token's claims, defaulting to customer when the claim is absent.
func (f *Flow) Login(ctx context.Context, in LoginInput) error {
	if err := f.validate.Struct(in); err != nil {
		return validationError(err)
	}

	resp, err := f.service.Token(ctx, in.Username, in.Password)
	if err != nil {
		f.logger.Warn("Login rejected", "username", in.Username, "error", err)
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("server returned an empty access token")
	}
	if err := f.sessions.Login(resp.AccessToken, roleFromToken(resp.AccessToken)); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}

// Register submits the registration form. On success the caller shows the
// returned confirmation and redirects to the login view; no session is
// established here.
func (f *Flow) Register(ctx context.Context, in RegisterInput) (string, error) {
	if err := f.validate.Struct(in); err != nil {
		return "", validationError(err)
	}

	user, err := f.service.Register(ctx, api.RegisterInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		f.logger.Warn("Registration rejected", "username", in.Username, "error", err)
		return "", err
	}
	f.logger.Info("Account registered", "username", user.Username, "role", user.Role)
	return "Registration successful! Redirecting to login...", nil
}

// roleFromToken reads the role claim from the access token. The token is
// not verified here; verification is the server's job and the claim only
// selects which views the client offers.
func roleFromToken(token string) session.Role {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session.RoleCustomer
	}
	if role, ok := claims["role"].(string); ok && session.Role(role).Valid() {
		return session.Role(role)
	}
	return session.RoleCustomer
}

// validationError flattens validator errors into a single user-facing message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on rule: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(fields, "; "))
}
