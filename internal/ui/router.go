// Package ui implements the terminal front end: a small view router with
// an authentication guard, and the login, registration and shop views.
package ui

import (
	"context"
	"fmt"
	"log/slog"
)

// View renders interactively and returns the name of the next view, or an
// empty string to exit the application.
type View interface {
	Render(ctx context.Context) (next string, err error)
}

// Guard answers whether protected views may render.
type Guard interface {
	IsAuthenticated() bool
}

// ViewLogin is the view unauthenticated navigation falls back to.
const (
	ViewLogin    = "login"
	ViewRegister = "register"
	ViewShop     = "shop"
)

// Router maps view names to views and gates access to protected ones. The
// guard decision is re-evaluated on every navigation, never cached.
type Router struct {
	guard     Guard
	views     map[string]View
	protected map[string]bool
	logger    *slog.Logger
}

// NewRouter creates a router guarded by the given session check.
func NewRouter(guard Guard, logger *slog.Logger) *Router {
	return &Router{
		guard:     guard,
		views:     make(map[string]View),
		protected: make(map[string]bool),
		logger:    logger.With("component", "router"),
	}
}

// Register adds a publicly accessible view.
func (r *Router) Register(name string, v View) {
	r.views[name] = v
}

// RegisterProtected adds a view that renders only for authenticated sessions.
func (r *Router) RegisterProtected(name string, v View) {
	r.views[name] = v
	r.protected[name] = true
}

// Resolve applies the guard to a navigation attempt and returns the view
// that will actually render. Unauthenticated access to a protected view
// redirects to the login view.
func (r *Router) Resolve(name string) (string, View, error) {
	if r.protected[name] && !r.guard.IsAuthenticated() {
		r.logger.Debug("Redirecting unauthenticated navigation", "requested", name)
		name = ViewLogin
	}
	v, ok := r.views[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown view: %s", name)
	}
	return name, v, nil
}

// Run renders views starting from the given one until a view returns an
// empty next name or the context is cancelled.
func (r *Router) Run(ctx context.Context, start string) error {
	next := start
	for next != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, view, err := r.Resolve(next)
		if err != nil {
			return err
		}
		r.logger.Debug("Rendering view", "view", name)
		next, err = view.Render(ctx)
		if err != nil {
			return fmt.Errorf("render view %s: %w", name, err)
		}
	}
	return nil
}
