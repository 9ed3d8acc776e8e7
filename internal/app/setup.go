// Package app contains the application setup for the storefront client.
package app

import (
	"io"
	"log/slog"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/auth"
	"github.com/abgdnv/sweetshop/internal/catalog"
	"github.com/abgdnv/sweetshop/internal/config"
	"github.com/abgdnv/sweetshop/internal/session"
	"github.com/abgdnv/sweetshop/internal/ui"
	"github.com/abgdnv/sweetshop/pkg/bootstrap"
)

type Dependencies struct {
	Sessions  *session.Store
	Client    *api.Client
	Flow      *auth.Flow
	ViewModel *catalog.ViewModel
	Commands  *catalog.Commands
	Logger    *slog.Logger
}

// SetupDependencies wires the session store, API client, flows, view-model
// and commands. The session store is the single shared mutable resource;
// every other component receives it by reference.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	sessions, err := session.NewStore(session.NewFileStorage(cfg.Session.Path), logger)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.URL, bootstrap.NewHTTPClient(cfg.API.Timeout), sessions, logger)
	vm := catalog.NewViewModel(client, sessions, logger)

	return &Dependencies{
		Sessions:  sessions,
		Client:    client,
		Flow:      auth.NewFlow(client, sessions, logger),
		ViewModel: vm,
		Commands:  catalog.NewCommands(client, vm, sessions, logger),
		Logger:    logger,
	}, nil
}

// SetupRouter registers the three views and their guard.
func SetupRouter(deps *Dependencies, cfg *config.Config, in io.Reader, out io.Writer) *ui.Router {
	router := ui.NewRouter(deps.Sessions, deps.Logger)
	router.Register(ui.ViewLogin, ui.NewLoginView(deps.Flow, in, out))
	router.Register(ui.ViewRegister, ui.NewRegisterView(deps.Flow, in, out, cfg.UI.RedirectDelay))
	router.RegisterProtected(ui.ViewShop, ui.NewShopView(deps.ViewModel, deps.Commands, deps.Sessions, in, out))
	return router
}
