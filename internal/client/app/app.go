// Package app wires the client components together: one credential store, one
// session controller, one backend client and the three views.
package app

import (
	"fmt"

	"github.com/and161185/sales-intel/internal/client/api"
	"github.com/and161185/sales-intel/internal/client/credstore"
	"github.com/and161185/sales-intel/internal/client/router"
	"github.com/and161185/sales-intel/internal/client/session"
	"github.com/and161185/sales-intel/internal/client/views"
	"github.com/and161185/sales-intel/internal/config"
	"github.com/and161185/sales-intel/internal/model"
	"go.uber.org/zap"
)

type App struct {
	Log     *zap.Logger
	API     *api.Client
	Session *session.Controller

	Login  *views.Login
	Vendas *views.Vendas
	Admin  *views.Admin
}

// New builds the client. A nil store means the file store under cfg.ConfigDir.
// The session is restored from the store here, once.
func New(cfg config.Client, log *zap.Logger, store credstore.Store) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = credstore.NewFileStore(cfg.ConfigDir)
	}
	client, err := api.New(cfg.APIURL, api.WithLogger(log.Named("api")), api.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	ctrl := session.New(store, client, log.Named("session"))
	client.OnAuthRejected(func(tok string) { ctrl.ForceLogout(tok) })

	a := &App{
		Log:     log,
		API:     client,
		Session: ctrl,
		Login:   views.NewLogin(ctrl),
		Vendas:  views.NewVendas(client, ctrl, log.Named("vendas")),
		Admin:   views.NewAdmin(client, ctrl, views.DefaultRecentLimit, log.Named("admin")),
	}
	ctrl.Subscribe(func(s model.Session) {
		if !s.Authenticated() {
			a.Vendas.Reset()
			a.Admin.Reset()
		}
	})
	return a, nil
}

// View is the screen the current session routes to.
func (a *App) View() router.View { return router.Route(a.Session.Current()) }
