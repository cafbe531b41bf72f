// Package router selects the view for a session.
package router

import "github.com/and161185/sales-intel/internal/model"

// View is the top-level screen.
type View int

const (
	LoginView View = iota
	VendasView
	AdminView
)

func (v View) String() string {
	switch v {
	case VendasView:
		return "vendas"
	case AdminView:
		return "admin"
	default:
		return "login"
	}
}

// Route is a pure function of the session. Any non-admin role gets the vendas view.
func Route(s model.Session) View {
	switch {
	case !s.Authenticated():
		return LoginView
	case s.Role.IsAdmin():
		return AdminView
	default:
		return VendasView
	}
}
