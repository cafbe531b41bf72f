package views

import (
	"context"
	"sync"

	"github.com/and161185/sales-intel/internal/client/inflight"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
)

// Sessions is the part of the session controller the views use.
type Sessions interface {
	Current() model.Session
	Login(ctx context.Context, username, password string) (model.Session, error)
}

// LoginState is what the login screen shows.
type LoginState struct {
	Submitting bool
	Error      string
}

// Login is the login form.
type Login struct {
	sess Sessions
	gate inflight.Gate

	mu  sync.Mutex
	err string
}

func NewLogin(sess Sessions) *Login { return &Login{sess: sess} }

// State returns a snapshot.
func (v *Login) State() LoginState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return LoginState{Submitting: v.gate.Busy(), Error: v.err}
}

// Submit performs the login. The error message is kept for display; the
// session controller decides the next view.
func (v *Login) Submit(ctx context.Context, username, password string) (model.Session, error) {
	if !v.gate.TryAcquire() {
		return model.Session{}, errs.ErrBusy
	}
	defer v.gate.Release()

	s, err := v.sess.Login(ctx, username, password)
	v.mu.Lock()
	v.err = LoginMessage(err)
	v.mu.Unlock()
	return s, err
}
