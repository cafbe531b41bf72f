// Package session owns the client's authentication state. It is the only
// writer of the credential store after start-up.
package session

import (
	"context"
	"sync"

	"github.com/and161185/sales-intel/internal/client/credstore"
	"github.com/and161185/sales-intel/internal/model"
	"go.uber.org/zap"
)

// Authenticator performs the credential exchange.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Tokens, error)
}

// Controller holds the current Session. State is read from the store once, in New.
type Controller struct {
	store credstore.Store
	auth  Authenticator
	log   *zap.Logger

	mu   sync.RWMutex
	cur  model.Session
	subs []func(model.Session)
}

// New restores the session from store.
func New(store credstore.Store, auth Authenticator, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{store: store, auth: auth, log: log}
	if cred, ok := store.Load(); ok {
		c.cur = model.Session{Token: cred.Token, Role: cred.Role}
	}
	return c
}

// Current returns a snapshot of the session.
func (c *Controller) Current() model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

// Subscribe registers fn to be called after every state change.
func (c *Controller) Subscribe(fn func(model.Session)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Login exchanges credentials and, on success, persists and activates the new
// session. On failure the state is unchanged and the error is returned as is.
func (c *Controller) Login(ctx context.Context, username, password string) (model.Session, error) {
	tok, err := c.auth.Login(ctx, username, password)
	if err != nil {
		c.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return c.Current(), err
	}
	s := model.Session{Token: tok.AccessToken, Role: tok.Role}
	if err := c.store.Save(credstore.Credential{Token: s.Token, Role: s.Role}); err != nil {
		// The session still works for this process; it just won't survive a restart.
		c.log.Warn("credential not persisted", zap.Error(err))
	}
	c.set(s)
	return s, nil
}

// Logout clears the store and ends anonymous. It cannot fail.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("credential not cleared", zap.Error(err))
	}
	c.set(model.Session{})
}

// ForceLogout handles an authentication rejection for token. Only the active
// token is revoked, so repeated or stale rejections are no-ops. It reports
// whether the session changed.
func (c *Controller) ForceLogout(token string) bool {
	c.mu.Lock()
	if token == "" || c.cur.Token != token {
		c.mu.Unlock()
		return false
	}
	if err := c.store.Clear(); err != nil {
		c.log.Warn("credential not cleared", zap.Error(err))
	}
	c.cur = model.Session{}
	subs := append([]func(model.Session){}, c.subs...)
	c.mu.Unlock()

	c.log.Info("session rejected by backend, logged out")
	for _, fn := range subs {
		fn(model.Session{})
	}
	return true
}

func (c *Controller) set(s model.Session) {
	c.mu.Lock()
	c.cur = s
	subs := append([]func(model.Session){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}
