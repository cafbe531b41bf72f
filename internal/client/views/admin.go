package views

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/sales-intel/internal/client/inflight"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentLimit matches the backend default.
const DefaultRecentLimit = 10

// AdminAPI is the backend surface of the admin screen.
type AdminAPI interface {
	FetchAdminStats(ctx context.Context, token string) (model.AdminStats, error)
	FetchRecentAnalyses(ctx context.Context, token string, limit int) ([]model.RecentAnalysis, error)
	ListUsers(ctx context.Context, token string) ([]model.User, error)
	Register(ctx context.Context, token string, req model.RegisterRequest) (model.User, error)
}

// AdminState is what the admin screen shows.
type AdminState struct {
	Stats       *model.AdminStats
	Recent      []model.RecentAnalysis
	Users       []model.User
	Refreshing  bool
	AddingUser  bool
	Error       string
	RefreshedAt time.Time
}

// Admin is the aggregation dashboard plus user management.
type Admin struct {
	api   AdminAPI
	sess  Sessions
	log   *zap.Logger
	limit int
	now   func() time.Time

	refreshSeq inflight.Sequence
	usersSeq   inflight.Sequence
	addUser    inflight.Gate

	mu    sync.Mutex
	state AdminState
}

func NewAdmin(api AdminAPI, sess Sessions, recentLimit int, log *zap.Logger) *Admin {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Admin{api: api, sess: sess, log: log, limit: recentLimit, now: time.Now}
}

// State returns a snapshot.
func (v *Admin) State() AdminState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.AddingUser = v.addUser.Busy()
	s.Recent = append([]model.RecentAnalysis(nil), v.state.Recent...)
	s.Users = append([]model.User(nil), v.state.Users...)
	return s
}

// Refresh re-issues the stats and recent-analyses fetches. Prior data stays
// visible with Refreshing set; on failure it is kept and an error is shown.
func (v *Admin) Refresh(ctx context.Context) error {
	ticket := v.refreshSeq.Issue()
	v.mu.Lock()
	v.state.Refreshing = true
	v.mu.Unlock()

	token := v.sess.Current().Token
	var (
		stats  model.AdminStats
		recent []model.RecentAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = v.api.FetchAdminStats(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		recent, err = v.api.FetchRecentAnalyses(gctx, token, v.limit)
		return err
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.refreshSeq.IsLatest(ticket) {
		return err
	}
	v.state.Refreshing = false
	if err != nil {
		v.state.Error = Message(err)
		return err
	}
	if !stats.Consistent() {
		v.log.Warn("stats do not add up", zap.Int("total", stats.TotalAnalyses),
			zap.Int("hits", stats.CacheHits), zap.Int("misses", stats.CacheMisses))
	}
	v.state.Stats = &stats
	v.state.Recent = recent
	v.state.Error = ""
	v.state.RefreshedAt = v.now()
	return nil
}

// LoadUsers reloads the account list; the latest call wins.
func (v *Admin) LoadUsers(ctx context.Context) error {
	ticket := v.usersSeq.Issue()
	users, err := v.api.ListUsers(ctx, v.sess.Current().Token)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.usersSeq.IsLatest(ticket) {
		return err
	}
	if err != nil {
		v.state.Error = Message(err)
		return err
	}
	v.state.Users = users
	return nil
}

// AddUser registers an account and then re-fetches the user list.
func (v *Admin) AddUser(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	if !v.addUser.TryAcquire() {
		return model.User{}, errs.ErrBusy
	}
	defer v.addUser.Release()

	u, err := v.api.Register(ctx, v.sess.Current().Token, req)
	if err != nil {
		v.mu.Lock()
		v.state.Error = Message(err)
		v.mu.Unlock()
		return model.User{}, err
	}
	if lerr := v.LoadUsers(ctx); lerr != nil {
		v.log.Debug("user list refresh after register failed", zap.Error(lerr))
	}
	return u, nil
}

// Reset drops the display state and invalidates outstanding responses.
func (v *Admin) Reset() {
	v.refreshSeq.Issue()
	v.usersSeq.Issue()
	v.mu.Lock()
	v.state = AdminState{}
	v.mu.Unlock()
}
