package views

import (
	"context"
	"sync"

	"github.com/and161185/sales-intel/internal/client/inflight"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"go.uber.org/zap"
)

// VendasAPI is the backend surface of the vendas screen.
type VendasAPI interface {
	SubmitAnalysis(ctx context.Context, token, url string) (model.AnalysisResult, error)
	ListAnalyzedPages(ctx context.Context, token string) ([]model.PageSummary, error)
}

// VendasState is what the vendas screen shows.
type VendasState struct {
	Submitting bool
	Result     *model.AnalysisResult
	Pages      []model.PageSummary
	Error      string
}

// Vendas is the analysis form plus the list of analyzed pages.
type Vendas struct {
	api  VendasAPI
	sess Sessions
	log  *zap.Logger

	submit    inflight.Gate
	submitSeq inflight.Sequence
	pagesSeq  inflight.Sequence

	mu    sync.Mutex
	state VendasState
}

func NewVendas(api VendasAPI, sess Sessions, log *zap.Logger) *Vendas {
	if log == nil {
		log = zap.NewNop()
	}
	return &Vendas{api: api, sess: sess, log: log}
}

// State returns a snapshot.
func (v *Vendas) State() VendasState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Submitting = v.submit.Busy()
	s.Pages = append([]model.PageSummary(nil), v.state.Pages...)
	return s
}

// Analyze submits url. Only one submission runs at a time; a second call while
// one is outstanding returns errs.ErrBusy without contacting the backend. On
// failure the previous result stays on screen. On success the pages list is
// re-fetched.
func (v *Vendas) Analyze(ctx context.Context, url string) (model.AnalysisResult, error) {
	if !v.submit.TryAcquire() {
		return model.AnalysisResult{}, errs.ErrBusy
	}
	defer v.submit.Release()

	ticket := v.submitSeq.Issue()
	res, err := v.api.SubmitAnalysis(ctx, v.sess.Current().Token, url)

	v.mu.Lock()
	if !v.submitSeq.IsLatest(ticket) {
		v.mu.Unlock()
		v.log.Debug("discarding superseded analysis", zap.String("url", url))
		return res, err
	}
	if err != nil {
		v.state.Error = Message(err)
		v.mu.Unlock()
		return model.AnalysisResult{}, err
	}
	v.state.Result = &res
	v.state.Error = ""
	v.mu.Unlock()

	if perr := v.RefreshPages(ctx); perr != nil {
		v.log.Debug("pages refresh after analysis failed", zap.Error(perr))
	}
	return res, nil
}

// RefreshPages reloads the analyzed pages. Overlapping refreshes are allowed;
// only the latest one updates the list.
func (v *Vendas) RefreshPages(ctx context.Context) error {
	ticket := v.pagesSeq.Issue()
	pages, err := v.api.ListAnalyzedPages(ctx, v.sess.Current().Token)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pagesSeq.IsLatest(ticket) {
		return err
	}
	if err != nil {
		v.state.Error = Message(err)
		return err
	}
	v.state.Pages = pages
	return nil
}

// Reset drops the display state and invalidates outstanding responses.
func (v *Vendas) Reset() {
	v.submitSeq.Issue()
	v.pagesSeq.Issue()
	v.mu.Lock()
	v.state = VendasState{}
	v.mu.Unlock()
}
