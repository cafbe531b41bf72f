// Package api is the HTTP client of the site-analysis backend. Every call goes
// through one request function that attaches the bearer token, classifies the
// outcome and reports authentication rejections to the registered handlers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/go-resty/resty/v2"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Client talks to the backend under a base URL such as http://localhost:8000/api.
type Client struct {
	rc  *resty.Client
	log *zap.Logger

	mu     sync.RWMutex
	onAuth []func(token string)
}

// Option mutates the Client during New.
type Option func(*Client) error

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l == nil {
			return errors.New("nil logger")
		}
		c.log = l
		return nil
	}
}

// WithTimeout bounds every call. A fresh analysis may take minutes.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("bad timeout %s", d)
		}
		c.rc.SetTimeout(d)
		return nil
	}
}

// WithTransport replaces the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return errors.New("nil transport")
		}
		c.rc.SetTransport(rt)
		return nil
	}
}

// New builds a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("api: empty base URL")
	}
	c := &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetTimeout(5 * time.Minute).
			SetDisableWarn(true),
		log: zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, fmt.Errorf("api option: %w", err)
		}
	}
	return c, nil
}

// OnAuthRejected registers fn to be called with the token that a 401-class
// response rejected. Calls without a token (login) never trigger it.
func (c *Client) OnAuthRejected(fn func(token string)) {
	c.mu.Lock()
	c.onAuth = append(c.onAuth, fn)
	c.mu.Unlock()
}

type call struct {
	op     string
	method string
	path   string
	token  string
	body   any
	form   map[string]string
	query  map[string]string
}

// do issues the request and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, in call, out any) (err error) {
	start := time.Now()
	defer func() {
		requestsTotal.WithLabelValues(in.op, outcome(err)).Inc()
		requestDuration.WithLabelValues(in.op).Observe(time.Since(start).Seconds())
	}()

	req := c.rc.R().SetContext(ctx)
	reqID := ""
	if id, idErr := uuid.NewV4(); idErr == nil {
		reqID = id.String()
		req.SetHeader("X-Request-ID", reqID)
	}
	if in.token != "" {
		req.SetAuthToken(in.token)
	}
	if in.form != nil {
		req.SetFormData(in.form)
	} else if in.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(in.body)
	}
	if in.query != nil {
		req.SetQueryParams(in.query)
	}

	resp, rerr := req.Execute(in.method, in.path)
	if rerr != nil {
		c.log.Debug("api call failed", zap.String("op", in.op), zap.String("request_id", reqID),
			zap.Duration("dur", time.Since(start)), zap.Error(rerr))
		return &Error{Op: in.op, Kind: errs.ErrTransport, Err: rerr}
	}

	status := resp.StatusCode()
	c.log.Debug("api call", zap.String("op", in.op), zap.String("method", in.method),
		zap.Int("status", status), zap.String("request_id", reqID), zap.Duration("dur", time.Since(start)))

	if !resp.IsSuccess() {
		e := &Error{Op: in.op, Status: status, Detail: parseDetail(resp.Body()), Kind: classify(status)}
		if e.Kind == errs.ErrUnauthorized && in.token != "" {
			c.authRejected(in.token)
		}
		return e
	}
	if out == nil {
		return nil
	}
	if derr := json.Unmarshal(resp.Body(), out); derr != nil {
		return &Error{Op: in.op, Status: status, Kind: errs.ErrMalformedResponse, Err: derr}
	}
	return nil
}

func (c *Client) authRejected(token string) {
	c.mu.RLock()
	hs := append([]func(string){}, c.onAuth...)
	c.mu.RUnlock()
	for _, h := range hs {
		h(token)
	}
}

func malformed(op string, status int, format string, args ...any) error {
	return &Error{Op: op, Status: status, Kind: errs.ErrMalformedResponse, Err: fmt.Errorf(format, args...)}
}

func invalid(op, detail string) error {
	return &Error{Op: op, Kind: errs.ErrInvalidInput, Detail: detail}
}
