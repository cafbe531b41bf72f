package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/sales-intel/internal/errs"
)

// Error is the classified failure of one backend call. Kind is one of the
// errs sentinels and is matched with errors.Is.
type Error struct {
	Op     string
	Status int    // 0 when no response arrived
	Detail string // server-provided message, if any
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// DetailOf returns the server message carried by err, or "".
func DetailOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}

// parseDetail extracts {"detail": ...}. The backend sends either a string or a
// list of validation items carrying "msg".
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func classify(status int) error {
	switch {
	case status == 401:
		return errs.ErrUnauthorized
	case status >= 500:
		return errs.ErrServer
	default:
		return errs.ErrRejected
	}
}
