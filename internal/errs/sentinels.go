// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication. On the client it is the
	// authentication-rejected kind (401-class response).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated caller without the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates input rejected before any side effect happened.
	ErrInvalidInput = errors.New("invalid input")
)

// Client-side failure kinds of a backend call.
var (
	// ErrTransport indicates the backend could not be reached (network, timeout).
	ErrTransport = errors.New("transport failure")

	// ErrRejected indicates a non-2xx response other than 401 and 5xx.
	ErrRejected = errors.New("request rejected")

	// ErrMalformedResponse indicates a 2xx body that does not match the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrBusy indicates a form that already has a request in flight.
	ErrBusy = errors.New("request already in flight")
)
