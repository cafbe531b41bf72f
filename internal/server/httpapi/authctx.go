package httpapi

import (
	"context"

	"github.com/and161185/sales-intel/internal/service"
)

type ctxKey string

const claimsKey ctxKey = "si.claims"

// WithClaims stores verified token claims in context.
func WithClaims(ctx context.Context, c service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromCtx fetches the claims stored by the Auth middleware.
func ClaimsFromCtx(ctx context.Context) (service.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(service.Claims)
	return c, ok
}
