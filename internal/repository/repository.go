// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/sales-intel/internal/model"
)

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts a new account; errs.ErrAlreadyExists on a taken username.
	Create(ctx context.Context, a *model.Account) error
	// GetByUsername loads an account; errs.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	// List returns all accounts ordered by creation.
	List(ctx context.Context) ([]model.Account, error)
	// Count returns the number of accounts.
	Count(ctx context.Context) (int, error)
}

// CacheRepository stores analysis results keyed by URL hash.
type CacheRepository interface {
	// Get loads one entry; errs.ErrNotFound when absent.
	Get(ctx context.Context, urlHash string) (*model.CacheEntry, error)
	// Upsert inserts or refreshes an entry and sets its timestamps from the store.
	Upsert(ctx context.Context, e *model.CacheEntry) error
	// List returns every entry, most recently updated first.
	List(ctx context.Context) ([]model.CacheEntry, error)
	// Recent returns at most limit entries, most recently updated first.
	Recent(ctx context.Context, limit int) ([]model.CacheEntry, error)
}

// AnalysisLog records every analysis request as a cache hit or miss.
type AnalysisLog interface {
	Record(ctx context.Context, urlHash string, hit bool, at time.Time) error
	Totals(ctx context.Context) (model.AnalysisTotals, error)
}
