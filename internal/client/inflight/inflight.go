// Package inflight holds the two guards a form needs: one request at a time,
// and only the latest response may update the display.
package inflight

import "sync/atomic"

// Gate admits at most one holder.
type Gate struct{ busy atomic.Bool }

// TryAcquire reports whether the caller now holds the gate.
func (g *Gate) TryAcquire() bool { return g.busy.CompareAndSwap(false, true) }

// Release frees the gate. Releasing a free gate is a no-op.
func (g *Gate) Release() { g.busy.Store(false) }

// Busy reports whether a request is outstanding; the submit affordance is disabled while true.
func (g *Gate) Busy() bool { return g.busy.Load() }

// Sequence issues monotonically increasing tickets for one logical action.
type Sequence struct{ last atomic.Uint64 }

// Issue returns a new ticket that supersedes all earlier ones.
func (s *Sequence) Issue() uint64 { return s.last.Add(1) }

// IsLatest reports whether ticket is still the newest issued.
func (s *Sequence) IsLatest(ticket uint64) bool { return s.last.Load() == ticket }
