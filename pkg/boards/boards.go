package boards

import (
	core "github.com/goliatone/go-boards/components/boardedit"
)

// Session exposes the underlying components/boardedit.Session type.
type Session = core.Session

// SessionOptions re-export for convenience.
type SessionOptions = core.SessionOptions

// Reconciler re-export for convenience.
type Reconciler = core.Reconciler

// ReconcilerOptions re-export for convenience.
type ReconcilerOptions = core.ReconcilerOptions

// NewSession proxies to the internal constructor.
func NewSession(opts SessionOptions) *Session {
	return core.NewSession(opts)
}

// NewReconciler proxies to the internal constructor.
func NewReconciler(opts ReconcilerOptions) *Reconciler {
	return core.NewReconciler(opts)
}
