// Package sigctx ties a context to process shutdown signals.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that stop the storefront.
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext returns a context cancelled by the first shutdown signal.
// The returned stop func releases the signal handler.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithSignals(context.Background(), ShutdownSignals...)
}

// WithSignals derives from parent a context cancelled by any of sigs.
func WithSignals(
	parent context.Context, sigs ...os.Signal,
) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = ShutdownSignals
	}
	return signal.NotifyContext(parent, sigs...)
}
