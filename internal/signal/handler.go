// Package signal provides graceful shutdown handling for remedy commands.
// A repair run that is interrupted mid-flight must cancel its context so
// the coordinator stops dispatching rounds and the governor releases its
// admission slot.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels a context when SIGINT or SIGTERM arrives and remembers
// that the interruption happened, so callers can distinguish a user abort
// from an ordinary failure when picking an exit code.
type Handler struct {
	ctx         context.Context //nolint:containedctx // Handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	sigChan     chan os.Signal
	once        sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Callers must use
// Context() for all interruptible work and call Stop() when done.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while the
		// handler goroutine is busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted reports whether a shutdown signal was received.
func (h *Handler) Interrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop stops listening and cancels the context. Safe to call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.sigChan:
			// Only the first signal has effect; later ones are drained
			// so delivery never blocks.
			h.once.Do(func() {
				close(h.interrupted)
				h.cancel()
			})
		}
	}
}
