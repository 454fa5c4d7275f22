package taskrouter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/pagequeue/internal/platform/logger"
)

// pendingMessage is a message deferred while the gate was held, together
// with the router that received it and the logging context of its caller.
type pendingMessage struct {
	router    *Router
	msg       Message
	logger    *slog.Logger
	requestID string
}

func newPendingMessage(ctx context.Context, r *Router, msg Message) pendingMessage {
	return pendingMessage{
		router:    r,
		msg:       msg,
		logger:    logger.Base(ctx),
		requestID: logger.RequestID(ctx),
	}
}

// replayContext returns ctx carrying p's own logger and request ID in place of
// those of the goroutine replaying it.
func (p pendingMessage) replayContext(ctx context.Context) context.Context {
	return logger.WithLogger(logger.WithRequestID(ctx, p.requestID), p.logger)
}

// admissionGate serializes page admission across all routers in a process.
// While held, arriving messages are parked; the holder replays them before
// giving the gate up, so a deferred message never races a newcomer.
type admissionGate struct {
	mu      sync.Mutex
	held    bool
	pending []pendingMessage
}

var processGate = &admissionGate{}

// acquire takes the gate and returns true, or parks p and returns false if
// the gate is already held.
func (g *admissionGate) acquire(p pendingMessage) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		g.pending = append(g.pending, p)
		return false
	}
	g.held = true
	return true
}

// next pops the most recently parked message, keeping the gate held for it.
// When nothing is parked the gate is released and ok is false.
func (g *admissionGate) next() (p pendingMessage, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.pending)
	if n == 0 {
		g.held = false
		return pendingMessage{}, false
	}
	p = g.pending[n-1]
	g.pending[n-1] = pendingMessage{}
	g.pending = g.pending[:n-1]
	return p, true
}

// release gives up the gate without replaying parked messages. They are
// replayed by whoever acquires the gate next.
func (g *admissionGate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}
