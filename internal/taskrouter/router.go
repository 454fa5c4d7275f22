package taskrouter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/store"
	"golang.org/x/sync/errgroup"
)

// Dependencies holds the stores a Router reads and writes.
type Dependencies struct {
	Pages store.PageStore
	Tasks store.TaskStore
	Blobs store.BlobStore

	// PageMaxAge is the lifetime given to admitted pages.
	// Zero selects domain.DefaultPageMaxAge.
	PageMaxAge time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Router admits captured pages and dispatches worker tasks for them.
type Router struct {
	routes Routes
	deps   Dependencies
	gate   *admissionGate
	logger *slog.Logger

	// errorHandler receives failures of deferred messages, which have no
	// caller left to return to. Another router's goroutine may call it while
	// replaying, so it is guarded by mu.
	mu           sync.Mutex
	errorHandler func(msg Message, err error)
}

// New creates a Router for the given route table.
// The route table must not be modified after New returns.
func New(routes Routes, deps Dependencies, log *slog.Logger) (*Router, error) {
	if routes == nil {
		return nil, ErrNoRoutes
	}
	if deps.Pages == nil || deps.Tasks == nil || deps.Blobs == nil {
		return nil, ErrMissingDependency
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.PageMaxAge <= 0 {
		deps.PageMaxAge = domain.DefaultPageMaxAge
	}
	if log == nil {
		log = slog.Default()
	}

	r := &Router{
		routes: routes,
		deps:   deps,
		gate:   processGate,
		logger: log.With("component", "task_router"),
	}
	r.errorHandler = r.logDeferredError
	return r, nil
}

// SetErrorHandler replaces the handler for failures of deferred messages.
// It is safe to call while messages are being handled. A nil handler
// restores the default, which logs the failure.
func (r *Router) SetErrorHandler(handler func(msg Message, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handler == nil {
		handler = r.logDeferredError
	}
	r.errorHandler = handler
}

func (r *Router) logDeferredError(msg Message, err error) {
	r.logger.Error("deferred message failed",
		"message_type", msg.Type,
		"url", msg.Data.URL,
		"error", err)
}

// reportDeferredError hands a deferred message's failure to the current
// error handler.
func (r *Router) reportDeferredError(msg Message, err error) {
	r.mu.Lock()
	handler := r.errorHandler
	r.mu.Unlock()
	handler(msg, err)
}

// NeedProcessing reports whether the page at url should be admitted.
func (r *Router) NeedProcessing(ctx context.Context, url string) (bool, error) {
	need, _, err := r.needProcessing(ctx, url)
	return need, err
}

// needProcessing also returns the stored page the decision was based on.
func (r *Router) needProcessing(ctx context.Context, url string) (bool, *domain.Page, error) {
	task, err := r.deps.Tasks.GetTaskByURL(ctx, url)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up task: %w", err)
	}
	if task != nil {
		return false, nil, nil
	}

	page, err := r.deps.Pages.GetPageByURL(ctx, url)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up page: %w", err)
	}
	if page == nil {
		return true, nil, nil
	}

	if !page.IsExpired(r.deps.Now()) {
		return false, page, nil
	}

	// An expired page whose content is gone is left alone.
	content, err := r.deps.Blobs.GetFile(page.Path())
	if err != nil {
		return false, page, fmt.Errorf("failed to read page content: %w", err)
	}
	if len(content) == 0 {
		return false, page, nil
	}

	return true, page, nil
}

// HandleMessage validates msg and admits its page.
//
// If another admission is in progress the message is deferred and nil is
// returned at once; its outcome goes to the error handler. Otherwise the
// admission runs in the calling goroutine, followed by every message deferred
// in the meantime, and the error of msg's own admission is returned. A
// deferred message is replayed with the logger and request ID of the context
// it arrived with, and the cancellation of the replaying caller's context.
func (r *Router) HandleMessage(ctx context.Context, msg Message) error {
	if msg.Type == "" {
		return ErrMissingType
	}
	if _, ok := r.routes[msg.Type]; !ok {
		return fmt.Errorf("%w: %s", ErrNoRoute, msg.Type)
	}
	if msg.Data.URL == "" {
		return fmt.Errorf("%w: %w", domain.ErrValidation, ErrMissingURL)
	}

	if !r.gate.acquire(newPendingMessage(ctx, r, msg)) {
		r.logger.Debug("admission in progress, message deferred",
			"message_type", msg.Type,
			"url", msg.Data.URL)
		return nil
	}

	return r.admit(ctx, msg)
}

// admit runs msg's admission and then drains deferred messages while
// holding the gate.
func (r *Router) admit(ctx context.Context, msg Message) error {
	released := false
	defer func() {
		if !released {
			r.gate.release()
		}
	}()

	err := r.createTasks(ctx, msg)

	for {
		p, ok := r.gate.next()
		if !ok {
			released = true
			return err
		}
		if perr := p.router.createTasks(p.replayContext(ctx), p.msg); perr != nil {
			p.router.reportDeferredError(p.msg, perr)
		}
	}
}

// createTasks is the admission critical section. The caller must hold the
// gate.
func (r *Router) createTasks(ctx context.Context, msg Message) error {
	url := msg.Data.URL
	log := r.logger.With("url", url, "message_type", msg.Type)
	if id := logger.RequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}

	need, previous, err := r.needProcessing(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", url, err)
	}
	if !need {
		log.Debug("page does not need processing")
		return nil
	}

	page, err := domain.NewPage(domain.PageParams{
		URL:       url,
		MaxAge:    r.deps.PageMaxAge.Milliseconds(),
		CreatedAt: r.deps.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	if err := r.deps.Pages.SavePage(ctx, page); err != nil {
		return fmt.Errorf("failed to save page %s: %w", url, err)
	}
	if err := r.deps.Blobs.SaveFile(page.Path(), []byte(msg.Data.Data)); err != nil {
		return fmt.Errorf("failed to save content of %s: %w", url, err)
	}

	if previous != nil && previous.Path() != page.Path() {
		if err := r.deps.Blobs.RemoveFile(previous.Path()); err != nil {
			log.Warn("failed to remove superseded page content",
				"path", previous.Path(),
				"error", err)
		}
	}

	processors := r.routes[msg.Type]
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range processors {
		g.Go(func() error {
			task := domain.NewWorkerTask(url, p.TaskType())
			if err := r.deps.Tasks.SaveTask(gctx, task); err != nil {
				return fmt.Errorf("failed to save %s task: %w", p.TaskType(), err)
			}
			if err := p.Enqueue(gctx, task); err != nil {
				return fmt.Errorf("failed to enqueue %s task: %w", p.TaskType(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("page admitted",
		"path", page.Path(),
		"task_count", len(processors))
	return nil
}
