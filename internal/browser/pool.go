package browser

import (
	"context"
	"log/slog"
	"sync"
)

// Pool hands out browser sessions for detail extraction. It holds a
// single resident session created on first Acquire and replaced when a
// caller discards it after a fatal browser error.
//
// chromedp actions on one tab must not interleave, so Acquire grants
// exclusive use of the resident session: a second caller blocks until
// the current holder calls Release. Every Acquire must be paired with
// exactly one Release.
type Pool struct {
	mu      sync.Mutex
	slot    chan struct{}
	session *Session
	closed  bool

	opts   SessionOptions
	logger *slog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithSessionOptions overrides the session settings for new sessions.
func WithSessionOptions(opts SessionOptions) PoolOption {
	return func(p *Pool) {
		p.opts = opts
	}
}

// WithPoolLogger sets the logger for session lifecycle events.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates a Pool. No browser starts until the first Acquire.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		slot:   make(chan struct{}, 1),
		opts:   DefaultSessionOptions(),
		logger: slog.Default(),
	}
	p.slot <- struct{}{}
	for _, opt := range opts {
		opt(p)
	}
	if p.opts.Logger == nil {
		p.opts.Logger = p.logger
	}
	return p
}

// Acquire returns a usable session, creating or replacing the resident
// one as needed. It blocks while another caller holds the session and
// returns the ctx error if cancelled while waiting. Fails with
// ErrPoolClosed once the pool is shut down.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case <-p.slot:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.freeSlot()
		return nil, ErrPoolClosed
	}

	if p.session != nil && !p.session.Alive() {
		p.logger.Warn("resident session died, replacing it")
		p.session.close()
		p.session = nil
	}

	if p.session == nil {
		p.logger.Debug("starting browser session")
		p.session = newSession(p.opts)
	}

	return p.session, nil
}

// Release frees the session for the next caller. The resident session
// stays open.
func (p *Pool) Release(_ *Session) {
	p.freeSlot()
}

// Discard closes a session after a fatal browser error. The next
// Acquire starts a fresh one. The caller's paired Release still frees
// the session slot.
func (p *Pool) Discard(s *Session) {
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s.close()
	if p.session == s {
		p.session = nil
	}
	p.logger.Warn("discarded browser session")
}

// CloseAll shuts the pool down and closes the resident session.
// Subsequent Acquires return ErrPoolClosed. Safe to call more than
// once.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.session != nil {
		p.session.close()
		p.session = nil
	}
	p.logger.Debug("browser pool closed")
}

// freeSlot marks the session free without blocking, so an unpaired
// extra Release cannot deadlock the pool.
func (p *Pool) freeSlot() {
	select {
	case p.slot <- struct{}{}:
	default:
	}
}
