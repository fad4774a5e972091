// Package shutdown coordinates graceful process shutdown: a cancellation
// context tied to interrupt signals, an ordered registry of cleanup
// functions, and force-exit on repeated signals.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Func is a cleanup function run during shutdown. It should respect the
// context deadline.
type Func func(ctx context.Context) error

type entry struct {
	name     string
	priority int
	fn       Func
}

// Default settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultForceAfter = 3
)

// Manager owns the shutdown sequence. Cleanup functions run in ascending
// priority order, each under the shared shutdown timeout. Repeated interrupt
// signals force an immediate exit.
type Manager struct {
	logger     *zap.Logger
	timeout    time.Duration
	forceAfter int

	mu       sync.Mutex
	entries  []entry
	started  bool
	finished bool

	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout sets the total time budget for the cleanup sequence.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// WithForceAfter sets how many signals force an immediate exit.
func WithForceAfter(n int) Option {
	return func(m *Manager) {
		m.forceAfter = n
	}
}

// NewManager creates a Manager. The logger may be nil.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:     logger,
		timeout:    DefaultTimeout,
		forceAfter: DefaultForceAfter,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function. Lower priorities run first. Registering
// after shutdown has started is a no-op.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished {
		return
	}
	m.entries = append(m.entries, entry{name: name, priority: priority, fn: fn})
}

// Start installs the signal handler. The first SIGINT/SIGTERM cancels the
// context; forceAfter signals exit immediately without cleanup.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		count := 0
		for range m.sigChan {
			count++
			switch {
			case count == 1:
				m.logger.Info("shutdown signal received")
				m.cancel()
			case count >= m.forceAfter:
				m.logger.Warn("forced exit after repeated signals")
				os.Exit(1)
			default:
				m.logger.Warn("shutdown in progress, repeat signal to force exit",
					zap.Int("remaining", m.forceAfter-count))
			}
		}
	}()
}

// Trigger begins shutdown without a signal.
func (m *Manager) Trigger() {
	m.cancel()
}

// Shutdown runs the registered cleanup functions in priority order and
// returns the first error encountered. It runs at most once.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return nil
	}
	m.finished = true
	entries := make([]entry, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	m.cancel()
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var firstErr error
	for _, e := range entries {
		m.logger.Info("running cleanup", zap.String("name", e.name))
		if err := e.fn(ctx); err != nil {
			m.logger.Error("cleanup failed", zap.String("name", e.name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
