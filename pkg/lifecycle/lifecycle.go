// Package lifecycle runs startup and shutdown hooks for long-lived
// subsystems and reports which of them are ready.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the deadline.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// ReadinessChecker reports whether a subsystem can serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// ReadyFunc adapts a plain function to ReadinessChecker.
type ReadyFunc func() bool

func (f ReadyFunc) Ready() bool { return f() }

// Coordinator owns the process context. Startup hooks run concurrently
// and gate Ready; shutdown hooks start immediately, block on Context, and
// are awaited by Shutdown.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	started  atomic.Bool

	mu       sync.RWMutex
	checkers map[string]ReadinessChecker
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		checkers: map[string]ReadinessChecker{},
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context { return c.ctx }

func (c *Coordinator) OnStartup(fn func()) { c.starting.Go(fn) }

// OnShutdown hooks should wait on <-c.Context().Done() before cleaning up.
func (c *Coordinator) OnShutdown(fn func()) { c.stopping.Go(fn) }

// Track adds a named subsystem to Status. A later call with the same name
// replaces the earlier checker.
func (c *Coordinator) Track(name string, checker ReadinessChecker) {
	c.mu.Lock()
	c.checkers[name] = checker
	c.mu.Unlock()
}

// Ready is true once every startup hook has returned.
func (c *Coordinator) Ready() bool { return c.started.Load() }

// Status polls each tracked subsystem. A degraded subsystem shows up here
// but does not flip Ready.
func (c *Coordinator) Status() map[string]bool {
	c.mu.RLock()
	checkers := maps.Clone(c.checkers)
	c.mu.RUnlock()

	status := make(map[string]bool, len(checkers))
	for name, checker := range checkers {
		status[name] = checker.Ready()
	}
	return status
}

func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.started.Store(true)
}

// Shutdown cancels Context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.stopping.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, timeout)
	}
}
