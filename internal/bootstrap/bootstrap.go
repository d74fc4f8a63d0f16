// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds the time all shutdown hooks get together.
const DefaultShutdownTimeout = 10 * time.Second

type startupHook struct {
	name string
	fn   func(ctx context.Context) error
}

// App manages application lifecycle: startup hooks before run, graceful shutdown after.
type App struct {
	mu              sync.Mutex
	startupHooks    []startupHook
	hooks           []func(ctx context.Context) error
	shutdownTimeout time.Duration
}

// New creates a new App.
func New() *App {
	return &App{shutdownTimeout: DefaultShutdownTimeout}
}

// WithShutdownTimeout changes the time shutdown hooks get. A non-positive timeout means no limit.
func (a *App) WithShutdownTimeout(timeout time.Duration) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdownTimeout = timeout
	return a
}

// AddStartupHook registers a function to call before run, in registration order.
// The first failing hook aborts Run.
func (a *App) AddStartupHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startupHooks = append(a.startupHooks, startupHook{name: name, fn: fn})
}

// AddShutdownHook registers a function to call during graceful shutdown.
// Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run executes the startup hooks, then run. On SIGINT or SIGTERM, or when ctx is done,
// it calls registered shutdown hooks in LIFO order.
// If a startup hook or run fails, shutdown hooks registered so far still run and the
// error is returned together with theirs.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.shutdown())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, a.shutdown())
		}
		return a.shutdown()
	}
}

func (a *App) startup(ctx context.Context) error {
	a.mu.Lock()
	hooks := append([]startupHook(nil), a.startupHooks...)
	a.mu.Unlock()

	for _, hook := range hooks {
		if err := hook.fn(ctx); err != nil {
			return fmt.Errorf("start %s: %w", hook.name, err)
		}
	}
	return nil
}

func (a *App) shutdown() error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	timeout := a.shutdownTimeout
	a.mu.Unlock()

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
