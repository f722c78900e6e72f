package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so dispatch never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit          []OnInit
	onShutdown      []OnShutdown
	onMint          []OnMint
	onMintRejected  []OnMintRejected
	onWithdraw      []OnWithdraw
	onCostChanged   []OnCostChanged
	onPausedChanged []OnPausedChanged
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := p.(OnMintRejected); ok {
		r.onMintRejected = append(r.onMintRejected, v)
	}
	if v, ok := p.(OnWithdraw); ok {
		r.onWithdraw = append(r.onWithdraw, v)
	}
	if v, ok := p.(OnCostChanged); ok {
		r.onCostChanged = append(r.onCostChanged, v)
	}
	if v, ok := p.(OnPausedChanged); ok {
		r.onPausedChanged = append(r.onPausedChanged, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnMint)(nil)).Elem(), "OnMint")
	checkInterface(reflect.TypeOf((*OnMintRejected)(nil)).Elem(), "OnMintRejected")
	checkInterface(reflect.TypeOf((*OnWithdraw)(nil)).Elem(), "OnWithdraw")
	checkInterface(reflect.TypeOf((*OnCostChanged)(nil)).Elem(), "OnCostChanged")
	checkInterface(reflect.TypeOf((*OnPausedChanged)(nil)).Elem(), "OnPausedChanged")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	dispatch(ctx, r, "OnInit", plugins, func(p OnInit) error {
		return p.OnInit(ctx, ledger)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	dispatch(ctx, r, "OnShutdown", plugins, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitMint emits a mint event.
func (r *Registry) EmitMint(ctx context.Context, e *MintEvent) {
	r.mu.RLock()
	plugins := r.onMint
	r.mu.RUnlock()

	dispatch(ctx, r, "OnMint", plugins, func(p OnMint) error {
		return p.OnMint(ctx, e)
	})
}

// EmitMintRejected emits a mint rejected event.
func (r *Registry) EmitMintRejected(ctx context.Context, e *MintRejectedEvent) {
	r.mu.RLock()
	plugins := r.onMintRejected
	r.mu.RUnlock()

	dispatch(ctx, r, "OnMintRejected", plugins, func(p OnMintRejected) error {
		return p.OnMintRejected(ctx, e)
	})
}

// EmitWithdraw emits a withdrawal event.
func (r *Registry) EmitWithdraw(ctx context.Context, e *WithdrawEvent) {
	r.mu.RLock()
	plugins := r.onWithdraw
	r.mu.RUnlock()

	dispatch(ctx, r, "OnWithdraw", plugins, func(p OnWithdraw) error {
		return p.OnWithdraw(ctx, e)
	})
}

// EmitCostChanged emits a cost changed event.
func (r *Registry) EmitCostChanged(ctx context.Context, e *CostChangedEvent) {
	r.mu.RLock()
	plugins := r.onCostChanged
	r.mu.RUnlock()

	dispatch(ctx, r, "OnCostChanged", plugins, func(p OnCostChanged) error {
		return p.OnCostChanged(ctx, e)
	})
}

// EmitPausedChanged emits a paused changed event.
func (r *Registry) EmitPausedChanged(ctx context.Context, e *PausedChangedEvent) {
	r.mu.RLock()
	plugins := r.onPausedChanged
	r.mu.RUnlock()

	dispatch(ctx, r, "OnPausedChanged", plugins, func(p OnPausedChanged) error {
		return p.OnPausedChanged(ctx, e)
	})
}

// dispatch calls hook on each plugin in registration order. Failures are
// logged and never returned to the ledger.
func dispatch[T Plugin](ctx context.Context, r *Registry, hook string, plugins []T, call func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the mint pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("plugin panic: %s: %v", pluginName, rec)
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
