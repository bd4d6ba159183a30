// Package registry manages plugin lifecycle: registration, dependency
// ordering, initialization, start and shutdown.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/HerbHall/pollnow/pkg/plugin"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ plugin.PluginResolver = (*Registry)(nil)

// Registry manages the lifecycle of all registered plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]plugin.Plugin
	infos   map[string]plugin.PluginInfo
	order   []string // dependency order, set by Validate
	started []string
	logger  *zap.Logger
}

// New creates a new plugin registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]plugin.Plugin),
		infos:   make(map[string]plugin.PluginInfo),
		logger:  logger,
	}
}

// Register adds a plugin. Must be called before Validate.
func (r *Registry) Register(p plugin.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("plugin has empty name")
	}
	if _, exists := r.plugins[info.Name]; exists {
		return fmt.Errorf("plugin %q already registered", info.Name)
	}

	r.plugins[info.Name] = p
	r.infos[info.Name] = info
	r.logger.Info("plugin registered",
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.Int("api_version", info.APIVersion),
	)
	return nil
}

// Validate checks API versions and dependencies and computes the start order.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, info := range r.infos {
		if info.APIVersion < plugin.APIVersionMin || info.APIVersion > plugin.APIVersionCurrent {
			return fmt.Errorf("plugin %q targets Plugin API v%d, server supports v%d..v%d",
				name, info.APIVersion, plugin.APIVersionMin, plugin.APIVersionCurrent)
		}
		for _, dep := range info.Dependencies {
			if _, ok := r.plugins[dep]; !ok {
				return fmt.Errorf("plugin %q depends on %q which is not registered", name, dep)
			}
		}
	}

	order, err := r.topologicalSort()
	if err != nil {
		return err
	}
	r.order = order
	r.logger.Info("plugin dependency resolution complete", zap.Strings("start_order", order))
	return nil
}

// InitAll initializes plugins in dependency order.
func (r *Registry) InitAll(ctx context.Context, depsFn func(name string) plugin.Dependencies) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		r.logger.Info("initializing plugin", zap.String("name", name))
		if err := r.safely(name, "init", func() error { return r.plugins[name].Init(ctx, depsFn(name)) }); err != nil {
			return fmt.Errorf("plugin %q failed to initialize: %w", name, err)
		}
	}
	return nil
}

// StartAll starts plugins in dependency order. On failure, plugins already
// started are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		r.logger.Info("starting plugin", zap.String("name", name))
		if err := r.safely(name, "start", func() error { return r.plugins[name].Start(ctx) }); err != nil {
			r.stopStarted(ctx)
			return fmt.Errorf("plugin %q failed to start: %w", name, err)
		}
		r.started = append(r.started, name)
	}
	return nil
}

// StopAll stops started plugins in reverse order. Errors are logged, not returned,
// so one failing plugin cannot keep others running.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) {
	for i := len(r.started) - 1; i >= 0; i-- {
		name := r.started[i]
		r.logger.Info("stopping plugin", zap.String("name", name))
		if err := r.safely(name, "stop", func() error { return r.plugins[name].Stop(ctx) }); err != nil {
			r.logger.Error("failed to stop plugin", zap.String("name", name), zap.Error(err))
		}
	}
	r.started = nil
}

// safely runs a lifecycle hook, converting a panic into an error.
func (r *Registry) safely(name, phase string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("plugin panicked",
				zap.String("name", name),
				zap.String("phase", phase),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("panic during %s: %v", phase, rec)
		}
	}()
	return fn()
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) (plugin.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// All returns plugins in dependency order.
func (r *Registry) All() []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.Plugin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.plugins[name])
	}
	return out
}

// AllRoutes returns HTTP routes from every plugin implementing HTTPProvider, keyed by plugin name.
func (r *Registry) AllRoutes() map[string][]plugin.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]plugin.Route)
	for _, name := range r.order {
		if hp, ok := r.plugins[name].(plugin.HTTPProvider); ok {
			if pr := hp.Routes(); len(pr) > 0 {
				routes[name] = pr
			}
		}
	}
	return routes
}

// Resolve returns a plugin by name (implements plugin.PluginResolver).
func (r *Registry) Resolve(name string) (plugin.Plugin, bool) {
	return r.Get(name)
}

// ResolveByRole returns all plugins that declare the given role.
func (r *Registry) ResolveByRole(role string) []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []plugin.Plugin
	for _, name := range r.order {
		if slices.Contains(r.infos[name].Roles, role) {
			out = append(out, r.plugins[name])
		}
	}
	return out
}

// topologicalSort orders plugins so dependencies come first (Kahn's algorithm).
// Ties are broken by name to keep startup deterministic.
func (r *Registry) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(r.plugins))
	dependents := make(map[string][]string)
	for name, info := range r.infos {
		inDegree[name] += 0
		for _, dep := range info.Dependencies {
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, d := range inDegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	var order []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		next := dependents[name]
		slices.Sort(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(order) != len(r.plugins) {
		var cycled []string
		for name, d := range inDegree {
			if d > 0 {
				cycled = append(cycled, name)
			}
		}
		slices.Sort(cycled)
		return nil, fmt.Errorf("dependency cycle detected among plugins: %v", cycled)
	}
	return order, nil
}
