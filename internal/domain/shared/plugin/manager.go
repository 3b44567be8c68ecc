package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	"github.com/wecre8/oto/internal/domain/shared"
)

// PluginManager manages fulfillment plugin registrations and fans out
// lifecycle hooks to every active plugin
type PluginManager struct {
	mu      sync.RWMutex
	plugins map[string]FulfillmentPlugin
}

// NewPluginManager creates a new plugin manager
func NewPluginManager() *PluginManager {
	return &PluginManager{
		plugins: make(map[string]FulfillmentPlugin),
	}
}

// Register registers a fulfillment plugin
func (m *PluginManager) Register(plugin FulfillmentPlugin) error {
	if plugin == nil {
		return fmt.Errorf("%w: plugin cannot be nil", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := plugin.Name()
	if name == "" {
		return fmt.Errorf("%w: plugin name cannot be empty", shared.ErrInvalidInput)
	}

	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("%w: plugin '%s' already registered", shared.ErrAlreadyExists, name)
	}

	m.plugins[name] = plugin
	return nil
}

// GetPlugin returns a plugin by name
func (m *PluginManager) GetPlugin(name string) (FulfillmentPlugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, exists := m.plugins[name]
	return plugin, exists
}

// ListPlugins returns all registered plugin names
func (m *PluginManager) ListPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a plugin (useful for testing)
func (m *PluginManager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[name]; !exists {
		return fmt.Errorf("%w: plugin '%s' not found", shared.ErrNotFound, name)
	}

	delete(m.plugins, name)
	return nil
}

// Count returns the number of registered plugins
func (m *PluginManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// FulfillmentCreated calls the created hook of every active plugin, in name order.
// A failing plugin does not stop the others; all errors are joined.
func (m *PluginManager) FulfillmentCreated(ctx context.Context, f *fulfillment.Fulfillment) error {
	return m.each(func(p FulfillmentPlugin) error {
		return p.FulfillmentCreated(ctx, f)
	})
}

// FulfillmentCanceled calls the canceled hook of every active plugin, in name order
func (m *PluginManager) FulfillmentCanceled(ctx context.Context, f *fulfillment.Fulfillment) error {
	return m.each(func(p FulfillmentPlugin) error {
		return p.FulfillmentCanceled(ctx, f)
	})
}

func (m *PluginManager) each(fn func(p FulfillmentPlugin) error) error {
	m.mu.RLock()
	active := make([]FulfillmentPlugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	m.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool { return active[i].Name() < active[j].Name() })

	var errs []error
	for _, p := range active {
		if err := fn(p); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
