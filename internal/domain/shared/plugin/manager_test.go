package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	"github.com/wecre8/oto/internal/domain/shared"
)

// mockPlugin is a test implementation of FulfillmentPlugin
type mockPlugin struct {
	name     string
	active   bool
	err      error
	created  []int64
	canceled []int64
	calls    *[]string
}

func (p *mockPlugin) Name() string   { return p.name }
func (p *mockPlugin) IsActive() bool { return p.active }

func (p *mockPlugin) FulfillmentCreated(_ context.Context, f *fulfillment.Fulfillment) error {
	p.created = append(p.created, f.ID)
	if p.calls != nil {
		*p.calls = append(*p.calls, p.name)
	}
	return p.err
}

func (p *mockPlugin) FulfillmentCanceled(_ context.Context, f *fulfillment.Fulfillment) error {
	p.canceled = append(p.canceled, f.ID)
	return p.err
}

func TestNewPluginManager(t *testing.T) {
	manager := NewPluginManager()

	assert.NotNil(t, manager)
	assert.Equal(t, 0, manager.Count())
}

func TestPluginManager_Register(t *testing.T) {
	t.Run("registers plugin", func(t *testing.T) {
		manager := NewPluginManager()
		require.NoError(t, manager.Register(&mockPlugin{name: "oto", active: true}))

		assert.Equal(t, 1, manager.Count())
		assert.Equal(t, []string{"oto"}, manager.ListPlugins())

		p, ok := manager.GetPlugin("oto")
		assert.True(t, ok)
		assert.Equal(t, "oto", p.Name())
	})

	t.Run("rejects nil plugin", func(t *testing.T) {
		err := NewPluginManager().Register(nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := NewPluginManager().Register(&mockPlugin{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		manager := NewPluginManager()
		require.NoError(t, manager.Register(&mockPlugin{name: "oto"}))
		err := manager.Register(&mockPlugin{name: "oto"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestPluginManager_Unregister(t *testing.T) {
	manager := NewPluginManager()
	require.NoError(t, manager.Register(&mockPlugin{name: "oto"}))

	require.NoError(t, manager.Unregister("oto"))
	assert.Equal(t, 0, manager.Count())

	err := manager.Unregister("oto")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPluginManager_FulfillmentHooks(t *testing.T) {
	f := &fulfillment.Fulfillment{ID: 42}

	t.Run("only active plugins receive hooks, in name order", func(t *testing.T) {
		var calls []string
		manager := NewPluginManager()
		zeta := &mockPlugin{name: "zeta", active: true, calls: &calls}
		alpha := &mockPlugin{name: "alpha", active: true, calls: &calls}
		off := &mockPlugin{name: "off", active: false, calls: &calls}
		require.NoError(t, manager.Register(zeta))
		require.NoError(t, manager.Register(alpha))
		require.NoError(t, manager.Register(off))

		require.NoError(t, manager.FulfillmentCreated(context.Background(), f))

		assert.Equal(t, []string{"alpha", "zeta"}, calls)
		assert.Empty(t, off.created)
	})

	t.Run("errors are joined and do not stop other plugins", func(t *testing.T) {
		boom := errors.New("boom")
		manager := NewPluginManager()
		failing := &mockPlugin{name: "a", active: true, err: boom}
		ok := &mockPlugin{name: "b", active: true}
		require.NoError(t, manager.Register(failing))
		require.NoError(t, manager.Register(ok))

		err := manager.FulfillmentCanceled(context.Background(), f)

		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "plugin a")
		assert.Equal(t, []int64{42}, ok.canceled)
	})
}
