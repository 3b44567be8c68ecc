package site

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFinder struct {
	domain string
	err    error
	calls  int
}

func (f *countingFinder) FindDomain(_ context.Context, id int64) (string, error) {
	f.calls++
	return f.domain, f.err
}

func TestStaticProvider(t *testing.T) {
	domain, err := NewStaticProvider(" shop.example.com ").CurrentDomain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", domain)

	_, err = NewStaticProvider("").CurrentDomain(context.Background())
	assert.ErrorIs(t, err, ErrNoDomain)
}

func TestRepositoryProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("caches until ttl expires", func(t *testing.T) {
		finder := &countingFinder{domain: "shop.example.com"}
		p := NewRepositoryProvider(finder, 1, time.Minute, zap.NewNop())
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		p.now = func() time.Time { return now }

		for i := 0; i < 3; i++ {
			domain, err := p.CurrentDomain(ctx)
			require.NoError(t, err)
			assert.Equal(t, "shop.example.com", domain)
		}
		assert.Equal(t, 1, finder.calls)

		now = now.Add(2 * time.Minute)
		finder.domain = "new.example.com"
		domain, err := p.CurrentDomain(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new.example.com", domain)
		assert.Equal(t, 2, finder.calls)
	})

	t.Run("zero ttl caches forever", func(t *testing.T) {
		finder := &countingFinder{domain: "shop.example.com"}
		p := NewRepositoryProvider(finder, 1, 0, zap.NewNop())

		_, _ = p.CurrentDomain(ctx)
		_, _ = p.CurrentDomain(ctx)
		assert.Equal(t, 1, finder.calls)

		p.Invalidate()
		_, _ = p.CurrentDomain(ctx)
		assert.Equal(t, 2, finder.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		finder := &countingFinder{err: errors.New("connection refused")}
		p := NewRepositoryProvider(finder, 3, time.Minute, zap.NewNop())

		_, err := p.CurrentDomain(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site 3")

		finder.err = nil
		finder.domain = "shop.example.com"
		domain, err := p.CurrentDomain(ctx)
		require.NoError(t, err)
		assert.Equal(t, "shop.example.com", domain)
		assert.Equal(t, 2, finder.calls)
	})

	t.Run("empty domain", func(t *testing.T) {
		p := NewRepositoryProvider(&countingFinder{domain: "  "}, 1, time.Minute, zap.NewNop())
		_, err := p.CurrentDomain(ctx)
		assert.ErrorIs(t, err, ErrNoDomain)
	})
}
