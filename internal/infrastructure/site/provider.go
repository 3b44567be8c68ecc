// Package site resolves the storefront domain that relative media paths are
// served from.
package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoDomain is returned when the current site has no domain configured
var ErrNoDomain = errors.New("site: current site has no domain")

// Provider resolves the current site's domain
type Provider interface {
	CurrentDomain(ctx context.Context) (string, error)
}

// StaticProvider returns a fixed domain from configuration
type StaticProvider struct {
	domain string
}

// NewStaticProvider creates a provider for domain
func NewStaticProvider(domain string) *StaticProvider {
	return &StaticProvider{domain: strings.TrimSpace(domain)}
}

// CurrentDomain implements Provider
func (p *StaticProvider) CurrentDomain(context.Context) (string, error) {
	if p.domain == "" {
		return "", ErrNoDomain
	}
	return p.domain, nil
}

// DomainFinder loads a site's domain by ID
type DomainFinder interface {
	FindDomain(ctx context.Context, id int64) (string, error)
}

// RepositoryProvider reads the current site row and caches the domain for
// ttl. A zero ttl caches it for the life of the process.
type RepositoryProvider struct {
	finder DomainFinder
	siteID int64
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	domain    string
	expiresAt time.Time
}

// NewRepositoryProvider creates a cached provider for the site with siteID
func NewRepositoryProvider(finder DomainFinder, siteID int64, ttl time.Duration, logger *zap.Logger) *RepositoryProvider {
	return &RepositoryProvider{
		finder: finder,
		siteID: siteID,
		ttl:    ttl,
		logger: logger.Named("site"),
		now:    time.Now,
	}
}

// CurrentDomain implements Provider. Lookup failures are not cached.
func (p *RepositoryProvider) CurrentDomain(ctx context.Context) (string, error) {
	if domain, ok := p.cached(); ok {
		return domain, nil
	}

	domain, err := p.finder.FindDomain(ctx, p.siteID)
	if err != nil {
		return "", fmt.Errorf("site: failed to load site %d: %w", p.siteID, err)
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", ErrNoDomain
	}

	p.mu.Lock()
	p.domain = domain
	if p.ttl > 0 {
		p.expiresAt = p.now().Add(p.ttl)
	}
	p.mu.Unlock()

	p.logger.Debug("Site domain loaded", zap.Int64("site_id", p.siteID), zap.String("domain", domain))
	return domain, nil
}

func (p *RepositoryProvider) cached() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.domain == "" {
		return "", false
	}
	if p.ttl > 0 && p.now().After(p.expiresAt) {
		return "", false
	}
	return p.domain, true
}

// Invalidate drops the cached domain
func (p *RepositoryProvider) Invalidate() {
	p.mu.Lock()
	p.domain = ""
	p.mu.Unlock()
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*RepositoryProvider)(nil)
)
