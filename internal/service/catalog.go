package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
)

const (
	// DefaultFreshnessWindow is how long a cache entry satisfies a load
	// without contacting the store.
	DefaultFreshnessWindow = 5 * time.Minute
	// DefaultFetchTimeout bounds a live store read.
	DefaultFetchTimeout = 10 * time.Second
)

// CatalogService is the catalog reader: it owns the in-memory package list
// per variant, serves loads from the persisted cache while fresh, and keeps
// both converged with the store. The store remains the system of record;
// everything here is a disposable projection.
type CatalogService struct {
	repo      domain.PackageRepository
	cache     domain.CatalogCache
	freshness time.Duration
	timeout   time.Duration

	mu     sync.Mutex
	states map[domain.Variant]*catalogState
}

type catalogState struct {
	// gen increments on every live read; a read that finishes after a newer
	// one started is discarded instead of resurrecting stale data.
	gen      uint64
	packages []*domain.Package
	loadedAt time.Time
}

// NewCatalogService creates a catalog service. Zero durations fall back to
// the defaults.
func NewCatalogService(repo domain.PackageRepository, cache domain.CatalogCache, freshness, timeout time.Duration) *CatalogService {
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &CatalogService{
		repo:      repo,
		cache:     cache,
		freshness: freshness,
		timeout:   timeout,
		states:    map[domain.Variant]*catalogState{},
	}
}

func (s *CatalogService) state(v domain.Variant) *catalogState {
	st, ok := s.states[v]
	if !ok {
		st = &catalogState{packages: []*domain.Package{}}
		s.states[v] = st
	}
	return st
}

// Load returns the variant's packages, serving from cache when the entry is
// younger than the freshness window and otherwise racing a store read
// against the fetch timeout. On any failure the previously loaded list and
// cache entry are left untouched.
func (s *CatalogService) Load(ctx context.Context, variant domain.Variant) ([]*domain.Package, error) {
	if entry, err := s.cache.GetCatalog(ctx, variant); err == nil {
		if time.Since(entry.StoredAt()) < s.freshness {
			s.install(variant, entry.Data, 0)
			return entry.Data, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		// An unreachable cache never blocks a load.
		log.Printf("Warning: catalog cache read failed for %s: %v", variant, err)
	}

	return s.liveLoad(ctx, variant)
}

// Refresh invalidates the cache entry and forces a live read.
func (s *CatalogService) Refresh(ctx context.Context, variant domain.Variant) ([]*domain.Package, error) {
	if err := s.cache.InvalidateCatalog(ctx, variant); err != nil {
		log.Printf("Warning: failed to invalidate catalog cache for %s: %v", variant, err)
	}
	return s.liveLoad(ctx, variant)
}

// Snapshot returns the last-known-good list without any I/O.
func (s *CatalogService) Snapshot(variant domain.Variant) []*domain.Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Package{}, s.state(variant).packages...)
}

// Get finds one package in the loaded list, loading the catalog first if
// needed.
func (s *CatalogService) Get(ctx context.Context, variant domain.Variant, id string) (*domain.Package, error) {
	pkgs, err := s.Load(ctx, variant)
	if err != nil {
		return nil, err
	}
	for _, p := range pkgs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// RemoveLocal drops a deleted package from the in-memory list immediately,
// without waiting for a refresh round-trip, and invalidates the cache entry
// so the deletion cannot be resurrected from it.
func (s *CatalogService) RemoveLocal(ctx context.Context, variant domain.Variant, id string) {
	s.mu.Lock()
	st := s.state(variant)
	kept := make([]*domain.Package, 0, len(st.packages))
	for _, p := range st.packages {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	st.packages = kept
	s.mu.Unlock()

	if err := s.cache.InvalidateCatalog(ctx, variant); err != nil {
		log.Printf("Warning: failed to invalidate catalog cache for %s: %v", variant, err)
	}
}

// Subscribe switches the variant to push mode: every change event from the
// store triggers a re-read, and the latest snapshot always wins. The
// returned stop function is mandatory teardown; leaking the subscription
// leaks the underlying stream.
func (s *CatalogService) Subscribe(ctx context.Context, variant domain.Variant) (func(), error) {
	events, stop, err := s.repo.Watch(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	go func() {
		for range events {
			if _, err := s.liveLoad(context.Background(), variant); err != nil {
				log.Printf("Warning: catalog re-read after change event failed for %s: %v", variant, err)
			}
		}
	}()

	return stop, nil
}

// liveLoad performs a store read bounded by the fetch timeout and installs
// the result unless a newer load has started in the meantime.
func (s *CatalogService) liveLoad(ctx context.Context, variant domain.Variant) ([]*domain.Package, error) {
	s.mu.Lock()
	st := s.state(variant)
	st.gen++
	gen := st.gen
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pkgs, err := s.repo.ReadAll(fetchCtx, variant)
	if err != nil {
		return nil, classifyFetchErr(err, fetchCtx, s.timeout)
	}

	if s.install(variant, pkgs, gen) {
		if err := s.cache.SetCatalog(ctx, variant, pkgs); err != nil {
			log.Printf("Warning: failed to cache catalog for %s: %v", variant, err)
		}
	}
	return pkgs, nil
}

// install replaces the in-memory list. gen 0 means a cache-served install,
// which never conflicts with in-flight reads; otherwise the result is
// discarded when a newer read has started since.
func (s *CatalogService) install(variant domain.Variant, pkgs []*domain.Package, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(variant)
	if gen != 0 && gen != st.gen {
		return false
	}
	st.packages = pkgs
	st.loadedAt = time.Now()
	return true
}

func classifyFetchErr(err error, fetchCtx context.Context, timeout time.Duration) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || fetchCtx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%w after %v", domain.ErrFetchTimeout, timeout)
	case errors.Is(err, domain.ErrPermissionDenied):
		return fmt.Errorf("%w: %v", domain.ErrFetchDenied, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
}
