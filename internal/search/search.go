package search

import (
	"context"
	"fmt"
	"sort"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Payload is the raw body returned by a backend for one query.
type Payload []byte

// Backend captures a single search engine implementation (HTML results page, RSS feed, etc.).
type Backend interface {
	Name() string
	Execute(ctx context.Context, query string) (Payload, error)
	Extract(payload Payload) (results []domain.SearchResult, dropped int)
}

// Registry keeps a mapping from backend names to their implementations.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: map[string]Backend{}}
}

// Register adds or replaces a backend implementation.
func (r *Registry) Register(backend Backend) {
	if r.backends == nil {
		r.backends = map[string]Backend{}
	}
	r.backends[backend.Name()] = backend
}

// Resolve returns a backend by name or ErrUnsupportedBackend.
func (r *Registry) Resolve(name string) (Backend, error) {
	if backend, ok := r.backends[name]; ok {
		return backend, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %v)", domain.ErrUnsupportedBackend, name, r.Names())
}

// Names lists registered backends, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service executes queries against one configured backend.
type Service struct {
	registry *Registry
	backend  string
}

var _ ports.SearchProvider = (*Service)(nil)

// NewService binds the registry to the backend name chosen in config.
func NewService(registry *Registry, backend string) *Service {
	return &Service{registry: registry, backend: backend}
}

// Search runs Execute then Extract on the bound backend.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SearchResult, int, error) {
	return s.SearchWith(ctx, query, s.backend)
}

// SearchWith runs the query on an explicitly named backend.
func (s *Service) SearchWith(ctx context.Context, query, backendName string) ([]domain.SearchResult, int, error) {
	if s.registry == nil {
		return nil, 0, fmt.Errorf("%w: registry is not configured", domain.ErrUnsupportedBackend)
	}
	backend, err := s.registry.Resolve(backendName)
	if err != nil {
		return nil, 0, err
	}

	payload, err := backend.Execute(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	results, dropped := backend.Extract(payload)
	return results, dropped, nil
}
