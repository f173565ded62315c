package suite

import (
	"fmt"
	"sync"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Registry maps suite paths to suite definitions.
// It is populated while definitions load and only read while suites run.
type Registry struct {
	mu     sync.RWMutex
	suites map[string]domain.Suite
	order  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		suites: make(map[string]domain.Suite),
	}
}

// Register adds a built suite under its path.
func (r *Registry) Register(s domain.Suite) error {
	if s.Path == "" {
		return domain.NewError("define", s.SourceFile, 0,
			fmt.Sprintf("suite %q has no path", s.Name), domain.ErrInvalidDefinition)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.suites[s.Path]; ok {
		return domain.NewErrorWithSuggestion("define", s.SourceFile, 0,
			fmt.Sprintf("path %q is already registered by suite %q", s.Path, existing.Name),
			"give every registered suite a unique path",
			domain.ErrDuplicatePath)
	}
	r.suites[s.Path] = s.Clone()
	r.order = append(r.order, s.Path)
	return nil
}

// Define builds the suite and registers it when its options ask for it.
// The built suite is returned either way.
func (r *Registry) Define(b *TestSuite) (domain.Suite, error) {
	s, err := b.Build()
	if err != nil {
		return domain.Suite{}, err
	}
	if s.Register {
		if err := r.Register(s); err != nil {
			return domain.Suite{}, err
		}
	}
	return s, nil
}

// Lookup returns the suite registered under path.
func (r *Registry) Lookup(path string) (domain.Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suites[path]
	if !ok {
		return domain.Suite{}, fmt.Errorf("%w: %q", domain.ErrNotFound, path)
	}
	return s.Clone(), nil
}

// All returns every registered suite in registration order.
func (r *Registry) All() []domain.Suite {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Suite, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.suites[p].Clone())
	}
	return out
}

// Len returns the number of registered suites.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
