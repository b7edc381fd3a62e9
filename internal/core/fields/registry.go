package fields

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry resolves kind names used in descriptor files.
type Registry interface {
	Register(kind Kind) error
	Lookup(name string) (Kind, bool)
	Names() []string
}

// reg is an in-memory, thread-safe Registry. Names are case-insensitive.
type reg struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &reg{kinds: make(map[string]Kind)}
}

// DefaultRegistry returns a new registry preloaded with the built-in kinds.
func DefaultRegistry() Registry {
	r := &reg{kinds: make(map[string]Kind)}
	for _, k := range builtins() {
		r.kinds[k.Name()] = k
	}
	return r
}

func (r *reg) Register(kind Kind) error {
	if kind == nil || kind.Name() == "" {
		return ErrInvalidKind
	}
	key := strings.ToLower(kind.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[key]; exists {
		return fmt.Errorf("%w: %s", ErrKindExists, kind.Name())
	}
	r.kinds[key] = kind
	return nil
}

func (r *reg) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[strings.ToLower(name)]
	return k, ok
}

func (r *reg) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}
