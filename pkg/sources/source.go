package sources

import (
	"context"
	"sort"
	"sync"

	"github.com/anthonypate54/familynest/pkg/types"
)

// ListRequest is what a backend needs to enumerate one kind of media.
type ListRequest struct {
	Kind         types.Kind
	MaxSizeBytes int64
	Permissions  types.PermissionState
}

// Lister is implemented by every enumerable backend (catalog, cloud).
type Lister interface {
	// Name returns the source name requests are dispatched on
	Name() types.SourceName

	// List returns descriptors in backend order. Entries larger than
	// req.MaxSizeBytes are never returned.
	List(ctx context.Context, req ListRequest) ([]types.Resource, error)
}

// Registry manages registered listers
type Registry struct {
	mu      sync.RWMutex
	listers map[types.SourceName]Lister
}

// NewRegistry creates a new lister registry
func NewRegistry() *Registry {
	return &Registry{
		listers: make(map[types.SourceName]Lister),
	}
}

// Register adds a lister to the registry
func (r *Registry) Register(l Lister) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listers[l.Name()] = l
}

// Get returns a lister by name
func (r *Registry) Get(name types.SourceName) (Lister, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listers[name]
	return l, ok
}

// List returns all registered source names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.listers))
	for name := range r.listers {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
