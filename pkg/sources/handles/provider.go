package handles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrHandleNotFound is returned when the provider no longer knows the handle.
var ErrHandleNotFound = errors.New("handle not found")

// Metadata is what a provider can report about a handle without reading it.
// Zero values mean unknown.
type Metadata struct {
	DisplayName string
	SizeBytes   int64
	MimeType    string
	IsDirectory bool
	LocalPath   string // set only when the handle is directly path-addressable
}

// Provider resolves opaque handles of one URI scheme.
type Provider interface {
	// Scheme returns the URI scheme this provider serves (e.g. "file", "s3")
	Scheme() string

	// Stat reports best-effort metadata for uri
	Stat(ctx context.Context, uri string) (*Metadata, error)

	// Open streams the handle's bytes
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// AccessPersister is implemented by providers that need an explicit call to
// keep a handle readable after the picker session ends.
type AccessPersister interface {
	PersistAccess(ctx context.Context, uri string) error
}

// Registry maps URI schemes to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Scheme())] = p
}

// For returns the provider serving uri's scheme.
func (r *Registry) For(uri string) (Provider, error) {
	scheme, err := Scheme(uri)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[scheme]
	if !ok {
		return nil, fmt.Errorf("no provider registered for scheme %q", scheme)
	}
	return p, nil
}

// Schemes returns all registered schemes, sorted
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for s := range r.providers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// PersistAccess asks the provider to keep uri readable, then records the
// grant. The provider step is skipped for providers that need none.
func (r *Registry) PersistAccess(ctx context.Context, store GrantStore, uri string) error {
	p, err := r.For(uri)
	if err != nil {
		return err
	}

	if persister, ok := p.(AccessPersister); ok {
		if err := persister.PersistAccess(ctx, uri); err != nil {
			return fmt.Errorf("failed to persist access for %s: %w", uri, err)
		}
	}

	if store == nil {
		return nil
	}

	grant := Grant{URI: uri, Scheme: p.Scheme(), GrantedAt: time.Now().UTC()}
	if err := store.Save(ctx, grant); err != nil {
		return fmt.Errorf("failed to record grant for %s: %w", uri, err)
	}

	log.Debug().Str("uri", uri).Str("scheme", grant.Scheme).Msg("persisted handle access")
	return nil
}

// Scheme returns the lowercase URI scheme of uri.
func Scheme(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid handle %q: %w", uri, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("invalid handle %q: missing scheme", uri)
	}
	return strings.ToLower(u.Scheme), nil
}
