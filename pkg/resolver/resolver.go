package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/sources/catalog"
	"github.com/anthonypate54/familynest/pkg/sources/handles"
	"github.com/anthonypate54/familynest/pkg/types"
)

// Resolver turns an identity back into a local filesystem path.
type Resolver struct {
	catalog      catalog.Catalog
	providers    *handles.Registry
	grants       handles.GrantStore
	materializer *handles.Materializer
	index        *handles.Index
	timeout      time.Duration

	group singleflight.Group
}

type Config struct {
	Catalog      catalog.Catalog
	Providers    *handles.Registry
	Grants       handles.GrantStore
	Materializer *handles.Materializer
	Index        *handles.Index // shared with the picker so both return the same cache file

	// Timeout bounds a shared materialization; it does not follow any single
	// caller's context. Zero means unbounded.
	Timeout time.Duration
}

func New(cfg Config) (*Resolver, error) {
	idx := cfg.Index
	if idx == nil {
		var err error
		idx, err = handles.NewIndex(handles.DefaultIndexSize)
		if err != nil {
			return nil, err
		}
	}

	return &Resolver{
		catalog:      cfg.Catalog,
		providers:    cfg.Providers,
		grants:       cfg.Grants,
		materializer: cfg.Materializer,
		index:        idx,
		timeout:      cfg.Timeout,
	}, nil
}

// ResolveString classifies an untagged id (optionally with a kind hint) and
// resolves it.
func (r *Resolver) ResolveString(ctx context.Context, value string, hint types.IdentityKind) (string, error) {
	id, err := types.ParseIdentity(value, hint)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, id)
}

// Resolve returns a local path for id. Path identities are returned as-is
// without touching the catalog or any provider.
func (r *Resolver) Resolve(ctx context.Context, id types.Identity) (path string, err error) {
	defer func() {
		metrics.RecordResolution(id.Kind, err)
	}()

	switch id.Kind {
	case types.IdentityKindPath:
		return id.Value, nil
	case types.IdentityKindCatalog:
		return r.resolveCatalog(ctx, id)
	case types.IdentityKindHandle:
		return r.resolveHandle(ctx, id)
	}
	return "", types.NewInvalidArgumentError(fmt.Sprintf("unknown identity kind: %q", id.Kind))
}

func (r *Resolver) resolveCatalog(ctx context.Context, id types.Identity) (string, error) {
	collection, rowID, err := id.CatalogRef()
	if err != nil {
		return "", err
	}
	if r.catalog == nil {
		return "", types.NewResolutionError("media catalog is not configured", nil)
	}

	row, err := r.catalog.Lookup(ctx, collection, rowID)
	if errors.Is(err, catalog.ErrRowNotFound) {
		return "", types.NewNotFoundError(fmt.Sprintf("no catalog entry for %s", id.Value))
	}
	if err != nil {
		return "", types.NewQueryFailedError(err)
	}
	if row.DataPath == "" {
		return "", types.NewResolutionError(fmt.Sprintf("catalog entry %s has no storage path", id.Value), nil)
	}
	return row.DataPath, nil
}

func (r *Resolver) resolveHandle(ctx context.Context, id types.Identity) (string, error) {
	if path, ok := r.index.Get(id.Value); ok {
		return path, nil
	}
	if r.providers == nil {
		return "", types.NewResolutionError("no handle providers are configured", nil)
	}

	// concurrent resolutions of one handle share a single copy; each caller
	// stops waiting on its own context
	ch := r.group.DoChan(id.Value, func() (interface{}, error) {
		if path, ok := r.index.Get(id.Value); ok {
			return path, nil
		}
		work := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			work, cancel = context.WithTimeout(work, r.timeout)
			defer cancel()
		}
		return r.materialize(work, id.Value)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Resolver) materialize(ctx context.Context, uri string) (string, error) {
	provider, err := r.providers.For(uri)
	if err != nil {
		return "", types.NewResolutionError("unsupported handle", err)
	}

	meta, err := provider.Stat(ctx, uri)
	if err != nil || meta == nil {
		log.Warn().Err(err).Str("uri", uri).Msg("failed to stat handle before resolution")
		meta = &handles.Metadata{}
	}
	if meta.LocalPath != "" {
		return meta.LocalPath, nil
	}
	if meta.IsDirectory {
		return "", types.NewResolutionError(fmt.Sprintf("%s is a directory", uri), nil)
	}
	if r.materializer == nil {
		return "", types.NewResolutionError("cache directory is not configured", nil)
	}

	path, err := r.materializer.Materialize(ctx, provider, uri, meta)
	if err != nil {
		return "", types.NewResolutionError(r.failureMessage(ctx, uri), err)
	}

	r.index.Put(uri, path)
	return path, nil
}

// failureMessage notes when the handle was never granted long-lived access,
// which is the usual reason a stale handle cannot be opened.
func (r *Resolver) failureMessage(ctx context.Context, uri string) string {
	if r.grants == nil {
		return "failed to materialize handle"
	}
	g, err := r.grants.Get(ctx, uri)
	if err == nil && g == nil {
		return "failed to materialize handle (no persisted access grant)"
	}
	return "failed to materialize handle"
}
