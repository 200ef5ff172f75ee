package resolver

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonypate54/familynest/pkg/sources/catalog"
	"github.com/anthonypate54/familynest/pkg/sources/handles"
	"github.com/anthonypate54/familynest/pkg/types"
)

type stubCatalog struct {
	rows    map[int64]catalog.Row
	err     error
	lookups atomic.Int32
}

func (c *stubCatalog) Query(ctx context.Context, q catalog.Query) (catalog.Rows, error) {
	return nil, errors.New("not used")
}

func (c *stubCatalog) Lookup(ctx context.Context, collection string, rowID int64) (*catalog.Row, error) {
	c.lookups.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	row, ok := c.rows[rowID]
	if !ok || row.Collection != collection {
		return nil, catalog.ErrRowNotFound
	}
	return &row, nil
}

// memProvider serves fixed content for mem:// handles and counts opens.
type memProvider struct {
	content map[string]string
	opens   atomic.Int32
	gate    chan struct{}
}

func (p *memProvider) Scheme() string { return "mem" }

func (p *memProvider) Stat(ctx context.Context, uri string) (*handles.Metadata, error) {
	body, ok := p.content[uri]
	if !ok {
		return nil, handles.ErrHandleNotFound
	}
	return &handles.Metadata{DisplayName: filepath.Base(uri), SizeBytes: int64(len(body))}, nil
}

func (p *memProvider) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	p.opens.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	body, ok := p.content[uri]
	if !ok {
		return nil, handles.ErrHandleNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestResolver(t *testing.T, cat catalog.Catalog, providers ...handles.Provider) (*Resolver, handles.GrantStore) {
	t.Helper()

	registry := handles.NewRegistry()
	for _, p := range providers {
		registry.Register(p)
	}
	m, err := handles.NewMaterializer(types.CacheConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	grants := handles.NewMemoryGrantStore()
	r, err := New(Config{Catalog: cat, Providers: registry, Grants: grants, Materializer: m})
	require.NoError(t, err)
	return r, grants
}

func TestResolve_PathIsReturnedUnchanged(t *testing.T) {
	cat := &stubCatalog{}
	r, _ := newTestResolver(t, cat)

	path, err := r.Resolve(context.Background(), types.PathIdentity("/does/not/exist.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/does/not/exist.jpg", path)
	assert.Equal(t, int32(0), cat.lookups.Load())
}

func TestResolve_Catalog(t *testing.T) {
	cat := &stubCatalog{rows: map[int64]catalog.Row{
		3: {ID: 3, Collection: "images", DataPath: "/media/DCIM/a.jpg"},
		4: {ID: 4, Collection: "images"},
	}}
	r, _ := newTestResolver(t, cat)
	ctx := context.Background()

	path, err := r.Resolve(ctx, types.CatalogIdentity("images", 3))
	require.NoError(t, err)
	assert.Equal(t, "/media/DCIM/a.jpg", path)

	_, err = r.Resolve(ctx, types.CatalogIdentity("images", 99))
	assert.True(t, errors.Is(err, types.ErrNotFound))

	_, err = r.Resolve(ctx, types.CatalogIdentity("videos", 3))
	assert.True(t, errors.Is(err, types.ErrNotFound))

	_, err = r.Resolve(ctx, types.CatalogIdentity("images", 4))
	assert.True(t, errors.Is(err, types.ErrResolution))

	_, err = r.Resolve(ctx, types.Identity{Kind: types.IdentityKindCatalog, Value: "catalog://images/x"})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestResolve_CatalogQueryFailure(t *testing.T) {
	r, _ := newTestResolver(t, &stubCatalog{err: errors.New("database is locked")})

	_, err := r.Resolve(context.Background(), types.CatalogIdentity("videos", 1))
	assert.True(t, errors.Is(err, types.ErrQueryFailed))
}

func TestResolve_HandleIsMaterializedOnce(t *testing.T) {
	p := &memProvider{content: map[string]string{"mem://docs/report.pdf": "%PDF-1.4"}}
	r, _ := newTestResolver(t, nil, p)
	ctx := context.Background()

	first, err := r.Resolve(ctx, types.HandleIdentity("mem://docs/report.pdf"))
	require.NoError(t, err)
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.True(t, strings.HasSuffix(first, "-report.pdf"))

	second, err := r.Resolve(ctx, types.HandleIdentity("mem://docs/report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), p.opens.Load())

	// a removed cache file is recreated on the next resolution
	require.NoError(t, os.Remove(first))
	third, err := r.Resolve(ctx, types.HandleIdentity("mem://docs/report.pdf"))
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, int32(2), p.opens.Load())
}

func TestResolve_ConcurrentHandleResolutionsShareOneCopy(t *testing.T) {
	p := &memProvider{
		content: map[string]string{"mem://a.txt": "hello"},
		gate:    make(chan struct{}),
	}
	r, _ := newTestResolver(t, nil, p)

	const n = 8
	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = r.ResolveString(context.Background(), "mem://a.txt", "")
		}(i)
	}

	require.Eventually(t, func() bool { return p.opens.Load() == 1 }, testTimeout, testTick)
	close(p.gate)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.Equal(t, int32(1), p.opens.Load())
}

func TestResolve_CancelledCallerDoesNotFailSharedCopy(t *testing.T) {
	p := &memProvider{
		content: map[string]string{"mem://b.txt": "shared"},
		gate:    make(chan struct{}),
	}
	r, _ := newTestResolver(t, nil, p)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.ResolveString(firstCtx, "mem://b.txt", "")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return p.opens.Load() == 1 }, testTimeout, testTick)

	type outcome struct {
		path string
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		path, err := r.ResolveString(context.Background(), "mem://b.txt", "")
		second <- outcome{path, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(testTimeout):
		t.Fatal("cancelled caller did not return")
	}

	close(p.gate)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		data, err := os.ReadFile(got.path)
		require.NoError(t, err)
		assert.Equal(t, "shared", string(data))
	case <-time.After(testTimeout):
		t.Fatal("coalesced caller did not return")
	}
	assert.Equal(t, int32(1), p.opens.Load())
}

func TestResolve_HandleFailures(t *testing.T) {
	p := &memProvider{content: map[string]string{}}
	r, grants := newTestResolver(t, nil, p)
	ctx := context.Background()

	_, err := r.Resolve(ctx, types.HandleIdentity("mem://gone.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResolution))
	assert.Contains(t, err.Error(), "no persisted access grant")

	require.NoError(t, grants.Save(ctx, handles.Grant{URI: "mem://granted.pdf", Scheme: "mem"}))
	_, err = r.Resolve(ctx, types.HandleIdentity("mem://granted.pdf"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "no persisted access grant")

	_, err = r.Resolve(ctx, types.HandleIdentity("ftp://host/file"))
	assert.True(t, errors.Is(err, types.ErrResolution))
}

func TestResolve_FileHandleUsesDirectPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	r, _ := newTestResolver(t, nil, handles.NewFileProvider())

	path, err := r.Resolve(context.Background(), types.HandleIdentity("file://"+target))
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestResolveString(t *testing.T) {
	cat := &stubCatalog{rows: map[int64]catalog.Row{1: {ID: 1, Collection: "videos", DataPath: "/m/v.mp4"}}}
	r, _ := newTestResolver(t, cat)
	ctx := context.Background()

	path, err := r.ResolveString(ctx, "catalog://videos/1", "")
	require.NoError(t, err)
	assert.Equal(t, "/m/v.mp4", path)

	path, err = r.ResolveString(ctx, "/icloud/Docs/a.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "/icloud/Docs/a.pdf", path)

	_, err = r.ResolveString(ctx, "relative/path", "")
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}
