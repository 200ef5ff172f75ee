package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonypate54/familynest/pkg/permissions"
	"github.com/anthonypate54/familynest/pkg/resolver"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/types"
)

type recordingLister struct {
	name types.SourceName
	last sources.ListRequest
	out  []types.Resource
	err  error
}

func (l *recordingLister) Name() types.SourceName { return l.name }

func (l *recordingLister) List(ctx context.Context, req sources.ListRequest) ([]types.Resource, error) {
	l.last = req
	return l.out, l.err
}

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	svc := NewService(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc
}

func TestService_ListAppliesSizeCeiling(t *testing.T) {
	lister := &recordingLister{name: types.SourceCloud}
	registry := sources.NewRegistry()
	registry.Register(lister)

	svc := newTestService(t, ServiceConfig{Sources: registry})
	ctx := context.Background()

	resources, err := svc.ListResources(ctx, types.KindPhoto, types.SourceCloud, nil)
	require.NoError(t, err)
	assert.NotNil(t, resources)
	assert.Empty(t, resources)
	assert.Equal(t, sources.DefaultMaxSizeBytes, lister.last.MaxSizeBytes)
	assert.Equal(t, types.KindPhoto, lister.last.Kind)

	zero := int64(0)
	_, err = svc.ListResources(ctx, types.KindVideo, types.SourceCloud, &zero)
	require.NoError(t, err)
	assert.Equal(t, int64(0), lister.last.MaxSizeBytes)

	svc = newTestService(t, ServiceConfig{Sources: registry, DefaultMaxSizeBytes: 1000})
	_, err = svc.ListResources(ctx, types.KindPhoto, types.SourceCloud, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), lister.last.MaxSizeBytes)
}

func TestService_ListErrors(t *testing.T) {
	lister := &recordingLister{name: types.SourceCatalog, err: types.NewPermissionDeniedError(types.KindVideo)}
	registry := sources.NewRegistry()
	registry.Register(lister)

	svc := newTestService(t, ServiceConfig{Sources: registry})
	ctx := context.Background()

	_, err := svc.ListResources(ctx, types.KindVideo, types.SourceCatalog, nil)
	assert.True(t, errors.Is(err, types.ErrPermissionDenied))

	_, err = svc.ListResources(ctx, types.KindVideo, types.SourceCloud, nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = svc.ListResources(ctx, types.Kind("audio"), types.SourceCatalog, nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestService_ListPassesPermissionSnapshot(t *testing.T) {
	lister := &recordingLister{name: types.SourceCatalog}
	registry := sources.NewRegistry()
	registry.Register(lister)

	store := permissions.NewStore(nil)
	svc := newTestService(t, ServiceConfig{Sources: registry, Permissions: store})

	require.NoError(t, svc.SetPermission(types.KindVideo, types.PermissionGranted))
	_, err := svc.ListResources(context.Background(), types.KindVideo, types.SourceCatalog, nil)
	require.NoError(t, err)
	assert.True(t, lister.last.Permissions.Granted(types.KindVideo))
	assert.False(t, lister.last.Permissions.Granted(types.KindPhoto))

	assert.Error(t, svc.SetPermission(types.Kind("audio"), types.PermissionGranted))
}

func TestService_ResolvePath(t *testing.T) {
	r, err := resolver.New(resolver.Config{})
	require.NoError(t, err)

	svc := newTestService(t, ServiceConfig{Resolver: r, ResolveTimeout: time.Second})
	ctx := context.Background()

	path, err := svc.ResolvePath(ctx, "/media/a.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "/media/a.jpg", path)

	_, err = svc.ResolvePath(ctx, "catalog://images/1", "")
	assert.True(t, errors.Is(err, types.ErrResolution))

	_, err = svc.ResolvePath(ctx, "", "")
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestService_WithoutPicker(t *testing.T) {
	svc := newTestService(t, ServiceConfig{})

	_, err := svc.BrowseDocuments(context.Background())
	assert.True(t, errors.Is(err, types.ErrPickerUnavailable))
	_, err = svc.BrowseSingleDocument(context.Background())
	assert.True(t, errors.Is(err, types.ErrPickerUnavailable))

	_, ok := svc.CurrentSession()
	assert.False(t, ok)
	assert.Error(t, svc.CompleteSession("x", nil))
	assert.Error(t, svc.CancelSession("x"))
}
