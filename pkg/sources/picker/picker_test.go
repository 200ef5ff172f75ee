package picker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonypate54/familynest/pkg/common"
	"github.com/anthonypate54/familynest/pkg/sources/handles"
	"github.com/anthonypate54/familynest/pkg/types"
)

type result struct {
	resources []types.Resource
	err       error
}

// channelPresenter hands each presented session to the test.
func channelPresenter() (Presenter, chan *Session) {
	ch := make(chan *Session, 4)
	return PresenterFunc(func(ctx context.Context, s *Session) error {
		ch <- s
		return nil
	}), ch
}

func newTestSource(t *testing.T, presenter Presenter) (*Source, *handles.Index, *handles.MemoryGrantStore) {
	t.Helper()

	registry := handles.NewRegistry()
	registry.Register(handles.NewFileProvider())
	registry.Register(&brokenProvider{})

	m, err := handles.NewMaterializer(types.CacheConfig{Dir: filepath.Join(t.TempDir(), "cache")})
	require.NoError(t, err)

	idx, err := handles.NewIndex(16)
	require.NoError(t, err)

	grants := handles.NewMemoryGrantStore()
	return NewSource(Config{
		Presenter:    presenter,
		Providers:    registry,
		Grants:       grants,
		Materializer: m,
		Index:        idx,
	}), idx, grants
}

// brokenProvider serves broken:// handles that stat fine but cannot be read.
type brokenProvider struct{}

func (p *brokenProvider) Scheme() string { return "broken" }
func (p *brokenProvider) Stat(ctx context.Context, uri string) (*handles.Metadata, error) {
	return &handles.Metadata{DisplayName: "lost.pdf", SizeBytes: 12, MimeType: "application/pdf"}, nil
}
func (p *brokenProvider) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return nil, errors.New("provider went away")
}

func TestSessionManager_RejectsSecondOpen(t *testing.T) {
	m := NewSessionManager(nil)
	ctx := context.Background()

	s, err := m.Open(ctx, ModeMultiple)
	require.NoError(t, err)
	assert.True(t, s.MultipleSelection)
	assert.Contains(t, s.DocumentTypes, "com.adobe.pdf")

	_, err = m.Open(ctx, ModeSingle)
	assert.True(t, errors.Is(err, types.ErrSessionBusy))

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, s.ID, cur.ID)

	// the first session is still intact and completes normally
	require.NoError(t, m.Complete(s.ID, []string{"file:///a"}))
	out, err := m.Wait(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///a"}, out.Handles)

	_, ok = m.Current()
	assert.False(t, ok)
}

func TestSessionManager_UnknownSession(t *testing.T) {
	m := NewSessionManager(nil)
	assert.True(t, errors.Is(m.Complete("nope", nil), types.ErrNotFound))
	assert.True(t, errors.Is(m.Cancel("nope"), types.ErrNotFound))

	s, err := m.Open(context.Background(), ModeMultiple)
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Complete("stale-id", nil), types.ErrNotFound))
	require.NoError(t, m.Cancel(s.ID))
	assert.True(t, errors.Is(m.Cancel(s.ID), types.ErrNotFound))
}

func TestSessionManager_SingleSelectRejectsMany(t *testing.T) {
	m := NewSessionManager(nil)
	s, err := m.Open(context.Background(), ModeSingle)
	require.NoError(t, err)
	assert.False(t, s.MultipleSelection)

	err = m.Complete(s.ID, []string{"file:///a", "file:///b"})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	// still pending
	_, ok := m.Current()
	assert.True(t, ok)
}

func TestSessionManager_WaitTimeoutFreesSlot(t *testing.T) {
	m := NewSessionManager(nil)
	s, err := m.Open(context.Background(), ModeMultiple)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Wait(ctx, s)
	assert.True(t, errors.Is(err, types.ErrTimeout))

	_, ok := m.Current()
	assert.False(t, ok)

	_, err = m.Open(context.Background(), ModeMultiple)
	assert.NoError(t, err)
}

func TestSessionManager_CompletionSurvivesEndedContext(t *testing.T) {
	m := NewSessionManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 200; i++ {
		s, err := m.Open(context.Background(), ModeMultiple)
		require.NoError(t, err)
		require.NoError(t, m.Complete(s.ID, []string{"file:///tmp/x"}))

		out, err := m.Wait(ctx, s)
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, []string{"file:///tmp/x"}, out.Handles)
		assert.False(t, out.Cancelled)
	}
}

func TestSource_PickerUnavailable(t *testing.T) {
	src, _, _ := newTestSource(t, nil)
	_, err := src.OpenPicker(context.Background())
	assert.True(t, errors.Is(err, types.ErrPickerUnavailable))
}

func TestSource_CancelReturnsEmpty(t *testing.T) {
	presenter, presented := channelPresenter()
	src, _, _ := newTestSource(t, presenter)

	done := make(chan result, 1)
	go func() {
		rs, err := src.OpenPicker(context.Background())
		done <- result{rs, err}
	}()

	s := <-presented
	require.NoError(t, src.Sessions().Cancel(s.ID))

	res := <-done
	require.NoError(t, res.err)
	assert.NotNil(t, res.resources)
	assert.Empty(t, res.resources)
}

func TestSource_OpenPickerDescribesAndMaterializes(t *testing.T) {
	presenter, presented := channelPresenter()
	src, idx, grants := newTestSource(t, presenter)

	dir := t.TempDir()
	local := filepath.Join(dir, "Report Card.pdf")
	require.NoError(t, os.WriteFile(local, []byte("grades"), 0644))

	done := make(chan result, 1)
	go func() {
		rs, err := src.OpenPicker(context.Background())
		done <- result{rs, err}
	}()

	s := <-presented
	handlesPicked := []string{"file://" + local, "broken://drive/lost.pdf", "file://" + dir, "file://" + filepath.Join(dir, "gone.txt")}
	require.NoError(t, src.Sessions().Complete(s.ID, handlesPicked))

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.resources, 4)

	direct := res.resources[0]
	assert.Equal(t, types.IdentityKindHandle, direct.IdentityKind)
	assert.Equal(t, "file://"+local, direct.Identity)
	assert.Equal(t, "Report Card.pdf", direct.DisplayName)
	assert.Equal(t, int64(6), direct.SizeBytes)
	assert.Equal(t, "application/pdf", direct.MimeType)
	assert.Equal(t, local, direct.LocalPath)

	// materialization failure only clears this item's path
	broken := res.resources[1]
	assert.Equal(t, "lost.pdf", broken.DisplayName)
	assert.Empty(t, broken.LocalPath)

	folder := res.resources[2]
	assert.True(t, folder.IsDirectory)

	// stat failure falls back to defaults
	missing := res.resources[3]
	assert.Equal(t, types.DefaultDisplayName, missing.DisplayName)
	assert.Equal(t, types.DefaultMimeType, missing.MimeType)
	assert.Equal(t, int64(0), missing.SizeBytes)

	all, err := grants.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 0, idx.Len())
}

type copyProvider struct{}

func (p *copyProvider) Scheme() string { return "mem" }
func (p *copyProvider) Stat(ctx context.Context, uri string) (*handles.Metadata, error) {
	return &handles.Metadata{DisplayName: "Beach Day.HEIC", SizeBytes: 4, MimeType: "image/heic"}, nil
}
func (p *copyProvider) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return os.Open(os.DevNull)
}

func TestSource_SingleSelectMaterializesRemoteHandle(t *testing.T) {
	presenter, presented := channelPresenter()
	src, idx, _ := newTestSource(t, presenter)
	src.providers.Register(&copyProvider{})

	done := make(chan result, 1)
	go func() {
		rs, err := src.OpenSingleSelectBrowser(context.Background())
		done <- result{rs, err}
	}()

	s := <-presented
	assert.Equal(t, ModeSingle, s.Mode)
	require.NoError(t, src.Sessions().Complete(s.ID, []string{"mem://beach"}))

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.resources, 1)

	r := res.resources[0]
	require.NotEmpty(t, r.LocalPath)
	assert.Regexp(t, `^[0-9]+-[0-9]+-Beach_Day.HEIC$`, filepath.Base(r.LocalPath))

	cached, ok := idx.Get("mem://beach")
	require.True(t, ok)
	assert.Equal(t, r.LocalPath, cached)
}

func TestSource_ConcurrentBrowseIsBusy(t *testing.T) {
	presenter, presented := channelPresenter()
	src, _, _ := newTestSource(t, presenter)

	done := make(chan result, 1)
	go func() {
		rs, err := src.OpenPicker(context.Background())
		done <- result{rs, err}
	}()
	s := <-presented

	_, err := src.OpenSingleSelectBrowser(context.Background())
	assert.True(t, errors.Is(err, types.ErrSessionBusy))

	require.NoError(t, src.Sessions().Cancel(s.ID))
	res := <-done
	assert.NoError(t, res.err)
}

func TestRedisGuard_AcrossManagers(t *testing.T) {
	rdb, mr, err := common.NewRedisClientForTest()
	require.NoError(t, err)
	defer mr.Close()

	a := NewSessionManager(NewRedisGuard(rdb, 5*time.Second))
	b := NewSessionManager(NewRedisGuard(rdb, 5*time.Second))
	ctx := context.Background()

	s, err := a.Open(ctx, ModeMultiple)
	require.NoError(t, err)

	_, err = b.Open(ctx, ModeMultiple)
	assert.True(t, errors.Is(err, types.ErrSessionBusy))

	require.NoError(t, a.Cancel(s.ID))

	s2, err := b.Open(ctx, ModeMultiple)
	require.NoError(t, err)
	require.NoError(t, b.Cancel(s2.ID))
}

func TestRedisPresenter_PublishesSession(t *testing.T) {
	rdb, mr, err := common.NewRedisClientForTest()
	require.NoError(t, err)
	defer mr.Close()

	m := NewSessionManager(nil)
	s, err := m.Open(context.Background(), ModeSingle)
	require.NoError(t, err)

	p := NewRedisPresenter(rdb, time.Minute)
	require.NoError(t, p.Present(context.Background(), s))

	raw, err := mr.Get(common.Keys.PickerSession(s.ID))
	require.NoError(t, err)
	assert.Contains(t, raw, `"mode":"single"`)
	assert.Contains(t, raw, `"multiple_selection":false`)
	assert.Greater(t, mr.TTL(common.Keys.PickerSession(s.ID)), time.Duration(0))
}
