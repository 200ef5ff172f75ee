package handles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/common"
	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/types"
)

// Materializer copies handle bytes into the shared cache directory. Files it
// writes are never removed by this package.
type Materializer struct {
	dir          string
	minFreeBytes uint64
	now          func() time.Time
	spaceCheck   func(path string, need, reserve uint64) error
}

func NewMaterializer(cfg types.CacheConfig) (*Materializer, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory %s: %w", cfg.Dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	return &Materializer{
		dir:          dir,
		minFreeBytes: cfg.MinFreeBytes,
		now:          time.Now,
		spaceCheck:   common.EnsureFreeSpace,
	}, nil
}

func (m *Materializer) Dir() string {
	return m.dir
}

// maxCacheStem bounds the sanitized name so the prefixed result stays under
// the 255 byte filename limit of common filesystems.
const (
	maxCacheStem = 200
	maxCacheExt  = 16
)

// CacheName builds <unix-millis>-<seq>-<sanitized name>. The sequence makes
// names unique within the process even when the clock does not advance.
func (m *Materializer) CacheName(displayName string) string {
	return fmt.Sprintf("%d-%d-%s", m.now().UnixMilli(), common.NextSequence(), truncateName(sources.SanitizeFilename(displayName)))
}

// truncateName shortens an already sanitized (ASCII) name, keeping a short
// extension intact.
func truncateName(name string) string {
	if len(name) <= maxCacheStem {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > maxCacheExt {
		ext = ""
	}
	return name[:maxCacheStem-len(ext)] + ext
}

// Materialize streams uri from p into a new cache file and returns its
// absolute path. The file appears under its final name only once complete.
func (m *Materializer) Materialize(ctx context.Context, p Provider, uri string, meta *Metadata) (path string, err error) {
	var written int64
	defer func() {
		metrics.RecordMaterialization(err, written)
	}()

	displayName := types.DefaultDisplayName
	if meta != nil && meta.DisplayName != "" {
		displayName = meta.DisplayName
	}
	if meta != nil && meta.SizeBytes > 0 && m.spaceCheck != nil {
		if err := m.spaceCheck(m.dir, uint64(meta.SizeBytes), m.minFreeBytes); err != nil {
			return "", err
		}
	}

	src, err := p.Open(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", uri, err)
	}
	defer src.Close()

	dest := filepath.Join(m.dir, m.CacheName(displayName))
	tmpPath := fmt.Sprintf("%s.%s.tmp", dest, uuid.New().String()[:6])

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	written, err = io.Copy(f, &contextReader{ctx: ctx, r: src})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("copy %s: %w", uri, err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}

	log.Debug().
		Str("uri", uri).
		Str("path", dest).
		Int64("bytes", written).
		Msg("materialized handle")

	return dest, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
