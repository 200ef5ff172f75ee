package cloud

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/types"
)

const DefaultMaxDepth = 2

// Source enumerates media from a locally mirrored cloud container.
type Source struct {
	fs       billy.Filesystem
	root     string // absolute path the filesystem is rooted at
	maxDepth int
}

var _ sources.Lister = (*Source)(nil)

// NewSource roots a walk at root on the local disk. An empty root yields a
// source that always reports the container as unavailable.
func NewSource(root string, maxDepth int) *Source {
	var fs billy.Filesystem
	if root != "" {
		fs = osfs.New(root)
	}
	return NewSourceWithFS(fs, root, maxDepth)
}

// NewSourceWithFS walks fs, reporting paths as root joined with the entry path.
func NewSourceWithFS(fs billy.Filesystem, root string, maxDepth int) *Source {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Source{fs: fs, root: root, maxDepth: maxDepth}
}

func (s *Source) Name() types.SourceName {
	return types.SourceCloud
}

// List walks the container to maxDepth levels. Depth-1 entries are inspected
// and directories below the limit are expanded. Any read error aborts the walk
// and nothing partial is returned.
func (s *Source) List(ctx context.Context, req sources.ListRequest) ([]types.Resource, error) {
	if s.fs == nil || s.root == "" {
		return nil, types.NewContainerUnavailableError("cloud container is not configured")
	}

	info, err := s.fs.Stat("/")
	if err != nil || !info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, types.NewContainerAccessError(err)
		}
		return nil, types.NewContainerUnavailableError("cloud container is not available on this device")
	}

	start := time.Now()
	defer func() {
		metrics.ObserveList(types.SourceCloud, time.Since(start))
	}()

	w := walker{fs: s.fs, root: s.root, req: req, maxDepth: s.maxDepth, found: []types.Resource{}}
	if err := w.walk(ctx, "/", 1); err != nil {
		var re *types.ResourceError
		if errors.As(err, &re) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, types.NewContainerAccessError(err)
	}

	log.Debug().
		Str("root", s.root).
		Str("kind", string(req.Kind)).
		Int("count", len(w.found)).
		Msg("listed cloud container")

	metrics.RecordListed(types.SourceCloud, len(w.found))
	return w.found, nil
}

type walker struct {
	fs       billy.Filesystem
	root     string
	req      sources.ListRequest
	maxDepth int
	found    []types.Resource
}

func (w *walker) walk(ctx context.Context, dir string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if depth < w.maxDepth {
				if err := w.walk(ctx, p, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		if !sources.MatchesKind(entry.Name(), w.req.Kind) {
			continue
		}
		if entry.Size() > w.req.MaxSizeBytes {
			continue
		}

		abs := filepath.Join(w.root, filepath.FromSlash(p))
		r := types.NewResource(types.PathIdentity(abs), entry.Name(), entry.Size(), sources.MimeTypeForName(entry.Name()))
		w.found = append(w.found, r.WithLocalPath(abs))
	}
	return nil
}
