package catalog

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/sources"
)

// thumbnailDir holds pre-generated previews next to the media they belong to,
// as <dir>/.thumbnails/<name>.jpg
const thumbnailDir = ".thumbnails"

// RowWriter is the write side of a catalog the indexer fills.
type RowWriter interface {
	Upsert(ctx context.Context, r Row) (int64, error)
}

type IndexStats struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// Indexer scans a media library and records every image and video in the catalog.
type Indexer struct {
	fs     billy.Filesystem
	base   string // absolute path recorded as the root of fs
	writer RowWriter
}

func NewIndexer(fs billy.Filesystem, base string, writer RowWriter) *Indexer {
	return &Indexer{fs: fs, base: base, writer: writer}
}

// Index walks the whole library. Hidden directories are not descended into.
func (ix *Indexer) Index(ctx context.Context) (IndexStats, error) {
	var stats IndexStats

	err := util.Walk(ix.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := info.Name()
		if info.IsDir() {
			if strings.HasPrefix(name, ".") && p != "/" {
				return filepath.SkipDir
			}
			return nil
		}

		mimeType := sources.MimeTypeForName(name)
		collection := collectionFor(mimeType)
		if collection == "" {
			stats.Skipped++
			return nil
		}

		row := Row{
			Collection:    collection,
			DisplayName:   name,
			SizeBytes:     info.Size(),
			MimeType:      mimeType,
			DataPath:      ix.absolute(p),
			ThumbnailPath: ix.thumbnailFor(p),
			DateAdded:     info.ModTime().Unix(),
		}
		if _, err := ix.writer.Upsert(ctx, row); err != nil {
			return err
		}
		stats.Indexed++
		return nil
	})
	if err != nil {
		return stats, err
	}

	log.Info().
		Str("base", ix.base).
		Int("indexed", stats.Indexed).
		Int("skipped", stats.Skipped).
		Msg("catalog index complete")

	return stats, nil
}

func (ix *Indexer) absolute(p string) string {
	return filepath.Join(ix.base, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}

func (ix *Indexer) thumbnailFor(p string) string {
	thumb := path.Join(path.Dir(p), thumbnailDir, path.Base(p)+".jpg")
	if _, err := ix.fs.Stat(thumb); err != nil {
		return ""
	}
	return ix.absolute(thumb)
}

func collectionFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "images"
	case strings.HasPrefix(mimeType, "video/"):
		return "videos"
	}
	return ""
}
