package handles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/anthonypate54/familynest/pkg/sources"
)

// FileProvider serves file:// handles, which are directly path-addressable.
type FileProvider struct{}

func NewFileProvider() *FileProvider {
	return &FileProvider{}
}

func (p *FileProvider) Scheme() string {
	return "file"
}

func (p *FileProvider) Stat(ctx context.Context, uri string) (*Metadata, error) {
	path, err := filePath(uri)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, uri)
	}
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		DisplayName: info.Name(),
		IsDirectory: info.IsDir(),
		LocalPath:   path,
	}
	if !info.IsDir() {
		meta.SizeBytes = info.Size()
		meta.MimeType = sources.MimeTypeForName(info.Name())
	}
	return meta, nil
}

func (p *FileProvider) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	path, err := filePath(uri)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, uri)
	}
	return f, err
}

func filePath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid file handle %q: %w", uri, err)
	}
	if u.Scheme != "file" || u.Path == "" {
		return "", fmt.Errorf("invalid file handle %q", uri)
	}
	return filepath.FromSlash(u.Path), nil
}
