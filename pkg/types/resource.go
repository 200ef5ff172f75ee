package types

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultDisplayName = "Unknown"
	DefaultMimeType    = "application/octet-stream"
)

// IdentityKind tags how an identity is resolved back to bytes.
type IdentityKind string

const (
	IdentityKindCatalog IdentityKind = "catalog" // row id inside the media catalog
	IdentityKindHandle  IdentityKind = "handle"  // opaque document provider URI
	IdentityKindPath    IdentityKind = "path"    // absolute filesystem path
)

func (k IdentityKind) Valid() bool {
	switch k {
	case IdentityKindCatalog, IdentityKindHandle, IdentityKindPath:
		return true
	}
	return false
}

const catalogScheme = "catalog://"

// Identity is the tagged form of a resource id.
type Identity struct {
	Kind  IdentityKind
	Value string
}

func (i Identity) String() string {
	return i.Value
}

// CatalogIdentity builds catalog://<collection>/<rowID>.
func CatalogIdentity(collection string, rowID int64) Identity {
	return Identity{
		Kind:  IdentityKindCatalog,
		Value: fmt.Sprintf("%s%s/%d", catalogScheme, collection, rowID),
	}
}

func HandleIdentity(uri string) Identity {
	return Identity{Kind: IdentityKindHandle, Value: uri}
}

func PathIdentity(path string) Identity {
	return Identity{Kind: IdentityKindPath, Value: path}
}

// CatalogRef splits a catalog identity into its collection and row id.
func (i Identity) CatalogRef() (collection string, rowID int64, err error) {
	if i.Kind != IdentityKindCatalog || !strings.HasPrefix(i.Value, catalogScheme) {
		return "", 0, NewInvalidArgumentError(fmt.Sprintf("not a catalog identity: %q", i.Value))
	}

	rest := strings.TrimPrefix(i.Value, catalogScheme)
	collection, idPart, ok := strings.Cut(rest, "/")
	if !ok || collection == "" {
		return "", 0, NewInvalidArgumentError(fmt.Sprintf("malformed catalog identity: %q", i.Value))
	}

	rowID, err = strconv.ParseInt(idPart, 10, 64)
	if err != nil || rowID < 0 {
		return "", 0, NewInvalidArgumentError(fmt.Sprintf("malformed catalog row id: %q", i.Value))
	}
	return collection, rowID, nil
}

// ParseIdentity classifies an untagged id string. A non-empty kind hint
// takes precedence over inference.
func ParseIdentity(value string, hint IdentityKind) (Identity, error) {
	if value == "" {
		return Identity{}, NewInvalidArgumentError("identity is required")
	}

	if hint != "" {
		if !hint.Valid() {
			return Identity{}, NewInvalidArgumentError(fmt.Sprintf("unknown identity kind: %q", hint))
		}
		return Identity{Kind: hint, Value: value}, nil
	}

	switch {
	case strings.HasPrefix(value, catalogScheme):
		return Identity{Kind: IdentityKindCatalog, Value: value}, nil
	case filepath.IsAbs(value):
		return PathIdentity(value), nil
	case strings.Contains(value, "://"):
		return HandleIdentity(value), nil
	}

	return Identity{}, NewInvalidArgumentError(fmt.Sprintf("cannot classify identity: %q", value))
}

// Resource is the normalized descriptor every source produces.
type Resource struct {
	Identity      string       `json:"id" yaml:"id"`
	IdentityKind  IdentityKind `json:"identity_kind" yaml:"identity_kind"`
	DisplayName   string       `json:"name" yaml:"name"`
	SizeBytes     int64        `json:"size" yaml:"size"`
	MimeType      string       `json:"mime_type" yaml:"mime_type"`
	LocalPath     string       `json:"path,omitempty" yaml:"path,omitempty"`
	IsDirectory   bool         `json:"is_directory" yaml:"is_directory"`
	ThumbnailPath string       `json:"thumbnail_path,omitempty" yaml:"thumbnail_path,omitempty"`
}

// NewResource applies the descriptor defaults for missing name, mime and size.
func NewResource(id Identity, name string, size int64, mimeType string) Resource {
	if name == "" {
		name = DefaultDisplayName
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	if size < 0 {
		size = 0
	}
	return Resource{
		Identity:     id.Value,
		IdentityKind: id.Kind,
		DisplayName:  name,
		SizeBytes:    size,
		MimeType:     mimeType,
	}
}

func (r Resource) ID() Identity {
	return Identity{Kind: r.IdentityKind, Value: r.Identity}
}

// WithLocalPath returns a copy of r with LocalPath set.
func (r Resource) WithLocalPath(path string) Resource {
	r.LocalPath = path
	return r
}

// Kind is the media kind a listing is restricted to.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case string(KindPhoto):
		return KindPhoto, nil
	case string(KindVideo):
		return KindVideo, nil
	}
	return "", NewInvalidArgumentError(fmt.Sprintf("unknown kind: %q (expected photo or video)", s))
}

func (k Kind) Valid() bool {
	return k == KindPhoto || k == KindVideo
}

// MimePrefix is the MIME type prefix the catalog filters on.
func (k Kind) MimePrefix() string {
	if k == KindVideo {
		return "video/"
	}
	return "image/"
}

// Collection is the catalog collection holding rows of this kind.
func (k Kind) Collection() string {
	if k == KindVideo {
		return "videos"
	}
	return "images"
}

// SourceName selects the backend a listing is dispatched to.
type SourceName string

const (
	SourceCatalog SourceName = "catalog"
	SourceCloud   SourceName = "cloud"
	SourcePicker  SourceName = "picker"
)

func ParseSourceName(s string) (SourceName, error) {
	switch SourceName(strings.ToLower(s)) {
	case SourceCatalog:
		return SourceCatalog, nil
	case SourceCloud:
		return SourceCloud, nil
	}
	return "", NewInvalidArgumentError(fmt.Sprintf("unknown source: %q (expected catalog or cloud)", s))
}
