package catalog

import (
	"context"
	"errors"
)

// ErrRowNotFound is returned by Lookup when no row has the requested id.
var ErrRowNotFound = errors.New("catalog row not found")

// Query selects rows of one collection whose MIME type starts with MimePrefix.
type Query struct {
	Collection string
	MimePrefix string
}

// Row is one media catalog record.
type Row struct {
	ID            int64
	Collection    string
	DisplayName   string
	SizeBytes     int64
	MimeType      string
	DataPath      string // on-disk location, empty when the platform hides it
	ThumbnailPath string
	DateAdded     int64 // Unix timestamp
}

// Rows is a forward-only cursor over query results.
type Rows interface {
	Next() bool
	Row() (Row, error)
	Err() error
	Close() error
}

// Catalog is the row-indexed media database the catalog source reads from.
type Catalog interface {
	Query(ctx context.Context, q Query) (Rows, error)
	Lookup(ctx context.Context, collection string, rowID int64) (*Row, error)
}
