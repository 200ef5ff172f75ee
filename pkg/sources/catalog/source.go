package catalog

import (
	"context"
	"time"

	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/types"
	"github.com/rs/zerolog/log"
)

// Source enumerates photos or videos from the media catalog.
type Source struct {
	catalog Catalog
}

var _ sources.Lister = (*Source)(nil)

func NewSource(c Catalog) *Source {
	return &Source{catalog: c}
}

func (s *Source) Name() types.SourceName {
	return types.SourceCatalog
}

// List checks library permission before touching the catalog; a denied
// request issues no query at all.
func (s *Source) List(ctx context.Context, req sources.ListRequest) ([]types.Resource, error) {
	if !req.Permissions.Granted(req.Kind) {
		return nil, types.NewPermissionDeniedError(req.Kind)
	}

	start := time.Now()
	defer func() {
		metrics.ObserveList(types.SourceCatalog, time.Since(start))
	}()

	rows, err := s.catalog.Query(ctx, Query{
		Collection: req.Kind.Collection(),
		MimePrefix: req.Kind.MimePrefix(),
	})
	if err != nil {
		return nil, types.NewQueryFailedError(err)
	}
	defer rows.Close()

	resources := []types.Resource{}
	skipped := 0
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return nil, types.NewQueryFailedError(err)
		}

		if row.SizeBytes > req.MaxSizeBytes {
			skipped++
			continue
		}

		r := types.NewResource(types.CatalogIdentity(row.Collection, row.ID), row.DisplayName, row.SizeBytes, row.MimeType)
		r.ThumbnailPath = row.ThumbnailPath
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewQueryFailedError(err)
	}

	log.Debug().
		Str("kind", string(req.Kind)).
		Int("count", len(resources)).
		Int("over_limit", skipped).
		Int64("max_size_bytes", req.MaxSizeBytes).
		Msg("listed catalog resources")

	metrics.RecordListed(types.SourceCatalog, len(resources))
	return resources, nil
}
