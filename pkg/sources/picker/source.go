package picker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/sources/handles"
	"github.com/anthonypate54/familynest/pkg/types"
)

// Source turns picker selections into descriptors, materializing handles that
// are not directly path-addressable.
type Source struct {
	sessions     *SessionManager
	presenter    Presenter
	providers    *handles.Registry
	grants       handles.GrantStore
	materializer *handles.Materializer
	index        *handles.Index
	timeout      time.Duration
}

type Config struct {
	Sessions     *SessionManager
	Presenter    Presenter
	Providers    *handles.Registry
	Grants       handles.GrantStore
	Materializer *handles.Materializer
	Index        *handles.Index
	Timeout      time.Duration // zero waits until the caller's context ends
}

func NewSource(cfg Config) *Source {
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessionManager(nil)
	}
	return &Source{
		sessions:     cfg.Sessions,
		presenter:    cfg.Presenter,
		providers:    cfg.Providers,
		grants:       cfg.Grants,
		materializer: cfg.Materializer,
		index:        cfg.Index,
		timeout:      cfg.Timeout,
	}
}

func (s *Source) Sessions() *SessionManager {
	return s.sessions
}

// OpenPicker presents a multi-select picker. A cancelled picker yields an
// empty slice and no error.
func (s *Source) OpenPicker(ctx context.Context) ([]types.Resource, error) {
	return s.browse(ctx, ModeMultiple)
}

// OpenSingleSelectBrowser presents a single-select picker and returns zero or
// one descriptor.
func (s *Source) OpenSingleSelectBrowser(ctx context.Context) ([]types.Resource, error) {
	return s.browse(ctx, ModeSingle)
}

func (s *Source) browse(ctx context.Context, mode Mode) ([]types.Resource, error) {
	if s.presenter == nil {
		return nil, types.NewPickerUnavailableError()
	}

	session, err := s.sessions.Open(ctx, mode)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.presenter.Present(ctx, session); err != nil {
		s.sessions.abandon(session)
		return nil, types.NewResourceError(types.ErrCodePickerUnavailable, "failed to present picker", err)
	}

	outcome, err := s.sessions.Wait(ctx, session)
	if err != nil {
		return nil, err
	}
	if outcome.Cancelled {
		return []types.Resource{}, nil
	}

	// materialization gets its own context so a picker deadline does not cut
	// off copies of handles already selected
	work := context.WithoutCancel(ctx)

	resources := make([]types.Resource, 0, len(outcome.Handles))
	for _, uri := range outcome.Handles {
		resources = append(resources, s.Describe(work, uri))
	}
	return resources, nil
}

// Describe builds the descriptor for one selected handle. Failures are
// absorbed: missing metadata takes defaults and a failed copy leaves
// LocalPath empty for that item only.
func (s *Source) Describe(ctx context.Context, uri string) types.Resource {
	id := types.HandleIdentity(uri)
	logger := log.With().Str("uri", uri).Logger()

	if s.providers == nil {
		return types.NewResource(id, "", 0, "")
	}

	if err := s.providers.PersistAccess(ctx, s.grants, uri); err != nil {
		logger.Warn().Err(err).Msg("failed to persist handle access")
	}

	provider, err := s.providers.For(uri)
	if err != nil {
		logger.Warn().Err(err).Msg("no provider for selected handle")
		return types.NewResource(id, "", 0, "")
	}

	meta, err := provider.Stat(ctx, uri)
	if err != nil || meta == nil {
		logger.Warn().Err(err).Msg("failed to stat selected handle, using defaults")
		meta = &handles.Metadata{}
	}

	r := types.NewResource(id, meta.DisplayName, meta.SizeBytes, meta.MimeType)
	r.IsDirectory = meta.IsDirectory

	switch {
	case meta.LocalPath != "":
		r.LocalPath = meta.LocalPath
	case meta.IsDirectory || s.materializer == nil:
		// directories are never copied
	default:
		localPath, err := s.materializer.Materialize(ctx, provider, uri, meta)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to materialize selected handle")
			break
		}
		r.LocalPath = localPath
		if s.index != nil {
			s.index.Put(uri, localPath)
		}
	}

	return r
}
