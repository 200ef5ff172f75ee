package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/permissions"
	"github.com/anthonypate54/familynest/pkg/resolver"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/sources/picker"
	"github.com/anthonypate54/familynest/pkg/types"
)

const resolverWorkerName = "resolver"

type ServiceConfig struct {
	Sources             *sources.Registry
	Resolver            *resolver.Resolver
	Picker              *picker.Source
	Permissions         *permissions.Store
	DefaultMaxSizeBytes int64
	ResolveTimeout      time.Duration
}

// Service is the request dispatch layer between transports and the backends.
// Listing and resolution run on one worker per backend; picker requests go
// straight to the session manager.
type Service struct {
	sources        *sources.Registry
	resolver       *resolver.Resolver
	picker         *picker.Source
	permissions    *permissions.Store
	defaultMaxSize int64
	resolveTimeout time.Duration

	workers map[string]*Worker
	wg      sync.WaitGroup
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Sources == nil {
		cfg.Sources = sources.NewRegistry()
	}
	if cfg.Permissions == nil {
		cfg.Permissions = permissions.NewStore(nil)
	}
	if cfg.DefaultMaxSizeBytes <= 0 {
		cfg.DefaultMaxSizeBytes = sources.DefaultMaxSizeBytes
	}

	s := &Service{
		sources:        cfg.Sources,
		resolver:       cfg.Resolver,
		picker:         cfg.Picker,
		permissions:    cfg.Permissions,
		defaultMaxSize: cfg.DefaultMaxSizeBytes,
		resolveTimeout: cfg.ResolveTimeout,
		workers:        make(map[string]*Worker),
	}

	for _, name := range cfg.Sources.List() {
		s.workers[name] = NewWorker(name, 0)
	}
	s.workers[resolverWorkerName] = NewWorker(resolverWorkerName, 0)
	return s
}

// Start launches the backend workers. They exit when ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) {
	for _, w := range s.workers {
		s.wg.Add(1)
		go func(w *Worker) {
			defer s.wg.Done()
			w.Run(ctx)
		}(w)
	}
	log.Info().Int("workers", len(s.workers)).Msg("backend workers started")
}

func (s *Service) Stop() {
	for _, w := range s.workers {
		w.Stop()
	}
	s.wg.Wait()
}

// ListResources enumerates one backend. A nil maxSizeBytes applies the
// configured default ceiling.
func (s *Service) ListResources(ctx context.Context, kind types.Kind, source types.SourceName, maxSizeBytes *int64) ([]types.Resource, error) {
	if !kind.Valid() {
		return nil, types.NewInvalidArgumentError(fmt.Sprintf("unknown kind: %q", kind))
	}

	maxSize, err := sources.EffectiveMaxSize(maxSizeBytes, s.defaultMaxSize)
	if err != nil {
		return nil, err
	}

	lister, ok := s.sources.Get(source)
	if !ok {
		return nil, types.NewInvalidArgumentError(fmt.Sprintf("unknown source: %q", source))
	}
	worker, ok := s.workers[string(source)]
	if !ok {
		return nil, types.NewInvalidArgumentError(fmt.Sprintf("source %q is not running", source))
	}

	req := sources.ListRequest{
		Kind:         kind,
		MaxSizeBytes: maxSize,
		Permissions:  s.permissions.Snapshot(),
	}

	v, err := worker.Submit(ctx, func(ctx context.Context) (interface{}, error) {
		return lister.List(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	resources := v.([]types.Resource)
	if resources == nil {
		resources = []types.Resource{}
	}
	return resources, nil
}

// ResolvePath turns an identity into a local path. kind may be empty when the
// caller's transport dropped the tag.
func (s *Service) ResolvePath(ctx context.Context, identity string, kind types.IdentityKind) (string, error) {
	if s.resolver == nil {
		return "", types.NewResolutionError("resolver is not configured", nil)
	}

	if s.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.resolveTimeout)
		defer cancel()
	}

	v, err := s.workers[resolverWorkerName].Submit(ctx, func(ctx context.Context) (interface{}, error) {
		return s.resolver.ResolveString(ctx, identity, kind)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return "", types.NewTimeoutError(err)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Service) BrowseDocuments(ctx context.Context) ([]types.Resource, error) {
	if s.picker == nil {
		return nil, types.NewPickerUnavailableError()
	}
	return s.picker.OpenPicker(ctx)
}

func (s *Service) BrowseSingleDocument(ctx context.Context) ([]types.Resource, error) {
	if s.picker == nil {
		return nil, types.NewPickerUnavailableError()
	}
	return s.picker.OpenSingleSelectBrowser(ctx)
}

func (s *Service) CurrentSession() (*picker.Session, bool) {
	if s.picker == nil {
		return nil, false
	}
	return s.picker.Sessions().Current()
}

func (s *Service) CompleteSession(sessionID string, handles []string) error {
	if s.picker == nil {
		return types.NewPickerUnavailableError()
	}
	return s.picker.Sessions().Complete(sessionID, handles)
}

func (s *Service) CancelSession(sessionID string) error {
	if s.picker == nil {
		return types.NewPickerUnavailableError()
	}
	return s.picker.Sessions().Cancel(sessionID)
}

func (s *Service) Permissions() types.PermissionState {
	return s.permissions.Snapshot()
}

func (s *Service) SetPermission(kind types.Kind, status types.PermissionStatus) error {
	if !kind.Valid() {
		return types.NewInvalidArgumentError(fmt.Sprintf("unknown kind: %q", kind))
	}
	s.permissions.Set(kind, status)
	return nil
}

// Sources lists the registered listing backends.
func (s *Service) Sources() []string {
	return s.sources.List()
}
