package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/anthonypate54/familynest/pkg/api/v1"
	"github.com/anthonypate54/familynest/pkg/common"
	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/permissions"
	"github.com/anthonypate54/familynest/pkg/resolver"
	"github.com/anthonypate54/familynest/pkg/sources"
	"github.com/anthonypate54/familynest/pkg/sources/catalog"
	"github.com/anthonypate54/familynest/pkg/sources/cloud"
	"github.com/anthonypate54/familynest/pkg/sources/handles"
	"github.com/anthonypate54/familynest/pkg/sources/picker"
	"github.com/anthonypate54/familynest/pkg/types"
)

type Gateway struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient
	Catalog     *catalog.SQLCatalog
	httpServer  *http.Server
	echo        *echo.Echo
	ctx         context.Context
	cancelFunc  context.CancelFunc

	baseRouteGroup *echo.Group
	rootRouteGroup *echo.Group

	sourceRegistry *sources.Registry
	handleRegistry *handles.Registry
	grants         handles.GrantStore
	materializer   *handles.Materializer
	index          *handles.Index
	picker         *picker.Source
	resolver       *resolver.Resolver
	permissions    *permissions.Store
	service        *Service
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	return NewGatewayWithConfig(configManager.GetConfig())
}

func NewGatewayWithConfig(config types.AppConfig) (*Gateway, error) {
	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	var redisClient *common.RedisClient
	var err error

	if config.Database.Redis.Enabled() {
		redisClient, err = common.NewRedisClient(config.Database.Redis, common.WithClientName("FamilyNestGateway"))
		if err != nil {
			return nil, err
		}
	} else {
		log.Info().Msg("redis not configured - grants and picker guard kept in process")
	}

	ctx, cancel := context.WithCancel(context.Background())
	gateway := &Gateway{
		Config:         config,
		RedisClient:    redisClient,
		ctx:            ctx,
		cancelFunc:     cancel,
		sourceRegistry: sources.NewRegistry(),
		handleRegistry: handles.NewRegistry(),
		permissions:    permissions.NewStore(nil),
	}

	if err := gateway.initBackends(); err != nil {
		cancel()
		return nil, err
	}

	return gateway, nil
}

func (g *Gateway) initLock(name string) (func(), error) {
	// Skip locking without Redis; there is only this process
	if g.RedisClient == nil {
		return func() {}, nil
	}

	lockKey := common.Keys.GatewayInitLock(name)
	lock := common.NewRedisLock(g.RedisClient)

	if err := lock.Acquire(g.ctx, lockKey, common.RedisLockOptions{TtlS: 10, Retries: 1}); err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Release(lockKey); err != nil {
			log.Error().Str("lock_key", lockKey).Err(err).Msg("failed to release init lock")
		}
	}, nil
}

// initBackends opens the catalog, handle providers and cache, then builds the
// sources, resolver and dispatch service on top of them.
func (g *Gateway) initBackends() error {
	// replicas sharing a postgres catalog must not migrate concurrently
	unlock, err := g.initLock("catalog")
	if err != nil {
		return fmt.Errorf("failed to acquire catalog init lock: %w", err)
	}
	cat, err := catalog.NewSQLCatalog(g.Config.Catalog)
	unlock()
	if err != nil {
		return fmt.Errorf("failed to open media catalog: %w", err)
	}
	g.Catalog = cat

	g.handleRegistry.Register(handles.NewFileProvider())
	if g.Config.Handles.S3.IsConfigured() {
		s3Provider, err := handles.NewS3Provider(g.Config.Handles.S3)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create s3 handle provider - s3:// handles will not resolve")
		} else {
			g.handleRegistry.Register(s3Provider)
		}
	}
	log.Debug().Strs("schemes", g.handleRegistry.Schemes()).Msg("handle providers registered")

	if g.RedisClient != nil {
		g.grants = handles.NewRedisGrantStore(g.RedisClient)
	} else {
		g.grants = handles.NewMemoryGrantStore()
	}

	g.materializer, err = handles.NewMaterializer(g.Config.Cache)
	if err != nil {
		return err
	}
	g.index, err = handles.NewIndex(g.Config.Resolver.CacheSize)
	if err != nil {
		return err
	}

	var guard picker.Guard
	var presenter picker.Presenter = picker.AnnouncePresenter{}
	if g.RedisClient != nil {
		guard = picker.NewRedisGuard(g.RedisClient, g.Config.Picker.LockTTL)
		presenter = picker.NewRedisPresenter(g.RedisClient, g.Config.Picker.Timeout)
	}

	g.picker = picker.NewSource(picker.Config{
		Sessions:     picker.NewSessionManager(guard),
		Presenter:    presenter,
		Providers:    g.handleRegistry,
		Grants:       g.grants,
		Materializer: g.materializer,
		Index:        g.index,
		Timeout:      g.Config.Picker.Timeout,
	})

	g.resolver, err = resolver.New(resolver.Config{
		Catalog:      g.Catalog,
		Providers:    g.handleRegistry,
		Grants:       g.grants,
		Materializer: g.materializer,
		Index:        g.index,
		Timeout:      g.Config.Resolver.Timeout,
	})
	if err != nil {
		return err
	}

	g.initSources()

	g.service = NewService(ServiceConfig{
		Sources:             g.sourceRegistry,
		Resolver:            g.resolver,
		Picker:              g.picker,
		Permissions:         g.permissions,
		DefaultMaxSizeBytes: g.Config.Resources.DefaultMaxSizeBytes,
		ResolveTimeout:      g.Config.Resolver.Timeout,
	})
	return nil
}

// initSources registers the listing backends
func (g *Gateway) initSources() {
	g.sourceRegistry.Register(catalog.NewSource(g.Catalog))
	g.sourceRegistry.Register(cloud.NewSource(g.Config.Cloud.RootPath, g.Config.Cloud.MaxDepth))
	log.Debug().Strs("sources", g.sourceRegistry.List()).Msg("listing sources registered")
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.Gateway.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.Gateway.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.Gateway.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)
	g.rootRouteGroup = e.Group(apiv1.HttpServerRootRoute)

	g.registerRoutes()
	return nil
}

func (g *Gateway) registerRoutes() {
	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"), g.RedisClient)

	auth := g.requireAdminToken()
	apiv1.NewResourcesGroup(g.baseRouteGroup.Group("/resources", auth), g.service)
	apiv1.NewResolveGroup(g.baseRouteGroup.Group("/resolve", auth), g.service)
	apiv1.NewBrowseGroup(g.baseRouteGroup.Group("/browse", auth), g.service)
	apiv1.NewPickerGroup(g.baseRouteGroup.Group("/picker", auth), g.service)
	apiv1.NewPermissionsGroup(g.baseRouteGroup.Group("/permissions", auth), g.service)

	if g.Config.Metrics.Enabled {
		g.rootRouteGroup.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
}

// Handler exposes the configured router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	if g.echo == nil {
		if err := g.initHTTP(); err != nil {
			log.Error().Err(err).Msg("failed to initialize http server")
		}
	}
	return g.echo
}

// StartAsync starts the gateway without blocking.
// Use this when embedding the gateway in another process (e.g., CLI).
func (g *Gateway) StartAsync() error {
	if g.echo == nil {
		if err := g.initHTTP(); err != nil {
			return fmt.Errorf("failed to initialize http server: %w", err)
		}
	}

	g.service.Start(g.ctx)

	addr := fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on http: %w", err)
	}

	go func() {
		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Strs("sources", g.sourceRegistry.List()).
		Strs("handle_schemes", g.handleRegistry.Schemes()).
		Msg("gateway http server running")

	return nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

// shutdown gracefully shuts down the gateway
func (g *Gateway) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), g.Config.Gateway.ShutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	// Stop HTTP server
	if g.httpServer != nil {
		eg.Go(func() error {
			return g.httpServer.Shutdown(ctx)
		})
	}

	// Stop backend workers
	eg.Go(func() error {
		g.service.Stop()
		return nil
	})

	g.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to shutdown gateway gracefully")
	}

	if g.Catalog != nil {
		if err := g.Catalog.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close media catalog")
		}
	}
	if g.RedisClient != nil {
		if err := g.RedisClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}

	log.Info().Msg("gateway stopped")
}

// Service returns the request dispatch layer
func (g *Gateway) Service() *Service {
	return g.service
}

// SourceRegistry returns the listing source registry
func (g *Gateway) SourceRegistry() *sources.Registry {
	return g.sourceRegistry
}

// HandleRegistry returns the handle provider registry for registering schemes
func (g *Gateway) HandleRegistry() *handles.Registry {
	return g.handleRegistry
}

// requireAdminToken returns middleware that validates the admin token
func (g *Gateway) requireAdminToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skip auth if no admin token is configured
			if g.Config.Gateway.AuthToken == "" {
				return next(c)
			}

			token := c.Request().Header.Get("Authorization")
			expected := "Bearer " + g.Config.Gateway.AuthToken
			if token == "" || token != expected {
				log.Debug().
					Str("path", c.Path()).
					Str("token_present", fmt.Sprintf("%v", token != "")).
					Msg("admin token validation failed")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "admin token required",
				})
			}
			return next(c)
		}
	}
}
