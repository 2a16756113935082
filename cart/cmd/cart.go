package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/spices/cart/internal/catalog"
	"github.com/Alturino/spices/cart/internal/checkout"
	"github.com/Alturino/spices/cart/internal/controller"
	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/cart/internal/identity"
	cartOtel "github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/cart/internal/pricing"
	"github.com/Alturino/spices/cart/internal/service"
	"github.com/Alturino/spices/cart/internal/store"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	inHttp "github.com/Alturino/spices/internal/http"
	"github.com/Alturino/spices/internal/infra"
	"github.com/Alturino/spices/internal/middleware"
	"github.com/Alturino/spices/internal/otel"
	"github.com/Alturino/spices/internal/repository"
)

func RunCartService(c context.Context) {
	c, span := cartOtel.Tracer.Start(c, "RunCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_CART_SERVICE).
		Str(constants.KEY_TAG, "main RunCartService").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.Get(c, constants.APP_CART_SERVICE)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_CART_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = otel.ShutdownOtel(c, otelShutdowns)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "shutting down database").Logger()
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(constants.KEY_PROCESS, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	if err = infra.MigrateUp(c, db, cfg.Database); err != nil {
		err = fmt.Errorf("failed migrating database with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("migrated database")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing catalog database").Logger()
	logger.Info().Msg("initializing catalog database")
	c = logger.WithContext(c)
	catalogDb := infra.NewDatabaseClient(c, cfg.CatalogDB)
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "shutting down catalog database").Logger()
		logger.Info().Msg("shutting down catalog database")
		catalogDb.Close()
		logger.Info().Msg("shutdown catalog database")
	}()
	logger.Info().Msg("initialized catalog database")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "shutting down cache").Logger()
		logger.Info().Msg("shutting down cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	queries := repository.New(db)
	readers := catalog.Readers{
		domain.ChannelB2C: catalog.NewCachedReader(
			catalog.NewRetailReader(repository.New(catalogDb)),
			cache,
			domain.ChannelB2C,
			cfg.Cart.CatalogCacheTTL,
		),
		domain.ChannelB2B: catalog.NewCachedReader(
			catalog.NewWholesaleReader(queries),
			cache,
			domain.ChannelB2B,
			cfg.Cart.CatalogCacheTTL,
		),
	}
	engine, err := pricing.NewEngine(pricing.NewRepositoryRuleSource(queries), cfg.Cart, time.Now)
	if err != nil {
		err = fmt.Errorf("failed initializing pricing engine with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	cartService := service.NewCartService(
		store.NewCartStore(db, queries),
		readers,
		engine,
		checkout.NewClient(cfg.Order),
	)
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.APP_CART_SERVICE),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.OptionalAuth(cfg.Identity),
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "ok",
		})
	}).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing cart controller").Logger()
	logger.Info().Msg("initializing cart controller")
	controller.AttachCartController(router, cartService, identity.NewResolver(cfg.Cart))
	logger.Info().Msg("initialized cart controller")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(constants.KEY_PROCESS, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(constants.KEY_PROCESS, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 15*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}

// RunMigration applies pending migrations to the service database and exits.
func RunMigration(c context.Context) error {
	c, span := cartOtel.Tracer.Start(c, "RunMigration")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_CART_MIGRATION).
		Str(constants.KEY_TAG, "main RunMigration").
		Logger()
	c = logger.WithContext(c)

	logger.Info().Msg("initializing config")
	cfg := config.Get(c, constants.APP_CART_SERVICE)
	logger.Info().Msg("initialized config")

	db := infra.NewDatabaseClient(c, cfg.Database)
	defer db.Close()

	logger = logger.With().Str(constants.KEY_PROCESS, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	if err := infra.MigrateUp(c, db, cfg.Database); err != nil {
		err = fmt.Errorf("failed migrating database with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("migrated database")
	return nil
}
