package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/niksmo/gsm-storefront/config"
	"github.com/niksmo/gsm-storefront/internal/adapter/blog"
	"github.com/niksmo/gsm-storefront/internal/adapter/feed"
	"github.com/niksmo/gsm-storefront/internal/adapter/httphandler"
	"github.com/niksmo/gsm-storefront/internal/adapter/kafka"
	"github.com/niksmo/gsm-storefront/internal/adapter/render"
	"github.com/niksmo/gsm-storefront/internal/adapter/storage"
	"github.com/niksmo/gsm-storefront/internal/core/page"
	"github.com/niksmo/gsm-storefront/internal/core/port"
	"github.com/niksmo/gsm-storefront/internal/core/service"
	"github.com/niksmo/gsm-storefront/internal/locale"
	"github.com/niksmo/gsm-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
	"gopkg.in/natefinch/lumberjack.v2"
)

const blogPostsLimit = 3

type outbound struct {
	stores   port.StoreOpener
	sqlDB    *storage.SQLDB
	catalog  page.CatalogSource
	blog     port.BlogSource
	events   port.CartEventsProducer
	producer *kafka.CartEventsProducer
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	logFile    io.Closer
	outbound   outbound
	bundle     *locale.Bundle
	storefront *page.Storefront
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCore()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	var w io.Writer = os.Stderr
	if path := app.cfg.LogFile; path != "" {
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		app.logFile = rotating
		w = io.MultiWriter(os.Stderr, rotating)
	}

	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	app.initStorage()
	app.initCatalog()
	app.initBlog()
	app.initCartEvents()
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	switch app.cfg.Storage.Driver {
	case "postgres":
		db, err := storage.NewSQLDB(app.ctx, app.cfg.Storage.SQLDB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.sqlDB = &db
		app.outbound.stores = storage.NewSQLStore(db)
	default:
		app.outbound.stores = storage.NewMemoryStore()
	}
	slog.Info("visitor storage is ready", "op", op, "driver", app.cfg.Storage.Driver)
}

func (app *App) initCatalog() {
	fetcher := feed.New(app.cfg.Catalog.Source, app.cfg.Catalog.FetchTimeout)
	app.outbound.catalog = service.NewCatalogLoader(fetcher)
}

func (app *App) initBlog() {
	const op = "App.initBlog"

	src, err := blog.New(blogPostsLimit)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.blog = src
}

// initCartEvents is a no-op when no brokers are configured.
func (app *App) initCartEvents() {
	const op = "App.initCartEvents"

	broker := app.cfg.Broker
	if !broker.Enabled() {
		slog.Info("cart events are disabled", "op", op)
		return
	}

	srOpts := []sr.ClientOpt{sr.URLs(broker.SchemaRegistryURLs...)}
	var tlsConfig *tls.Config
	if broker.TLS.Enabled() {
		var err error
		tlsConfig, err = kafka.MakeTLSConfig(
			broker.TLS.CAFile, broker.TLS.CertFile, broker.TLS.KeyFile,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeCartEventV1(
		app.ctx,
		schema.SubjectOpt(schema.SubjectForTopic(broker.Topics.CartEvents)),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewCartEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx, broker.SeedBrokers, broker.Topics.CartEvents, tlsConfig,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.outbound.producer = &producer
	app.outbound.events = producer
}

func (app *App) initCore() {
	const op = "App.initCore"

	sfCfg := app.cfg.Storefront
	bundle, err := locale.NewBundle(sfCfg.DefaultLanguage, locale.Languages)
	if err != nil {
		app.fallDown(op, err)
	}
	app.bundle = bundle

	app.storefront = page.New(
		app.outbound.catalog,
		app.outbound.stores,
		app.outbound.events,
		app.outbound.blog,
		bundle,
		page.Settings{
			PageSize:        sfCfg.ItemsPerPage,
			FeaturedCount:   sfCfg.FeaturedCount,
			RelatedCount:    sfCfg.RelatedCount,
			SearchDebounce:  sfCfg.SearchDebounce,
			PriceDebounce:   sfCfg.PriceDebounce,
			ChatReplyDelay:  sfCfg.ChatReplyDelay,
			NotifyDismiss:   sfCfg.NotifyDismiss,
			PublishTimeout:  app.cfg.Broker.PublishTimeout,
			DefaultCurrency: sfCfg.DefaultCurrency,
		},
	)
}

func (app *App) initInboundAdapters() {
	const op = "App.initInboundAdapters"

	renderer, err := render.New(app.bundle)
	if err != nil {
		app.fallDown(op, err)
	}

	sfCfg := app.cfg.Storefront
	router := httphandler.NewRouter(app.storefront, renderer, httphandler.Options{
		FetchTimeout: app.cfg.Catalog.FetchTimeout,
		ChatLimiter:  httphandler.NewVisitorLimiter(sfCfg.ChatRateLimit, sfCfg.ChatBurst),
	})
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, router)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.outbound.producer != nil {
		app.outbound.producer.Close()
	}
	if app.outbound.sqlDB != nil {
		app.outbound.sqlDB.Close()
	}

	slog.Info("application is closed")

	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
