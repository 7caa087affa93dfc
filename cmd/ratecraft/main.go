package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ratecraft/internal/app/commands"
	overridesapp "ratecraft/internal/app/handlers/overrides"
	pricingapp "ratecraft/internal/app/handlers/pricing"
	rulesapp "ratecraft/internal/app/handlers/rules"
	"ratecraft/internal/app/middleware"
	appoutbox "ratecraft/internal/app/outbox"
	"ratecraft/internal/app/queries"
	"ratecraft/internal/app/uow"
	domainmarket "ratecraft/internal/domain/market"
	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/infra/broker/kafka"
	"ratecraft/internal/infra/config"
	mongostore "ratecraft/internal/infra/db/mongo"
	ginserver "ratecraft/internal/infra/http/gin"
	inframarket "ratecraft/internal/infra/market"
	"ratecraft/internal/infra/obs"
	infraoutbox "ratecraft/internal/infra/outbox"
	"ratecraft/internal/infra/storage/memory"
	"ratecraft/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	for _, bg := range app.background {
		go bg(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	background []func(context.Context)
	ready      func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	provider := buildMarketProvider(cfg, logger)

	var (
		uowFactory uow.UoWFactory
		outboxDst  appoutbox.Outbox
		idStore    middleware.IdempotencyStore
		background []func(context.Context)
		ready      = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		db := client.DB
		uowFactory = mongostore.Factory{
			DB:            db,
			RulesRepo:     mongostore.NewRuleRepository(db),
			OverridesRepo: mongostore.NewOverrideRepository(db),
			ConfigsRepo:   mongostore.NewConfigRepository(db),
			SnapshotsRepo: mongostore.NewSnapshotRepository(db),
			HistoryRepo:   mongostore.NewHistoryRepository(db),
		}
		store := infraoutbox.NewStore(db)
		outboxDst = store
		idStore = mongostore.NewIdempotencyStore(db, cfg.IdempotencyTTL)
		ready = func() error { return client.Ping(context.Background()) }

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			background = append(background, func(ctx context.Context) {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			})
		} else {
			logger.Warn("kafka brokers not configured, price events stay in the outbox")
		}
	case "memory":
		uowFactory = memory.NewFactory()
		outboxDst = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	default:
		return application{}, fmt.Errorf("unsupported storage mode %q", cfg.StorageMode)
	}

	if consumer := buildCompetitorConsumer(cfg, provider.Competitors, logger); consumer != nil {
		background = append(background, consumer)
	}

	var feedStore pricingapp.FeedStore = s3.NoopFeedStore{}
	if s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("s3 feed store unavailable", "error", err)
	} else {
		feedStore = s3Client
	}

	resolver := &pricingapp.Resolver{
		Factors: domainpricing.NewFactorCalculator(provider, logger, domainpricing.FactorCalculatorConfig{
			EventsEnabled:    cfg.EventsEnabled,
			EventWindowDays:  cfg.EventWindowDays,
			DefaultOccupancy: cfg.DefaultOccupancy,
		}),
		Engine: domainpricing.NewEngine(logger),
		Bounds: domainpricing.BoundsConfig{
			MinPriceFactor: cfg.MinPriceFactor,
			MaxPriceFactor: cfg.MaxPriceFactor,
		},
		Outbox:  outboxDst,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}

	commandBus := commands.NewInMemoryBus()
	computeHandler := &pricingapp.ComputePriceHandler{Resolver: resolver, UoWFactory: uowFactory}
	commands.RegisterHandler(commandBus, pricingapp.ComputePriceCommand{}.Key(), computeHandler)
	calendarHandler := &pricingapp.ComputeCalendarHandler{Resolver: resolver, UoWFactory: uowFactory}
	commands.RegisterHandler(commandBus, pricingapp.ComputeCalendarCommand{}.Key(), calendarHandler)
	recomputeHandler := &pricingapp.RecomputeHandler{Resolver: resolver, UoWFactory: uowFactory}
	commands.RegisterHandler(commandBus, pricingapp.RecomputeCommand{}.Key(), recomputeHandler)
	exportHandler := &pricingapp.ExportFeedHandler{Calendar: calendarHandler, Store: feedStore}
	commands.RegisterHandler(commandBus, pricingapp.ExportFeedCommand{}.Key(), exportHandler)
	commands.RegisterHandler(commandBus, rulesapp.CreateRuleCommand{}.Key(), &rulesapp.CreateRuleHandler{UoWFactory: uowFactory})
	commands.RegisterHandler(commandBus, rulesapp.UpdateRuleCommand{}.Key(), &rulesapp.UpdateRuleHandler{UoWFactory: uowFactory})
	commands.RegisterHandler(commandBus, rulesapp.DeleteRuleCommand{}.Key(), &rulesapp.DeleteRuleHandler{UoWFactory: uowFactory})
	commands.RegisterHandler(commandBus, overridesapp.CreateOverrideCommand{}.Key(), &overridesapp.CreateOverrideHandler{Resolver: resolver, UoWFactory: uowFactory})
	commands.RegisterHandler(commandBus, overridesapp.DeleteOverrideCommand{}.Key(), &overridesapp.DeleteOverrideHandler{Resolver: resolver, UoWFactory: uowFactory})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.GetPriceQuery{}.Key(), &pricingapp.GetPriceHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rulesapp.ListRulesQuery{}.Key(), &rulesapp.ListRulesHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxDst),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Pricing:   ginserver.PricingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Rules:     ginserver.RuleHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Overrides: ginserver.OverrideHandler{Commands: commandBusWithMiddleware},
		},
		background: background,
		ready:      ready,
	}, nil
}

func buildMarketProvider(cfg config.Config, logger *slog.Logger) *inframarket.Service {
	catalog := inframarket.NewEventCatalog()
	if path := eventFixturesPath(); path != "" {
		if err := loadEventFixtures(path, catalog); err != nil {
			logger.Warn("event fixtures load failed", "error", err, "path", path)
		} else {
			logger.Info("event fixtures loaded", "path", path)
		}
	}
	return &inframarket.Service{
		ForecastClient: &inframarket.ForecastClient{
			Client:   &http.Client{Timeout: cfg.ForecastTimeout},
			Endpoint: cfg.ForecastURL,
			Logger:   logger,
		},
		Events:      catalog,
		Competitors: inframarket.NewCompetitorCache(),
	}
}

func buildCompetitorConsumer(cfg config.Config, cache *inframarket.CompetitorCache, logger *slog.Logger) func(context.Context) {
	if cfg.CompetitorTopic == "" || len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	handler := &inframarket.CompetitorFeedHandler{Cache: cache, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "ratecraft-competitors", nil, handler)
	if err != nil {
		logger.Warn("competitor consumer unavailable", "error", err)
		return nil
	}
	topic := cfg.CompetitorTopic
	return func(ctx context.Context) {
		defer consumer.Close()
		if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("competitor consumer stopped", "error", err)
		}
	}
}

type eventFixture struct {
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Impact     string `json:"impact"`
}

func loadEventFixtures(path string, catalog *inframarket.EventCatalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixtures []eventFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		day, err := time.ParseInLocation("2006-01-02", fx.Date, time.UTC)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", fx.Name, err)
		}
		catalog.Add(fx.PropertyID, domainmarket.LocalEvent{
			Name:   fx.Name,
			Date:   day,
			Impact: domainmarket.EventImpact(fx.Impact),
		})
	}
	return nil
}

func eventFixturesPath() string {
	if path := os.Getenv("EVENTS_FIXTURES"); path != "" {
		return path
	}
	candidate := filepath.Join("data", "events.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
