package container

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/analytics"
	analyticsstore "github.com/serroba/shortlink/internal/analytics/store"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

const openTimeout = 30 * time.Second

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// DatabasePackage opens the configured database and applies migrations.
func DatabasePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (Store, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		if options.DBDriver == DriverPostgres {
			pg, err := store.OpenPostgres(ctx, options.DatabaseURL)
			if err != nil {
				return nil, err
			}

			logger.Info("database ready", zap.String("driver", DriverPostgres))

			return pg, nil
		}

		sqlite, err := store.OpenSQLite(ctx, options.DBPath)
		if err != nil {
			return nil, err
		}

		logger.Info("database ready", zap.String("driver", DriverSQLite), zap.String("path", options.DBPath))

		return sqlite, nil
	})
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		options := do.MustInvoke[*Options](i)
		if !options.RedisEnabled() {
			return nil, ErrRedisDisabled
		}

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: options.RedisAddr})}, nil
	})
}

// RepositoryPackage provides the link repository, cached in redis when it is configured.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)
		db := do.MustInvoke[Store](i)

		if !options.RedisEnabled() {
			return db, nil
		}

		client := do.MustInvoke[*RedisClient](i)
		ttl := time.Duration(options.CacheTTL) * time.Second

		return store.NewRedisCacheRepository(db, client.Client, ttl), nil
	})
}

// PublisherGroupPackage provides typed publish functions for every topic.
// Without redis they discard events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := messaging.NewRedisPublisher(client.Client, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.URLCreatedEvent], error) {
		if !do.MustInvoke[*Options](i).RedisEnabled() {
			return messaging.NoopPublish[analytics.URLCreatedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.URLCreatedEvent](group.Publisher(), analytics.TopicURLCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.URLAccessedEvent], error) {
		if !do.MustInvoke[*Options](i).RedisEnabled() {
			return messaging.NoopPublish[analytics.URLAccessedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.URLAccessedEvent](group.Publisher(), analytics.TopicURLAccessed), nil
	})
}

// ServicePackage provides the shortener service.
// In stream mode accesses are published and appended by the consumer process.
func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		options := do.MustInvoke[*Options](i)
		links := do.MustInvoke[shortener.Repository](i)
		db := do.MustInvoke[Store](i)

		recordAccess := shortener.RecordAccess(db.Append)
		if options.AccessLogMode == AccessLogStream {
			recordAccess = analytics.NewStreamRecorder(do.MustInvoke[messaging.Publish[analytics.URLAccessedEvent]](i))
		}

		return shortener.NewService(links, db, recordAccess, time.Now), nil
	})
}

func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, handlers.NewAPIConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(options.TrustProxy),
			middleware.Logger(logger),
		)

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			options.BaseURL,
			do.MustInvoke[messaging.Publish[analytics.URLCreatedEvent]](i),
			logger,
		)
		handlers.RegisterRoutes(api, urlHandler)

		checkers := map[string]health.Checker{
			"database": do.MustInvoke[Store](i),
		}
		if options.RedisEnabled() {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))

		return api, nil
	})
}

// ConsumerGroupPackage provides the consumers that move stream events into the database.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		db := do.MustInvoke[Store](i)

		subscriber, err := messaging.NewRedisSubscriber(client.Client, ConsumerGroupName, logger)
		if err != nil {
			return nil, err
		}

		sink := analyticsstore.NewAccessLog(db, logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicURLAccessed, sink.SaveURLAccessed, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicURLCreated, sink.SaveURLCreated, logger))

		return group, nil
	})
}
