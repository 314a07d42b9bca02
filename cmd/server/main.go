package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"catalog-service/internal/config"
	"catalog-service/internal/controller"
	"catalog-service/internal/logger"
	"catalog-service/internal/rabbit"
	"catalog-service/internal/repository"
	"catalog-service/internal/service"
	"catalog-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("could not load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("could not build logger")
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Conexión a MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDBName)

	// Imágenes
	images, err := storage.OpenBlobImageStore(ctx, cfg.ImageBucketURL, cfg.ImageMaxSide)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open image bucket")
	}
	defer images.Close()

	// RabbitMQ es opcional: sin URL no se publican ni consumen eventos.
	var events service.EventPublisher
	var ch *amqp091.Channel
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to RabbitMQ")
		}
		defer conn.Close()

		ch, err = conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open RabbitMQ channel")
		}
		pub, err := rabbit.NewPublisher(ch)
		if err != nil {
			log.Fatal().Err(err).Msg("could not set up catalog publisher")
		}
		events = pub
	} else {
		log.Warn().Msg("CATALOG_RABBIT_URL not set, messaging disabled")
	}

	// Repositorios y servicios
	catalog := service.NewCatalogService(service.Repositories{
		Products: repository.NewMongoProductRepository(db),
		Users:    repository.NewMongoUserRepository(db),
		Orders:   repository.NewMongoOrderRepository(db),
		Reviews:  repository.NewMongoReviewRepository(db),
		Tx:       repository.NewMongoTransactor(client, cfg.MongoTransactions),
	}, images, events, log, cfg.PageSize)
	authService := service.NewAuthService(cfg.AuthURL)

	if ch != nil {
		if err := rabbit.SetupConsumers(ctx, ch, catalog, log); err != nil {
			log.Fatal().Err(err).Msg("could not set up RabbitMQ consumers")
		}
	}

	// Router
	r := controller.NewRouter(controller.RouterConfig{
		Products: controller.NewProductController(catalog, images),
		Sessions: controller.NewSessionController(),
		Health: controller.NewHealthController(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
		Auth:          authService,
		SessionSecret: cfg.SessionSecret,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("catalog service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
