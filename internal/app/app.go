package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/PixelVault/config"
	kafkactrl "github.com/andreyxaxa/PixelVault/internal/controller/kafka"
	"github.com/andreyxaxa/PixelVault/internal/controller/restapi"
	"github.com/andreyxaxa/PixelVault/internal/controller/restapi/middleware"
	"github.com/andreyxaxa/PixelVault/internal/controller/worker/outbox"
	infrakafka "github.com/andreyxaxa/PixelVault/internal/infrastructure/kafka"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/processor"
	"github.com/andreyxaxa/PixelVault/internal/repo/persistent"
	"github.com/andreyxaxa/PixelVault/internal/usecase/auth"
	"github.com/andreyxaxa/PixelVault/internal/usecase/derivative"
	"github.com/andreyxaxa/PixelVault/internal/usecase/image"
	"github.com/andreyxaxa/PixelVault/internal/usecase/rendition"
	"github.com/andreyxaxa/PixelVault/migrations"
	"github.com/andreyxaxa/PixelVault/pkg/httpserver"
	"github.com/andreyxaxa/PixelVault/pkg/idcodec"
	"github.com/andreyxaxa/PixelVault/pkg/kafka/consumer"
	"github.com/andreyxaxa/PixelVault/pkg/kafka/producer"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/andreyxaxa/PixelVault/pkg/postgres"
	"github.com/andreyxaxa/PixelVault/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Region(cfg.S3.Region),
		s3client.UsePathStyle(cfg.S3.UsePathStyle),
		s3client.ConnAttempts(cfg.S3.ConnAttempts),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	err = s3c.EnsureBucket(s3Ctx, cfg.S3.Bucket)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3c.EnsureBucket: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	if cfg.PG.AutoMigrate {
		err = pg.Migrate(migrations.FS)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - pg.Migrate: %w", err))
		}
	}

	blobRepo := persistent.NewBlobRepo(s3c, cfg.S3.Bucket)
	imageRecordRepo := persistent.NewImageRecordRepo(pg)

	// Identifier codec
	codecOpts := []idcodec.Option{idcodec.MinLength(cfg.IDCodec.MinLength)}
	if cfg.IDCodec.Alphabet != "" {
		codecOpts = append(codecOpts, idcodec.Alphabet(cfg.IDCodec.Alphabet))
	}
	codec, err := idcodec.New(cfg.IDCodec.Salt, codecOpts...)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - idcodec.New: %w", err))
	}

	// Derivative generator
	generator := derivative.New(
		processor.New(),
		derivative.ThumbnailSize(cfg.Image.ThumbnailSize),
		derivative.ThumbnailQuality(cfg.Image.ThumbnailQuality),
		derivative.FullQuality(cfg.Image.FullQuality),
		derivative.FullMaxDim(cfg.Image.FullMaxDim),
		derivative.PlaceholderGrid(cfg.Image.PlaceholderGrid),
		derivative.PlaceholderComponents(cfg.Image.PlaceholderComponentX, cfg.Image.PlaceholderComponentY),
	)

	// Use-Case
	imageUseCase := image.New(
		blobRepo,
		imageRecordRepo,
		persistent.NewOutboxRepo(pg),
		pg,
		generator,
		codec,
		l,
	)
	authUseCase := auth.New(persistent.NewSessionRepo(pg))
	renditionUseCase := rendition.New(blobRepo, imageRecordRepo, generator, codec, l,
		rendition.WithSessions(authUseCase))

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelay := outbox.New(
		imageUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		outbox.Config{
			PollInterval:        cfg.OutboxRelay.PollInterval,
			MarkFailedInterval:  cfg.OutboxRelay.MarkFailedInterval,
			CleanupInterval:     cfg.OutboxRelay.CleanupInterval,
			ProcessBatchTimeout: cfg.OutboxRelay.ProcessBatchTimeout,
			BatchSize:           cfg.OutboxRelay.BatchSize,
			MaxRetries:          cfg.OutboxRelay.MaxRetries,
		},
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	workers := cfg.KafkaController.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		imageUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		kafkactrl.Config{
			CommitTimeout:  cfg.KafkaController.CommitTimeout,
			ProcessTimeout: cfg.KafkaController.ProcessTimeout,
			Workers:        workers,
			RetryAttempts:  cfg.KafkaController.RetryAttempts,
			RetryBackoff:   cfg.KafkaController.RetryBackoff,
			MaxRequeues:    cfg.KafkaController.MaxRequeues,
			ReadBackoff:    cfg.KafkaController.ReadBackoff,
		},
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.AppName(cfg.App.Name+" "+cfg.App.Version),
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		// multipart framing on top of the largest accepted file
		httpserver.BodyLimit(int(cfg.Image.MaxUploadSize)+64*1024),
		httpserver.ErrorHandler(middleware.ErrorHandler),
	)
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, renditionUseCase, authUseCase, l)

	// Start Components
	err = outboxRelay.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelay.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelay.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelay.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
