package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/command"
	v1Grpc "github.com/DRSN-tech/feedconv/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/feedconv/internal/delivery/v1/http"
	"github.com/DRSN-tech/feedconv/internal/infrastructure/baselinker"
	"github.com/DRSN-tech/feedconv/internal/infrastructure/fetcher"
	"github.com/DRSN-tech/feedconv/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/feedconv/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/feedconv/internal/repository/minio"
	"github.com/DRSN-tech/feedconv/internal/repository/pgdb"
	"github.com/DRSN-tech/feedconv/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/feedconv/internal/repository/redis"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/clients"
	"github.com/DRSN-tech/feedconv/pkg/closer"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/DRSN-tech/feedconv/pkg/postgres"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout   = 10 * time.Second
	infraInitTimeout  = 10 * time.Second
	topicInitTimeout  = 10 * time.Second
	cleanupWaitBudget = 5 * time.Second
)

// App владеет серверами и необязательной инфраструктурой.
type App struct {
	cfg    *cfg.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker

	// отменяется при остановке, прерывает фоновую очистку выгрузок
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// storage — необязательная инфраструктура журнала запусков. Нулевые поля отключают функцию.
type storage struct {
	db         *postgres.PgDatabase
	runRepo    usecase.RunRepository
	outboxRepo usecase.OutboxRepository
	encoder    usecase.EventEncoder
	archive    usecase.ExportArchive
	producer   *kafka.Producer
}

func NewApp(cfg *cfg.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0, log),
	}
	a.shutdownCtx, a.shutdownCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			log.Warnf("cleanup after failed init: %v", cerr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	st, health, err := a.initStorage()
	if err != nil {
		return err
	}

	limiter, err := a.initLimiter(health)
	if err != nil {
		return err
	}

	converterUC := usecase.NewConverterUC(
		a.cfg.Suppliers,
		fetcher.NewHTTPFetcher(a.cfg.Feed),
		st.runRepo,
		st.outboxRepo,
		st.encoder,
		transactional(st.db),
		st.archive,
		a.logger,
	)
	commandUC := usecase.NewCommandUC(
		command.NewTranslator(a.cfg.BaseLinker.InventoryID),
		baselinker.NewClient(a.cfg.BaseLinker, limiter, a.logger),
		a.logger,
	)
	authUC := usecase.NewAuthUC(a.cfg.Auth)
	if !authUC.Enabled() {
		a.logger.Warnf("APP_PASSWORD is empty, API is open without login")
	}

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, authUC, a.logger)
	a.grpcSrv.RegisterServices(commandUC)

	mux := chi.NewRouter()
	router := v1Http.NewRouter(mux, v1Http.NewMetrics(), a.logger)
	router.Init(v1Http.Deps{
		Converter:      converterUC,
		Commands:       commandUC,
		Auth:           authUC,
		UploadMaxBytes: a.cfg.Feed.UploadMaxBytes,
		CORSOrigins:    a.cfg.Http.CORSAllowedOrigins,
		Health:         health,
	})
	a.httpSrv = v1Http.NewServer(mux, a.cfg.Http)

	if st.producer != nil {
		a.worker = kafka.NewOutboxWorker(st.outboxRepo, a.logger, st.producer, st.db.Dsn)
	}

	return nil
}

// initStorage поднимает Postgres, MinIO и Kafka, если они настроены.
func (a *App) initStorage() (*storage, map[string]v1Http.HealthFunc, error) {
	st := &storage{}
	health := map[string]v1Http.HealthFunc{}

	if a.cfg.Db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), infraInitTimeout)
		db, err := postgres.Connect(ctx, a.cfg.Db)
		cancel()
		if err != nil {
			a.logger.Errorf(err, "failed to connect to database")
			return nil, nil, err
		}
		a.closer.Add("postgres", func(context.Context) error {
			db.Close()
			return nil
		})

		if err := db.RunMigrations(a.logger); err != nil {
			a.logger.Errorf(err, "failed to run migrations")
			return nil, nil, err
		}

		st.db = db
		st.runRepo = pgdb.NewRunRepo(db.Pool, &converter.RunConverterImpl{})
		health["postgres"] = func(r *http.Request) error { return db.Ping(r.Context()) }
		a.logger.Infof("conversion history enabled")
	} else {
		a.logger.Infof("POSTGRES_DB is not set, conversion history disabled")
	}

	if a.cfg.Minio != nil && st.db != nil {
		mc, err := clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize minio client")
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), infraInitTimeout)
		err = clients.EnsureBucket(ctx, mc, a.cfg.Minio.BucketName)
		cancel()
		if err != nil {
			a.logger.Errorf(err, "failed to initialize MinIO bucket")
			return nil, nil, err
		}

		exports := minioInfra.NewExportInfrastructure(
			s3Repo.NewExportRepo(mc, a.cfg.Minio), a.cfg.Minio.BucketName, a.logger, a.shutdownCtx,
		)
		st.archive = exports
		a.closer.Add("export cleanup", func(ctx context.Context) error {
			wctx, cancel := context.WithTimeout(ctx, cleanupWaitBudget)
			defer cancel()
			if err := exports.WaitForCleanup(wctx); err != nil {
				a.logger.Warnf("export cleanup did not finish before shutdown, some objects may remain: %v", err)
			}
			return nil
		})
		health["minio"] = func(r *http.Request) error {
			_, err := mc.BucketExists(r.Context(), a.cfg.Minio.BucketName)
			return err
		}
		a.logger.Infof("export archive enabled, bucket %s", a.cfg.Minio.BucketName)
	} else if a.cfg.Minio != nil {
		a.logger.Warnf("MinIO is configured without Postgres, export archive disabled")
	}

	if a.cfg.Kafka != nil && st.db != nil {
		producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
		a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

		if err := producer.EnsureTopic(topicInitTimeout); err != nil {
			a.logger.Errorf(err, "failed to ensure kafka topic")
			return nil, nil, err
		}

		st.producer = producer
		st.encoder = producer
		st.outboxRepo = pgdb.NewOutboxEventRepo(st.db.Pool, &converter.OutboxEventConverterImpl{})
		a.logger.Infof("run events enabled, topic %s", a.cfg.Kafka.Topic)
	}

	return st, health, nil
}

// initLimiter возвращает общий лимитер BaseLinker через Redis или локальный, если Redis не настроен.
func (a *App) initLimiter(health map[string]v1Http.HealthFunc) (baselinker.Limiter, error) {
	local := baselinker.NewLocalLimiter(a.cfg.BaseLinker.RatePerMinute)
	if a.cfg.Redis == nil {
		return local, nil
	}

	client := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), infraInitTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return nil, err
	}
	health["redis"] = func(r *http.Request) error { return client.Ping(r.Context()) }

	return redis.NewRateLimitRepo(
		client, a.cfg.Redis, "baselinker", a.cfg.BaseLinker.RatePerMinute, time.Minute, local, a.logger,
	), nil
}

// Run запускает серверы и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	if a.worker != nil {
		a.worker.Start(a.shutdownCtx)
		a.closer.Add("outbox worker", func(context.Context) error {
			a.worker.Stop()
			return nil
		})
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(ctx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(ctx); err != nil {
		a.logger.Warnf("gRPC server shutdown: %v", err)
	}

	a.shutdownCancel()
	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "resources shutdown")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// transactional не допускает типизированного nil в интерфейсе при выключенном Postgres.
func transactional(db *postgres.PgDatabase) transaction.Transactional {
	if db == nil {
		return nil
	}
	return db.Pool
}
