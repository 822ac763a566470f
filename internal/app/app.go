package app

import (
	"ClassBridge/internal/app/server"
	"ClassBridge/internal/config"
	"ClassBridge/internal/delivery/http"
	"ClassBridge/internal/notifier"
	"ClassBridge/internal/service"
	"ClassBridge/internal/service/assignment"
	"ClassBridge/internal/service/auth"
	"ClassBridge/internal/service/course"
	"ClassBridge/internal/service/enrollment"
	"ClassBridge/internal/service/submission"
	"ClassBridge/internal/service/user"
	"ClassBridge/internal/storage/elastic"
	"ClassBridge/internal/storage/minio_storage"
	"ClassBridge/internal/storage/postgres"
	"ClassBridge/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	attachments, err := minio_storage.NewAttachmentStorage(
		cfg.Minio.Endpoint,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
		cfg.Minio.Bucket,
		cfg.Minio.PresignTTL,
	)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error creating search index", err)
	}

	// Events are best-effort: when the broker is unreachable the app starts
	// anyway and drops them.
	var events notifier.Notifier
	amqpNotifier, err := notifier.NewAMQPNotifier(
		log,
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.Queue,
		cfg.RabbitMQ.Buffer,
	)
	if err != nil {
		log.ErrorErr("RabbitMQ unavailable, domain events disabled", err)
		events = notifier.Noop{}
	} else {
		events = amqpNotifier
		defer amqpNotifier.Close()
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)
	assignmentRepo := postgres.NewAssignmentPostgres(pg.Pool)
	submissionRepo := postgres.NewSubmissionPostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "classbridge", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	u := service.Collection{
		Auth:        auth.NewAuthService(log, jwtManager, userRepo, tokenRepo),
		Users:       user.NewService(log, userRepo),
		Courses:     course.NewService(log, courseRepo, userRepo, enrollmentRepo, searchRepo, events),
		Enrollments: enrollment.NewLedgerService(log, courseRepo, userRepo, enrollmentRepo, events),
		Assignments: assignment.NewCatalogService(log, courseRepo, enrollmentRepo, assignmentRepo, userRepo, attachments, events),
		Submissions: submission.NewWorkflowService(log, assignmentRepo, enrollmentRepo, submissionRepo, userRepo, attachments, events),
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("HTTP server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
