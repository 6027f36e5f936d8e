package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/signflowhq/signflow-backend/api/routes"
	"github.com/signflowhq/signflow-backend/internal/audit"
	"github.com/signflowhq/signflow-backend/internal/auth"
	"github.com/signflowhq/signflow-backend/internal/documents"
	"github.com/signflowhq/signflow-backend/internal/envelopes"
	"github.com/signflowhq/signflow-backend/internal/notifications"
	"github.com/signflowhq/signflow-backend/internal/users"
	"github.com/signflowhq/signflow-backend/internal/usersignatures"
	"github.com/signflowhq/signflow-backend/pkg/config"
	"github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/metrics"
	"github.com/signflowhq/signflow-backend/pkg/migrate"
	"github.com/signflowhq/signflow-backend/pkg/outbox"
	"github.com/signflowhq/signflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	auditRepo := audit.NewRepository(conn)
	recorder := audit.NewRecorder(auditRepo, logg)

	authService, err := auth.NewService(usersRepo, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	documentsService, err := documents.NewService(dbClient, documents.NewRepository(conn), recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create documents service", err)
		os.Exit(1)
	}
	userSignaturesService, err := usersignatures.NewService(dbClient, usersignatures.NewRepository(conn), recorder, cfg.Signatures)
	if err != nil {
		logg.Error(context.Background(), "failed to create user signatures service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}
	envelopesService, err := envelopes.NewService(envelopes.Deps{
		Client:         dbClient,
		Repo:           envelopes.NewRepository(conn),
		SignatureRepo:  envelopes.NewSignatureRepository(conn),
		Users:          usersRepo,
		Documents:      documents.NewRepository(conn),
		UserSignatures: usersignatures.NewRepository(conn),
		Events:         outbox.NewService(outbox.NewRepository(conn), logg),
		Notifier:       notifications.NewNotifier(notifications.NewRepository(conn), logg),
		Recorder:       recorder,
		Metrics:        metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create envelopes service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			usersService,
			documentsService,
			envelopesService,
			userSignaturesService,
			notificationsService,
			auditService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
