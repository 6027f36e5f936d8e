package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signflowhq/signflow-backend/api/controllers"
	"github.com/signflowhq/signflow-backend/api/middleware"
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
	"github.com/signflowhq/signflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	usersService users.Service,
	documentsService documents.Service,
	envelopesService envelopes.Service,
	userSignaturesService usersignatures.Service,
	notificationsService notifications.Service,
	auditService audit.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/users/me", controllers.UserMe(usersService, logg))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", controllers.DocumentUpload(documentsService, logg))
			r.Get("/", controllers.DocumentList(documentsService, logg))
			r.Get("/{documentId}", controllers.DocumentGet(documentsService, logg))
			r.Delete("/{documentId}", controllers.DocumentDelete(documentsService, logg))
		})

		r.Route("/envelopes", func(r chi.Router) {
			r.Post("/", controllers.EnvelopeCreate(envelopesService, logg))
			r.Get("/", controllers.EnvelopeList(envelopesService, logg))
			r.Get("/inbox", controllers.EnvelopeInbox(envelopesService, logg))
			r.Get("/{envelopeId}", controllers.EnvelopeGet(envelopesService, logg))
			r.Post("/{envelopeId}/send", controllers.EnvelopeSend(envelopesService, logg))
			r.Post("/{envelopeId}/reject", controllers.EnvelopeReject(envelopesService, logg))
			r.Post("/{envelopeId}/sign", controllers.EnvelopeSign(envelopesService, logg))
			r.Post("/{envelopeId}/decline", controllers.EnvelopeDecline(envelopesService, logg))
		})

		r.Route("/signatures", func(r chi.Router) {
			r.Post("/", controllers.UserSignatureCreate(userSignaturesService, logg))
			r.Get("/", controllers.UserSignatureList(userSignaturesService, logg))
			r.Get("/{signatureId}", controllers.UserSignatureGet(userSignaturesService, logg))
			r.Patch("/{signatureId}", controllers.UserSignatureUpdate(userSignaturesService, logg))
			r.Delete("/{signatureId}", controllers.UserSignatureDelete(userSignaturesService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/", controllers.AdminAuditList(auditService, logg))
		})
	})

	return r
}
