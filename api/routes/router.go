package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mealbridge/mealbridge-backend/api/controllers"
	"github.com/mealbridge/mealbridge-backend/api/middleware"
	"github.com/mealbridge/mealbridge-backend/internal/admin"
	"github.com/mealbridge/mealbridge-backend/internal/auth"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/media"
	"github.com/mealbridge/mealbridge-backend/internal/messages"
	"github.com/mealbridge/mealbridge-backend/internal/notify"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Nil optional fields turn
// the matching middleware or endpoint off, which keeps tests light.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Sessions session.Checker

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	// Readiness pings, keyed by dependency name.
	Readiness map[string]controllers.Pingable

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	DonationsSvc    donations.Service
	MessagesSvc     messages.Service
	NotifySvc       notify.Service
	MediaSvc        media.Service
	AdminSvc        admin.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// Typed-nil *redis.Client must not reach the middlewares as a live store.
	passthrough := func(next http.Handler) http.Handler { return next }
	rlLogin, rlRegister := passthrough, passthrough
	var idemStore redis.IdempotencyStore
	if d.Redis != nil {
		rlLogin = middleware.AuthRateLimit(loginPolicy, d.Redis, logg)
		rlRegister = middleware.AuthRateLimit(registerPolicy, d.Redis, logg)
		idemStore = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rlRegister).
			Post("/register", controllers.AuthRegister(d.RegisterService, d.AuthService, logg))
		r.With(rlLogin).
			Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(d.UsersService, logg))
			r.Patch("/", controllers.UpdateProfile(d.UsersService, logg))
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", controllers.ListDonations(d.DonationsSvc, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleDonor)).
				Post("/", controllers.CreateDonation(d.DonationsSvc, logg))
			r.Get("/{donationID}", controllers.GetDonation(d.DonationsSvc, logg))
			r.Post("/{donationID}/status", controllers.TransitionDonation(d.DonationsSvc, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.SendMessage(d.MessagesSvc, logg))
			r.Get("/unread-count", controllers.UnreadMessageCount(d.MessagesSvc, logg))
			r.Get("/{userID}", controllers.ListConversation(d.MessagesSvc, logg))
			r.Post("/{userID}/read", controllers.MarkConversationRead(d.MessagesSvc, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.NotifySvc, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(d.NotifySvc, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.NotifySvc, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/uploads", controllers.UploadMedia(d.MediaSvc, logg))
			r.Delete("/uploads/{uploadID}", controllers.DeleteMedia(d.MediaSvc, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(d.AdminSvc, logg))
			r.Patch("/{userID}/active", controllers.AdminSetUserActive(d.AdminSvc, logg))
		})
		r.Get("/reports/donations", controllers.AdminDonationReport(d.AdminSvc, logg))
	})

	return r
}
