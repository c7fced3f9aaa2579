package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/infinityvet/infinityvet/internal/api/handlers"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/auth"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/theme"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AsynqClient    *asynq.Client
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	themeService := theme.NewService(cfg.DB, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	orgHandler := handlers.NewOrganizationHandler(cfg.DB)
	themeHandler := handlers.NewThemeHandler(themeService)
	animalHandler := handlers.NewAnimalHandler(cfg.DB)
	vaccinationHandler := handlers.NewVaccinationHandler(cfg.DB)
	productHandler := handlers.NewProductHandler(cfg.DB)
	lotHandler := handlers.NewLotHandler(cfg.DB)
	eventHandler := handlers.NewEventHandler(cfg.DB)
	performanceHandler := handlers.NewPerformanceHandler(cfg.DB)
	teamHandler := handlers.NewTeamHandler(cfg.DB)
	notificationHandler := handlers.NewNotificationHandler(cfg.DB, cfg.AsynqClient)
	reminderHandler := handlers.NewReminderHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Theme read is public: the login screen is themed before any
		// session exists.
		r.Get("/theme", themeHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// Session composite
			r.Get("/me", authHandler.Me)

			// Setup wizard: reachable before an organization exists
			r.Post("/organizations", orgHandler.Create)

			// Global theme administration
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleSuperadmin))
				r.Post("/theme", themeHandler.Create)
				r.Put("/theme", themeHandler.Update)
			})

			// Tenant-scoped routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOrganization)

				r.Route("/organizations/current", func(r chi.Router) {
					r.Get("/", orgHandler.Current)
					r.With(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin)).
						Put("/plan", orgHandler.ChangePlan)
				})

				r.Route("/animals", func(r chi.Router) {
					r.Get("/", animalHandler.List)
					r.Post("/", animalHandler.Create)
					r.Get("/{id}", animalHandler.Get)
					r.Put("/{id}", animalHandler.Update)
					r.Delete("/{id}", animalHandler.Delete)
					r.Get("/{id}/card", animalHandler.Card)
				})

				r.Route("/vaccinations", func(r chi.Router) {
					r.Get("/", vaccinationHandler.List)
					r.Post("/", vaccinationHandler.Create)
					r.Get("/{id}", vaccinationHandler.Get)
					r.Put("/{id}", vaccinationHandler.Update)
					r.Delete("/{id}", vaccinationHandler.Delete)
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", productHandler.List)
					r.Post("/", productHandler.Create)
					r.Get("/{id}", productHandler.Get)
					r.Put("/{id}", productHandler.Update)
					r.Delete("/{id}", productHandler.Delete)
				})

				r.Route("/lots", func(r chi.Router) {
					r.Get("/", lotHandler.List)
					r.Post("/", lotHandler.Create)
					r.Get("/{id}", lotHandler.Get)
					r.Put("/{id}", lotHandler.Update)
					r.Delete("/{id}", lotHandler.Delete)
				})

				r.Route("/events", func(r chi.Router) {
					r.Get("/", eventHandler.List)
					r.Post("/", eventHandler.Create)
					r.Get("/{id}", eventHandler.Get)
					r.Put("/{id}", eventHandler.Update)
					r.Delete("/{id}", eventHandler.Delete)
				})

				r.Route("/performance-tests", func(r chi.Router) {
					r.Get("/", performanceHandler.List)
					r.Post("/", performanceHandler.Create)
					r.Get("/{id}", performanceHandler.Get)
					r.Put("/{id}", performanceHandler.Update)
					r.Delete("/{id}", performanceHandler.Delete)
				})

				r.Route("/team", func(r chi.Router) {
					r.Get("/", teamHandler.List)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
						r.Post("/", teamHandler.Invite)
						r.Put("/{id}", teamHandler.Update)
						r.Delete("/{id}", teamHandler.Remove)
					})
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", notificationHandler.List)
					r.Get("/summary", notificationHandler.Summary)
					r.Put("/read-all", notificationHandler.MarkAllRead)
					r.Put("/{id}/read", notificationHandler.MarkRead)
					r.Delete("/{id}", notificationHandler.Delete)
					r.With(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin)).
						Post("/sweep", notificationHandler.Sweep)
				})

				r.Route("/reminders", func(r chi.Router) {
					r.Get("/", reminderHandler.List)
					r.Post("/", reminderHandler.Create)
					r.Put("/{id}", reminderHandler.Update)
					r.Delete("/{id}", reminderHandler.Delete)
				})
			})
		})
	})

	return &Router{r}
}
