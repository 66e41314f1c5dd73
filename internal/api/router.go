package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sudmegaphone/backend/internal/account"
	"github.com/sudmegaphone/backend/internal/api/handlers"
	"github.com/sudmegaphone/backend/internal/api/middleware"
	"github.com/sudmegaphone/backend/internal/auth"
	"github.com/sudmegaphone/backend/internal/captcha"
	"github.com/sudmegaphone/backend/internal/client"
	"github.com/sudmegaphone/backend/internal/config"
	"github.com/sudmegaphone/backend/internal/contract"
	"github.com/sudmegaphone/backend/internal/ocr"
	"github.com/sudmegaphone/backend/internal/queue"
	"github.com/sudmegaphone/backend/internal/scan"
	"github.com/sudmegaphone/backend/internal/security"
	"github.com/sudmegaphone/backend/internal/storage"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	accounts := account.NewService(db)
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret, accounts),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))

	rl := middleware.NewRateLimiter(100, 200, "/healthz", "/readyz")
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	store := storage.NewSupabaseStore(rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey)
	queueClient := queue.NewClient(rt.cfg.Redis)

	gateway := ocr.NewGateway(rt.cfg.OCR)
	scanSvc := scan.NewService(rt.db, store, rt.cfg.Storage.ScansBucket, gateway)
	clientSvc := client.NewService(rt.db)
	contractSvc := contract.NewService(rt.db, store, rt.cfg.Storage.TemplatesBucket, clientSvc)
	securitySvc := security.NewService(rt.db)
	accounts := account.NewService(rt.db)

	verifier := captcha.NewVerifier(rt.cfg.Captcha.Secret, rt.cfg.Captcha.Action, rt.cfg.Captcha.VerifyURL, rt.cfg.Captcha.MinScore)
	settings := captcha.NewSettingsService(rt.db, rt.redis, rt.cfg.Captcha.CacheTTL)

	scanH := handlers.NewScanHandler(scanSvc, queueClient)
	clientH := handlers.NewClientHandler(clientSvc, verifier, settings, queueClient)
	templateH := handlers.NewTemplateHandler(contractSvc)
	contractH := handlers.NewContractHandler(contractSvc)
	captchaH := handlers.NewCaptchaHandler(verifier, settings, queueClient)
	eventH := handlers.NewEventHandler(securitySvc)
	userH := handlers.NewUserHandler(accounts)

	r.Route("/api/v1", func(r chi.Router) {
		// Traveler-facing routes, no JWT. The submit is gated on the
		// bot-protection check inside the handler.
		r.Group(func(r chi.Router) {
			r.Post("/public/clients", clientH.SubmitPublic)
			r.Post("/captcha/verify", captchaH.Verify)
			r.Get("/captcha/settings", captchaH.PublicSettings)
		})

		// Agent and admin routes.
		r.Group(func(r chi.Router) {
			r.Use(rt.jwt.Authenticate)

			r.Get("/me", userH.Me)

			r.Route("/scans", func(r chi.Router) {
				r.Post("/extract", scanH.Extract)
				r.Post("/", scanH.Create)
				r.Get("/{id}", scanH.Get)
				r.Get("/{id}/status", scanH.Status)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", clientH.Create)
				r.Get("/", clientH.List)
				r.Post("/merge", clientH.Merge)
				r.Get("/{id}", clientH.Get)
				r.Put("/{id}", clientH.Update)
				r.Delete("/{id}", clientH.Delete)
			})

			r.Get("/exports/clients.csv", clientH.ExportCSV)

			r.Get("/contracts/generate", contractH.Generate)
			r.Get("/templates", templateH.List)
			r.Get("/templates/{id}/mappings", templateH.ListMappings)

			// Template configuration and security review are admin-only.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Post("/templates", templateH.Upload)
				r.Delete("/templates/{id}", templateH.Delete)
				r.Put("/templates/{id}/mappings", templateH.SaveMappings)

				r.Get("/events", eventH.List)
				r.Get("/settings/security", captchaH.GetSettings)
				r.Put("/settings/security", captchaH.UpdateSettings)

				r.Get("/users", userH.List)
				r.Put("/users/{id}/role", userH.SetRole)
			})
		})
	})

	return r
}
