package main

import (
	"net/http"
	"time"

	"github.com/diewo77/invoice-editor/httpx"
	"github.com/diewo77/invoice-editor/i18n"
	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/form"
	"github.com/diewo77/invoice-editor/internal/handlers"
	"github.com/diewo77/invoice-editor/internal/logger"
	"github.com/diewo77/invoice-editor/internal/metrics"
	"github.com/diewo77/invoice-editor/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"gorm.io/gorm"
)

// AppDeps groups what the application handler is built from.
type AppDeps struct {
	DB         *gorm.DB
	Log        *logger.Logger
	Metrics    *metrics.Metrics
	Catalog    catalog.Source
	Forms      *form.Store
	RateLimit  int // API requests per IP and minute, 0 disables the limit
	Production bool

	// DefaultLang answers requests without any language preference.
	DefaultLang string
}

// App is the main application handler that sets up all routes.
type App struct {
	router chi.Router
	deps   AppDeps
}

// NewApp creates a new application with all routes configured.
func NewApp(deps AppDeps) *App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Forms == nil {
		deps.Forms = form.NewStore(2 * time.Hour)
	}
	if deps.DefaultLang == "" {
		deps.DefaultLang = i18n.DefaultLang
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewGormSource(deps.DB)
	}
	app := &App{router: chi.NewRouter(), deps: deps}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	d := a.deps
	invoices := services.NewInvoiceService(d.DB)
	ph := handlers.NewProductHandler(d.Catalog, d.Log)
	fh := handlers.NewFormHandler(d.Forms, d.Catalog, invoices, d.Metrics, d.Log)
	ih := handlers.NewInvoiceHandler(invoices, d.Log)

	r := a.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(d.Log.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders(d.Production, d.Log))
	r.Use(d.Metrics.Middleware)
	r.Use(withPreferences(i18n.Normalize(d.DefaultLang)))

	r.Get("/healthz", a.health)
	r.Handle("/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if d.RateLimit > 0 {
			r.Use(httprate.Limit(d.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}

		r.Get("/products", ph.List)

		r.Post("/forms", fh.Create)
		r.Route("/forms/{id}", func(r chi.Router) {
			r.Get("/", fh.Get)
			r.Patch("/", fh.Update)
			r.Post("/lines", fh.AddLine)
			r.Patch("/lines/{line}", fh.UpdateLine)
			r.Delete("/lines/{line}", fh.RemoveLine)
			r.Post("/submit", fh.Submit)
		})

		r.Get("/invoices/{id}", ih.View)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func secureHeaders(production bool, log *logger.Logger) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !production,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				log.Warn().Err(err).Msg("secure headers blocked request")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withPreferences injects the language preference from query, cookie or
// Accept-Language header.
func withPreferences(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := fallback
			if al := r.Header.Get("Accept-Language"); al != "" {
				lang = i18n.DetectLanguage(al)
			}
			if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
				lang = i18n.Normalize(c.Value)
			}
			if q := r.URL.Query().Get("lang"); q != "" {
				lang = i18n.Normalize(q)
				http.SetCookie(w, &http.Cookie{
					Name:     "lang",
					Value:    lang,
					Path:     "/",
					MaxAge:   86400 * 365,
					HttpOnly: true,
				})
			}
			next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Page handlers
// ─────────────────────────────────────────────────────────────────────────────

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.deps.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
