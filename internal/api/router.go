package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/api/handlers"
	mw "github.com/wachplan-io/wachplan/internal/api/middleware"
	"github.com/wachplan-io/wachplan/internal/buildconfig"
	"github.com/wachplan-io/wachplan/internal/config"
	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/service"
	"github.com/wachplan-io/wachplan/internal/store"
	"go.uber.org/zap"
)

// App holds the router plus request metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	employeeStore := store.NewEmployeeStore(db)
	legacyStore := store.NewLegacyEmployeeStore(db)
	moduleStore := store.NewModuleStore(db)
	overrideStore := store.NewOverrideStore(db)

	platformDomain := config.PlatformDomain()
	codec := service.PseudoCredentials{Domain: platformDomain}

	// Services
	elevation := service.NewElevationPolicy(tenantStore, logger)
	identitySvc := service.NewIdentityService(employeeStore, legacyStore, elevation, config.StoreTimeout(), logger)
	entitlementSvc := service.NewEntitlementService(moduleStore, overrideStore, config.CatalogTTL(), logger)
	employeeSvc := service.NewEmployeeService(employeeStore, tenantStore, codec, logger)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(identitySvc, entitlementSvc, platformDomain)
	tenantHandler := handlers.NewTenantHandler(tenantStore)
	employeeHandler := handlers.NewEmployeeHandler(employeeSvc)
	moduleAdminHandler := handlers.NewModuleAdminHandler(entitlementSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Session surface: identity arrives pre-verified from the gateway.
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.GatewayAuth(config.GatewaySecret()))
			r.Get("/session", sessionHandler.Get)
			r.Get("/modules", sessionHandler.Modules)
		})

		// Platform administration
		r.Group(func(r chi.Router) {
			r.Use(mw.AdminKeyAuth(config.AdminAPIKey()))

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", tenantHandler.Create)
				r.Get("/", tenantHandler.List)
				r.Route("/{tenantID}/modules", func(r chi.Router) {
					r.Get("/", moduleAdminHandler.ListOverrides)
					r.Put("/{moduleID}", moduleAdminHandler.SetOverride)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Post("/", employeeHandler.Create)
				r.Get("/{id}", employeeHandler.GetByID)
				r.Patch("/{id}", employeeHandler.Update)
			})
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"version":        buildconfig.Version(),
			"commit":         buildconfig.Commit(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.TenantStore         = (*store.TenantStore)(nil)
	_ domain.EmployeeStore       = (*store.EmployeeStore)(nil)
	_ domain.LegacyEmployeeStore = (*store.LegacyEmployeeStore)(nil)
	_ domain.ModuleStore         = (*store.ModuleStore)(nil)
	_ domain.OverrideStore       = (*store.OverrideStore)(nil)
)
