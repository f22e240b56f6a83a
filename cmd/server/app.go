package main

import (
	"net/http"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/internal/config"
	"github.com/diewo77/jobboard/internal/handlers"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/internal/middleware"
	"github.com/diewo77/jobboard/internal/policy"
	"github.com/diewo77/jobboard/internal/services"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig holds everything the routes need.
type RouterConfig struct {
	AuthGate    *policy.AuthGate
	Issuer      *auth.Issuer
	AuthLimiter *middleware.RateLimiter
	CORSOrigins []string
	ServiceName string

	AuthHandler    *handlers.AuthHandler
	JobHandler     *handlers.JobHandler
	SavedHandler   *handlers.SavedHandler
	ProfileHandler *handlers.ProfileHandler
	AdminHandler   *handlers.AdminHandler
	HealthHandler  *handlers.HealthHandler
}

// NewRouterConfig builds services and handlers over st.
func NewRouterConfig(cfg *config.Config, st store.Store, ev services.Events, up media.Uploader) *RouterConfig {
	ag := policy.NewAuthGate(st, cfg.Auth.RoleCacheTTL)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return &RouterConfig{
		AuthGate:    ag,
		Issuer:      issuer,
		AuthLimiter: middleware.NewRateLimiter(cfg.Server.AuthRateLimit),
		CORSOrigins: cfg.Server.CORSOrigins,
		ServiceName: cfg.Tracing.ServiceName,

		AuthHandler:    handlers.NewAuthHandler(services.NewAuthService(st, issuer, ag)),
		JobHandler:     handlers.NewJobHandler(services.NewJobService(st, ag, ev)),
		SavedHandler:   handlers.NewSavedHandler(services.NewSavedService(st, st)),
		ProfileHandler: handlers.NewProfileHandler(services.NewProfileService(st, up), cfg.Media.MaxUploadBytes),
		AdminHandler:   handlers.NewAdminHandler(services.NewAdminService(st, ag)),
		HealthHandler:  handlers.NewHealthHandler(st),
	}
}

// App is the HTTP entry point.
type App struct {
	mux       *http.ServeMux
	routerCfg *RouterConfig
	handler   http.Handler
}

func NewApp(routerCfg *RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   routerCfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	app.handler = middleware.Chain(app.mux,
		middleware.Recover,
		middleware.Logging,
		c.Handler,
		func(h http.Handler) http.Handler { return otelhttp.NewHandler(h, routerCfg.ServiceName) },
		auth.Middleware(routerCfg.Issuer),
	)
	return app
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	rc := a.routerCfg

	// Public
	hh := rc.HealthHandler
	a.mux.HandleFunc("GET /health", hh.Health)
	a.mux.HandleFunc("GET /healthz", hh.Ready)

	ah := rc.AuthHandler
	a.mux.Handle("POST /api/auth/register", rc.AuthLimiter.Limit(http.HandlerFunc(ah.Register)))
	a.mux.Handle("POST /api/auth/login", rc.AuthLimiter.Limit(http.HandlerFunc(ah.Login)))
	a.mux.Handle("PATCH /api/auth/update-role", a.requireUser(http.HandlerFunc(ah.UpdateRole)))

	// Jobs
	jh := rc.JobHandler
	a.mux.HandleFunc("GET /api/jobs", jh.List)
	a.mux.HandleFunc("GET /api/jobs/{id}", jh.Get)
	a.mux.Handle("GET /api/jobs/user",
		a.requirePermission(policy.ResourceJob, gate.ActionManage)(http.HandlerFunc(jh.OwnerJobs)))
	a.mux.Handle("POST /api/jobs",
		a.requirePermission(policy.ResourceJob, gate.ActionCreate)(http.HandlerFunc(jh.Create)))
	a.mux.Handle("PUT /api/jobs/{id}",
		a.requirePermission(policy.ResourceJob, gate.ActionUpdate)(http.HandlerFunc(jh.Update)))
	a.mux.Handle("DELETE /api/jobs/{id}",
		a.requirePermission(policy.ResourceJob, gate.ActionDelete)(http.HandlerFunc(jh.Delete)))
	a.mux.Handle("POST /api/jobs/apply/{jobId}",
		a.requirePermission(policy.ResourceJob, policy.ActionApply)(http.HandlerFunc(jh.Apply)))
	a.mux.Handle("GET /api/jobs/myApplications",
		a.requirePermission(policy.ResourceApplication, gate.ActionList)(http.HandlerFunc(jh.MyApplications)))
	a.mux.Handle("GET /api/jobs/{jobId}/applicants",
		a.requirePermission(policy.ResourceJob, policy.ActionApplicants)(http.HandlerFunc(jh.Applicants)))

	// Saved jobs
	sh := rc.SavedHandler
	a.mux.Handle("POST /api/user/save-job/{jobId}",
		a.requirePermission(policy.ResourceJob, policy.ActionSave)(http.HandlerFunc(sh.Toggle)))
	a.mux.Handle("GET /api/user/saved-jobs",
		a.requirePermission(policy.ResourceSaved, gate.ActionList)(http.HandlerFunc(sh.List)))

	// Profile
	ph := rc.ProfileHandler
	a.mux.Handle("GET /api/profile/me", a.requireUser(http.HandlerFunc(ph.Me)))
	a.mux.Handle("PUT /api/profile/me", a.requireUser(http.HandlerFunc(ph.Update)))
	a.mux.Handle("GET /api/profile/{id}", a.requireUser(http.HandlerFunc(ph.Public)))

	// Admin
	adh := rc.AdminHandler
	a.mux.Handle("GET /api/admin/users", a.requireAdmin(http.HandlerFunc(adh.Users)))
	a.mux.Handle("DELETE /api/admin/users/{id}", a.requireAdmin(http.HandlerFunc(adh.DeleteUser)))
	a.mux.Handle("GET /api/admin/jobs", a.requireAdmin(http.HandlerFunc(adh.Jobs)))
	a.mux.Handle("DELETE /api/admin/jobs/{id}", a.requireAdmin(http.HandlerFunc(adh.DeleteJob)))
	a.mux.Handle("GET /api/admin/stats", a.requireAdmin(http.HandlerFunc(adh.Stats)))
}

// requireUser rejects requests without a token or whose user is gone.
func (a *App) requireUser(next http.Handler) http.Handler {
	return auth.RequireAuth(a.routerCfg.AuthGate.RequireUser(next))
}

func (a *App) requireAdmin(next http.Handler) http.Handler {
	return auth.RequireAuth(a.routerCfg.AuthGate.RequireAdmin()(next))
}

func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return auth.RequireAuth(a.routerCfg.AuthGate.RequirePermission(resourceType, action)(next))
	}
}
