package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/mediatranslator/internal/api/handlers"
	"github.com/nikhilbhutani/mediatranslator/internal/api/middleware"
	"github.com/nikhilbhutani/mediatranslator/internal/config"
	"github.com/nikhilbhutani/mediatranslator/internal/result"
)

type Router struct {
	mux   *chi.Mux
	cfg   *config.Config
	proc  handlers.Processor
	store result.Store
	deps  map[string]handlers.Pinger
}

// NewRouter wires the HTTP surface. deps are checked by /readyz.
func NewRouter(cfg *config.Config, proc handlers.Processor, store result.Store, deps map[string]handlers.Pinger) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		cfg:   cfg,
		proc:  proc,
		store: store,
		deps:  deps,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	if rt.cfg.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigin))

	if rt.cfg.RateLimit.RPS > 0 {
		rl := middleware.NewRateLimiter(rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst)
		r.Use(rl.Limit)
	}

	health := handlers.NewHealthHandler(rt.deps)
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	mediaH := handlers.NewMediaHandler(rt.proc, rt.store, rt.cfg.MaxUploadBytes())
	r.Post("/upload", mediaH.Upload)
	r.Get("/get-data", mediaH.GetData)

	return r
}
