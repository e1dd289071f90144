package main

import (
	"excaliapp/core"
	"excaliapp/handlers/api/drawings"
	"excaliapp/handlers/auth"
	"excaliapp/metrics"
	appMiddleware "excaliapp/middleware"
	"excaliapp/realtime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

type routerDeps struct {
	repo         core.DrawingRepository
	introspector auth.Introspector
	metrics      *metrics.Metrics
	hub          *realtime.Hub
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, appMiddleware.Message("Method not allowed."))
}

func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.Logger)
	r.Use(appMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
		// Preflight below answers OPTIONS itself.
		OptionsPassthrough: true,
	}))
	r.Use(appMiddleware.Preflight)
	if deps.metrics != nil {
		r.Use(deps.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())
	}

	r.NotFound(methodNotAllowed)
	r.MethodNotAllowed(methodNotAllowed)

	var notifier drawings.Notifier
	if deps.hub != nil {
		notifier = deps.hub
		r.Mount("/socket.io/", deps.hub.Handler())
	}

	// engine.io needs the trailing slash of /socket.io/, so only /api strips it.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.StripSlashes)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]string{
				"status":  "ok",
				"message": "Excalidraw API is healthy.",
			})
		})
		r.Get("/testing", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, appMiddleware.Message("Excalidraw API is working."))
		})

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Introspect(deps.introspector))
			r.Route("/drawings", func(r chi.Router) {
				r.Get("/", drawings.HandleList(deps.repo))
				r.Put("/", drawings.HandleSave(deps.repo, notifier))
				r.Get("/{id}", drawings.HandleGet(deps.repo))
				r.Delete("/{id}", drawings.HandleDelete(deps.repo, notifier))
			})
		})
	})

	return r
}
