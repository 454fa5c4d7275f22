package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pagequeue/internal/api"
	apiMiddleware "github.com/phrazzld/pagequeue/internal/api/middleware"
	"golang.org/x/time/rate"
)

// setupRouter creates the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	messageHandler := api.NewMessageHandler(app.router)
	queryHandler := api.NewQueryHandler(app.pageStore, app.taskStore)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if secret := app.config.Auth.IngestSecret; secret != "" {
				r.Use(apiMiddleware.IngestAuth(secret))
			}
			if limit := app.config.Server.IngestRate; limit > 0 {
				r.Use(apiMiddleware.RateLimit(rate.NewLimiter(rate.Limit(limit), app.config.Server.IngestBurst)))
			}
			r.Post("/messages", messageHandler.HandleMessage)
		})

		r.Get("/pages", queryHandler.GetPage)
		r.Get("/tasks", queryHandler.ListTasks)
		r.Get("/tasks/{id}", queryHandler.GetTask)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
