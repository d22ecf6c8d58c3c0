package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/ankigen/internal/api/middleware"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/task"
)

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(logger *slog.Logger, runner *task.Runner, svc *service.GenerationService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	handler := NewGenerateHandler(logger, runner, svc)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", handler.StartRun)
		r.Get("/runs/{id}", handler.GetRun)
		r.Get("/domains", handler.ListDomains)
		r.Get("/templates", handler.ListTemplates)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
