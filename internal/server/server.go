package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tryonstudio/internal/studio"
)

// New constructs the HTTP server with routes and middleware.
func New(port string, studioHandler studio.Handler) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/tryon", func(r chi.Router) {
			r.Post("/generate", studioHandler.Generate)
			r.Post("/edit", studioHandler.Edit)
			r.Get("/modifiers", studioHandler.Modifiers)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", studioHandler.ListRuns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", studioHandler.GetRun)
				r.Delete("/", studioHandler.DeleteRun)
			})
		})
		r.Get("/events", studioHandler.StreamEvents)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Generation runs and the event stream outlive any fixed write
		// deadline.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	log.Println("server ready on", srv.Addr)
	return srv
}
