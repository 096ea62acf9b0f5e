package router

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/boardapi/internal/media"
	mw "github.com/itchan-dev/boardapi/internal/middleware"
	"github.com/itchan-dev/boardapi/internal/setup"
)

// New creates the chi router with all routes.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(mw.SecurityHeaders(cfg.HTTPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(cfg.CorsAllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", h.GetBoards)
			r.Post("/", h.CreateBoard)

			r.Route("/{board}", func(r chi.Router) {
				r.Get("/", h.GetBoard)
				r.Put("/", h.UpdateBoard)
				r.Delete("/", h.DeleteBoard)

				r.Get("/threads", h.GetThreads)
				r.Post("/threads", h.CreateThread)
				r.Get("/threads/{thread}", h.GetThread)
				r.Delete("/threads/{thread}", h.DeleteThread)
			})
		})
	})

	if deps.MediaRoot != "" {
		r.Get("/uploads/{kind}/{name}", serveMedia(deps.MediaRoot))
	}

	return r
}

// serveMedia serves stored images and thumbnails from the local media root.
// Directory listings and in-progress temp files are never exposed.
func serveMedia(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := media.Kind(chi.URLParam(r, "kind"))
		name := chi.URLParam(r, "name")
		if (kind != media.KindImage && kind != media.KindThumbnail) || media.CheckName(name) != nil || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		// stored files never change
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.ServeFile(w, r, filepath.Join(root, string(kind), name))
	}
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
