package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the router.
//
//	POST /api/v1/auth/login             public, form-encoded
//	POST /api/v1/auth/register          admin
//	GET  /api/v1/auth/users             admin
//	POST /api/v1/scrape                 authenticated
//	GET  /api/v1/pages                  authenticated
//	GET  /api/v1/admin/stats            admin
//	GET  /api/v1/admin/recent-analyses  admin
//	GET  /health, /api/health, /metrics public
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logging(s.log))
	r.Use(Recover(s.log))

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.Health)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth/login", s.Login)

			r.Group(func(r chi.Router) {
				r.Use(Auth(s.auth))
				r.Post("/scrape", s.Scrape)
				r.Get("/pages", s.Pages)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Post("/auth/register", s.Register)
					r.Get("/auth/users", s.ListUsers)
					r.Get("/admin/stats", s.Stats)
					r.Get("/admin/recent-analyses", s.Recent)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}
