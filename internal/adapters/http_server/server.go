package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

func New() *Server {
	m := chi.NewRouter()

	// all middlewares go before any routes are added
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// MountSite attaches the HTML pages, login and the dashboard.
func (s *Server) MountSite(site *Site) {
	s.mux.Get("/", site.home)
	s.mux.Get("/vacancies", site.vacancies)
	s.mux.Get("/lodging/{id}", site.lodging)
	s.mux.Get("/map", site.mapPage)
	s.mux.Get("/activities", site.activities)
	s.mux.Get("/contact", site.contactForm)
	s.mux.With(RateLimit(site.contactRPS, 3)).Post("/contact", site.contactSubmit)

	s.mux.Get("/login", site.loginForm)
	s.mux.With(RateLimit(site.loginRPS, 5)).Post("/login", site.loginSubmit)
	s.mux.Post("/logout", site.logout)

	auth := site.sessions.Require
	s.mux.Route("/dashboard", func(r chi.Router) {
		r.Get("/", auth(site.dashboard))
		r.Get("/simple", auth(site.simple))
		r.Post("/lodgings/{id}/vacancy", auth(site.vacancy))
		r.Get("/edit/{id}", auth(site.editForm))
		r.Post("/edit/{id}", auth(site.editSubmit))
	})

	s.mux.NotFound(site.notFound)
}
