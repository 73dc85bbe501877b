package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

// SiteDeps are the services the HTML site needs.
type SiteDeps struct {
	Queries    *app.QueryService
	Dashboard  *app.DashboardService
	Commands   *app.LodgingCommands
	Authz      *app.Authorizer
	Auth       *app.Authenticator
	Sessions   *Sessions
	ContactRPS float64 // per client IP; 0 disables
	LoginRPS   float64
}

// Site renders the public pages and the dashboard.
type Site struct {
	q          *app.QueryService
	dash       *app.DashboardService
	cmd        *app.LodgingCommands
	authz      *app.Authorizer
	auth       *app.Authenticator
	sessions   *Sessions
	rd         *renderer
	contactRPS float64
	loginRPS   float64
}

func NewSite(d SiteDeps) (*Site, error) {
	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Site{
		q:          d.Queries,
		dash:       d.Dashboard,
		cmd:        d.Commands,
		authz:      d.Authz,
		auth:       d.Auth,
		sessions:   d.Sessions,
		rd:         rd,
		contactRPS: d.ContactRPS,
		loginRPS:   d.LoginRPS,
	}, nil
}

// page renders for an optional viewer; flashes are consumed here.
func (s *Site) page(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	if v.User == nil {
		v.User = principalProfile(s.sessions.Current(r))
	}
	v.Flashes = append(v.Flashes, s.sessions.PopFlashes(w, r)...)
	s.rd.render(w, r, status, name, v)
}

// authedPage is page for a handler that already holds a session.
func (s *Site) authedPage(w http.ResponseWriter, r *http.Request, sess *Session, status int, name string, v view) {
	v.User = principalProfile(sess.Principal)
	s.page(w, r, status, name, v)
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusNotFound, "not_found", view{Title: "ページが見つかりません"})
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.rd.render(w, r, http.StatusInternalServerError, "error", view{Title: "エラー", Data: reqID})
}

func principalProfile(p domain.Principal) *domain.Profile {
	if p == nil {
		return nil
	}
	prof := p.Profile()
	return &prof
}
