package httpserver

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

const (
	sessionName = "kotobuki-session"
	userIDKey   = "user_id"
	flashKey    = "flash"
)

// Flash is a one-shot notice shown on the next page. Target scopes it to a
// lodging card; empty means page-wide.
type Flash struct {
	Kind    string // success | error
	Target  string
	Message string
}

func init() { gob.Register(Flash{}) }

// Session is the resolved identity handed to authenticated handlers.
type Session struct {
	Principal domain.Principal
}

func (s *Session) Profile() domain.Profile { return s.Principal.Profile() }

// AuthedHandler is a handler that only runs with a signed-in principal.
type AuthedHandler func(w http.ResponseWriter, r *http.Request, s *Session)

type Sessions struct {
	store *sessions.CookieStore
	authz *app.Authorizer
}

// NewSessions builds the cookie store. An empty key gets a random one, which
// signs out everybody on restart.
func NewSessions(key string, secure bool, authz *app.Authorizer) (*Sessions, error) {
	var k []byte
	switch {
	case key == "":
		k = securecookie.GenerateRandomKey(32)
		if k == nil {
			return nil, errors.New("generate session key")
		}
		log.Warn().Msg("SESSION_KEY not set; using a random key")
	case len(key) < 32:
		return nil, fmt.Errorf("session key is short (%d bytes); 32+ required", len(key))
	default:
		k = []byte(key)
	}
	store := sessions.NewCookieStore(k)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, authz: authz}, nil
}

// get never fails: an undecodable cookie yields a fresh session.
func (m *Sessions) get(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			log.Debug().Err(err).Msg("session cookie invalid, using fresh session")
		} else {
			log.Warn().Err(err).Msg("session store error, using fresh session")
		}
	}
	return sess
}

func (m *Sessions) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		log.Error().Err(err).Msg("session save failed")
	}
}

// Current returns the signed-in principal, or nil.
func (m *Sessions) Current(r *http.Request) domain.Principal {
	uid, _ := m.get(r).Values[userIDKey].(string)
	if uid == "" {
		return nil
	}
	p, err := m.authz.Resolve(r.Context(), uid)
	if err != nil {
		return nil
	}
	return p
}

// Require resolves the session before calling next. Signed-out browsers are
// sent to /login with a return path; JSON callers get 401.
func (m *Sessions) Require(next AuthedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := m.get(r)
		uid, _ := raw.Values[userIDKey].(string)
		p, err := m.authz.Resolve(r.Context(), uid)
		if errors.Is(err, domain.ErrUnauthenticated) {
			if wantsJSON(r) {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			http.Redirect(w, r, "/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user", uid).Msg("resolve session failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		next(w, r, &Session{Principal: p})
	}
}

func (m *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID string) {
	sess := m.get(r)
	sess.Values[userIDKey] = userID
	m.save(w, r, sess)
}

func (m *Sessions) SignOut(w http.ResponseWriter, r *http.Request) {
	sess := m.get(r)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	m.save(w, r, sess)
}

// AddFlash queues f for the next page render.
func (m *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	sess := m.get(r)
	sess.AddFlash(f, flashKey)
	m.save(w, r, sess)
}

// PopFlashes returns and clears pending notices.
func (m *Sessions) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := m.get(r)
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	m.save(w, r, sess)
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// safeReturn keeps post-login redirects on this site. Browsers drop tabs and
// newlines and read a backslash as a slash, so any of those is refused too.
func safeReturn(s string) string {
	const fallback = "/dashboard"
	if s == "" || !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return fallback
	}
	if strings.ContainsRune(s, '\\') || strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return fallback
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return s
}
