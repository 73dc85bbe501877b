package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/domain"
)

type loginData struct {
	Email  string
	Return string
	Error  string
}

func (s *Site) loginForm(w http.ResponseWriter, r *http.Request) {
	ret := safeReturn(r.URL.Query().Get("return"))
	if s.sessions.Current(r) != nil {
		http.Redirect(w, r, ret, http.StatusSeeOther)
		return
	}
	s.page(w, r, http.StatusOK, "login", view{Title: "ログイン", Data: loginData{Return: ret}})
}

func (s *Site) loginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	ret := safeReturn(r.FormValue("return"))

	p, err := s.auth.Login(r.Context(), email, r.FormValue("password"))
	if errors.Is(err, domain.ErrBadCredentials) || errors.Is(err, domain.ErrUnauthenticated) {
		log.Ctx(r.Context()).Info().Str("remote", remoteIP(r)).Msg("login rejected")
		s.page(w, r, http.StatusUnauthorized, "login", view{
			Title: "ログイン",
			Data:  loginData{Email: email, Return: ret, Error: "メールアドレスまたはパスワードが正しくありません"},
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.sessions.SignIn(w, r, p.Profile().ID)
	log.Ctx(r.Context()).Info().Str("user", p.Profile().ID).Str("role", string(p.Profile().Role)).Msg("signed in")
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (s *Site) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
