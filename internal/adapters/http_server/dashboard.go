package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/adapters/observability"
	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

// dashboard is the admin overview; owners only get the simple editor.
func (s *Site) dashboard(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !sess.Principal.FullDashboard() {
		http.Redirect(w, r, "/dashboard/simple", http.StatusSeeOther)
		return
	}
	d, err := s.dash.Load(r.Context(), sess.Principal)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.authedPage(w, r, sess, http.StatusOK, "dashboard", view{Title: "ダッシュボード", Data: d})
}

func (s *Site) simple(w http.ResponseWriter, r *http.Request, sess *Session) {
	d, err := s.dash.Load(r.Context(), sess.Principal)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.authedPage(w, r, sess, http.StatusOK, "simple", view{Title: "空室数の更新", Data: d})
}

const (
	msgVacancyOK   = "✓ 更新しました"
	msgVacancyFail = "✗ 更新に失敗しました"
)

// vacancy applies one button press and redirects back to the editor.
func (s *Site) vacancy(w http.ResponseWriter, r *http.Request, sess *Session) {
	id := chi.URLParam(r, "id")
	op, err := domain.ParseVacancyOp(r.FormValue("op"))
	if err != nil {
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}

	res, err := s.cmd.ApplyVacancy(r.Context(), sess.Principal, id, op)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveVacancy(string(op), "denied")
		s.notFound(w, r)
		return
	case errors.Is(err, domain.ErrBusy):
		// the press already being processed reports the outcome
		observability.ObserveVacancy(string(op), "busy")
	case err != nil:
		observability.ObserveVacancy(string(op), "error")
		s.sessions.AddFlash(w, r, Flash{Kind: "error", Target: id, Message: msgVacancyFail})
	case !res.Changed:
		observability.ObserveVacancy(string(op), "noop")
	default:
		observability.ObserveVacancy(string(op), "ok")
		log.Ctx(r.Context()).Info().
			Str("user", sess.Profile().ID).
			Str("lodging", id).
			Str("op", string(op)).
			Int("vacancies", res.Lodging.Vacancies).
			Msg("vacancies updated")
		s.sessions.AddFlash(w, r, Flash{Kind: "success", Target: id, Message: msgVacancyOK})
	}
	http.Redirect(w, r, "/dashboard/simple#lodging-"+id, http.StatusSeeOther)
}

type editData struct {
	Lodging    domain.Lodging
	Form       app.DetailsForm
	Errors     app.FieldErrors
	StoreError string
}

func (s *Site) editForm(w http.ResponseWriter, r *http.Request, sess *Session) {
	l, err := s.authz.ManagedLodging(r.Context(), sess.Principal, chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.authedPage(w, r, sess, http.StatusOK, "edit", view{
		Title: l.Name + "の編集",
		Data:  editData{Lodging: l, Form: app.FormFor(l)},
	})
}

func (s *Site) editSubmit(w http.ResponseWriter, r *http.Request, sess *Session) {
	f := app.DetailsForm{
		Vacancies:     r.FormValue("vacancies"),
		PricePerNight: r.FormValue("price_per_night"),
		Description:   r.FormValue("description"),
		Facilities:    r.FormValue("facilities"),
		ImageURL:      r.FormValue("image_url"),
	}
	updated, err := s.cmd.UpdateDetails(r.Context(), sess.Principal, chi.URLParam(r, "id"), f)
	var fe app.FieldErrors
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
	case err != nil && updated.ID == "":
		// Nothing loaded, so there is no form to re-render.
		s.serverError(w, r, err)
	case errors.As(err, &fe):
		s.authedPage(w, r, sess, http.StatusUnprocessableEntity, "edit", view{
			Title: updated.Name + "の編集",
			Data:  editData{Lodging: updated, Form: f, Errors: fe},
		})
	case err != nil:
		s.authedPage(w, r, sess, http.StatusInternalServerError, "edit", view{
			Title: updated.Name + "の編集",
			Data:  editData{Lodging: updated, Form: f, StoreError: err.Error()},
		})
	default:
		log.Ctx(r.Context()).Info().Str("user", sess.Profile().ID).Str("lodging", updated.ID).Msg("lodging details updated")
		s.authedPage(w, r, sess, http.StatusOK, "edit_done", view{Title: "更新完了", Refresh: true, Data: updated})
	}
}
