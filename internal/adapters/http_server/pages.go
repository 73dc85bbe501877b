package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

type homeData struct {
	Stats    app.VacancyStats
	Featured []domain.Lodging
}

const featuredCount = 3

func (s *Site) home(w http.ResponseWriter, r *http.Request) {
	ls, err := s.q.PublishedLodgings(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	listing := app.BuildListing(ls, app.ListingFilter{OnlyAvailable: true, Sort: app.SortByVacancies})
	featured := listing.Items
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}
	s.page(w, r, http.StatusOK, "home", view{Data: homeData{Stats: listing.Stats, Featured: featured}})
}

func (s *Site) vacancies(w http.ResponseWriter, r *http.Request) {
	ls, err := s.q.PublishedLodgings(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, "vacancies", view{Title: "空室情報", Data: app.BuildListing(ls, listingFilter(r))})
}

func (s *Site) lodging(w http.ResponseWriter, r *http.Request) {
	l, err := s.q.GetLodging(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, "lodging", view{Title: l.Name, Data: l})
}

type marker struct {
	Kind     string  `json:"kind"` // lodging | service
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Vacant   bool    `json:"vacant,omitempty"`
}

type categoryCount struct {
	Key, Label string
	Count      int
}

var categoryLabels = map[domain.ServiceCategory]string{
	domain.CategoryWelfare:    "福祉",
	domain.CategoryMedical:    "医療",
	domain.CategoryEmployment: "就労",
	domain.CategoryOther:      "その他",
}

type mapData struct {
	app.MapData
	Markers    []marker
	Categories []categoryCount
}

func (s *Site) mapPage(w http.ResponseWriter, r *http.Request) {
	md, err := s.q.Map(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	d := mapData{MapData: md, Markers: []marker{}}
	for _, l := range md.Lodgings {
		if l.Coords != nil {
			d.Markers = append(d.Markers, marker{Kind: "lodging", ID: l.ID, Name: l.Name, Lat: l.Coords.Lat, Lon: l.Coords.Lon, Vacant: l.Available()})
		}
	}
	for _, sv := range md.Services {
		if sv.Coords != nil {
			d.Markers = append(d.Markers, marker{Kind: "service", ID: sv.ID, Name: sv.Name, Category: string(sv.Category), Lat: sv.Coords.Lat, Lon: sv.Coords.Lon})
		}
	}
	for _, c := range domain.ServiceCategories {
		d.Categories = append(d.Categories, categoryCount{Key: string(c), Label: categoryLabels[c], Count: md.ByCategory[c]})
	}
	s.page(w, r, http.StatusOK, "map", view{Title: "地図", Data: d})
}

func (s *Site) activities(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "activities", view{Title: "活動紹介", Data: app.Activities})
}

type contactData struct {
	Form     app.ContactMessage
	Errors   app.FieldErrors
	Subjects any
}

func (s *Site) contactForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "contact", view{Title: "お問い合わせ", Data: contactData{Subjects: app.ContactSubjects}})
}

func (s *Site) contactSubmit(w http.ResponseWriter, r *http.Request) {
	m := app.ContactMessage{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	}
	err := app.SubmitContact(r.Context(), m)
	var fe app.FieldErrors
	if errors.As(err, &fe) {
		s.page(w, r, http.StatusUnprocessableEntity, "contact", view{
			Title: "お問い合わせ",
			Data:  contactData{Form: m, Errors: fe, Subjects: app.ContactSubjects},
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.sessions.AddFlash(w, r, Flash{Kind: "success", Message: "お問い合わせを受け付けました。ありがとうございました。"})
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}
