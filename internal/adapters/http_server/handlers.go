package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

// Handlers serve the public JSON read API.
type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/lodgings", h.listLodgings)
		r.Get("/lodgings/{id}", h.getLodging)
		r.Get("/services", h.listServices)
	})
}

type coordsDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type lodgingDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone,omitempty"`
	Capacity      int        `json:"capacity"`
	Vacancies     int        `json:"vacancies"`
	PricePerNight int        `json:"price_per_night"`
	Description   string     `json:"description,omitempty"`
	Facilities    []string   `json:"facilities"`
	ImageURL      string     `json:"image_url,omitempty"`
	Coords        *coordsDTO `json:"coordinates,omitempty"`
	LastUpdated   string     `json:"last_updated,omitempty"`
}

func toLodgingDTO(l domain.Lodging) lodgingDTO {
	d := lodgingDTO{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		Phone:         l.Phone,
		Capacity:      l.Capacity,
		Vacancies:     l.Vacancies,
		PricePerNight: l.PricePerNight,
		Description:   l.Description,
		Facilities:    l.Facilities,
		ImageURL:      l.ImageURL,
	}
	if d.Facilities == nil {
		d.Facilities = []string{}
	}
	if l.Coords != nil {
		d.Coords = &coordsDTO{Lat: l.Coords.Lat, Lon: l.Coords.Lon}
	}
	if !l.LastUpdated.IsZero() {
		d.LastUpdated = l.LastUpdated.Format(domain.DateLayout)
	}
	return d
}

type serviceDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Address     string     `json:"address,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Description string     `json:"description,omitempty"`
	Coords      *coordsDTO `json:"coordinates,omitempty"`
}

type listingDTO struct {
	Items []lodgingDTO `json:"items"`
	Stats struct {
		Lodgings       int `json:"lodgings"`
		WithVacancies  int `json:"with_vacancies"`
		TotalVacancies int `json:"total_vacancies"`
	} `json:"stats"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers 304 when the client already holds this version.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write JSON body")
	}
}

func (h *Handlers) listLodgings(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Q.PublishedLodgings(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list lodgings failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "lodgings unavailable")
		return
	}
	listing := app.BuildListing(ls, listingFilter(r))
	var out listingDTO
	out.Items = make([]lodgingDTO, 0, len(listing.Items))
	for _, l := range listing.Items {
		out.Items = append(out.Items, toLodgingDTO(l))
	}
	out.Stats.Lodgings = listing.Stats.Lodgings
	out.Stats.WithVacancies = listing.Stats.WithVacancies
	out.Stats.TotalVacancies = listing.Stats.TotalVacancies
	writeJSON(w, r, out)
}

func (h *Handlers) getLodging(w http.ResponseWriter, r *http.Request) {
	l, err := h.Q.GetLodging(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "lodging not found")
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("get lodging failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "lodging unavailable")
		return
	}
	writeJSON(w, r, toLodgingDTO(l))
}

func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	ss, err := h.Q.Services(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list services failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "services unavailable")
		return
	}
	out := make([]serviceDTO, 0, len(ss))
	for _, s := range ss {
		d := serviceDTO{ID: s.ID, Name: s.Name, Category: string(s.Category), Address: s.Address, Phone: s.Phone, Description: s.Description}
		if s.Coords != nil {
			d.Coords = &coordsDTO{Lat: s.Coords.Lat, Lon: s.Coords.Lon}
		}
		out = append(out, d)
	}
	writeJSON(w, r, out)
}

// listingFilter reads ?available=1&sort=vacancies|price.
func listingFilter(r *http.Request) app.ListingFilter {
	q := r.URL.Query()
	return app.ListingFilter{
		OnlyAvailable: q.Get("available") == "1" || q.Get("available") == "true",
		Sort:          app.ParseSortKey(q.Get("sort")),
	}
}
