package restdb

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"kotobuki_stay/internal/domain"
)

// Repo implements domain.Store over the data API's lodgings, services,
// profiles and owner_lodgings tables.
type Repo struct{ c *Client }

func NewRepo(c *Client) *Repo { return &Repo{c: c} }

var _ domain.Store = (*Repo)(nil)

type lodgingRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	Capacity      int      `json:"capacity"`
	Vacancies     int      `json:"vacancies"`
	PricePerNight int      `json:"price_per_night"`
	Description   *string  `json:"description"`
	Facilities    []string `json:"facilities"`
	ImageURL      string   `json:"image_url"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
	IsPublished   bool     `json:"is_published"`
	LastUpdated   *string  `json:"last_updated"`
}

func (r lodgingRow) toDomain() domain.Lodging {
	l := domain.Lodging{
		ID:            r.ID,
		Name:          r.Name,
		Address:       r.Address,
		Phone:         r.Phone,
		Capacity:      r.Capacity,
		Vacancies:     r.Vacancies,
		PricePerNight: r.PricePerNight,
		Facilities:    r.Facilities,
		ImageURL:      r.ImageURL,
		Published:     r.IsPublished,
	}
	if r.Description != nil {
		l.Description = *r.Description
	}
	if l.Facilities == nil {
		l.Facilities = []string{}
	}
	if r.Lat != nil && r.Lon != nil {
		l.Coords = &domain.Coords{Lat: *r.Lat, Lon: *r.Lon}
	}
	if r.LastUpdated != nil {
		// date columns come back as YYYY-MM-DD; tolerate timestamps too
		s := *r.LastUpdated
		if len(s) >= len(domain.DateLayout) {
			s = s[:len(domain.DateLayout)]
		}
		if t, err := time.Parse(domain.DateLayout, s); err == nil {
			l.LastUpdated = t
		}
	}
	return l
}

func rowFrom(l domain.Lodging) lodgingRow {
	r := lodgingRow{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		Phone:         l.Phone,
		Capacity:      l.Capacity,
		Vacancies:     l.Vacancies,
		PricePerNight: l.PricePerNight,
		Facilities:    l.Facilities,
		ImageURL:      l.ImageURL,
		IsPublished:   l.Published,
	}
	if l.Description != "" {
		r.Description = &l.Description
	}
	if r.Facilities == nil {
		r.Facilities = []string{}
	}
	if l.Coords != nil {
		r.Lat, r.Lon = &l.Coords.Lat, &l.Coords.Lon
	}
	if !l.LastUpdated.IsZero() {
		s := l.LastUpdated.UTC().Format(domain.DateLayout)
		r.LastUpdated = &s
	}
	return r
}

func toDomain(rows []lodgingRow) []domain.Lodging {
	out := make([]domain.Lodging, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func eq(v string) string { return "eq." + v }

const (
	preferRepresentation = "return=representation"
	preferMerge          = "resolution=merge-duplicates,return=minimal"
	preferIgnore         = "resolution=ignore-duplicates,return=minimal"
)

func (r *Repo) GetLodging(ctx context.Context, id string) (domain.Lodging, error) {
	var rows []lodgingRow
	q := url.Values{"select": {"*"}, "id": {eq(id)}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "lodgings", query: q}, &rows); err != nil {
		return domain.Lodging{}, err
	}
	if len(rows) == 0 {
		return domain.Lodging{}, domain.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *Repo) ListLodgings(ctx context.Context, lq domain.LodgingsQuery) ([]domain.Lodging, error) {
	q := url.Values{"select": {"*"}, "order": {"name.asc,id.asc"}}
	if lq.PublishedOnly {
		q.Set("is_published", "eq.true")
	}
	if lq.Limit > 0 {
		q.Set("limit", strconv.Itoa(lq.Limit))
	}
	var rows []lodgingRow
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "lodgings", query: q}, &rows); err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

// GetLodgingsForUser embeds the lodging through the owner_lodgings foreign key.
func (r *Repo) GetLodgingsForUser(ctx context.Context, userID string) ([]domain.Lodging, error) {
	var rows []struct {
		Lodging *lodgingRow `json:"lodgings"`
	}
	q := url.Values{"select": {"lodging_id,lodgings(*)"}, "owner_id": {eq(userID)}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "owner_lodgings", query: q}, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Lodging, 0, len(rows))
	for _, row := range rows {
		if row.Lodging != nil {
			out = append(out, row.Lodging.toDomain())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repo) IsOwner(ctx context.Context, userID, lodgingID string) (bool, error) {
	var rows []map[string]any
	q := url.Values{"select": {"lodging_id"}, "owner_id": {eq(userID)}, "lodging_id": {eq(lodgingID)}, "limit": {"1"}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "owner_lodgings", query: q}, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// UpdateVacancy filters on capacity so an out-of-range value matches no row;
// an empty result is then told apart from a missing lodging by re-reading.
func (r *Repo) UpdateVacancy(ctx context.Context, id string, vacancies int, on time.Time) (domain.Lodging, error) {
	if vacancies < 0 {
		return domain.Lodging{}, domain.ErrVacancyOutOfRange
	}
	body := map[string]any{"vacancies": vacancies, "last_updated": on.UTC().Format(domain.DateLayout)}
	q := url.Values{"id": {eq(id)}, "capacity": {"gte." + strconv.Itoa(vacancies)}}
	var rows []lodgingRow
	if err := r.c.do(ctx, call{method: http.MethodPatch, table: "lodgings", query: q, body: body, prefer: preferRepresentation}, &rows); err != nil {
		return domain.Lodging{}, err
	}
	if len(rows) == 0 {
		if _, err := r.GetLodging(ctx, id); err != nil {
			return domain.Lodging{}, err
		}
		return domain.Lodging{}, domain.ErrVacancyOutOfRange
	}
	return rows[0].toDomain(), nil
}

func (r *Repo) UpdateLodgingDetails(ctx context.Context, id string, d domain.LodgingDetails) (domain.Lodging, error) {
	facilities := d.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	body := map[string]any{
		"vacancies":       d.Vacancies,
		"price_per_night": d.PricePerNight,
		"description":     d.Description,
		"facilities":      facilities,
		"image_url":       d.ImageURL,
		"last_updated":    d.LastUpdated.UTC().Format(domain.DateLayout),
	}
	var rows []lodgingRow
	q := url.Values{"id": {eq(id)}}
	if err := r.c.do(ctx, call{method: http.MethodPatch, table: "lodgings", query: q, body: body, prefer: preferRepresentation}, &rows); err != nil {
		return domain.Lodging{}, err
	}
	if len(rows) == 0 {
		return domain.Lodging{}, domain.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

type serviceRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Description *string  `json:"description"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

func (r *Repo) ListServices(ctx context.Context) ([]domain.Service, error) {
	var rows []serviceRow
	q := url.Values{"select": {"*"}, "order": {"category.asc,name.asc"}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "services", query: q}, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(rows))
	for _, row := range rows {
		s := domain.Service{
			ID:       row.ID,
			Name:     row.Name,
			Category: domain.ParseServiceCategory(row.Category),
			Address:  row.Address,
			Phone:    row.Phone,
		}
		if row.Description != nil {
			s.Description = *row.Description
		}
		if row.Lat != nil && row.Lon != nil {
			s.Coords = &domain.Coords{Lat: *row.Lat, Lon: *row.Lon}
		}
		out = append(out, s)
	}
	return out, nil
}

type profileRow struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	PasswordHash *string `json:"password_hash,omitempty"`
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var rows []profileRow
	q := url.Values{"select": {"id,email,full_name,role"}, "id": {eq(userID)}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "profiles", query: q}, &rows); err != nil {
		return domain.Profile{}, err
	}
	if len(rows) == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	p := rows[0]
	return domain.Profile{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: domain.ParseRole(p.Role)}, nil
}

func (r *Repo) FindCredentials(ctx context.Context, email string) (domain.Credentials, error) {
	var rows []profileRow
	q := url.Values{"select": {"id,password_hash"}, "email": {eq(email)}}
	if err := r.c.do(ctx, call{method: http.MethodGet, table: "profiles", query: q}, &rows); err != nil {
		return domain.Credentials{}, err
	}
	if len(rows) == 0 || rows[0].PasswordHash == nil || *rows[0].PasswordHash == "" {
		return domain.Credentials{}, domain.ErrNotFound
	}
	return domain.Credentials{UserID: rows[0].ID, PasswordHash: *rows[0].PasswordHash}, nil
}

func (r *Repo) UpsertLodging(ctx context.Context, l domain.Lodging) error {
	return r.c.do(ctx, call{method: http.MethodPost, table: "lodgings", body: []lodgingRow{rowFrom(l)}, prefer: preferMerge}, nil)
}

func (r *Repo) UpsertService(ctx context.Context, s domain.Service) error {
	row := serviceRow{ID: s.ID, Name: s.Name, Category: string(s.Category), Address: s.Address, Phone: s.Phone}
	if s.Description != "" {
		row.Description = &s.Description
	}
	if s.Coords != nil {
		row.Lat, row.Lon = &s.Coords.Lat, &s.Coords.Lon
	}
	return r.c.do(ctx, call{method: http.MethodPost, table: "services", body: []serviceRow{row}, prefer: preferMerge}, nil)
}

// UpsertProfile leaves a stored password untouched when passwordHash is empty.
func (r *Repo) UpsertProfile(ctx context.Context, p domain.Profile, passwordHash string) error {
	row := profileRow{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: string(p.Role)}
	if passwordHash != "" {
		row.PasswordHash = &passwordHash
	}
	return r.c.do(ctx, call{method: http.MethodPost, table: "profiles", body: []profileRow{row}, prefer: preferMerge}, nil)
}

func (r *Repo) AssignOwner(ctx context.Context, a domain.OwnerAssignment) error {
	body := []map[string]string{{"owner_id": a.OwnerID, "lodging_id": a.LodgingID}}
	return r.c.do(ctx, call{method: http.MethodPost, table: "owner_lodgings", body: body, prefer: preferIgnore}, nil)
}
