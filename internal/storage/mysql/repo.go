package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kotobuki_stay/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(domain.DateLayout)
}
func valCoords(c *domain.Coords) (lat, lon any) {
	if c == nil {
		return nil, nil
	}
	return c.Lat, c.Lon
}
func valFacilities(fs []string) string {
	if fs == nil {
		fs = []string{}
	}
	b, _ := json.Marshal(fs)
	return string(b)
}

type Repo struct{ db *sql.DB }

// New wraps db, which must be opened with clientFoundRows=true so that
// UpdateVacancy can tell a matched row from a guarded one.
func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface{ Scan(dest ...any) error }

func scanLodging(s scanner) (domain.Lodging, error) {
	var l domain.Lodging
	var desc sql.NullString
	var facilities []byte
	var lat, lon sql.NullFloat64
	var updated sql.NullTime
	if err := s.Scan(
		&l.ID, &l.Name, &l.Address, &l.Phone,
		&l.Capacity, &l.Vacancies, &l.PricePerNight,
		&desc, &facilities, &l.ImageURL,
		&lat, &lon, &l.Published, &updated,
	); err != nil {
		return domain.Lodging{}, err
	}
	l.Description = desc.String
	l.Facilities = []string{}
	if len(facilities) > 0 {
		if err := json.Unmarshal(facilities, &l.Facilities); err != nil {
			return domain.Lodging{}, fmt.Errorf("lodging %s facilities: %w", l.ID, err)
		}
	}
	if lat.Valid && lon.Valid {
		l.Coords = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
	}
	if updated.Valid {
		l.LastUpdated = updated.Time.UTC()
	}
	return l, nil
}

func (r *Repo) GetLodging(ctx context.Context, id string) (domain.Lodging, error) {
	l, err := scanLodging(r.db.QueryRowContext(ctx, getLodgingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lodging{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListLodgings(ctx context.Context, q domain.LodgingsQuery) ([]domain.Lodging, error) {
	var b strings.Builder
	b.WriteString(listLodgingsSQL)
	var args []any
	if q.PublishedOnly {
		b.WriteString("WHERE l.is_published = 1\n")
	}
	b.WriteString("ORDER BY l.name, l.id\n")
	if q.Limit > 0 {
		b.WriteString("LIMIT ?\n")
		args = append(args, q.Limit)
	}
	return r.queryLodgings(ctx, b.String(), args...)
}

func (r *Repo) GetLodgingsForUser(ctx context.Context, userID string) ([]domain.Lodging, error) {
	return r.queryLodgings(ctx, lodgingsForUserSQL, userID)
}

func (r *Repo) queryLodgings(ctx context.Context, query string, args ...any) ([]domain.Lodging, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lodging{}
	for rows.Next() {
		l, err := scanLodging(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) IsOwner(ctx context.Context, userID, lodgingID string) (bool, error) {
	var owns bool
	err := r.db.QueryRowContext(ctx, isOwnerSQL, userID, lodgingID).Scan(&owns)
	return owns, err
}

// UpdateVacancy writes vacancies and the last-updated date in one statement
// and returns the row as stored. A row the capacity guard skipped comes back
// unchanged with ErrVacancyOutOfRange.
func (r *Repo) UpdateVacancy(ctx context.Context, id string, vacancies int, on time.Time) (domain.Lodging, error) {
	res, err := r.db.ExecContext(ctx, updateVacancySQL, vacancies, valDate(on), id, vacancies)
	if err != nil {
		return domain.Lodging{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Lodging{}, err
	}
	l, err := r.GetLodging(ctx, id)
	if err != nil {
		return domain.Lodging{}, err
	}
	if n == 0 {
		return l, domain.ErrVacancyOutOfRange
	}
	return l, nil
}

func (r *Repo) UpdateLodgingDetails(ctx context.Context, id string, d domain.LodgingDetails) (domain.Lodging, error) {
	if _, err := r.db.ExecContext(ctx, updateLodgingDetailsSQL,
		d.Vacancies,
		d.PricePerNight,
		d.Description,
		valFacilities(d.Facilities),
		d.ImageURL,
		valDate(d.LastUpdated),
		id,
	); err != nil {
		return domain.Lodging{}, err
	}
	return r.GetLodging(ctx, id)
}

func (r *Repo) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, listServicesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Service{}
	for rows.Next() {
		var s domain.Service
		var category string
		var desc sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &category, &s.Address, &s.Phone, &desc, &lat, &lon); err != nil {
			return nil, err
		}
		s.Category = domain.ParseServiceCategory(category)
		s.Description = desc.String
		if lat.Valid && lon.Valid {
			s.Coords = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	var role string
	err := r.db.QueryRowContext(ctx, getProfileSQL, userID).Scan(&p.ID, &p.Email, &p.FullName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	p.Role = domain.ParseRole(role)
	return p, nil
}

// FindCredentials treats a profile without a password as absent.
func (r *Repo) FindCredentials(ctx context.Context, email string) (domain.Credentials, error) {
	var c domain.Credentials
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, findCredentialsSQL, email).Scan(&c.UserID, &hash)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !hash.Valid) {
		return domain.Credentials{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Credentials{}, err
	}
	c.PasswordHash = hash.String
	return c, nil
}

func (r *Repo) UpsertLodging(ctx context.Context, l domain.Lodging) error {
	lat, lon := valCoords(l.Coords)
	_, err := r.db.ExecContext(ctx, upsertLodgingSQL,
		l.ID,
		l.Name,
		l.Address,
		l.Phone,
		l.Capacity,
		l.Vacancies,
		l.PricePerNight,
		valStr(l.Description),
		valFacilities(l.Facilities),
		l.ImageURL,
		lat, lon,
		l.Published,
		valDate(l.LastUpdated),
	)
	return err
}

func (r *Repo) UpsertService(ctx context.Context, s domain.Service) error {
	lat, lon := valCoords(s.Coords)
	_, err := r.db.ExecContext(ctx, upsertServiceSQL,
		s.ID, s.Name, string(s.Category), s.Address, s.Phone, valStr(s.Description), lat, lon)
	return err
}

func (r *Repo) UpsertProfile(ctx context.Context, p domain.Profile, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, upsertProfileSQL,
		p.ID, p.Email, p.FullName, string(p.Role), valStr(passwordHash))
	return err
}

func (r *Repo) AssignOwner(ctx context.Context, a domain.OwnerAssignment) error {
	_, err := r.db.ExecContext(ctx, assignOwnerSQL, a.OwnerID, a.LodgingID)
	return err
}

var _ domain.Store = (*Repo)(nil)
