// Package memory is a process-local domain.Store for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kotobuki_stay/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	lodgings map[string]domain.Lodging
	services map[string]domain.Service
	profiles map[string]domain.Profile
	hashes   map[string]string // user id -> bcrypt hash
	owners   map[string]map[string]struct{}
}

func New() *Store {
	return &Store{
		lodgings: map[string]domain.Lodging{},
		services: map[string]domain.Service{},
		profiles: map[string]domain.Profile{},
		hashes:   map[string]string{},
		owners:   map[string]map[string]struct{}{},
	}
}

var _ domain.Store = (*Store)(nil)

func byName(ls []domain.Lodging) []domain.Lodging {
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].Name != ls[j].Name {
			return ls[i].Name < ls[j].Name
		}
		return ls[i].ID < ls[j].ID
	})
	return ls
}

// clone copies the facilities slice so callers never share backing arrays.
func clone(l domain.Lodging) domain.Lodging {
	l.Facilities = append([]string{}, l.Facilities...)
	if l.Coords != nil {
		c := *l.Coords
		l.Coords = &c
	}
	return l
}

func (s *Store) GetLodging(ctx context.Context, id string) (domain.Lodging, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	return clone(l), nil
}

func (s *Store) ListLodgings(ctx context.Context, q domain.LodgingsQuery) ([]domain.Lodging, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Lodging{}
	for _, l := range s.lodgings {
		if q.PublishedOnly && !l.Published {
			continue
		}
		out = append(out, clone(l))
	}
	out = byName(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) GetLodgingsForUser(ctx context.Context, userID string) ([]domain.Lodging, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Lodging{}
	for id := range s.owners[userID] {
		if l, ok := s.lodgings[id]; ok {
			out = append(out, clone(l))
		}
	}
	return byName(out), nil
}

func (s *Store) IsOwner(ctx context.Context, userID, lodgingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[userID][lodgingID]
	return ok, nil
}

func (s *Store) UpdateVacancy(ctx context.Context, id string, vacancies int, on time.Time) (domain.Lodging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	if !domain.ValidVacancies(vacancies, l.Capacity) {
		return clone(l), domain.ErrVacancyOutOfRange
	}
	l.Vacancies, l.LastUpdated = vacancies, domain.Today(on)
	s.lodgings[id] = l
	return clone(l), nil
}

func (s *Store) UpdateLodgingDetails(ctx context.Context, id string, d domain.LodgingDetails) (domain.Lodging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	if !domain.ValidVacancies(d.Vacancies, l.Capacity) {
		return domain.Lodging{}, domain.ErrVacancyOutOfRange
	}
	if d.PricePerNight < 0 {
		return domain.Lodging{}, domain.ErrInvalidInput
	}
	l.Vacancies = d.Vacancies
	l.PricePerNight = d.PricePerNight
	l.Description = d.Description
	l.Facilities = append([]string{}, d.Facilities...)
	l.ImageURL = d.ImageURL
	l.LastUpdated = domain.Today(d.LastUpdated)
	s.lodgings[id] = l
	return clone(l), nil
}

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Service, 0, len(s.services))
	for _, sv := range s.services {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) FindCredentials(ctx context.Context, email string) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.profiles {
		if p.Email == email && s.hashes[id] != "" {
			return domain.Credentials{UserID: id, PasswordHash: s.hashes[id]}, nil
		}
	}
	return domain.Credentials{}, domain.ErrNotFound
}

func (s *Store) UpsertLodging(ctx context.Context, l domain.Lodging) error {
	if !domain.ValidVacancies(l.Vacancies, l.Capacity) {
		return domain.ErrVacancyOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lodgings[l.ID] = clone(l)
	return nil
}

func (s *Store) UpsertService(ctx context.Context, sv domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[sv.ID] = sv
	return nil
}

func (s *Store) UpsertProfile(ctx context.Context, p domain.Profile, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	if passwordHash != "" {
		s.hashes[p.ID] = passwordHash
	}
	return nil
}

func (s *Store) AssignOwner(ctx context.Context, a domain.OwnerAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[a.OwnerID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.lodgings[a.LodgingID]; !ok {
		return domain.ErrNotFound
	}
	if s.owners[a.OwnerID] == nil {
		s.owners[a.OwnerID] = map[string]struct{}{}
	}
	s.owners[a.OwnerID][a.LodgingID] = struct{}{}
	return nil
}
