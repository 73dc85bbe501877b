package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"kotobuki_stay/internal/domain"
)

// ---- fakes ----

// fakeStore is an in-memory domain.Store that counts writes.
type fakeStore struct {
	mu        sync.Mutex
	lodgings  map[string]domain.Lodging
	services  []domain.Service
	profiles  map[string]domain.Profile
	hashes    map[string]string // email -> hash
	owners    map[string]map[string]bool
	updateErr error
	block     chan struct{} // when set, updates wait on it
	entered   chan struct{} // when set, signalled as a vacancy update starts

	vacancyWrites int
	detailWrites  int
	listCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lodgings: map[string]domain.Lodging{},
		profiles: map[string]domain.Profile{},
		hashes:   map[string]string{},
		owners:   map[string]map[string]bool{},
	}
}

func (f *fakeStore) GetLodging(ctx context.Context, id string) (domain.Lodging, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) ListLodgings(ctx context.Context, q domain.LodgingsQuery) ([]domain.Lodging, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []domain.Lodging
	for _, l := range f.lodgings {
		if q.PublishedOnly && !l.Published {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetLodgingsForUser(ctx context.Context, userID string) ([]domain.Lodging, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Lodging
	for id := range f.owners[userID] {
		if l, ok := f.lodgings[id]; ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) IsOwner(ctx context.Context, userID, lodgingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owners[userID][lodgingID], nil
}

func (f *fakeStore) UpdateVacancy(ctx context.Context, id string, vacancies int, on time.Time) (domain.Lodging, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Lodging{}, f.updateErr
	}
	l, ok := f.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	if !domain.ValidVacancies(vacancies, l.Capacity) {
		return domain.Lodging{}, domain.ErrVacancyOutOfRange
	}
	f.vacancyWrites++
	l.Vacancies, l.LastUpdated = vacancies, on
	f.lodgings[id] = l
	return l, nil
}

func (f *fakeStore) UpdateLodgingDetails(ctx context.Context, id string, d domain.LodgingDetails) (domain.Lodging, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Lodging{}, f.updateErr
	}
	l, ok := f.lodgings[id]
	if !ok {
		return domain.Lodging{}, domain.ErrNotFound
	}
	f.detailWrites++
	l.Vacancies, l.PricePerNight = d.Vacancies, d.PricePerNight
	l.Description, l.Facilities, l.ImageURL = d.Description, d.Facilities, d.ImageURL
	l.LastUpdated = d.LastUpdated
	f.lodgings[id] = l
	return l, nil
}

func (f *fakeStore) ListServices(ctx context.Context) ([]domain.Service, error) {
	return f.services, nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) FindCredentials(ctx context.Context, email string) (domain.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email && f.hashes[email] != "" {
			return domain.Credentials{UserID: p.ID, PasswordHash: f.hashes[email]}, nil
		}
	}
	return domain.Credentials{}, domain.ErrNotFound
}

func (f *fakeStore) UpsertLodging(ctx context.Context, l domain.Lodging) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lodgings[l.ID] = l
	return nil
}

func (f *fakeStore) UpsertService(ctx context.Context, s domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services = append(f.services, s)
	return nil
}

func (f *fakeStore) UpsertProfile(ctx context.Context, p domain.Profile, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
	if hash != "" {
		f.hashes[p.Email] = hash
	}
	return nil
}

func (f *fakeStore) AssignOwner(ctx context.Context, a domain.OwnerAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owners[a.OwnerID] == nil {
		f.owners[a.OwnerID] = map[string]bool{}
	}
	f.owners[a.OwnerID][a.LodgingID] = true
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	store   map[string]any
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Lodging:
		*d = v.(domain.Lodging)
	case *[]domain.Lodging:
		*d = v.([]domain.Lodging)
	case *[]domain.Service:
		*d = v.([]domain.Service)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// ---- fixtures ----

var (
	adminProfile = domain.Profile{ID: "u-admin", Email: "admin@example.jp", FullName: "管理者", Role: domain.RoleAdmin}
	ownerProfile = domain.Profile{ID: "u-owner", Email: "owner@example.jp", FullName: "寿 太郎", Role: domain.RoleOwner}
	otherProfile = domain.Profile{ID: "u-other", Email: "other@example.jp", Role: domain.RoleOwner}
)

// seededStore: two lodgings, owner manages only "1".
func seededStore() *fakeStore {
	f := newFakeStore()
	f.lodgings["1"] = domain.Lodging{ID: "1", Name: "ホテル寿荘", Capacity: 50, Vacancies: 5, PricePerNight: 1800, Published: true}
	f.lodgings["2"] = domain.Lodging{ID: "2", Name: "グリーンハウス寿", Capacity: 30, Vacancies: 8, PricePerNight: 1500, Published: true}
	for _, p := range []domain.Profile{adminProfile, ownerProfile, otherProfile} {
		f.profiles[p.ID] = p
	}
	f.owners[ownerProfile.ID] = map[string]bool{"1": true}
	return f
}

var fixedNow = func() time.Time { return time.Date(2025, 11, 7, 15, 4, 5, 0, time.UTC) }
