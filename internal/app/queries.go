package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"kotobuki_stay/internal/domain"
)

const (
	keyPublished = "lodgings:published"
	keyServices  = "services"
)

func lodgingKey(id string) string { return fmt.Sprintf("lodging:%s", id) }

// QueryService serves the public pages. Reads go through the cache;
// LodgingCommands evicts the affected keys after every write.
type QueryService struct {
	repo     domain.LodgingRepository
	dir      domain.DirectoryRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.LodgingRepository, d domain.DirectoryRepository, c domain.Cache, ttl time.Duration) *QueryService {
	if c == nil {
		c = nopCache{}
	}
	return &QueryService{repo: r, dir: d, cache: c, cacheTTL: ttl}
}

// PublishedLodgings returns every published lodging ordered by name.
func (s *QueryService) PublishedLodgings(ctx context.Context) ([]domain.Lodging, error) {
	var out []domain.Lodging
	if ok, _ := s.cache.Get(ctx, keyPublished, &out); ok {
		return out, nil
	}
	ls, err := s.repo.ListLodgings(ctx, domain.LodgingsQuery{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	// copy slice to avoid aliasing the repo's backing array
	out = append([]domain.Lodging(nil), ls...)
	_ = s.cache.Set(ctx, keyPublished, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// GetLodging returns a published lodging; unpublished rows are not found.
func (s *QueryService) GetLodging(ctx context.Context, id string) (domain.Lodging, error) {
	key := lodgingKey(id)
	var l domain.Lodging
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.repo.GetLodging(ctx, id)
	if err != nil {
		return domain.Lodging{}, err
	}
	if !l.Published {
		return domain.Lodging{}, domain.ErrNotFound
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

func (s *QueryService) Services(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	if ok, _ := s.cache.Get(ctx, keyServices, &out); ok {
		return out, nil
	}
	svcs, err := s.dir.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	out = append([]domain.Service(nil), svcs...)
	_ = s.cache.Set(ctx, keyServices, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// MapData is what the map page plots.
type MapData struct {
	Center     domain.Coords
	Lodgings   []domain.Lodging
	Services   []domain.Service
	ByCategory map[domain.ServiceCategory]int
}

// DistrictCenter is the map's initial centre.
var DistrictCenter = domain.Coords{Lat: 35.4445, Lon: 139.6388}

// Map loads lodgings and services concurrently.
func (s *QueryService) Map(ctx context.Context) (MapData, error) {
	var md MapData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ls, err := s.PublishedLodgings(gctx)
		md.Lodgings = ls
		return err
	})
	g.Go(func() error {
		svcs, err := s.Services(gctx)
		md.Services = svcs
		return err
	})
	if err := g.Wait(); err != nil {
		return MapData{}, err
	}
	md.Center = DistrictCenter
	md.ByCategory = make(map[domain.ServiceCategory]int, len(domain.ServiceCategories))
	for _, c := range domain.ServiceCategories {
		md.ByCategory[c] = 0
	}
	for _, sv := range md.Services {
		md.ByCategory[sv.Category]++
	}
	return md, nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any, int) error { return nil }
func (nopCache) Del(context.Context, string) error { return nil }
