package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"kotobuki_stay/internal/domain"
)

// SeedDocument is the on-disk bootstrap file. Rows stay loosely typed
// until the mappers run.
type SeedDocument struct {
	Lodgings []map[string]any `json:"lodgings"`
	Services []map[string]any `json:"services"`
	Profiles []map[string]any `json:"profiles"`
	Owners   []map[string]any `json:"owner_lodgings"`
}

func DecodeSeed(r io.Reader) (SeedDocument, error) {
	var doc SeedDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return SeedDocument{}, fmt.Errorf("decode seed: %w", err)
	}
	return doc, nil
}

type SeedReport struct {
	Lodgings, Services, Profiles, Owners int
	Failed                               int
}

type SeedService struct {
	repo    domain.SeedRepository
	cache   domain.Cache
	workers int64
	hash    func(string) (string, error)
}

func NewSeedService(r domain.SeedRepository, c domain.Cache, workers int) *SeedService {
	if c == nil {
		c = nopCache{}
	}
	if workers <= 0 {
		workers = 4
	}
	return &SeedService{repo: r, cache: c, workers: int64(workers), hash: HashPassword}
}

// Run upserts every row of doc. Lodgings and services are written by a
// bounded pool; a bad row is logged and counted, not fatal. Owner
// assignments run last since they reference both profiles and lodgings.
func (s *SeedService) Run(ctx context.Context, doc SeedDocument) (SeedReport, error) {
	var rep SeedReport
	var mu sync.Mutex
	fail := func(kind string, err error) {
		mu.Lock()
		rep.Failed++
		mu.Unlock()
		log.Warn().Err(err).Str("kind", kind).Msg("seed row failed")
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	run := func(kind string, fn func() error, ok *int) error {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(); err != nil {
				fail(kind, err)
				return
			}
			mu.Lock()
			*ok++
			mu.Unlock()
		}()
		return nil
	}

	lodgingIDs := make([]string, 0, len(doc.Lodgings))
	for _, raw := range doc.Lodgings {
		l, err := mapLodging(raw)
		if err != nil {
			fail("lodging", err)
			continue
		}
		lodgingIDs = append(lodgingIDs, l.ID)
		if err := run("lodging", func() error { return s.repo.UpsertLodging(ctx, l) }, &rep.Lodgings); err != nil {
			wg.Wait()
			return rep, err
		}
	}
	for _, raw := range doc.Services {
		sv, err := mapService(raw)
		if err != nil {
			fail("service", err)
			continue
		}
		if err := run("service", func() error { return s.repo.UpsertService(ctx, sv) }, &rep.Services); err != nil {
			wg.Wait()
			return rep, err
		}
	}
	wg.Wait()

	// profiles: sequential, bcrypt is the bottleneck anyway
	byEmail := map[string]string{}
	for _, raw := range doc.Profiles {
		p, password, err := mapProfile(raw)
		if err != nil {
			fail("profile", err)
			continue
		}
		var hash string
		if password != "" {
			if hash, err = s.hash(password); err != nil {
				fail("profile", err)
				continue
			}
		}
		if err := s.repo.UpsertProfile(ctx, p, hash); err != nil {
			fail("profile", err)
			continue
		}
		byEmail[p.Email] = p.ID
		rep.Profiles++
	}

	for _, raw := range doc.Owners {
		a, err := mapAssignment(raw, byEmail)
		if err != nil {
			fail("owner_lodging", err)
			continue
		}
		if err := s.repo.AssignOwner(ctx, a); err != nil {
			fail("owner_lodging", err)
			continue
		}
		rep.Owners++
	}

	s.invalidate(ctx, lodgingIDs)
	if rep.Failed > 0 {
		return rep, fmt.Errorf("seed: %d rows failed", rep.Failed)
	}
	return rep, nil
}

func mapAssignment(m map[string]any, byEmail map[string]string) (domain.OwnerAssignment, error) {
	a := domain.OwnerAssignment{
		OwnerID:   strings.TrimSpace(lookupStr(m, "owner_id")),
		LodgingID: strings.TrimSpace(lookupStr(m, "lodging_id")),
	}
	if a.OwnerID == "" {
		a.OwnerID = byEmail[strings.ToLower(strings.TrimSpace(lookupStr(m, "owner_email")))]
	}
	if a.OwnerID == "" || a.LodgingID == "" {
		return domain.OwnerAssignment{}, errors.New("owner_lodgings row needs owner_id (or a known owner_email) and lodging_id")
	}
	return a, nil
}

func (s *SeedService) invalidate(ctx context.Context, ids []string) {
	keys := []string{keyPublished, keyServices}
	for _, id := range ids {
		keys = append(keys, lodgingKey(id))
	}
	for _, k := range keys {
		_ = s.cache.Del(ctx, k)
	}
}
