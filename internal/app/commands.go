package app

import (
	"context"
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/domain"
)

// LodgingCommands holds every write path of the dashboard.
type LodgingCommands struct {
	repo  domain.LodgingRepository
	authz *Authorizer
	cache domain.Cache
	now   func() time.Time
	busy  *inflight
	text  *bluemonday.Policy
}

func NewLodgingCommands(r domain.LodgingRepository, a *Authorizer, c domain.Cache) *LodgingCommands {
	if c == nil {
		c = nopCache{}
	}
	return &LodgingCommands{
		repo:  r,
		authz: a,
		cache: c,
		now:   time.Now,
		busy:  &inflight{keys: map[string]struct{}{}},
		text:  bluemonday.StrictPolicy(),
	}
}

// WithClock overrides the clock used for last-updated dates.
func (c *LodgingCommands) WithClock(now func() time.Time) *LodgingCommands {
	c.now = now
	return c
}

type VacancyResult struct {
	Lodging domain.Lodging // last confirmed state
	Changed bool           // false: op was a no-op and nothing was written
}

// ApplyVacancy runs one simple-editor button press. While a press for the
// same user and lodging is outstanding, further presses fail with
// domain.ErrBusy. On a store failure the returned lodging is the last
// confirmed one.
func (c *LodgingCommands) ApplyVacancy(ctx context.Context, p domain.Principal, lodgingID string, op domain.VacancyOp) (VacancyResult, error) {
	key := p.Profile().ID + "|" + lodgingID
	if !c.busy.acquire(key) {
		return VacancyResult{}, domain.ErrBusy
	}
	defer c.busy.release(key)

	l, err := c.authz.ManagedLodging(ctx, p, lodgingID)
	if err != nil {
		return VacancyResult{}, err
	}
	next, ok := domain.NextVacancies(op, l.Vacancies, l.Capacity)
	if !ok {
		return VacancyResult{Lodging: l}, nil
	}
	updated, err := c.repo.UpdateVacancy(ctx, l.ID, next, domain.Today(c.now()))
	if err != nil {
		log.Warn().Err(err).Str("lodging", l.ID).Str("op", string(op)).Msg("vacancy update failed")
		return VacancyResult{Lodging: l}, err
	}
	c.invalidate(ctx, l.ID)
	return VacancyResult{Lodging: updated, Changed: true}, nil
}

// DetailsForm is the full editor's raw input.
type DetailsForm struct {
	Vacancies     string
	PricePerNight string
	Description   string
	Facilities    string
	ImageURL      string
}

// FormFor prefills the editor from the stored row.
func FormFor(l domain.Lodging) DetailsForm {
	return DetailsForm{
		Vacancies:     strconv.Itoa(l.Vacancies),
		PricePerNight: strconv.Itoa(l.PricePerNight),
		Description:   l.Description,
		Facilities:    JoinFacilities(l.Facilities),
		ImageURL:      l.ImageURL,
	}
}

// FieldErrors maps form field names to user-facing messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	sort.Strings(parts)
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error { return domain.ErrInvalidInput }

// Parse validates f against the lodging's capacity.
func (f DetailsForm) Parse(capacity int) (domain.LodgingDetails, error) {
	errs := FieldErrors{}
	var d domain.LodgingDetails

	if v := strings.TrimSpace(f.Vacancies); v == "" {
		errs["vacancies"] = "空室数を入力してください"
	} else if n, err := strconv.Atoi(v); err != nil || !domain.ValidVacancies(n, capacity) {
		errs["vacancies"] = "空室数は0から" + strconv.Itoa(capacity) + "の範囲で入力してください"
	} else {
		d.Vacancies = n
	}

	if v := strings.TrimSpace(f.PricePerNight); v == "" {
		errs["price_per_night"] = "1泊料金を入力してください"
	} else if n, err := strconv.Atoi(v); err != nil || n < 0 {
		errs["price_per_night"] = "1泊料金は0以上で入力してください"
	} else {
		d.PricePerNight = n
	}

	if len(errs) > 0 {
		return domain.LodgingDetails{}, errs
	}
	d.Description = f.Description
	d.Facilities = ParseFacilities(f.Facilities)
	d.ImageURL = strings.TrimSpace(f.ImageURL)
	return d, nil
}

// UpdateDetails authorizes, validates and writes the editable field set
// in one update. Validation failures never reach the store. Store errors
// are returned unwrapped so their message can be shown verbatim.
func (c *LodgingCommands) UpdateDetails(ctx context.Context, p domain.Principal, lodgingID string, f DetailsForm) (domain.Lodging, error) {
	l, err := c.authz.ManagedLodging(ctx, p, lodgingID)
	if err != nil {
		return domain.Lodging{}, err
	}
	d, err := f.Parse(l.Capacity)
	if err != nil {
		return l, err
	}
	d.Description = c.plainText(d.Description)
	d.LastUpdated = domain.Today(c.now())

	updated, err := c.repo.UpdateLodgingDetails(ctx, l.ID, d)
	if err != nil {
		log.Warn().Err(err).Str("lodging", l.ID).Msg("details update failed")
		return l, err
	}
	c.invalidate(ctx, l.ID)
	return updated, nil
}

// plainText strips markup; the policy escapes entities, which templates
// would escape a second time, so undo that.
func (c *LodgingCommands) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.text.Sanitize(s)))
}

func (c *LodgingCommands) invalidate(ctx context.Context, id string) {
	for _, k := range []string{keyPublished, lodgingKey(id)} {
		if err := c.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache evict failed")
		}
	}
}

// IsValidation reports whether err came from form validation.
func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}

type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inflight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.keys[key]; held {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}
