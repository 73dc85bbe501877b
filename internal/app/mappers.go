package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kotobuki_stay/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Seed files come from hand-edited JSON and the old site's data module,
// so both camelCase and snake_case keys are accepted.
var lodgingAliases = map[string][]string{
	"id":          {"id", "lodging_id"},
	"name":        {"name"},
	"address":     {"address", "location.address"},
	"phone":       {"phone", "tel"},
	"capacity":    {"capacity"},
	"vacancies":   {"vacancies", "vacancy"},
	"price":       {"price_per_night", "pricePerNight", "price"},
	"description": {"description"},
	"facilities":  {"facilities", "amenities"},
	"image":       {"image_url", "imageUrl", "image"},
	"lat":         {"latitude", "lat", "location.lat", "coordinates.lat"},
	"lon":         {"longitude", "lon", "lng", "location.lng", "coordinates.lng"},
	"published":   {"is_published", "isPublished", "published"},
	"updated":     {"last_updated", "lastUpdated"},
}

var serviceAliases = map[string][]string{
	"id":          {"id"},
	"name":        {"name"},
	"category":    {"category", "type"},
	"address":     {"address"},
	"phone":       {"phone", "tel"},
	"description": {"description"},
	"lat":         {"latitude", "lat", "coordinates.lat"},
	"lon":         {"longitude", "lon", "lng", "coordinates.lng"},
}

var profileAliases = map[string][]string{
	"id":       {"id", "user_id"},
	"email":    {"email"},
	"name":     {"full_name", "fullName", "name"},
	"role":     {"role"},
	"password": {"password"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "35,44").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstIntFlexible: int from several paths (float64/int/string).
func firstIntFlexible(m map[string]any, paths ...string) *int {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int(v)
			return &x
		case int:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.Atoi(s); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstBool: bool or "true"/"false" from several paths.
func firstBool(m map[string]any, def bool, paths ...string) bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
	}
	return def
}

// firstSliceStrings: accept []any of strings or {name/label}, or a
// comma-delimited string.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		switch raw := lookupAny(m, k).(type) {
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if s := strings.TrimSpace(t); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if n, ok := t["label"].(string); ok && n != "" {
						out = append(out, n)
					}
				}
			}
			return out
		case string:
			return ParseFacilities(raw)
		}
	}
	return []string{}
}

func coordsFrom(m map[string]any, aliases map[string][]string) *domain.Coords {
	lat := getFloatFlexible(m, aliases["lat"]...)
	lon := getFloatFlexible(m, aliases["lon"]...)
	if lat == nil || lon == nil {
		return nil
	}
	return &domain.Coords{Lat: *lat, Lon: *lon}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

/********** lodging mapper **********/

func mapLodging(m map[string]any) (domain.Lodging, error) {
	l := domain.Lodging{
		ID:            firstAlias(m, lodgingAliases, "id"),
		Name:          firstAlias(m, lodgingAliases, "name"),
		Address:       firstAlias(m, lodgingAliases, "address"),
		Phone:         firstAlias(m, lodgingAliases, "phone"),
		Capacity:      intOr(firstIntFlexible(m, lodgingAliases["capacity"]...), 0),
		Vacancies:     intOr(firstIntFlexible(m, lodgingAliases["vacancies"]...), 0),
		PricePerNight: intOr(firstIntFlexible(m, lodgingAliases["price"]...), 0),
		Description:   firstAlias(m, lodgingAliases, "description"),
		Facilities:    firstSliceStrings(m, lodgingAliases["facilities"]...),
		ImageURL:      firstAlias(m, lodgingAliases, "image"),
		Coords:        coordsFrom(m, lodgingAliases),
		Published:     firstBool(m, true, lodgingAliases["published"]...),
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Name == "" {
		return domain.Lodging{}, fmt.Errorf("%w: lodging %s has no name", domain.ErrInvalidInput, l.ID)
	}
	if l.Capacity < 0 || !domain.ValidVacancies(l.Vacancies, l.Capacity) {
		return domain.Lodging{}, fmt.Errorf("%w: lodging %s vacancies %d / capacity %d",
			domain.ErrVacancyOutOfRange, l.ID, l.Vacancies, l.Capacity)
	}
	if l.PricePerNight < 0 {
		return domain.Lodging{}, fmt.Errorf("%w: lodging %s has negative price", domain.ErrInvalidInput, l.ID)
	}
	if s := firstAlias(m, lodgingAliases, "updated"); s != "" {
		t, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return domain.Lodging{}, fmt.Errorf("%w: lodging %s last_updated %q", domain.ErrInvalidInput, l.ID, s)
		}
		l.LastUpdated = t
	}
	return l, nil
}

/********** service mapper **********/

func mapService(m map[string]any) (domain.Service, error) {
	s := domain.Service{
		ID:          firstAlias(m, serviceAliases, "id"),
		Name:        firstAlias(m, serviceAliases, "name"),
		Category:    domain.ParseServiceCategory(firstAlias(m, serviceAliases, "category")),
		Address:     firstAlias(m, serviceAliases, "address"),
		Phone:       firstAlias(m, serviceAliases, "phone"),
		Description: firstAlias(m, serviceAliases, "description"),
		Coords:      coordsFrom(m, serviceAliases),
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Name == "" {
		return domain.Service{}, fmt.Errorf("%w: service %s has no name", domain.ErrInvalidInput, s.ID)
	}
	return s, nil
}

/********** profile mapper **********/

// mapProfile returns the profile and its plain-text bootstrap password.
func mapProfile(m map[string]any) (domain.Profile, string, error) {
	p := domain.Profile{
		ID:       firstAlias(m, profileAliases, "id"),
		Email:    strings.ToLower(firstAlias(m, profileAliases, "email")),
		FullName: firstAlias(m, profileAliases, "name"),
		Role:     domain.ParseRole(firstAlias(m, profileAliases, "role")),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Email == "" {
		return domain.Profile{}, "", fmt.Errorf("%w: profile %s has no email", domain.ErrInvalidInput, p.ID)
	}
	return p, firstAlias(m, profileAliases, "password"), nil
}
