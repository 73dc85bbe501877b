package app

import (
	"sort"
	"strings"

	"kotobuki_stay/internal/domain"
)

type SortKey string

const (
	SortByVacancies SortKey = "vacancies" // most vacancies first
	SortByPrice     SortKey = "price"     // cheapest first
)

func ParseSortKey(s string) SortKey {
	if SortKey(strings.ToLower(strings.TrimSpace(s))) == SortByPrice {
		return SortByPrice
	}
	return SortByVacancies
}

type ListingFilter struct {
	OnlyAvailable bool
	Sort          SortKey
}

// VacancyStats summarises the whole published set, not the filtered view.
type VacancyStats struct {
	Lodgings       int
	WithVacancies  int
	TotalVacancies int
}

type Listing struct {
	Filter ListingFilter
	Items  []domain.Lodging
	Stats  VacancyStats
}

// BuildListing filters and sorts a copy of ls. Ties are broken by name so
// the page order is stable between requests.
func BuildListing(ls []domain.Lodging, f ListingFilter) Listing {
	out := Listing{Filter: f, Items: make([]domain.Lodging, 0, len(ls))}
	for _, l := range ls {
		out.Stats.Lodgings++
		out.Stats.TotalVacancies += l.Vacancies
		if l.Available() {
			out.Stats.WithVacancies++
		}
		if f.OnlyAvailable && !l.Available() {
			continue
		}
		out.Items = append(out.Items, l)
	}
	sort.SliceStable(out.Items, func(i, j int) bool {
		a, b := out.Items[i], out.Items[j]
		switch f.Sort {
		case SortByPrice:
			if a.PricePerNight != b.PricePerNight {
				return a.PricePerNight < b.PricePerNight
			}
		default:
			if a.Vacancies != b.Vacancies {
				return a.Vacancies > b.Vacancies
			}
		}
		return a.Name < b.Name
	})
	return out
}
