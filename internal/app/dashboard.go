package app

import (
	"context"

	"kotobuki_stay/internal/domain"
)

type Dashboard struct {
	Principal      domain.Principal
	Lodgings       []domain.Lodging
	Count          int
	TotalVacancies int
	TotalCapacity  int
}

type DashboardService struct{ authz *Authorizer }

func NewDashboardService(a *Authorizer) *DashboardService { return &DashboardService{authz: a} }

// Load lists the lodgings p manages with their aggregates. An empty list
// is not an error; every sum is then zero.
func (s *DashboardService) Load(ctx context.Context, p domain.Principal) (Dashboard, error) {
	ls, err := s.authz.ManagedLodgings(ctx, p)
	if err != nil {
		return Dashboard{}, err
	}
	d := Summarize(ls)
	d.Principal = p
	return d, nil
}

// Summarize computes the dashboard aggregates over ls.
func Summarize(ls []domain.Lodging) Dashboard {
	d := Dashboard{Lodgings: ls, Count: len(ls)}
	for _, l := range ls {
		d.TotalVacancies += l.Vacancies
		d.TotalCapacity += l.Capacity
	}
	return d
}
