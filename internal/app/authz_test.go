package app_test

import (
	"context"
	"errors"
	"testing"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

func TestResolve(t *testing.T) {
	repo := seededStore()
	a := app.NewAuthorizer(repo, repo)
	ctx := context.Background()

	p, err := a.Resolve(ctx, adminProfile.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := p.(domain.Admin); !ok {
		t.Fatalf("expected Admin, got %T", p)
	}
	p, err = a.Resolve(ctx, ownerProfile.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := p.(domain.Owner); !ok {
		t.Fatalf("expected Owner, got %T", p)
	}
	if _, err := a.Resolve(ctx, "ghost"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := a.Resolve(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestManagedLodging(t *testing.T) {
	repo := seededStore()
	a := app.NewAuthorizer(repo, repo)
	ctx := context.Background()
	admin := domain.PrincipalFor(adminProfile)
	owner := domain.PrincipalFor(ownerProfile)
	other := domain.PrincipalFor(otherProfile)

	if l, err := a.ManagedLodging(ctx, admin, "2"); err != nil || l.ID != "2" {
		t.Fatalf("admin should bypass ownership: %+v %v", l, err)
	}
	if l, err := a.ManagedLodging(ctx, owner, "1"); err != nil || l.ID != "1" {
		t.Fatalf("owner should reach own lodging: %+v %v", l, err)
	}
	// not owned and not existing look the same
	if _, err := a.ManagedLodging(ctx, owner, "2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unowned lodging, got %v", err)
	}
	if _, err := a.ManagedLodging(ctx, other, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if _, err := a.ManagedLodging(ctx, admin, "404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing lodging, got %v", err)
	}
}

func TestDashboard_AdminSeesAllOwnerSeesAssigned(t *testing.T) {
	repo := seededStore()
	svc := app.NewDashboardService(app.NewAuthorizer(repo, repo))
	ctx := context.Background()

	d, err := svc.Load(ctx, domain.PrincipalFor(adminProfile))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.Count != 2 || d.TotalVacancies != 13 || d.TotalCapacity != 80 {
		t.Fatalf("admin aggregates: %+v", d)
	}
	if d.Lodgings[0].Name != "グリーンハウス寿" {
		t.Fatalf("admin list should be ordered by name: %v", names(d.Lodgings))
	}

	d, err = svc.Load(ctx, domain.PrincipalFor(ownerProfile))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.Count != 1 || d.TotalVacancies != 5 || d.TotalCapacity != 50 {
		t.Fatalf("owner aggregates: %+v", d)
	}

	d, err = svc.Load(ctx, domain.PrincipalFor(otherProfile))
	if err != nil {
		t.Fatalf("empty list must not be an error: %v", err)
	}
	if d.Count != 0 || d.TotalVacancies != 0 || d.TotalCapacity != 0 {
		t.Fatalf("empty aggregates: %+v", d)
	}
}

func TestSummarize_MatchesArithmeticSum(t *testing.T) {
	ls := []domain.Lodging{{Vacancies: 1, Capacity: 10}, {Vacancies: 0, Capacity: 5}, {Vacancies: 9, Capacity: 9}}
	d := app.Summarize(ls)
	if d.Count != 3 || d.TotalVacancies != 10 || d.TotalCapacity != 24 {
		t.Fatalf("unexpected: %+v", d)
	}
}
