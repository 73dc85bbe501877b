package domain_test

import (
	"math/rand"
	"testing"

	"kotobuki_stay/internal/domain"
)

func TestNextVacancies_Bounds(t *testing.T) {
	cases := []struct {
		op            domain.VacancyOp
		cur, capacity int
		want          int
		wantWrite     bool
	}{
		{domain.OpIncrement, 5, 50, 6, true},
		{domain.OpIncrement, 50, 50, 50, false},
		{domain.OpDecrement, 1, 50, 0, true},
		{domain.OpDecrement, 0, 50, 0, false},
		{domain.OpSetFull, 7, 50, 0, true},
		{domain.OpSetFull, 0, 50, 0, false},
		{domain.OpSetAvailable, 7, 50, 50, true},
		{domain.OpSetAvailable, 50, 50, 50, false},
		{domain.OpIncrement, 0, 0, 0, false},
		{domain.VacancyOp("bogus"), 3, 10, 3, false},
	}
	for _, c := range cases {
		got, ok := domain.NextVacancies(c.op, c.cur, c.capacity)
		if got != c.want || ok != c.wantWrite {
			t.Errorf("%s(%d/%d) = %d,%v; want %d,%v", c.op, c.cur, c.capacity, got, ok, c.want, c.wantWrite)
		}
	}
}

func TestNextVacancies_RandomSequencesStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		capacity := rng.Intn(60)
		cur := rng.Intn(capacity + 1)
		for step := 0; step < 500; step++ {
			op := domain.VacancyOps[rng.Intn(len(domain.VacancyOps))]
			if next, ok := domain.NextVacancies(op, cur, capacity); ok {
				cur = next
			}
			if cur < 0 || cur > capacity {
				t.Fatalf("run %d step %d: %d outside [0,%d]", run, step, cur, capacity)
			}
		}
	}
}

func TestParseVacancyOp(t *testing.T) {
	if op, err := domain.ParseVacancyOp("set_full"); err != nil || op != domain.OpSetFull {
		t.Fatalf("got %q, %v", op, err)
	}
	if _, err := domain.ParseVacancyOp("double"); err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestPrincipalFor(t *testing.T) {
	admin := domain.PrincipalFor(domain.Profile{ID: "u1", Role: domain.RoleAdmin})
	if _, ok := admin.(domain.Admin); !ok || !admin.ManagesAll() || !admin.FullDashboard() {
		t.Fatalf("expected admin principal, got %#v", admin)
	}
	owner := domain.PrincipalFor(domain.Profile{ID: "u2", Role: domain.ParseRole("")})
	if _, ok := owner.(domain.Owner); !ok || owner.ManagesAll() || owner.FullDashboard() {
		t.Fatalf("expected owner principal, got %#v", owner)
	}
	if n := owner.Profile().DisplayName(); n != "" {
		t.Fatalf("display name: %q", n)
	}
}
