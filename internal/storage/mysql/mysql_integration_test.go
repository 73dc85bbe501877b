//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kotobuki_stay/internal/domain"
	mysqlrepo "kotobuki_stay/internal/storage/mysql"
)

// ---------- small helpers ----------
func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- harness ----------
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=kotobuki",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC&clientFoundRows=true",
		"root", hostPort, "kotobuki")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func seed(t *testing.T, repo *mysqlrepo.Repo) {
	t.Helper()
	ctx := context.Background()
	lodgings := []domain.Lodging{
		{ID: "1", Name: "ホテル寿荘", Address: "神奈川県横浜市中区寿町1-1-1", Capacity: 50, Vacancies: 5,
			PricePerNight: 1800, Facilities: []string{"共同浴場", "Wi-Fi"}, Coords: &domain.Coords{Lat: 35.4437, Lon: 139.6380},
			Published: true, LastUpdated: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "グリーンハウス寿", Capacity: 30, Vacancies: 8, PricePerNight: 1500, Published: true},
		{ID: "3", Name: "準備中の宿", Capacity: 10, Vacancies: 0, Published: false},
	}
	for _, l := range lodgings {
		require.NoError(t, repo.UpsertLodging(ctx, l))
	}
	require.NoError(t, repo.UpsertService(ctx, domain.Service{ID: "s1", Name: "寿福祉センター", Category: domain.CategoryWelfare}))
	require.NoError(t, repo.UpsertProfile(ctx, domain.Profile{ID: "u-owner", Email: "owner@example.jp", Role: domain.RoleOwner}, "$2a$12$hash"))
	require.NoError(t, repo.UpsertProfile(ctx, domain.Profile{ID: "u-admin", Email: "admin@example.jp", Role: domain.RoleAdmin}, ""))
	require.NoError(t, repo.AssignOwner(ctx, domain.OwnerAssignment{OwnerID: "u-owner", LodgingID: "1"}))
	// assigning twice is harmless
	require.NoError(t, repo.AssignOwner(ctx, domain.OwnerAssignment{OwnerID: "u-owner", LodgingID: "1"}))
}

// ---------- the tests ----------
func TestRepo_MySQL(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	seed(t, repo)
	ctx := context.Background()

	t.Run("reads", func(t *testing.T) {
		l, err := repo.GetLodging(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"共同浴場", "Wi-Fi"}, l.Facilities)
		assert.Equal(t, "2025-11-01", l.LastUpdatedLabel())
		require.NotNil(t, l.Coords)

		_, err = repo.GetLodging(ctx, "404")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		pub, err := repo.ListLodgings(ctx, domain.LodgingsQuery{PublishedOnly: true})
		require.NoError(t, err)
		assert.Len(t, pub, 2)

		all, err := repo.ListLodgings(ctx, domain.LodgingsQuery{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := repo.GetLodgingsForUser(ctx, "u-owner")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "1", mine[0].ID)

		none, err := repo.GetLodgingsForUser(ctx, "u-admin")
		require.NoError(t, err)
		assert.Empty(t, none)

		owns, err := repo.IsOwner(ctx, "u-owner", "2")
		require.NoError(t, err)
		assert.False(t, owns)
	})

	t.Run("directory", func(t *testing.T) {
		p, err := repo.GetProfile(ctx, "u-admin")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, p.Role)

		c, err := repo.FindCredentials(ctx, "owner@example.jp")
		require.NoError(t, err)
		assert.Equal(t, "u-owner", c.UserID)

		_, err = repo.FindCredentials(ctx, "admin@example.jp")
		assert.ErrorIs(t, err, domain.ErrNotFound, "no password set")

		ss, err := repo.ListServices(ctx)
		require.NoError(t, err)
		assert.Len(t, ss, 1)
	})

	t.Run("vacancy update", func(t *testing.T) {
		on := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
		l, err := repo.UpdateVacancy(ctx, "1", 6, on)
		require.NoError(t, err)
		assert.Equal(t, 6, l.Vacancies)
		assert.Equal(t, "2025-11-07", l.LastUpdatedLabel())

		// Same value on the same day leaves the row untouched but matched.
		l, err = repo.UpdateVacancy(ctx, "1", 6, on)
		require.NoError(t, err)
		assert.Equal(t, 6, l.Vacancies)

		_, err = repo.UpdateVacancy(ctx, "1", 51, on)
		assert.ErrorIs(t, err, domain.ErrVacancyOutOfRange)
		l, err = repo.GetLodging(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, 6, l.Vacancies)

		_, err = repo.UpdateVacancy(ctx, "404", 1, on)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("details update", func(t *testing.T) {
		d := domain.LodgingDetails{Vacancies: 10, PricePerNight: 2000, Description: "駅近",
			Facilities: []string{}, LastUpdated: time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)}
		l, err := repo.UpdateLodgingDetails(ctx, "2", d)
		require.NoError(t, err)
		assert.Equal(t, 2000, l.PricePerNight)
		assert.Equal(t, []string{}, l.Facilities)
		assert.Equal(t, 30, l.Capacity)

		d.PricePerNight = -100
		_, err = repo.UpdateLodgingDetails(ctx, "2", d)
		assert.Error(t, err, "check constraint rejects negative price")
	})
}
