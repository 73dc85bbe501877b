//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "kotobuki_stay/internal/adapters/http_server"
	"kotobuki_stay/internal/app"
	mysqlrepo "kotobuki_stay/internal/storage/mysql"
)

// ---------- helpers ----------

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
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	require.NoError(t, err)
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		require.NoError(t, err, f)
		_, err = db.Exec(string(sqlBytes))
		require.NoError(t, err, "exec %s", f)
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "dockertest")
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=kotobuki"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mysql")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/kotobuki?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC&clientFoundRows=true",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}), "connect mysql")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---------- the test ----------

func TestHTTP_EndToEnd_OwnerUpdatesVacancies(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// the shipped seed document
	f, err := os.Open(filepath.Join("..", "..", "seed", "kotobuki.json"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := app.DecodeSeed(f)
	require.NoError(t, err)
	rep, err := app.NewSeedService(repo, nil, 4).Run(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, 8, rep.Lodgings)

	authz := app.NewAuthorizer(repo, repo)
	sessions, err := server.NewSessions("", false, authz)
	require.NoError(t, err)
	q := app.NewQueryService(repo, repo, nil, 0)
	site, err := server.NewSite(server.SiteDeps{
		Queries:   q,
		Dashboard: app.NewDashboardService(authz),
		Commands:  app.NewLodgingCommands(repo, authz, nil),
		Authz:     authz,
		Auth:      app.NewAuthenticator(repo, authz),
		Sessions:  sessions,
	})
	require.NoError(t, err)
	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q})
	srv.MountSite(site)
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// public API sees every published lodging
	res, err := http.Get(ts.URL + "/api/v1/lodgings")
	require.NoError(t, err)
	var listing struct {
		Items []struct {
			ID        string `json:"id"`
			Vacancies int    `json:"vacancies"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&listing))
	res.Body.Close()
	assert.Len(t, listing.Items, 8)

	// owner signs in and presses +1 on their lodging
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	res, err = c.PostForm(ts.URL+"/login", url.Values{"email": {"kotobukiso@kotobuki.example"}, "password": {"change-me-owner"}})
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res, err = c.PostForm(ts.URL+"/dashboard/lodgings/lodging-1/vacancy", url.Values{"op": {"increment"}})
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	l, err := repo.GetLodging(ctx, "lodging-1")
	require.NoError(t, err)
	assert.Equal(t, 6, l.Vacancies)

	// lodging-8 is not theirs
	res, err = c.PostForm(ts.URL+"/dashboard/lodgings/lodging-8/vacancy", url.Values{"op": {"decrement"}})
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// negative price never reaches the CHECK constraint
	res, err = c.PostForm(ts.URL+"/dashboard/edit/lodging-1", url.Values{"vacancies": {"6"}, "price_per_night": {"-100"}})
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	l, err = repo.GetLodging(ctx, "lodging-1")
	require.NoError(t, err)
	assert.Equal(t, 1800, l.PricePerNight)
}
