//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"trip_hotels/internal/app"
	"trip_hotels/internal/domain"
	mysqlrepo "trip_hotels/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=trip",
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
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "trip")

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
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_PartitionLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Concurrent first sightings of the same city create the table once.
	reg := app.NewSchemaRegistry(repo, nil)
	var wg sync.WaitGroup
	statuses := make([]domain.SchemaStatus, 4)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, err := reg.EnsureSchema(ctx, "hong_kong")
			if err != nil {
				t.Errorf("EnsureSchema: %v", err)
			}
			statuses[i] = st
		}(i)
	}
	wg.Wait()
	created := 0
	for _, st := range statuses {
		if st == domain.SchemaCreated {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one creation, got %v", statuses)
	}

	parts, err := repo.ListPartitions(ctx)
	if err != nil {
		t.Fatalf("ListPartitions: %v", err)
	}
	if !slices.Contains(parts, "hong_kong") {
		t.Fatalf("partition missing: %v", parts)
	}

	// tables that aren't hotel partitions stay invisible and can't be claimed
	if _, err := db.ExecContext(ctx, "CREATE TABLE users (id INT PRIMARY KEY)"); err != nil {
		t.Fatalf("create users: %v", err)
	}
	if parts, _ := repo.ListPartitions(ctx); slices.Contains(parts, "users") {
		t.Fatalf("foreign table listed as partition: %v", parts)
	}
	if err := repo.CreatePartition(ctx, "users"); !errors.Is(err, domain.ErrInvalidPartition) {
		t.Fatalf("expected ErrInvalidPartition for foreign table, got %v", err)
	}

	hs := []domain.HotelRecord{
		{Title: "Harbour View", Rating: pfloat(8.7), Location: "1 Harbour Rd", Latitude: 22.28, Longitude: 114.17,
			RoomType: "Double", DiscountPrice: pfloat(120.5), BasePrice: pfloat(150), ImageRef: pstr("images/harbour_view.jpg")},
		{Title: "Kowloon Inn", Location: "2 Nathan Rd", Latitude: 22.3, Longitude: 114.17, RoomType: "Twin"},
	}
	if err := repo.InsertHotels(ctx, "hong_kong", hs); err != nil {
		t.Fatalf("InsertHotels: %v", err)
	}

	got, err := repo.ListHotels(ctx, "hong_kong", 10)
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if len(got) != 2 || got[0].ID == 0 || got[0].Title != "Harbour View" {
		t.Fatalf("unexpected hotels: %+v", got)
	}
	if got[1].Rating != nil || got[1].DiscountPrice != nil || got[1].ImageRef != nil {
		t.Fatalf("nullable columns should stay NULL: %+v", got[1])
	}

	if _, err := repo.ListHotels(ctx, "atlantis", 10); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown partition, got %v", err)
	}
}
