package models

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// unique in-memory database per test
	db, err := Open("file:"+t.Name()+"?mode=memory&cache=shared", false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func TestSubmissionInsertAndGet(t *testing.T) {
	m := &SubmissionModel{DB: newTestDB(t), Cost: bcrypt.MinCost}
	ctx := context.Background()

	id, err := m.Insert(ctx, "register", 42,
		map[string]string{"name": "Alice", "password": "longenough1"},
		map[string]bool{"password": true})
	if err != nil {
		t.Fatal(err)
	}

	s, err := m.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if s.Form != "register" || s.ReferenceID != 42 {
		t.Errorf("got form %q ref %d", s.Form, s.ReferenceID)
	}
	if s.Fields["name"] != "Alice" {
		t.Errorf("name = %q", s.Fields["name"])
	}
	if s.Fields["password"] == "longenough1" {
		t.Error("password stored in clear")
	}
	if !s.MatchesSensitive("password", "longenough1") {
		t.Error("stored hash does not match the password")
	}
	if s.MatchesSensitive("password", "wrong") {
		t.Error("stored hash matches a wrong password")
	}
}

func TestSubmissionGetMissing(t *testing.T) {
	m := &SubmissionModel{DB: newTestDB(t)}

	if _, err := m.Get(context.Background(), 99); !errors.Is(err, ErrNoRecord) {
		t.Errorf("got %v; want ErrNoRecord", err)
	}
}

func TestSubmissionLatest(t *testing.T) {
	m := &SubmissionModel{DB: newTestDB(t), Cost: bcrypt.MinCost}
	ctx := context.Background()

	for i, name := range []string{"first", "second", "third"} {
		if _, err := m.Insert(ctx, "ticket", 10000+i, map[string]string{"name": name}, nil); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Latest(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d submissions; want 2", len(got))
	}
	if got[0].Fields["name"] != "third" || got[1].Fields["name"] != "second" {
		t.Errorf("unexpected order: %q, %q", got[0].Fields["name"], got[1].Fields["name"])
	}
}

func TestIsPostgresDSN(t *testing.T) {
	tests := map[string]bool{
		"postgres://u:p@localhost:5432/forms":  true,
		"postgresql://localhost/forms":         true,
		"host=localhost user=forms dbname=lab": true,
		"form-lab.db":                          false,
		"file:test?mode=memory&cache=shared":   false,
	}

	for dsn, want := range tests {
		if got := IsPostgresDSN(dsn); got != want {
			t.Errorf("IsPostgresDSN(%q) = %v; want %v", dsn, got, want)
		}
	}
}
