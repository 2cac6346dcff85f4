package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListRepositories(t *testing.T) {
	var gotPath, gotMethod string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"repository1"},{"name":"repository2"},{"name":"repository3","stargazers_count":4}]`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL+"/"), WithHTTPClient(ts.Client()))

	repos, err := c.ListRepositories(context.Background(), "Sree-45")
	if err != nil {
		t.Fatal(err)
	}

	if gotMethod != http.MethodGet || gotPath != "/users/Sree-45/repos" {
		t.Errorf("request = %s %s; want GET /users/Sree-45/repos", gotMethod, gotPath)
	}

	want := []Repository{{Name: "repository1"}, {Name: "repository2"}, {Name: "repository3", Stars: 4}}
	if diff := cmp.Diff(want, repos); diff != "" {
		t.Errorf("repositories mismatch (-want +got):\n%s", diff)
	}
}

func TestListRepositoriesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))

	_, err := c.ListRepositories(context.Background(), "nobody")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v; want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Not Found" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestListRepositoriesEmptyUsername(t *testing.T) {
	c := NewClient()
	if _, err := c.ListRepositories(context.Background(), "  "); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("got %v; want ErrEmptyUsername", err)
	}
}

func TestListRepositoriesEscapesUsername(t *testing.T) {
	var gotRaw string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.EscapedPath()
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	if _, err := c.ListRepositories(context.Background(), "a/b"); err != nil {
		t.Fatal(err)
	}
	if gotRaw != "/users/a%2Fb/repos" {
		t.Errorf("escaped path = %q", gotRaw)
	}
}
