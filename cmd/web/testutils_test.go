package main

import (
	"bytes"
	"context"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/form/v4"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
	"github.com/michaelgov-ctrl/form-lab/internal/github"
	"github.com/michaelgov-ctrl/form-lab/internal/live"
	"github.com/michaelgov-ctrl/form-lab/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

var csrfTokenRX = regexp.MustCompile(`<input type='hidden' name='csrf_token' value='(.+)'>`)

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()

	matches := csrfTokenRX.FindStringSubmatch(body)
	if len(matches) < 2 {
		t.Fatal("no csrf token found in body")
	}

	return html.UnescapeString(matches[1])
}

type stubLister struct {
	mu    sync.Mutex
	users []string
	repos []github.Repository
	err   error
}

func (s *stubLister) ListRepositories(_ context.Context, username string) ([]github.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = append(s.users, username)
	return s.repos, s.err
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	templateCache, err := newTemplateCache()
	if err != nil {
		t.Fatal(err)
	}

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := models.Open(dsn, false)
	if err != nil {
		t.Fatal(err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 12 * time.Hour
	sessionManager.Cookie.Secure = true

	var cfg config
	cfg.github.user = "Sree-45"

	app := &application{
		config:          cfg,
		schemas:         forms.Catalog(forms.Converter{INRPerEUR: forms.DefaultINRPerEUR}),
		validationMode:  forms.Eager,
		ids:             forms.SequenceIDs(10000),
		submissions:     &models.SubmissionModel{DB: db, Cost: bcrypt.MinCost},
		repos:           &stubLister{},
		sessionManager:  sessionManager,
		templateCache:   templateCache,
		formDecoder:     form.NewDecoder(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		metricsRegistry: prometheus.NewRegistry(),
	}

	app.liveForms = live.NewManager(context.Background(), app.schemas,
		live.WithLogger(app.logger),
		live.WithMetricsRegistry(app.metricsRegistry),
		live.WithIDGenerator(app.ids),
		live.WithArchive(app.archive),
	)

	return app
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewTLSServer(h)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	ts.Client().Jar = jar

	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func (ts *testServer) get(t *testing.T, urlPath string) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().Get(ts.URL + urlPath)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}
	body = bytes.TrimSpace(body)

	return rs.StatusCode, rs.Header, string(body)
}

func (ts *testServer) postForm(t *testing.T, urlPath string, form url.Values) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().PostForm(ts.URL+urlPath, form)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}
	body = bytes.TrimSpace(body)

	return rs.StatusCode, rs.Header, string(body)
}
