package main

import (
	"context"
	"flag"
	"html/template"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/form/v4"
	"github.com/joho/godotenv"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
	"github.com/michaelgov-ctrl/form-lab/internal/github"
	"github.com/michaelgov-ctrl/form-lab/internal/live"
	"github.com/michaelgov-ctrl/form-lab/internal/models"
	"github.com/michaelgov-ctrl/form-lab/internal/slogloki"
	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	port       int
	logLevel   string
	lokiURL    string
	dsn        string
	dbDebug    bool
	validation string
	inrPerEUR  float64
	tls        struct {
		certFile string
		keyFile  string
	}
	github struct {
		apiURL string
		user   string
	}
	cors struct {
		trustedOrigins []string
	}
}

type repositoryLister interface {
	ListRepositories(ctx context.Context, username string) ([]github.Repository, error)
}

type application struct {
	config          config
	schemas         map[string]forms.Schema
	validationMode  forms.ValidationMode
	ids             forms.IDGenerator
	submissions     *models.SubmissionModel
	repos           repositoryLister
	liveForms       *live.Manager
	sessionManager  *scs.SessionManager
	templateCache   map[string]*template.Template
	formDecoder     *form.Decoder
	logger          *slog.Logger
	metricsRegistry *prometheus.Registry
}

func main() {
	// a missing .env is fine, flags and the environment still apply
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", envInt("PORT", 4000), "HTTP server port")
	flag.StringVar(&cfg.logLevel, "log-level", envString("LOG_LEVEL", "info"), "Logging level (trace|debug|info|warning|error)")
	flag.StringVar(&cfg.lokiURL, "loki-url", envString("LOKI_URL", ""), "Loki push URL; logs go to stdout when empty")
	flag.StringVar(&cfg.dsn, "dsn", envString("DATABASE_DSN", "form-lab.db"), "Submission archive DSN (postgres URL/key=value or sqlite path)")
	flag.BoolVar(&cfg.dbDebug, "db-debug", envString("DB_DEBUG", "") == "1", "Log SQL statements")
	flag.StringVar(&cfg.validation, "validation", envString("VALIDATION_MODE", "eager"), "Field validation mode (eager|lazy)")
	flag.Float64Var(&cfg.inrPerEUR, "inr-per-eur", envFloat("INR_PER_EUR", forms.DefaultINRPerEUR), "Rupees per euro for the currency converter")
	flag.StringVar(&cfg.tls.certFile, "tls-cert", envString("TLS_CERT_FILE", ""), "TLS certificate file; plain HTTP when empty")
	flag.StringVar(&cfg.tls.keyFile, "tls-key", envString("TLS_KEY_FILE", ""), "TLS key file")
	flag.StringVar(&cfg.github.apiURL, "github-api-url", envString("GITHUB_API_URL", github.DefaultBaseURL), "GitHub REST API base URL")
	flag.StringVar(&cfg.github.user, "github-user", envString("GITHUB_USER", "Sree-45"), "Default account for the repository listing")

	cfg.cors.trustedOrigins = strings.Fields(envString("CORS_TRUSTED_ORIGINS", ""))
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.cors.trustedOrigins = strings.Fields(val)
		return nil
	})

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.logLevel)}))
	if cfg.lokiURL != "" {
		lokiLogger, stop, err := slogloki.NewLokiLogger("form-lab", cfg.lokiURL, logLevel(cfg.logLevel))
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer stop()
		logger = lokiLogger
	}

	mode, err := forms.ParseValidationMode(cfg.validation)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	db, err := models.Open(cfg.dsn, cfg.dbDebug)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	templateCache, err := newTemplateCache()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 12 * time.Hour
	sessionManager.Cookie.Secure = cfg.tls.certFile != ""

	registry := prometheus.NewRegistry()

	app := &application{
		config:          cfg,
		schemas:         forms.Catalog(forms.Converter{INRPerEUR: cfg.inrPerEUR}),
		validationMode:  mode,
		ids:             forms.RandomIDs(10000, 99999),
		submissions:     &models.SubmissionModel{DB: db},
		repos:           github.NewClient(github.WithBaseURL(cfg.github.apiURL)),
		sessionManager:  sessionManager,
		templateCache:   templateCache,
		formDecoder:     form.NewDecoder(),
		logger:          logger,
		metricsRegistry: registry,
	}

	app.liveForms = live.NewManager(context.Background(), app.schemas,
		live.WithLogger(logger),
		live.WithMetricsRegistry(registry),
		live.WithValidationMode(mode),
		live.WithIDGenerator(app.ids),
		live.WithArchive(app.archive),
		live.WithTrustedOrigins(cfg.cors.trustedOrigins...),
	)

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}
