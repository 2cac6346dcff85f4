package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
	"github.com/prometheus/client_golang/prometheus"
)

const submitTimeout = 5 * time.Second

type ManagerOptions struct {
	logger         *slog.Logger
	registry       *prometheus.Registry
	mode           forms.ValidationMode
	ids            forms.IDGenerator
	archive        forms.ArchiveFunc
	trustedOrigins []string
}

type ManagerOption func(*ManagerOptions)

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *ManagerOptions) {
		m.logger = logger
	}
}

func WithMetricsRegistry(registry *prometheus.Registry) ManagerOption {
	return func(m *ManagerOptions) {
		m.registry = registry
	}
}

func WithValidationMode(mode forms.ValidationMode) ManagerOption {
	return func(m *ManagerOptions) {
		m.mode = mode
	}
}

func WithIDGenerator(ids forms.IDGenerator) ManagerOption {
	return func(m *ManagerOptions) {
		m.ids = ids
	}
}

func WithArchive(fn forms.ArchiveFunc) ManagerOption {
	return func(m *ManagerOptions) {
		m.archive = fn
	}
}

func WithTrustedOrigins(origins ...string) ManagerOption {
	return func(m *ManagerOptions) {
		m.trustedOrigins = origins
	}
}

// Manager mounts one form controller per websocket connection and routes
// the connection's events to it.
type Manager struct {
	ctx context.Context

	clients   ClientList
	clientsMu sync.RWMutex

	schemas  map[string]forms.Schema
	handlers map[string]EventHandler
	upgrader websocket.Upgrader

	ManagerOptions
	metrics *ManagerMetrics
}

func NewManager(ctx context.Context, schemas map[string]forms.Schema, opts ...ManagerOption) *Manager {
	m := &Manager{
		ctx:      ctx,
		clients:  make(ClientList),
		schemas:  schemas,
		handlers: make(map[string]EventHandler),
		metrics:  &ManagerMetrics{},
	}

	defaults := &ManagerOptions{
		logger:   slog.New(slog.NewTextHandler(os.Stdout, nil)),
		registry: prometheus.NewRegistry(),
		mode:     forms.Eager,
		ids:      forms.RandomIDs(10000, 99999),
	}

	for _, opt := range opts {
		opt(defaults)
	}

	m.ManagerOptions = *defaults

	m.upgrader = websocket.Upgrader{
		CheckOrigin:     m.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	m.registerManagerMetrics()
	m.registerEventHandlers()

	return m
}

func (m *Manager) registerEventHandlers() {
	m.handlers[EventFieldChange] = m.fieldChangeHandler
	m.handlers[EventFieldBlur] = m.fieldBlurHandler
	m.handlers[EventSubmit] = m.submitHandler
}

func (m *Manager) addClient(c *Client) {
	m.logger.Debug("new client", "session", c.ID)

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	m.clients[c] = true
	m.metrics.totalClients.Inc()
	m.metrics.currentClients.Inc()
}

func (m *Manager) removeClient(c *Client) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	if _, ok := m.clients[c]; ok {
		m.logger.Debug("removed client", "session", c.ID)
		c.close()
		delete(m.clients, c)
		m.metrics.currentClients.Dec()
	}
}

// Clients reports the number of mounted forms.
func (m *Manager) Clients() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	return len(m.clients)
}

// ServeWS upgrades the request and mounts a fresh controller for the named form.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request, form string) {
	schema, ok := m.schemas[form]
	if !ok {
		http.NotFound(w, r)
		return
	}

	m.logger.Info("new connection", "origin", r.RemoteAddr, "form", form)

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Error(err.Error())
		return
	}

	client := NewClient(conn, m)

	controller, err := forms.New(schema,
		forms.WithNotifier(client),
		forms.WithIDGenerator(m.ids),
		forms.WithValidationMode(m.mode),
		forms.WithArchive(m.archive),
	)
	if err != nil {
		m.logger.Error("failed to mount form", "form", form, "error", err)
		conn.Close()
		return
	}
	client.controller = controller

	m.addClient(client)

	if err := client.sendState(false); err != nil {
		m.logger.Error("failed to send initial state", "error", err)
	}

	go client.readEvents(m.logger)
	go client.writeEvents(m.logger)
}

func (m *Manager) routeEvent(event Event, c *Client) error {
	handler, ok := m.handlers[event.Type]
	if !ok {
		return errors.New("there is no such event type")
	}

	m.metrics.eventsTotal.With(prometheus.Labels{"type": event.Type}).Inc()

	if err := handler(event, c); err != nil {
		return err
	}

	return nil
}

func (m *Manager) fieldChangeHandler(event Event, c *Client) error {
	var change FieldChangeEvent
	if err := json.Unmarshal(event.Payload, &change); err != nil {
		return fmt.Errorf("bad payload in request: %w", err)
	}

	field, err := forms.ParseField(change.Field)
	if err != nil {
		return err
	}

	if err := c.controller.OnFieldChange(field, change.Value); err != nil {
		return err
	}

	return c.sendState(false)
}

func (m *Manager) fieldBlurHandler(event Event, c *Client) error {
	var blur FieldBlurEvent
	if err := json.Unmarshal(event.Payload, &blur); err != nil {
		return fmt.Errorf("bad payload in request: %w", err)
	}

	field, err := forms.ParseField(blur.Field)
	if err != nil {
		return err
	}

	if err := c.controller.OnFieldBlur(field); err != nil {
		return err
	}

	return c.sendState(false)
}

func (m *Manager) submitHandler(event Event, c *Client) error {
	ctx, cancel := context.WithTimeout(m.ctx, submitTimeout)
	defer cancel()

	form := c.controller.Schema().Name

	r, err := c.controller.OnSubmit(ctx)
	reset := err == nil
	switch {
	case errors.Is(err, forms.ErrSubmissionBlocked):
		m.metrics.submissionsTotal.With(prometheus.Labels{"form": form, "outcome": "blocked"}).Inc()
	case err != nil:
		m.metrics.submissionsTotal.With(prometheus.Labels{"form": form, "outcome": "error"}).Inc()
		m.logger.Error("submission failed", "session", c.ID, "form", form, "error", err)
		return errors.New("submission could not be saved, please try again")
	default:
		m.metrics.submissionsTotal.With(prometheus.Labels{"form": form, "outcome": "accepted"}).Inc()
		m.logger.Info("form submitted", "session", c.ID, "form", form, "reference_id", r.ReferenceID)
	}

	return c.sendState(reset)
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if slices.Contains(m.trustedOrigins, origin) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == r.Host
}

type ManagerMetrics struct {
	totalClients     prometheus.Counter
	currentClients   prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
}

func (m *Manager) registerManagerMetrics() {
	m.metrics.totalClients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "live_forms_clients_total",
			Help: "Total number of forms mounted over websocket",
		},
	)

	m.metrics.currentClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_forms_clients_current",
			Help: "Current number of mounted websocket forms",
		},
	)

	m.metrics.eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_forms_events_total",
			Help: "Total form events received by type",
		},
		[]string{"type"},
	)

	m.metrics.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_forms_submissions_total",
			Help: "Total live form submissions by form and outcome",
		},
		[]string{"form", "outcome"},
	)

	m.registry.MustRegister(m.metrics.totalClients, m.metrics.currentClients, m.metrics.eventsTotal, m.metrics.submissionsTotal)
}
