package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10 // 90% of pongWait
)

// maxMessageSize fits a field_change carrying the longest bounded field,
// even when every character is escaped by the browser's JSON encoder.
const maxMessageSize = 8192

// Client is one mounted form: a websocket connection owning its own controller.
type Client struct {
	ID         string
	connection *websocket.Conn
	manager    *Manager
	controller *forms.Controller

	// egress is used to avoid concurrent writes on the websocket connection for events
	egress    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

type ClientList map[*Client]bool

func NewClient(conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:         uuid.NewString(),
		connection: conn,
		manager:    manager,
		egress:     make(chan Event, 16),
		done:       make(chan struct{}),
	}
}

// Notify implements forms.Notifier by pushing a notification event to the browser.
func (c *Client) Notify(_ context.Context, message string) {
	evt, err := NewOutgoingEvent(EventNotification, NotificationEvent{Message: message})
	if err != nil {
		return
	}
	c.send(evt)
}

func (c *Client) send(evt Event) {
	select {
	case c.egress <- evt:
	case <-c.done:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.connection.Close()
	})
}

// sendState pushes the controller's state; reset marks the state left by an
// accepted submit so the browser clears its inputs.
func (c *Client) sendState(reset bool) error {
	evt, err := NewOutgoingEvent(EventFormState, FormStateEvent{
		Reset:   reset,
		Session: c.ID,
		Form:    c.controller.Schema().Name,
		Values:  c.controller.RedactedValues(),
		Errors:  c.controller.Errors(),
		Valid:   c.controller.Valid(),
	})
	if err != nil {
		return err
	}

	c.send(evt)
	return nil
}

func (c *Client) readEvents(logger *slog.Logger) {
	defer func() {
		c.manager.removeClient(c)
	}()

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Error(err.Error())
		return
	}

	c.connection.SetReadLimit(maxMessageSize)
	c.connection.SetPongHandler(c.pongHandler)

	for {
		_, payload, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("error reading message", "error", err)
			}
			break
		}

		var req Event
		logger.Debug("received payload", "session", c.ID, "payload", string(payload))
		if err := json.Unmarshal(payload, &req); err != nil {
			logger.Error("error unmarshalling event", "error", err)
			break
		}

		if err := c.manager.routeEvent(req, c); err != nil {
			logger.Debug("error handling event", "session", c.ID, "type", req.Type, "error", err)
			c.send(NewErrorEvent(err.Error()))
		}
	}
}

func (c *Client) writeEvents(logger *slog.Logger) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.manager.removeClient(c)
	}()

	for {
		select {
		case message := <-c.egress:
			data, err := json.Marshal(message)
			if err != nil {
				logger.Error("error marshalling message", "error", err)
				return
			}

			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Error("failed to send message", "error", err)
				return
			}

			logger.Debug("message sent", "session", c.ID, "type", message.Type)
		case <-ticker.C:
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte(``)); err != nil {
				logger.Error("ping error", "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}
