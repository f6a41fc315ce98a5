package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// Wire subjects published by the backend notification service.
const (
	SubjectHazardAlert = "roadpulse.hazard.alert"
	SubjectSystem      = "roadpulse.system"
)

// Default NATS channel configuration.
const (
	defaultConnectTimeout = 5 * time.Second
	defaultEventBuffer    = 256
	defaultClientName     = "roadpulse-dashboard"
)

// hazardAlertPayload mirrors the wire shape of a hazard_alert message.
type hazardAlertPayload struct {
	ID          string  `json:"id,omitempty"`
	HazardType  string  `json:"hazard_type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Location    *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id"`
}

// systemPayload mirrors the wire shape of a system message. The pipeline is
// agnostic to these beyond observing them.
type systemPayload struct {
	Message string `json:"message"`
}

// NATSChannel implements Channel over a token-authenticated NATS connection.
type NATSChannel struct {
	url    string
	name   string
	buffer int

	mu     sync.Mutex
	conn   *nats.Conn
	subs   []*nats.Subscription
	state  State
	closed bool

	events chan model.HazardEvent
	states chan State

	logger logger.Logger
}

// NATSOption applies a configuration option to the NATSChannel.
type NATSOption func(*NATSChannel)

// WithURL sets the NATS server URL.
func WithURL(url string) NATSOption {
	return func(c *NATSChannel) {
		if url != "" {
			c.url = url
		}
	}
}

// WithName sets the client connection name.
func WithName(name string) NATSOption {
	return func(c *NATSChannel) {
		if name != "" {
			c.name = name
		}
	}
}

// WithEventBuffer sets the inbound event buffer size.
func WithEventBuffer(n int) NATSOption {
	return func(c *NATSChannel) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) NATSOption {
	return func(c *NATSChannel) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewNATSChannel creates a disconnected channel.
func NewNATSChannel(opts ...NATSOption) *NATSChannel {
	c := &NATSChannel{
		url:    nats.DefaultURL,
		name:   defaultClientName,
		buffer: defaultEventBuffer,
		state:  StateDisconnected,
		logger: logger.Get().Named("channel"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.events = make(chan model.HazardEvent, c.buffer)
	c.states = make(chan State, 4)

	return c
}

// Connect opens the NATS connection and subscribes to the hazard and system
// subjects. No automatic reconnection: a lost connection flips the state and
// stays down until the owner builds a new channel.
func (c *NATSChannel) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnect
	}
	if c.conn != nil {
		return ErrAlreadyConnected
	}

	opts := []nats.Option{
		nats.Name(c.name),
		nats.Token(token),
		nats.Timeout(defaultConnectTimeout),
		nats.MaxReconnects(0),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.onDisconnect(err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.onDisconnect(nil)
		}),
	}

	conn, err := nats.Connect(c.url, opts...)
	if err != nil {
		// Observable, not exceptional: the channel stays disconnected and
		// the owner degrades.
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	hazardSub, err := conn.Subscribe(SubjectHazardAlert, c.handleHazardMsg)
	if err != nil {
		conn.Close()
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	systemSub, err := conn.Subscribe(SubjectSystem, c.handleSystemMsg)
	if err != nil {
		_ = hazardSub.Unsubscribe()
		conn.Close()
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	c.conn = conn
	c.subs = []*nats.Subscription{hazardSub, systemSub}
	c.setState(StateConnected)
	metrics.UpdateChannelConnected(true)

	c.logger.Info(ctx, "live channel connected", logger.String("url", c.url))
	return nil
}

// Events returns the inbound hazard stream.
func (c *NATSChannel) Events() <-chan model.HazardEvent {
	return c.events
}

// StateChanges notifies on state transitions.
func (c *NATSChannel) StateChanges() <-chan State {
	return c.states
}

// State returns the current connection state.
func (c *NATSChannel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Disconnect closes the subscription and the connection, then closes the
// event stream. Idempotent.
func (c *NATSChannel) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	subs := c.subs
	c.conn = nil
	c.subs = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
	if conn != nil {
		conn.Close()
	}
	metrics.UpdateChannelConnected(false)

	close(c.events)
}

// handleHazardMsg decodes a hazard_alert message and pushes it onto the
// event stream. Malformed payloads are counted and dropped, never a panic.
func (c *NATSChannel) handleHazardMsg(msg *nats.Msg) {
	ev, err := decodeHazardAlert(msg.Data)
	if err != nil {
		metrics.RecordEventRejected(metrics.ReasonMalformed)
		c.logger.Warn(context.Background(), "malformed hazard event dropped", logger.Error(err))
		return
	}

	select {
	case c.events <- ev:
	default:
		// Consumer is behind and the buffer is full; drop rather than block
		// the NATS delivery goroutine.
		metrics.RecordQueueEnqueueError()
		c.logger.Warn(context.Background(), "event buffer full, hazard dropped",
			logger.String("hazardID", ev.ID),
		)
	}
}

// handleSystemMsg observes system messages without acting on them.
func (c *NATSChannel) handleSystemMsg(msg *nats.Msg) {
	var payload systemPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return
	}
	c.logger.Info(context.Background(), "system message", logger.String("message", payload.Message))
}

// decodeHazardAlert converts a wire payload into a HazardEvent. An event
// without a location is non-admissible by definition and rejected here.
func decodeHazardAlert(data []byte) (model.HazardEvent, error) {
	var payload hazardAlertPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.HazardEvent{}, fmt.Errorf("decode hazard alert: %w", err)
	}
	if payload.Location == nil {
		return model.HazardEvent{}, ErrMissingLocation
	}

	ev := model.HazardEvent{
		ID:          payload.ID,
		Category:    payload.HazardType,
		Description: payload.Description,
		Confidence:  payload.Confidence,
		Position: model.Position{
			Latitude:  payload.Location.Lat,
			Longitude: payload.Location.Lon,
		},
		ReportedBy: payload.UserID,
		ReportedAt: time.Unix(payload.Timestamp, 0).UTC(),
	}

	// Some backends omit the id; derive a stable one so deduplication still
	// holds across redelivery.
	if ev.ID == "" {
		ev.ID = fmt.Sprintf("%s_%s_%d_%.5f_%.5f",
			payload.UserID, payload.HazardType, payload.Timestamp,
			payload.Location.Lat, payload.Location.Lon)
	}

	return ev, nil
}

func (c *NATSChannel) onDisconnect(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	metrics.UpdateChannelConnected(false)
	metrics.RecordChannelDisconnect()
	if err != nil {
		c.logger.Warn(context.Background(), "live channel disconnected", logger.Error(err))
	}
	c.notify(StateDisconnected)
}

func (c *NATSChannel) setState(s State) {
	c.state = s
	c.notify(s)
}

func (c *NATSChannel) notify(s State) {
	select {
	case c.states <- s:
	default:
		// Nobody is draining state changes; the State() getter still
		// reflects the truth.
	}
}
