// Package channel maintains the authenticated real-time connection to the
// backend notification service and redelivers structured hazard events.
//
// A Channel instance is single-use: one Connect, one Disconnect. Token
// changes are handled by the session owner tearing the old instance down
// completely and creating a new one, which is what guarantees no duplicate
// delivery across reconnects.
package channel

import (
	"context"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// State describes the observable connection state. Connectivity failures are
// surfaced here, never as errors escaping to terminate the session.
type State string

// Connection states.
const (
	StateDisconnected State = "disconnected"
	StateConnected    State = "connected"
)

// Channel is the live event channel contract.
type Channel interface {
	// Connect opens the channel authenticated with token. A network failure
	// leaves the channel in StateDisconnected; the returned error is
	// advisory and the caller is expected to degrade, not abort.
	Connect(ctx context.Context, token string) error

	// Events returns the inbound hazard stream, delivered in arrival order.
	// The channel is closed on Disconnect.
	Events() <-chan model.HazardEvent

	// StateChanges notifies on connect/disconnect transitions so the owner
	// can decide whether to re-establish.
	StateChanges() <-chan State

	// State returns the current connection state.
	State() State

	// Disconnect closes the channel. It must run on every exit path of the
	// owning session and is safe to call at any time, any number of times.
	Disconnect()
}
