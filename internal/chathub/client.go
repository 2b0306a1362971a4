package chathub

import "salarythief/backend/internal/models"

// Client is the interface for any type of connection (e.g., WebSocket, a
// test double). It abstracts the underlying communication mechanism so the
// hub can bind logical user identities to connections without caring about
// the transport.
type Client interface {
	// GetUserID returns the logical user currently bound to this connection,
	// or "" if no register event has been processed for it yet.
	GetUserID() string
	// SetUserID binds a logical user to this connection. Called only from
	// the hub's event loop while handling a register event.
	SetUserID(string)

	// GetSendChannel returns the channel through which the hub pushes
	// outbound events to this specific connection. It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps, which handle incoming
	// and outgoing events.
	Run()
	// Close shuts down the client's connection and associated channels.
	// Safe to call more than once.
	Close()
}

// InboundEvent couples a decoded client event with the connection it
// arrived on. The hub resolves the connection to a logical identity itself;
// clients never claim an identity outside of a register event.
type InboundEvent struct {
	Client Client
	Event  models.ClientEvent
}
