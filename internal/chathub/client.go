package chathub

import "pairlink/backend/internal/models"

// Client is the interface for one connected session. It abstracts the
// underlying transport so the hub can manage sessions uniformly (the
// production implementation is WebSocketClient; tests plug in mocks).
type Client interface {
	// GetUserID returns the authenticated user id bound to the session.
	GetUserID() string
	// GetDisplayName returns the user's display name for presence and
	// message events.
	GetDisplayName() string

	// GetSendChannel returns the channel through which the hub delivers
	// events to this session.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the session's read and write pumps.
	Run()
	// Close shuts down the session's outbound channel.
	Close()
}

// Publisher is the outbound side of the hub, used by the matcher, reveal
// coordinator and media ingestor to emit events.
type Publisher interface {
	// ToRoom delivers an event to every session subscribed to a room.
	// When exclude is non-empty, that user's sessions are skipped.
	// Publishing to a room with no subscribers is a no-op.
	ToRoom(roomID, exclude string, evt models.ServerEvent)
	// ToUser delivers an event to the sessions on a user channel.
	ToUser(userID string, evt models.ServerEvent)
}
