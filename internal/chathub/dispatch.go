package chathub

import (
	"log"

	"pairlink/backend/internal/models"
)

// handleIncoming routes one client event. Errors never propagate back over
// the wire; they are logged at this boundary and the connection stays up.
func (m *ManagerService) handleIncoming(ev models.ClientEvent) {
	switch ev.Event {
	case models.EventText:
		m.handleText(ev)
	case models.EventTyping:
		m.ToRoom(ev.Room, ev.SenderID, models.ServerEvent{
			Event: models.EventTyping,
			Room:  ev.Room,
			User:  m.displayName(ev.SenderID),
		})
	case models.EventStopTyping:
		m.ToRoom(ev.Room, ev.SenderID, models.ServerEvent{
			Event: models.EventStopTyping,
			Room:  ev.Room,
		})
	case models.EventRequestReveal:
		if m.Reveals == nil {
			return
		}
		if _, err := m.Reveals.Signal(ev.SenderID, ev.ReceiverID, ev.Room); err != nil {
			log.Printf("ERROR: reveal signal from %s failed: %v", ev.SenderID, err)
		}
	case models.EventImage:
		m.enqueueMedia(ev, ev.ImageData, models.MessageImage)
	case models.EventAudio:
		m.enqueueMedia(ev, ev.AudioData, models.MessageAudio)
	default:
		log.Printf("unknown client event %q from %s", ev.Event, ev.SenderID)
	}
}

func (m *ManagerService) handleText(ev models.ClientEvent) {
	if m.Messages == nil {
		return
	}
	msg, err := m.Messages.AppendText(ev.SenderID, ev.ReceiverID, ev.Msg)
	if err != nil {
		log.Printf("ERROR: text from %s rejected: %v", ev.SenderID, err)
		return
	}
	// message events echo to the sender so both UIs render the same log.
	m.ToRoom(ev.Room, "", models.ServerEvent{
		Event:    models.EventMessage,
		Room:     ev.Room,
		Msg:      msg.Content,
		User:     m.displayName(ev.SenderID),
		SenderID: ev.SenderID,
		Type:     models.MessageText,
	})
}

func (m *ManagerService) enqueueMedia(ev models.ClientEvent, payload, kind string) {
	if m.Media == nil {
		return
	}
	m.Media.Enqueue(MediaJob{
		SenderID:   ev.SenderID,
		ReceiverID: ev.ReceiverID,
		RoomID:     ev.Room,
		Payload:    payload,
		Kind:       kind,
	})
}

// displayName resolves a user's name from their registered sessions, so
// the hub goroutine never blocks on a storage lookup. The sender of an
// incoming event is connected by definition.
func (m *ManagerService) displayName(userID string) string {
	for c := range m.userChannels[userID] {
		if name := c.GetDisplayName(); name != "" {
			return name
		}
	}
	return "Anonymous"
}
