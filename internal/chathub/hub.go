package chathub

import (
	"log"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// RoomJoin asks the hub to subscribe a session to a room channel.
type RoomJoin struct {
	Client Client
	RoomID string
}

// ManagerService is the realtime hub. A single goroutine (Run) owns the
// subscription maps, so registration, room joins and delivery never race.
// It multiplexes two channel kinds: a user channel per user id for events
// that precede a room (match_found, media_error), and a room channel per
// room id for everything exchanged between paired users.
type ManagerService struct {
	Storage storage.Storage

	RegisterCh   chan Client
	UnregisterCh chan Client
	JoinRoomCh   chan RoomJoin
	IncomingCh   chan models.ClientEvent
	DeliverCh    chan models.Envelope

	// Wired after construction; dispatch skips events whose service is
	// missing, which keeps partial setups (tests) safe.
	Messages *MessageService
	Reveals  *RevealService
	Media    *MediaService

	userChannels map[string]map[Client]bool
	roomChannels map[string]map[Client]bool
	memberships  map[Client]map[string]bool
}

func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Storage:      s,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		JoinRoomCh:   make(chan RoomJoin),
		IncomingCh:   make(chan models.ClientEvent, 64),
		DeliverCh:    make(chan models.Envelope, 256),
		userChannels: make(map[string]map[Client]bool),
		roomChannels: make(map[string]map[Client]bool),
		memberships:  make(map[Client]map[string]bool),
	}
}

// Run is the hub's main loop. It must run in exactly one goroutine.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.register(client)
		case client := <-m.UnregisterCh:
			m.unregister(client)
		case join := <-m.JoinRoomCh:
			m.joinRoom(join.Client, join.RoomID)
		case ev := <-m.IncomingCh:
			m.handleIncoming(ev)
		case env := <-m.DeliverCh:
			m.deliver(env)
		}
	}
}

// ListenEvents forwards envelopes published through storage (Redis pub/sub)
// into the delivery loop. Run it in its own goroutine.
func (m *ManagerService) ListenEvents(events <-chan models.Envelope) {
	for env := range events {
		m.DeliverCh <- env
	}
}

// ToRoom publishes an event to a room through the storage event channel, so
// delivery follows the same path whether it originates here or elsewhere.
func (m *ManagerService) ToRoom(roomID, exclude string, evt models.ServerEvent) {
	env := models.Envelope{Room: roomID, Exclude: exclude, Event: evt}
	if err := m.Storage.PublishEvent(env); err != nil {
		log.Printf("ERROR: failed to publish %s to room %s: %v", evt.Event, roomID, err)
	}
}

// ToUser delivers an event to the sessions on a user channel.
func (m *ManagerService) ToUser(userID string, evt models.ServerEvent) {
	m.DeliverCh <- models.Envelope{UserID: userID, Event: evt}
}

func (m *ManagerService) register(c Client) {
	uid := c.GetUserID()
	if m.userChannels[uid] == nil {
		m.userChannels[uid] = make(map[Client]bool)
	}
	m.userChannels[uid][c] = true
	m.memberships[c] = make(map[string]bool)
	log.Printf("client registered: user=%s", uid)
}

func (m *ManagerService) unregister(c Client) {
	rooms, ok := m.memberships[c]
	if !ok {
		return
	}
	for roomID := range rooms {
		delete(m.roomChannels[roomID], c)
		if len(m.roomChannels[roomID]) == 0 {
			delete(m.roomChannels, roomID)
		}
	}
	delete(m.memberships, c)

	uid := c.GetUserID()
	delete(m.userChannels[uid], c)
	if len(m.userChannels[uid]) == 0 {
		delete(m.userChannels, uid)
	}

	c.Close()
	log.Printf("client unregistered: user=%s", uid)
}

// joinRoom subscribes a session to a room channel. Rooms are pure runtime
// objects: created on first join, dropped when the last member leaves.
func (m *ManagerService) joinRoom(c Client, roomID string) {
	if _, ok := m.memberships[c]; !ok {
		// Unregistered sessions cannot join rooms.
		return
	}
	if m.roomChannels[roomID] == nil {
		m.roomChannels[roomID] = make(map[Client]bool)
	}
	m.roomChannels[roomID][c] = true
	m.memberships[c][roomID] = true

	m.ToRoom(roomID, "", models.ServerEvent{
		Event: models.EventStatus,
		Room:  roomID,
		Msg:   c.GetDisplayName() + " has entered the chat.",
	})
}

// deliver fans an envelope out to the subscribed sessions. A room with no
// subscribers is a no-op, not an error: the partner may simply be offline
// and will recover the content from history on the next join.
func (m *ManagerService) deliver(env models.Envelope) {
	var targets map[Client]bool
	if env.Room != "" {
		targets = m.roomChannels[env.Room]
	} else {
		targets = m.userChannels[env.UserID]
	}

	var stale []Client
	for client := range targets {
		if env.Exclude != "" && client.GetUserID() == env.Exclude {
			continue
		}
		select {
		case client.GetSendChannel() <- env.Event:
		default:
			// Send buffer full: the consumer stopped draining, drop it.
			stale = append(stale, client)
		}
	}
	for _, client := range stale {
		log.Printf("evicting slow client: user=%s", client.GetUserID())
		m.unregister(client)
	}
}
