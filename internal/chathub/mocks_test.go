package chathub_test

import (
	"sort"
	"sync"
	"time"

	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"github.com/lib/pq"
)

// MockClient is a hub session backed by plain channels.
type MockClient struct {
	userID      string
	name        string
	RecvChannel chan models.ServerEvent
	closed      chan struct{}
}

func newMockClient(userID, name string) *MockClient {
	return &MockClient{
		userID:      userID,
		name:        name,
		RecvChannel: make(chan models.ServerEvent, 16),
		closed:      make(chan struct{}),
	}
}

func (c *MockClient) GetUserID() string                         { return c.userID }
func (c *MockClient) GetDisplayName() string                    { return c.name }
func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }
func (c *MockClient) Run()                                      {}
func (c *MockClient) Close()                                    { close(c.closed) }

// recordingPublisher captures emitted events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	toRoom []publishedEvent
	toUser []publishedEvent
}

type publishedEvent struct {
	Target  string
	Exclude string
	Event   models.ServerEvent
}

func (p *recordingPublisher) ToRoom(roomID, exclude string, evt models.ServerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toRoom = append(p.toRoom, publishedEvent{Target: roomID, Exclude: exclude, Event: evt})
}

func (p *recordingPublisher) ToUser(userID string, evt models.ServerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toUser = append(p.toUser, publishedEvent{Target: userID, Event: evt})
}

func (p *recordingPublisher) roomEvents() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.toRoom...)
}

func (p *recordingPublisher) userEvents() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.toUser...)
}

// memStorage is an in-memory Storage for tests that need real state
// (matcher FIFO, reveal persistence, sequencing). When Hub is set,
// PublishEvent loops envelopes back into the hub's delivery channel the way
// the Redis listener does in production.
type memStorage struct {
	mu        sync.Mutex
	users     map[string]*models.User
	queue     map[string]bool // search set, mirrors the Redis side
	pairings  []*models.Pairing
	reveals   map[[2]string]bool
	messages  map[string][]models.Message
	published []models.Envelope

	commitErr error // injected CommitPairing failure

	Hub *chathub.ManagerService
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{
		users:    make(map[string]*models.User),
		queue:    make(map[string]bool),
		reveals:  make(map[[2]string]bool),
		messages: make(map[string][]models.Message),
	}
}

func (s *memStorage) addUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	if u.IsSearching {
		s.queue[u.ID] = true
	}
}

// enqueue seeds a search-set entry without touching the durable flag,
// mimicking a set that drifted from the user rows.
func (s *memStorage) enqueue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue[id] = true
}

func (s *memStorage) SaveUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.BeforeCreate(nil)
	}
	s.users[user.ID] = user
	return nil
}

func (s *memStorage) GetUserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memStorage) SaveAnswers(userID string, answers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	user.Answers = pq.StringArray(answers)
	return nil
}

func (s *memStorage) MarkSearching(userID string, searching bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	user.IsSearching = searching
	if searching {
		now := time.Now()
		user.SearchingSince = &now
		s.queue[userID] = true
	} else {
		user.SearchingSince = nil
		delete(s.queue, userID)
	}
	return nil
}

func (s *memStorage) FindWaitingPartner(excludeID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var waiting []*models.User
	for _, u := range s.users {
		if u.ID == excludeID || !u.IsSearching || len(u.Answers) == 0 {
			continue
		}
		waiting = append(waiting, u)
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].SearchingSince.Before(*waiting[j].SearchingSince)
	})
	clone := *waiting[0]
	return &clone, nil
}

func (s *memStorage) GetSearchingUsers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.queue {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStorage) CommitPairing(pairing *models.Pairing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	s.pairings = append(s.pairings, pairing)
	for _, id := range []string{pairing.UserAID, pairing.UserBID} {
		if u, ok := s.users[id]; ok {
			u.IsSearching = false
			u.SearchingSince = nil
		}
		delete(s.queue, id)
	}
	return nil
}

func (s *memStorage) GetPairing(a, b string) (*models.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b < a {
		a, b = b, a
	}
	for _, p := range s.pairings {
		if p.UserAID == a && p.UserBID == b {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStorage) GetPairingsForUser(userID string) ([]models.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Pairing
	for _, p := range s.pairings {
		if p.UserAID == userID || p.UserBID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStorage) SaveRevealRequest(requesterID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reveals[[2]string{requesterID, receiverID}] = true
	return nil
}

func (s *memStorage) HasRevealRequest(requesterID, receiverID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveals[[2]string{requesterID, receiverID}], nil
}

func (s *memStorage) SaveMessage(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uint(len(s.messages[msg.RoomID]) + 1)
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	return nil
}

func (s *memStorage) GetMessages(roomID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Message(nil), s.messages[roomID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *memStorage) LastSequence(roomID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last uint64
	for _, m := range s.messages[roomID] {
		if m.Sequence > last {
			last = m.Sequence
		}
	}
	return last, nil
}

func (s *memStorage) PublishEvent(env models.Envelope) error {
	s.mu.Lock()
	s.published = append(s.published, env)
	hub := s.Hub
	s.mu.Unlock()

	if hub != nil {
		hub.DeliverCh <- env
	}
	return nil
}

func (s *memStorage) publishedEnvelopes() []models.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Envelope(nil), s.published...)
}
