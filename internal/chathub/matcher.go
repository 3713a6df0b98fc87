package chathub

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// Match statuses returned by Enter.
const (
	StatusWaiting = "waiting"
	StatusPaired  = "paired"
)

// MatchResult is the outcome of one Enter call.
type MatchResult struct {
	Status    string
	RoomID    string
	PartnerID string
}

// MatcherService resolves the compatibility queue. The whole
// search-and-clear sequence runs under one mutex: concurrent Enter calls
// can never hand the same waiting user to two callers or leave a user
// flagged as searching after being paired.
//
// Tie-break policy: when several users are waiting, the one with the
// earliest SearchingSince wins (FIFO). This is deliberate and covered by
// the tests, since callers can observe it.
type MatcherService struct {
	Storage storage.Storage
	Pub     Publisher

	mu sync.Mutex
}

func NewMatcherService(s storage.Storage, pub Publisher) *MatcherService {
	return &MatcherService{Storage: s, Pub: pub}
}

// Enter puts the user into the queue or pairs them with the earliest
// waiting candidate. On success both users are notified on their user
// channels with match_found, so a match reaches a caller that has not yet
// joined any room.
func (m *MatcherService) Enter(userID string) (MatchResult, error) {
	user, err := m.Storage.GetUserByID(userID)
	if err != nil {
		return MatchResult{}, err
	}
	if !user.HasAnswers() {
		return MatchResult{}, ErrPrerequisiteMissing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	partner, err := m.Storage.FindWaitingPartner(userID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("find waiting partner: %w", err)
	}

	if partner == nil {
		if err := m.Storage.MarkSearching(userID, true); err != nil {
			return MatchResult{}, fmt.Errorf("mark searching: %w", err)
		}
		return MatchResult{Status: StatusWaiting}, nil
	}

	// CommitPairing creates the pairing and clears both flags in a single
	// transaction, inside the same critical section, so no third Enter can
	// still see either user as waiting and no failure can leave a pairing
	// with a member still flagged.
	pairing := models.NewPairing(userID, partner.ID)
	if err := m.Storage.CommitPairing(pairing); err != nil {
		return MatchResult{}, fmt.Errorf("commit pairing: %w", err)
	}

	m.Pub.ToUser(userID, models.ServerEvent{
		Event:     models.EventMatchFound,
		Room:      pairing.RoomID,
		PartnerID: partner.ID,
	})
	m.Pub.ToUser(partner.ID, models.ServerEvent{
		Event:     models.EventMatchFound,
		Room:      pairing.RoomID,
		PartnerID: userID,
	})

	log.Printf("match found: %s and %s in room %s", userID, partner.ID, pairing.RoomID)
	return MatchResult{Status: StatusPaired, RoomID: pairing.RoomID, PartnerID: partner.ID}, nil
}

// Reconcile drops search-set entries whose durable flag was already
// cleared, which happens when the process dies between the row update and
// the set removal. Run once on boot, before serving traffic.
func (m *MatcherService) Reconcile() error {
	ids, err := m.Storage.GetSearchingUsers()
	if err != nil {
		return fmt.Errorf("read search set: %w", err)
	}
	for _, id := range ids {
		user, err := m.Storage.GetUserByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if user.IsSearching {
			continue
		}
		if err := m.Storage.MarkSearching(id, false); err != nil {
			return fmt.Errorf("drop stale queue entry %s: %w", id, err)
		}
		log.Printf("dropped stale search-queue entry: user=%s", id)
	}
	return nil
}
