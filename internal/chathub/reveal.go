package chathub

import (
	"fmt"
	"sync"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// RevealState is the handshake state of one unordered user pair.
type RevealState int

const (
	RevealNone RevealState = iota
	RevealOneSided
	RevealMutual
)

func (s RevealState) String() string {
	switch s {
	case RevealOneSided:
		return "one_sided"
	case RevealMutual:
		return "mutual"
	default:
		return "none"
	}
}

type pairState struct {
	mutual    bool
	requester string // who signaled, while one-sided
}

// RevealService tracks the two-party reveal handshake per pair. The derived
// state is cached so repeated signals cannot re-trigger broadcasts: Mutual
// is terminal, and a requester re-signaling a one-sided request is a no-op.
// The directed RevealRequest rows remain the durable source of truth and
// warm the cache on first touch.
type RevealService struct {
	Storage storage.Storage
	Pub     Publisher

	mu    sync.Mutex
	pairs map[string]*pairState
}

func NewRevealService(s storage.Storage, pub Publisher) *RevealService {
	return &RevealService{
		Storage: s,
		Pub:     pub,
		pairs:   make(map[string]*pairState),
	}
}

// Signal records the requester's reveal intent toward the receiver and
// returns the resulting state. State changes emit exactly one event to the
// room: reveal_requested (excluding the requester) on the first one-sided
// signal, reveal_profiles (to everyone) on reaching Mutual.
func (r *RevealService) Signal(requesterID, receiverID, roomID string) (RevealState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.loadLocked(requesterID, receiverID)
	if err != nil {
		return RevealNone, err
	}

	if st.mutual {
		return RevealMutual, nil
	}
	if st.requester == requesterID {
		// Already signaled; nothing new to broadcast.
		return RevealOneSided, nil
	}

	if err := r.Storage.SaveRevealRequest(requesterID, receiverID); err != nil {
		return RevealNone, fmt.Errorf("save reveal request: %w", err)
	}

	if st.requester == receiverID {
		st.mutual = true
		st.requester = ""
		r.Pub.ToRoom(roomID, "", models.ServerEvent{
			Event: models.EventRevealProfiles,
			Room:  roomID,
		})
		return RevealMutual, nil
	}

	st.requester = requesterID
	requester, err := r.Storage.GetUserByID(requesterID)
	name := ""
	if err == nil {
		name = requester.Name
	}
	r.Pub.ToRoom(roomID, requesterID, models.ServerEvent{
		Event:         models.EventRevealRequested,
		Room:          roomID,
		RequesterName: name,
	})
	return RevealOneSided, nil
}

// IsRevealed reports whether the pair reached Mutual.
func (r *RevealService) IsRevealed(a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.loadLocked(a, b)
	if err != nil {
		return false, err
	}
	return st.mutual, nil
}

// loadLocked returns the cached pair state, warming it from storage on
// first access. Caller holds r.mu.
func (r *RevealService) loadLocked(a, b string) (*pairState, error) {
	key := pairKey(a, b)
	if st, ok := r.pairs[key]; ok {
		return st, nil
	}

	fromA, err := r.Storage.HasRevealRequest(a, b)
	if err != nil {
		return nil, err
	}
	fromB, err := r.Storage.HasRevealRequest(b, a)
	if err != nil {
		return nil, err
	}

	st := &pairState{}
	switch {
	case fromA && fromB:
		st.mutual = true
	case fromA:
		st.requester = a
	case fromB:
		st.requester = b
	}
	r.pairs[key] = st
	return st, nil
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
