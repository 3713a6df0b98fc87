package chathub

import (
	"fmt"
	"strings"
	"sync"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// MessageService is the append-only message log. Sequence numbers are
// assigned under a mutex from per-room counters seeded lazily from storage,
// so history replay for a pair has a total order matching append order.
type MessageService struct {
	Storage storage.Storage

	mu   sync.Mutex
	seqs map[string]uint64
}

func NewMessageService(s storage.Storage) *MessageService {
	return &MessageService{
		Storage: s,
		seqs:    make(map[string]uint64),
	}
}

// AppendText validates and records a text message and returns it for
// immediate broadcast.
func (l *MessageService) AppendText(senderID, receiverID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	return l.append(senderID, receiverID, models.MessageText, text)
}

// AppendMedia records a message whose content is an already-ingested blob
// reference.
func (l *MessageService) AppendMedia(senderID, receiverID, ref, kind string) (*models.Message, error) {
	return l.append(senderID, receiverID, kind, ref)
}

func (l *MessageService) append(senderID, receiverID, kind, content string) (*models.Message, error) {
	roomID := models.RoomID(senderID, receiverID)

	// The lock covers sequence assignment and the save, so appends to one
	// pair commit in sequence order.
	l.mu.Lock()
	defer l.mu.Unlock()

	seq, err := l.nextLocked(roomID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		RoomID:     roomID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       kind,
		Content:    content,
		Sequence:   seq,
	}
	if err := l.Storage.SaveMessage(msg); err != nil {
		// Roll the counter back so the failed slot is reused.
		l.seqs[roomID] = seq - 1
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// History returns every message between the two users ordered by sequence.
func (l *MessageService) History(a, b string) ([]models.Message, error) {
	return l.Storage.GetMessages(models.RoomID(a, b))
}

// nextLocked hands out the next sequence for a room. Caller holds l.mu.
func (l *MessageService) nextLocked(roomID string) (uint64, error) {
	if _, ok := l.seqs[roomID]; !ok {
		last, err := l.Storage.LastSequence(roomID)
		if err != nil {
			return 0, fmt.Errorf("seed sequence: %w", err)
		}
		l.seqs[roomID] = last
	}
	l.seqs[roomID]++
	return l.seqs[roomID], nil
}
