package models

import "time"

// Pairing is a committed match between two users. The edge is unordered:
// before persisting, the two ids are normalized so that UserAID < UserBID,
// which makes the unique index cover both directions. Pairings are permanent
// history and are never deleted; a user may accumulate several of them.
type Pairing struct {
	ID      uint   `gorm:"primaryKey"`
	UserAID string `gorm:"type:text;not null;uniqueIndex:idx_pair"`
	UserBID string `gorm:"type:text;not null;uniqueIndex:idx_pair"`
	RoomID  string `gorm:"type:text;not null;index"`

	CreatedAt time.Time
}

// NewPairing builds a normalized pairing for the two users.
func NewPairing(a, b string) *Pairing {
	if b < a {
		a, b = b, a
	}
	return &Pairing{UserAID: a, UserBID: b, RoomID: RoomID(a, b)}
}

// RoomID derives the chat room identifier for a pair of users. It is a pure
// function of the unordered pair, so both sides (and reconnecting clients)
// compute the same room without a lookup.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "chat_" + a + "_" + b
}
