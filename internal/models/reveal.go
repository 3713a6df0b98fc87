package models

import "time"

// RevealRequest records one side of the reveal handshake: requester asked to
// unlock profile visibility toward receiver. Requests are directed and never
// deleted; the pair counts as revealed once both directions exist.
type RevealRequest struct {
	ID          uint   `gorm:"primaryKey"`
	RequesterID string `gorm:"type:text;not null;uniqueIndex:idx_reveal"`
	ReceiverID  string `gorm:"type:text;not null;uniqueIndex:idx_reveal"`

	CreatedAt time.Time
}
