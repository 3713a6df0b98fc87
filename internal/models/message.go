package models

import "time"

// Message types.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageAudio = "audio"
)

// Message is one entry in the append-only chat log of a pair. Content holds
// the literal text for text messages, or the public blob URL for image and
// audio messages. Sequence is strictly increasing per room and gives history
// replay its total order.
type Message struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RoomID     string `gorm:"type:text;not null;index:idx_room_seq" json:"room_id"`
	SenderID   string `gorm:"type:text;not null" json:"sender_id"`
	ReceiverID string `gorm:"type:text;not null" json:"receiver_id"`
	Type       string `gorm:"type:text;not null" json:"type"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Sequence   uint64 `gorm:"not null;index:idx_room_seq" json:"sequence"`

	CreatedAt time.Time `json:"created_at"`
}
