package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User represents a registered participant. Full identity management
// (passwords, e-mail) lives in the external auth subsystem; only the fields
// the matching and chat core reads or writes are modelled here.
type User struct {
	ID   string `gorm:"primaryKey" json:"id"` // UUID
	Name string `gorm:"type:text;not null" json:"name"`
	Bio  string `gorm:"type:text" json:"bio"`

	// Answers is the questionnaire answer-set. A user without answers
	// must never be paired.
	Answers pq.StringArray `gorm:"type:text[]" json:"-"`

	// IsSearching marks a user currently waiting in the match queue.
	IsSearching bool `gorm:"not null;default:false;index" json:"-"`
	// SearchingSince orders the queue: the earliest waiting user wins.
	SearchingSince *time.Time `json:"-"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the record is
// created without one.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// HasAnswers reports whether the user completed the compatibility
// questionnaire.
func (u *User) HasAnswers() bool {
	return len(u.Answers) > 0
}
