package event

import (
	"time"

	"gorm.io/gorm"
)

// Event is a student-life event an auction is attached to. Full event
// management lives in the main portal; the auction service only needs lookups.
type Event struct {
	gorm.Model
	Title    string    `json:"title" gorm:"not null"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
}
