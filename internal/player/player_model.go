package player

import (
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	StatusAvailable RegistrationStatus = "available"
	StatusSold      RegistrationStatus = "sold"
)

type Role string

const (
	RolePlayer  Role = "player"
	RoleCaptain Role = "captain"
)

// Registration is a player signed up for the sports auction. A sold player
// carries the team reference and the committed price; an available player
// carries neither.
//
// TeamName mirrors the assignment alongside TeamID. The queue endpoint checks
// both markers, matching the data shapes the portal has always stored.
type Registration struct {
	gorm.Model
	Name              string             `json:"name" gorm:"not null"`
	Email             string             `json:"email"`
	Category          string             `json:"category" gorm:"index"`
	Status            RegistrationStatus `json:"status" gorm:"index;default:'available'"`
	TeamID            *uint              `json:"team_id" gorm:"index"`
	TeamName          string             `json:"team_name"`
	BidPrice          *float64           `json:"bid_price"`
	Role              Role               `json:"role" gorm:"default:'player'"`
	IconPlayerRequest bool               `json:"icon_player_request" gorm:"default:false"`
}

// Sold reports whether the registration has been committed to a team.
func (r *Registration) Sold() bool {
	return r.Status == StatusSold
}
