package team

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PurchaseRecord is one roster entry: a player bought at auction.
type PurchaseRecord struct {
	RegistrationID  uint      `json:"registration_id"`
	PlayerName      string    `json:"player_name"`
	Category        string    `json:"category"`
	PurchasePrice   float64   `json:"purchase_price"`
	TransactionDate time.Time `json:"transaction_date"`
}

// PurchaseRecords is the JSONB roster column.
type PurchaseRecords []PurchaseRecord

func (p PurchaseRecords) Value() (driver.Value, error) {
	if p == nil {
		p = PurchaseRecords{}
	}
	return json.Marshal(p)
}

// Scan unmarshals a JSONB column into the slice.
func (p *PurchaseRecords) Scan(src interface{}) error {
	if src == nil {
		*p = PurchaseRecords{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("PurchaseRecords: expected []byte or string, got %T", src)
	}
}

// Team is an auction franchise with a points budget. PointsLeft is kept
// denormalized and must always equal TotalPoints - PointsSpent.
type Team struct {
	gorm.Model
	Name        string          `json:"name" gorm:"not null"`
	OwnerName   string          `json:"owner_name"`
	Logo        string          `json:"logo"`
	TotalPoints float64         `json:"total_points"`
	PointsSpent float64         `json:"points_spent" gorm:"default:0"`
	PointsLeft  float64         `json:"points_left"`
	MaxPlayers  int             `json:"max_players"` // 0 means uncapped
	Roster      PurchaseRecords `json:"roster" gorm:"type:json"`
}

// AtCapacity reports whether the roster has reached the MaxPlayers cap.
func (t *Team) AtCapacity() bool {
	return t.MaxPlayers > 0 && len(t.Roster) >= t.MaxPlayers
}
