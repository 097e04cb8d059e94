package auction

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AuctionStatus string

const (
	StatusUpcoming  AuctionStatus = "upcoming"
	StatusLive      AuctionStatus = "live"
	StatusCompleted AuctionStatus = "completed"
	StatusCancelled AuctionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s AuctionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AuctionSettings is the JSONB settings column on an auction.
type AuctionSettings struct {
	AllowMultipleBids   bool `json:"allow_multiple_bids"`
	AutoAssignOnTimeout bool `json:"auto_assign_on_timeout"`
	RequireMinimumBids  bool `json:"require_minimum_bids"`
	MinimumBidsRequired int  `json:"minimum_bids_required"`
}

func (s AuctionSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan unmarshals a JSONB column into the struct.
func (s *AuctionSettings) Scan(src interface{}) error {
	if src == nil {
		*s = AuctionSettings{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("AuctionSettings: expected []byte or string, got %T", src)
	}
}

// Auction is the ledger for one bidding event: configuration, lifecycle
// status and the running revenue total. TotalRevenue only ever grows and
// always equals the sum of committed purchase prices.
type Auction struct {
	gorm.Model
	EventID            uint            `json:"event_id" gorm:"index;not null"`
	Status             AuctionStatus   `json:"status" gorm:"index;default:'upcoming'"`
	ScheduledAt        time.Time       `json:"scheduled_at"`
	BasePrice          float64         `json:"base_price"`
	BidIncrement       float64         `json:"bid_increment"`
	TimeLimitPerPlayer int             `json:"time_limit_per_player"` // seconds
	Settings           AuctionSettings `json:"settings" gorm:"type:json"`
	TotalRevenue       float64         `json:"total_revenue" gorm:"default:0"`
}

// AuctionPlayer is a membership row in the auction's player pool.
// No soft delete: removing a player from the pool deletes the row so the
// player can be re-added later.
type AuctionPlayer struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	AuctionID uint      `json:"auction_id" gorm:"uniqueIndex:idx_auction_player"`
	PlayerID  uint      `json:"player_id" gorm:"uniqueIndex:idx_auction_player"`
}

// AuctionTeam is a membership row in the auction's team pool. Row order (by
// id) is the draft order for icon-player assignment.
type AuctionTeam struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	AuctionID uint      `json:"auction_id" gorm:"uniqueIndex:idx_auction_team"`
	TeamID    uint      `json:"team_id" gorm:"uniqueIndex:idx_auction_team"`
}

// CategoryRule configures the minimum bid and squad cap for one player
// category within an auction. A missing rule means minimum 0 and no cap.
type CategoryRule struct {
	gorm.Model
	AuctionID uint    `json:"auction_id" gorm:"uniqueIndex:idx_auction_category"`
	Category  string  `json:"category" gorm:"uniqueIndex:idx_auction_category"`
	MinBid    float64 `json:"min_bid"`
	SquadCap  int     `json:"squad_cap"` // 0 means unbounded
}

// Bid is one recorded offer. Bidder info is denormalized so the bid history
// stays readable after teams change. At most one bid per (auction, player)
// may carry IsWinning.
type Bid struct {
	gorm.Model
	AuctionID uint      `json:"auction_id" gorm:"index"`
	PlayerID  uint      `json:"player_id" gorm:"index"`
	TeamID    uint      `json:"team_id" gorm:"index"`
	Amount    float64   `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
	IsWinning bool      `json:"is_winning" gorm:"default:false"`
	TeamName  string    `json:"team_name"`
	OwnerName string    `json:"owner_name"`
}

// SessionStats is the JSONB rolling-statistics column on a session.
// PlayersSold + PlayersRemaining must equal TotalPlayers after every
// state transition.
type SessionStats struct {
	TotalPlayers     int     `json:"total_players"`
	PlayersSold      int     `json:"players_sold"`
	PlayersRemaining int     `json:"players_remaining"`
	TotalRevenue     float64 `json:"total_revenue"`
}

func (s SessionStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan unmarshals a JSONB column into the struct.
func (s *SessionStats) Scan(src interface{}) error {
	if src == nil {
		*s = SessionStats{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("SessionStats: expected []byte or string, got %T", src)
	}
}

// AuctionSession is the live-state coordinator for one auction: the player
// currently on the block, the advisory bidding window, and rolling stats.
// The window is descriptive only; expiry is enforced at bid admission, not
// by a background timer.
type AuctionSession struct {
	gorm.Model
	AuctionID           uint         `json:"auction_id" gorm:"uniqueIndex"`
	CurrentPlayerID     *uint        `json:"current_player_id"`
	BiddingStartsAt     *time.Time   `json:"bidding_starts_at"`
	BiddingEndsAt       *time.Time   `json:"bidding_ends_at"`
	CurrentHighestBidID *uint        `json:"current_highest_bid_id"`
	IsActive            bool         `json:"is_active" gorm:"default:false"`
	Stats               SessionStats `json:"stats" gorm:"type:json"`
}

// ClearCurrentPlayer resets the on-the-block state ahead of the next player.
func (s *AuctionSession) ClearCurrentPlayer() {
	s.CurrentPlayerID = nil
	s.BiddingStartsAt = nil
	s.BiddingEndsAt = nil
	s.CurrentHighestBidID = nil
}
