package auction

import (
	"errors"

	"github.com/ParthVaghani-21/campuslife/internal/player"
	"github.com/ParthVaghani-21/campuslife/internal/team"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PoolFilter narrows pool-player listings.
type PoolFilter struct {
	Category         string
	OnlyAvailable    bool
	OnlyUnassigned   bool // team_id IS NULL and team_name = '' (both markers)
	OnlyIconRequests bool
}

// AuctionRepository defines the interface for auction data operations. The
// commit paths mutate registrations and teams as well, so those operations
// live here and run against the same transaction handle.
type AuctionRepository interface {
	// Ledger
	CreateAuction(a *Auction) error
	GetAuctionByID(id uint) (*Auction, error)
	GetAllAuctions(page, limit int, status string) ([]Auction, int64, error)
	UpdateAuction(a *Auction) error

	// Pools
	AddAuctionPlayers(auctionID uint, playerIDs []uint) (int, error)
	RemoveAuctionPlayers(auctionID uint, playerIDs []uint) (int, error)
	AddAuctionTeams(auctionID uint, teamIDs []uint) (int, error)
	RemoveAuctionTeams(auctionID uint, teamIDs []uint) (int, error)
	CountPoolPlayers(auctionID uint) (int64, error)
	IsPlayerInPool(auctionID, playerID uint) (bool, error)
	IsTeamInPool(auctionID, teamID uint) (bool, error)
	ListPoolPlayers(auctionID uint, filter PoolFilter) ([]player.Registration, error)
	ListPoolTeams(auctionID uint) ([]team.Team, error)

	// Category rules
	UpsertCategoryRule(rule *CategoryRule) error
	GetCategoryRule(auctionID uint, category string) (*CategoryRule, error)

	// Session
	CreateSession(s *AuctionSession) error
	GetSessionByAuctionID(auctionID uint) (*AuctionSession, error)
	UpdateSession(s *AuctionSession) error

	// Bid store
	CreateBid(b *Bid) error
	GetBidByID(id uint) (*Bid, error)
	ListBids(auctionID uint, playerID *uint) ([]Bid, error)
	CountBids(auctionID, playerID uint) (int64, error)
	HasTeamBid(auctionID, playerID, teamID uint) (bool, error)
	ClearWinningBids(auctionID, playerID uint) error
	MarkBidWinning(bidID uint) error

	// Registry access used by the assignment engine
	GetRegistration(id uint) (*player.Registration, error)
	GetTeam(id uint) (*team.Team, error)
	UpdateTeam(t *team.Team) error
	SellRegistration(playerID, teamID uint, teamName string, price float64, role player.Role) (bool, error)
	CountTeamCategoryPlayers(teamID uint, category string) (int64, error)

	WithTransaction(txFunc func(AuctionRepository) error) error
}

type auctionRepository struct {
	db *gorm.DB
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

// --- Ledger ---

func (r *auctionRepository) CreateAuction(a *Auction) error {
	return r.db.Create(a).Error
}

func (r *auctionRepository) GetAuctionByID(id uint) (*Auction, error) {
	var a Auction
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *auctionRepository) GetAllAuctions(page, limit int, status string) ([]Auction, int64, error) {
	var auctions []Auction
	var total int64

	query := r.db.Model(&Auction{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&auctions).Error; err != nil {
		return nil, 0, err
	}
	return auctions, total, nil
}

func (r *auctionRepository) UpdateAuction(a *Auction) error {
	return r.db.Save(a).Error
}

// --- Pools ---

func (r *auctionRepository) AddAuctionPlayers(auctionID uint, playerIDs []uint) (int, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}
	rows := make([]AuctionPlayer, 0, len(playerIDs))
	for _, pid := range playerIDs {
		rows = append(rows, AuctionPlayer{AuctionID: auctionID, PlayerID: pid})
	}
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(&rows)
	return int(res.RowsAffected), res.Error
}

func (r *auctionRepository) RemoveAuctionPlayers(auctionID uint, playerIDs []uint) (int, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("auction_id = ? AND player_id IN ?", auctionID, playerIDs).Delete(&AuctionPlayer{})
	return int(res.RowsAffected), res.Error
}

func (r *auctionRepository) AddAuctionTeams(auctionID uint, teamIDs []uint) (int, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	rows := make([]AuctionTeam, 0, len(teamIDs))
	for _, tid := range teamIDs {
		rows = append(rows, AuctionTeam{AuctionID: auctionID, TeamID: tid})
	}
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}, {Name: "team_id"}},
		DoNothing: true,
	}).Create(&rows)
	return int(res.RowsAffected), res.Error
}

func (r *auctionRepository) RemoveAuctionTeams(auctionID uint, teamIDs []uint) (int, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("auction_id = ? AND team_id IN ?", auctionID, teamIDs).Delete(&AuctionTeam{})
	return int(res.RowsAffected), res.Error
}

func (r *auctionRepository) CountPoolPlayers(auctionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&AuctionPlayer{}).Where("auction_id = ?", auctionID).Count(&count).Error
	return count, err
}

func (r *auctionRepository) IsPlayerInPool(auctionID, playerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&AuctionPlayer{}).
		Where("auction_id = ? AND player_id = ?", auctionID, playerID).
		Count(&count).Error
	return count > 0, err
}

func (r *auctionRepository) IsTeamInPool(auctionID, teamID uint) (bool, error) {
	var count int64
	err := r.db.Model(&AuctionTeam{}).
		Where("auction_id = ? AND team_id = ?", auctionID, teamID).
		Count(&count).Error
	return count > 0, err
}

func (r *auctionRepository) ListPoolPlayers(auctionID uint, filter PoolFilter) ([]player.Registration, error) {
	var regs []player.Registration
	query := r.db.Model(&player.Registration{}).
		Joins("JOIN auction_players ON auction_players.player_id = registrations.id").
		Where("auction_players.auction_id = ?", auctionID)

	if filter.Category != "" {
		query = query.Where("registrations.category = ?", filter.Category)
	}
	if filter.OnlyAvailable {
		query = query.Where("registrations.status = ?", player.StatusAvailable)
	}
	if filter.OnlyUnassigned {
		// Both unassigned markers are required; stored data carries them
		// independently.
		query = query.Where("registrations.team_id IS NULL AND (registrations.team_name IS NULL OR registrations.team_name = '')")
	}
	if filter.OnlyIconRequests {
		query = query.Where("registrations.icon_player_request = ?", true)
	}

	if err := query.Order("registrations.id asc").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *auctionRepository) ListPoolTeams(auctionID uint) ([]team.Team, error) {
	var teams []team.Team
	err := r.db.Model(&team.Team{}).
		Joins("JOIN auction_teams ON auction_teams.team_id = teams.id").
		Where("auction_teams.auction_id = ?", auctionID).
		Order("auction_teams.id asc").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// --- Category rules ---

func (r *auctionRepository) UpsertCategoryRule(rule *CategoryRule) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_bid", "squad_cap", "updated_at"}),
	}).Create(rule).Error
}

func (r *auctionRepository) GetCategoryRule(auctionID uint, category string) (*CategoryRule, error) {
	var rule CategoryRule
	err := r.db.Where("auction_id = ? AND category = ?", auctionID, category).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// --- Session ---

func (r *auctionRepository) CreateSession(s *AuctionSession) error {
	return r.db.Create(s).Error
}

func (r *auctionRepository) GetSessionByAuctionID(auctionID uint) (*AuctionSession, error) {
	var s AuctionSession
	if err := r.db.Where("auction_id = ?", auctionID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *auctionRepository) UpdateSession(s *AuctionSession) error {
	return r.db.Save(s).Error
}

// --- Bid store ---

func (r *auctionRepository) CreateBid(b *Bid) error {
	return r.db.Create(b).Error
}

func (r *auctionRepository) GetBidByID(id uint) (*Bid, error) {
	var b Bid
	if err := r.db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *auctionRepository) ListBids(auctionID uint, playerID *uint) ([]Bid, error) {
	var bids []Bid
	query := r.db.Where("auction_id = ?", auctionID)
	if playerID != nil {
		query = query.Where("player_id = ?", *playerID)
	}
	if err := query.Order("placed_at desc").Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *auctionRepository) CountBids(auctionID, playerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&Bid{}).
		Where("auction_id = ? AND player_id = ?", auctionID, playerID).
		Count(&count).Error
	return count, err
}

func (r *auctionRepository) HasTeamBid(auctionID, playerID, teamID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Bid{}).
		Where("auction_id = ? AND player_id = ? AND team_id = ?", auctionID, playerID, teamID).
		Count(&count).Error
	return count > 0, err
}

func (r *auctionRepository) ClearWinningBids(auctionID, playerID uint) error {
	return r.db.Model(&Bid{}).
		Where("auction_id = ? AND player_id = ? AND is_winning = ?", auctionID, playerID, true).
		Update("is_winning", false).Error
}

func (r *auctionRepository) MarkBidWinning(bidID uint) error {
	return r.db.Model(&Bid{}).Where("id = ?", bidID).Update("is_winning", true).Error
}

// --- Registry access ---

func (r *auctionRepository) GetRegistration(id uint) (*player.Registration, error) {
	var reg player.Registration
	if err := r.db.First(&reg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *auctionRepository) GetTeam(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *auctionRepository) UpdateTeam(t *team.Team) error {
	return r.db.Save(t).Error
}

// SellRegistration flips an available registration to sold. The status guard
// in the WHERE clause is the linearization point: zero rows affected means
// another commit won the race and the caller must abort.
func (r *auctionRepository) SellRegistration(playerID, teamID uint, teamName string, price float64, role player.Role) (bool, error) {
	res := r.db.Model(&player.Registration{}).
		Where("id = ? AND status = ?", playerID, player.StatusAvailable).
		Updates(map[string]interface{}{
			"status":    player.StatusSold,
			"team_id":   teamID,
			"team_name": teamName,
			"bid_price": price,
			"role":      role,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *auctionRepository) CountTeamCategoryPlayers(teamID uint, category string) (int64, error) {
	var count int64
	err := r.db.Model(&player.Registration{}).
		Where("team_id = ? AND category = ?", teamID, category).
		Count(&count).Error
	return count, err
}

func (r *auctionRepository) WithTransaction(txFunc func(AuctionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &auctionRepository{db: tx}
		return txFunc(txRepo)
	})
}
