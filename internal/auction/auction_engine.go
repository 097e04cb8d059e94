package auction

import (
	"math/rand"
	"time"

	"github.com/ParthVaghani-21/campuslife/internal/player"
	"github.com/ParthVaghani-21/campuslife/internal/team"
)

const uncategorized = "Uncategorized"

// Engine drives the auction lifecycle, bid admission and the three
// player-to-team assignment paths. Every multi-entity commit (player status,
// team roster and budget, auction revenue, session stats) runs inside one
// repository transaction with a compare-and-swap on the player's status as
// the linearization point, so a lost race rolls the whole commit back.
type Engine struct {
	repo AuctionRepository
}

// NewEngine creates an auction engine over the given repository.
func NewEngine(repo AuctionRepository) *Engine {
	return &Engine{repo: repo}
}

// SettingsPatch carries the merge-update for auction configuration. Nil
// fields are left untouched.
type SettingsPatch struct {
	BasePrice           *float64 `json:"base_price"`
	BidIncrement        *float64 `json:"bid_increment"`
	TimeLimitPerPlayer  *int     `json:"time_limit_per_player"`
	AllowMultipleBids   *bool    `json:"allow_multiple_bids"`
	AutoAssignOnTimeout *bool    `json:"auto_assign_on_timeout"`
	RequireMinimumBids  *bool    `json:"require_minimum_bids"`
	MinimumBidsRequired *int     `json:"minimum_bids_required"`
}

// SaleResult is the state returned after a committed sale.
type SaleResult struct {
	Player  *player.Registration `json:"player"`
	Team    *team.Team           `json:"team"`
	Auction *Auction             `json:"auction"`
	Session *AuctionSession      `json:"session,omitempty"`
}

// --- Ledger lifecycle ---

// CreateAuction stores a new auction in the upcoming state.
func (e *Engine) CreateAuction(a *Auction) error {
	a.Status = StatusUpcoming
	a.TotalRevenue = 0
	return e.repo.CreateAuction(a)
}

// GetAuction loads one auction.
func (e *Engine) GetAuction(id uint) (*Auction, error) {
	a, err := e.repo.GetAuctionByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NotFoundError("auction", id)
	}
	return a, nil
}

// StartAuction moves an upcoming auction live and seeds the session stats
// from the current player pool.
func (e *Engine) StartAuction(id uint) (*Auction, error) {
	var out *Auction
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(id)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", id)
		}
		if a.Status != StatusUpcoming {
			return InvalidStateError("start", a.Status)
		}

		poolSize, err := repo.CountPoolPlayers(id)
		if err != nil {
			return err
		}

		session, err := repo.GetSessionByAuctionID(id)
		if err != nil {
			return err
		}
		stats := SessionStats{
			TotalPlayers:     int(poolSize),
			PlayersSold:      0,
			PlayersRemaining: int(poolSize),
			TotalRevenue:     0,
		}
		if session == nil {
			session = &AuctionSession{AuctionID: id, IsActive: true, Stats: stats}
			if err := repo.CreateSession(session); err != nil {
				return err
			}
		} else {
			session.IsActive = true
			session.Stats = stats
			session.ClearCurrentPlayer()
			if err := repo.UpdateSession(session); err != nil {
				return err
			}
		}

		a.Status = StatusLive
		if err := repo.UpdateAuction(a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// EndAuction completes a live auction and deactivates its session.
func (e *Engine) EndAuction(id uint) (*Auction, error) {
	var out *Auction
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(id)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", id)
		}
		if a.Status != StatusLive {
			return InvalidStateError("end", a.Status)
		}

		if err := deactivateSession(repo, id); err != nil {
			return err
		}

		a.Status = StatusCompleted
		if err := repo.UpdateAuction(a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// CancelAuction cancels an upcoming or live auction. Records persist for
// audit; the session is deactivated.
func (e *Engine) CancelAuction(id uint) (*Auction, error) {
	var out *Auction
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(id)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", id)
		}
		if a.Status.Terminal() {
			return InvalidStateError("cancel", a.Status)
		}

		if err := deactivateSession(repo, id); err != nil {
			return err
		}

		a.Status = StatusCancelled
		if err := repo.UpdateAuction(a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func deactivateSession(repo AuctionRepository, auctionID uint) error {
	session, err := repo.GetSessionByAuctionID(auctionID)
	if err != nil || session == nil {
		return err
	}
	session.IsActive = false
	session.ClearCurrentPlayer()
	return repo.UpdateSession(session)
}

// UpdateSettings merges the supplied fields into the auction configuration.
// It is independent of lifecycle state.
func (e *Engine) UpdateSettings(id uint, patch SettingsPatch) (*Auction, error) {
	a, err := e.GetAuction(id)
	if err != nil {
		return nil, err
	}

	if patch.BasePrice != nil {
		a.BasePrice = *patch.BasePrice
	}
	if patch.BidIncrement != nil {
		a.BidIncrement = *patch.BidIncrement
	}
	if patch.TimeLimitPerPlayer != nil {
		a.TimeLimitPerPlayer = *patch.TimeLimitPerPlayer
	}
	if patch.AllowMultipleBids != nil {
		a.Settings.AllowMultipleBids = *patch.AllowMultipleBids
	}
	if patch.AutoAssignOnTimeout != nil {
		a.Settings.AutoAssignOnTimeout = *patch.AutoAssignOnTimeout
	}
	if patch.RequireMinimumBids != nil {
		a.Settings.RequireMinimumBids = *patch.RequireMinimumBids
	}
	if patch.MinimumBidsRequired != nil {
		a.Settings.MinimumBidsRequired = *patch.MinimumBidsRequired
	}

	if err := e.repo.UpdateAuction(a); err != nil {
		return nil, err
	}
	return a, nil
}

// SetCategoryRule configures the minimum bid and squad cap for a category.
func (e *Engine) SetCategoryRule(auctionID uint, category string, minBid float64, squadCap int) (*CategoryRule, error) {
	if _, err := e.GetAuction(auctionID); err != nil {
		return nil, err
	}
	rule := &CategoryRule{AuctionID: auctionID, Category: category, MinBid: minBid, SquadCap: squadCap}
	if err := e.repo.UpsertCategoryRule(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// --- Pool management ---

// AddPlayers unions the given registrations into the auction's player pool.
// Already-present entries are ignored. While the session is active the
// totals are adjusted so sold + remaining = total keeps holding.
func (e *Engine) AddPlayers(auctionID uint, playerIDs []uint) (int, error) {
	var added int
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status.Terminal() {
			return InvalidStateError("edit the player pool of", a.Status)
		}

		added, err = repo.AddAuctionPlayers(auctionID, playerIDs)
		if err != nil {
			return err
		}
		return adjustSessionTotals(repo, auctionID, added)
	})
	return added, err
}

// RemovePlayers removes the given registrations from the pool. Unknown
// entries are ignored.
func (e *Engine) RemovePlayers(auctionID uint, playerIDs []uint) (int, error) {
	var removed int
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status.Terminal() {
			return InvalidStateError("edit the player pool of", a.Status)
		}

		removed, err = repo.RemoveAuctionPlayers(auctionID, playerIDs)
		if err != nil {
			return err
		}
		return adjustSessionTotals(repo, auctionID, -removed)
	})
	return removed, err
}

func adjustSessionTotals(repo AuctionRepository, auctionID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	session, err := repo.GetSessionByAuctionID(auctionID)
	if err != nil || session == nil || !session.IsActive {
		return err
	}
	session.Stats.TotalPlayers += delta
	if session.Stats.TotalPlayers < 0 {
		session.Stats.TotalPlayers = 0
	}
	session.Stats.PlayersRemaining = session.Stats.TotalPlayers - session.Stats.PlayersSold
	if session.Stats.PlayersRemaining < 0 {
		session.Stats.PlayersRemaining = 0
	}
	return repo.UpdateSession(session)
}

// AddTeams unions the given teams into the auction's team pool.
func (e *Engine) AddTeams(auctionID uint, teamIDs []uint) (int, error) {
	a, err := e.GetAuction(auctionID)
	if err != nil {
		return 0, err
	}
	if a.Status.Terminal() {
		return 0, InvalidStateError("edit the team pool of", a.Status)
	}
	return e.repo.AddAuctionTeams(auctionID, teamIDs)
}

// RemoveTeams removes the given teams from the pool.
func (e *Engine) RemoveTeams(auctionID uint, teamIDs []uint) (int, error) {
	a, err := e.GetAuction(auctionID)
	if err != nil {
		return 0, err
	}
	if a.Status.Terminal() {
		return 0, InvalidStateError("edit the team pool of", a.Status)
	}
	return e.repo.RemoveAuctionTeams(auctionID, teamIDs)
}

// --- Bidding window ---

// GetSession loads the session for an auction.
func (e *Engine) GetSession(auctionID uint) (*AuctionSession, error) {
	session, err := e.repo.GetSessionByAuctionID(auctionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NotFoundError("session for auction", auctionID)
	}
	return session, nil
}

// StartBidding puts an available pool player on the block and opens the
// advisory bidding window. The window is stored, not scheduled: nothing
// fires when it lapses, PlaceBid just stops admitting bids.
func (e *Engine) StartBidding(auctionID, playerID uint) (*AuctionSession, error) {
	var out *AuctionSession
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status != StatusLive {
			return InvalidStateError("open bidding in", a.Status)
		}

		p, err := repo.GetRegistration(playerID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundError("player", playerID)
		}
		inPool, err := repo.IsPlayerInPool(auctionID, playerID)
		if err != nil {
			return err
		}
		if !inPool {
			return NotFoundError("pool player", playerID)
		}
		if p.Sold() {
			return ErrNotAvailable
		}

		session, err := repo.GetSessionByAuctionID(auctionID)
		if err != nil {
			return err
		}
		if session == nil {
			return NotFoundError("session for auction", auctionID)
		}

		now := time.Now()
		end := now.Add(time.Duration(a.TimeLimitPerPlayer) * time.Second)
		session.CurrentPlayerID = &playerID
		session.BiddingStartsAt = &now
		session.BiddingEndsAt = &end
		session.CurrentHighestBidID = nil
		session.IsActive = true
		if err := repo.UpdateSession(session); err != nil {
			return err
		}
		out = session
		return nil
	})
	return out, err
}

// NextPlayer clears the on-the-block state after a sale or a no-sale skip.
// It has no precondition and is idempotent.
func (e *Engine) NextPlayer(auctionID uint) (*AuctionSession, error) {
	session, err := e.GetSession(auctionID)
	if err != nil {
		return nil, err
	}
	session.ClearCurrentPlayer()
	if err := e.repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// --- Bid admission ---

// PlaceBid validates and records an offer for the player currently on the
// block. Every admission failure comes back as ErrBidRejected with the
// specific violated rule.
func (e *Engine) PlaceBid(auctionID, playerID, teamID uint, amount float64) (*Bid, error) {
	var out *Bid
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status != StatusLive {
			return InvalidStateError("bid in", a.Status)
		}

		session, err := repo.GetSessionByAuctionID(auctionID)
		if err != nil {
			return err
		}
		if session == nil || session.CurrentPlayerID == nil || *session.CurrentPlayerID != playerID {
			return BidRejectedError("player %d is not currently open for bidding", playerID)
		}
		if session.BiddingEndsAt == nil || !time.Now().Before(*session.BiddingEndsAt) {
			return BidRejectedError("bidding window for player %d has closed", playerID)
		}

		p, err := repo.GetRegistration(playerID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundError("player", playerID)
		}
		if p.Sold() {
			return BidRejectedError("player %d has already been sold", playerID)
		}

		t, err := repo.GetTeam(teamID)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError("team", teamID)
		}
		inPool, err := repo.IsTeamInPool(auctionID, teamID)
		if err != nil {
			return err
		}
		if !inPool {
			return BidRejectedError("team %s is not part of this auction", t.Name)
		}

		if t.PointsLeft < amount {
			return BidRejectedError("team %s has %.0f points left, cannot bid %.0f", t.Name, t.PointsLeft, amount)
		}

		rule, err := repo.GetCategoryRule(auctionID, p.Category)
		if err != nil {
			return err
		}
		minBid := 0.0
		squadCap := 0
		if rule != nil {
			minBid = rule.MinBid
			squadCap = rule.SquadCap
		}
		if amount < minBid {
			return BidRejectedError("bid %.0f is below the %s category minimum of %.0f", amount, p.Category, minBid)
		}

		if session.CurrentHighestBidID == nil {
			opening := a.BasePrice
			if minBid > opening {
				opening = minBid
			}
			if amount < opening {
				return BidRejectedError("opening bid %.0f is below the required %.0f", amount, opening)
			}
		} else {
			highest, err := repo.GetBidByID(*session.CurrentHighestBidID)
			if err != nil {
				return err
			}
			if highest != nil && amount < highest.Amount+a.BidIncrement {
				return BidRejectedError("bid %.0f does not beat %.0f by the increment of %.0f", amount, highest.Amount, a.BidIncrement)
			}
		}

		if squadCap > 0 {
			inCategory, err := repo.CountTeamCategoryPlayers(teamID, p.Category)
			if err != nil {
				return err
			}
			if inCategory >= int64(squadCap) {
				return BidRejectedError("team %s already holds %d %s players, cap is %d", t.Name, inCategory, p.Category, squadCap)
			}
		}

		if !a.Settings.AllowMultipleBids {
			bidBefore, err := repo.HasTeamBid(auctionID, playerID, teamID)
			if err != nil {
				return err
			}
			if bidBefore {
				return BidRejectedError("team %s has already bid for player %d and multiple bids are disabled", t.Name, playerID)
			}
		}

		bid := &Bid{
			AuctionID: auctionID,
			PlayerID:  playerID,
			TeamID:    teamID,
			Amount:    amount,
			PlacedAt:  time.Now(),
			TeamName:  t.Name,
			OwnerName: t.OwnerName,
		}
		if err := repo.CreateBid(bid); err != nil {
			return err
		}

		session.CurrentHighestBidID = &bid.ID
		if err := repo.UpdateSession(session); err != nil {
			return err
		}
		out = bid
		return nil
	})
	return out, err
}

// --- Assignment paths ---

// FinalizeBid converts a recorded bid into a committed sale: the bid becomes
// the single winning bid for the player, and the shared commit updates
// player, team, ledger and session together.
func (e *Engine) FinalizeBid(auctionID, bidID uint) (*SaleResult, error) {
	var out *SaleResult
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status != StatusLive {
			return InvalidStateError("finalize a bid in", a.Status)
		}

		bid, err := repo.GetBidByID(bidID)
		if err != nil {
			return err
		}
		if bid == nil || bid.AuctionID != auctionID {
			return NotFoundError("bid", bidID)
		}

		p, err := repo.GetRegistration(bid.PlayerID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundError("player", bid.PlayerID)
		}
		if p.Sold() {
			return ErrConflict
		}

		t, err := repo.GetTeam(bid.TeamID)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError("team", bid.TeamID)
		}
		if t.AtCapacity() {
			return ErrCapacityExceeded
		}

		if a.Settings.RequireMinimumBids {
			placed, err := repo.CountBids(auctionID, bid.PlayerID)
			if err != nil {
				return err
			}
			if placed < int64(a.Settings.MinimumBidsRequired) {
				return BidRejectedError("player %d has %d bids, %d required before finalizing", bid.PlayerID, placed, a.Settings.MinimumBidsRequired)
			}
		}

		if err := repo.ClearWinningBids(auctionID, bid.PlayerID); err != nil {
			return err
		}
		if err := repo.MarkBidWinning(bid.ID); err != nil {
			return err
		}

		result, err := commitSale(repo, a, p, t, bid.Amount, p.Role, true)
		if err != nil {
			return err
		}
		out = result
		return nil
	})
	return out, err
}

// ManualAssign commits a moderator-override sale at an arbitrary price. No
// bid record is created or marked winning; everything else matches
// FinalizeBid.
func (e *Engine) ManualAssign(auctionID, playerID, teamID uint, price float64) (*SaleResult, error) {
	var out *SaleResult
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status != StatusLive {
			return InvalidStateError("assign a player in", a.Status)
		}

		p, err := repo.GetRegistration(playerID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundError("player", playerID)
		}
		if p.Sold() {
			return ErrConflict
		}

		t, err := repo.GetTeam(teamID)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError("team", teamID)
		}
		if t.AtCapacity() {
			return ErrCapacityExceeded
		}

		result, err := commitSale(repo, a, p, t, price, p.Role, true)
		if err != nil {
			return err
		}
		out = result
		return nil
	})
	return out, err
}

// AssignIconPlayers drafts the icon-flagged pool players onto teams as free
// captains: the eligible pool is shuffled, teams are visited in stored
// order, and a team already at capacity is skipped without consuming a
// player. The draft ends quietly when either side runs out; the return value
// is the number of assignments made.
func (e *Engine) AssignIconPlayers(auctionID uint) (int, error) {
	assigned := 0
	err := e.repo.WithTransaction(func(repo AuctionRepository) error {
		a, err := repo.GetAuctionByID(auctionID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFoundError("auction", auctionID)
		}
		if a.Status != StatusLive {
			return InvalidStateError("assign icon players in", a.Status)
		}

		pool, err := repo.ListPoolPlayers(auctionID, PoolFilter{
			OnlyAvailable:    true,
			OnlyIconRequests: true,
		})
		if err != nil {
			return err
		}
		teams, err := repo.ListPoolTeams(auctionID)
		if err != nil {
			return err
		}

		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		next := 0
		for i := range teams {
			if next >= len(pool) {
				break
			}
			t := &teams[i]
			if t.AtCapacity() {
				// Skipped team consumes no pick; the same player goes
				// to the next team in order.
				continue
			}
			p := pool[next]
			next++

			if _, err := commitSale(repo, a, &p, t, 0, player.RoleCaptain, false); err != nil {
				return err
			}
			assigned++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

// commitSale is the shared postcondition of all three assignment paths. It
// must run inside a transaction. The CAS on the player's status aborts the
// whole commit with ErrConflict when another path already sold the player.
func commitSale(repo AuctionRepository, a *Auction, p *player.Registration, t *team.Team, price float64, role player.Role, clearSession bool) (*SaleResult, error) {
	sold, err := repo.SellRegistration(p.ID, t.ID, t.Name, price, role)
	if err != nil {
		return nil, err
	}
	if !sold {
		return nil, ErrConflict
	}

	category := p.Category
	if category == "" {
		category = uncategorized
	}
	t.Roster = append(t.Roster, team.PurchaseRecord{
		RegistrationID:  p.ID,
		PlayerName:      p.Name,
		Category:        category,
		PurchasePrice:   price,
		TransactionDate: time.Now(),
	})
	t.PointsSpent += price
	t.PointsLeft = t.TotalPoints - t.PointsSpent
	if err := repo.UpdateTeam(t); err != nil {
		return nil, err
	}

	a.TotalRevenue += price
	if err := repo.UpdateAuction(a); err != nil {
		return nil, err
	}

	session, err := repo.GetSessionByAuctionID(a.ID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		session.Stats.PlayersSold++
		if session.Stats.PlayersRemaining > 0 {
			session.Stats.PlayersRemaining--
		}
		session.Stats.TotalRevenue += price
		if clearSession {
			session.ClearCurrentPlayer()
		}
		if err := repo.UpdateSession(session); err != nil {
			return nil, err
		}
	}

	committed, err := repo.GetRegistration(p.ID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Player: committed, Team: t, Auction: a, Session: session}, nil
}

// --- Category queue ---

// CategoryQueue returns the auction's unassigned players of one category in
// a fresh random order. The order is not persisted: two consecutive calls
// see the same set but almost certainly a different sequence.
func (e *Engine) CategoryQueue(auctionID uint, category string) ([]player.Registration, error) {
	if _, err := e.GetAuction(auctionID); err != nil {
		return nil, err
	}
	regs, err := e.repo.ListPoolPlayers(auctionID, PoolFilter{
		Category:       category,
		OnlyUnassigned: true,
	})
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(regs), func(i, j int) {
		regs[i], regs[j] = regs[j], regs[i]
	})
	return regs, nil
}

// ListBids exposes the bid history for an auction, optionally for one player.
func (e *Engine) ListBids(auctionID uint, playerID *uint) ([]Bid, error) {
	if _, err := e.GetAuction(auctionID); err != nil {
		return nil, err
	}
	return e.repo.ListBids(auctionID, playerID)
}
