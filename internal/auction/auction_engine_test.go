package auction

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ParthVaghani-21/campuslife/internal/player"
	"github.com/ParthVaghani-21/campuslife/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the auction schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory DB")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&player.Registration{},
		&team.Team{},
		&Auction{}, &AuctionPlayer{}, &AuctionTeam{},
		&CategoryRule{}, &Bid{}, &AuctionSession{},
	))
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewEngine(NewAuctionRepository(db)), db
}

func createTeam(t *testing.T, db *gorm.DB, name string, totalPoints float64, maxPlayers int) *team.Team {
	t.Helper()
	tm := &team.Team{
		Name:        name,
		OwnerName:   name + " Owner",
		TotalPoints: totalPoints,
		PointsLeft:  totalPoints,
		MaxPlayers:  maxPlayers,
		Roster:      team.PurchaseRecords{},
	}
	require.NoError(t, db.Create(tm).Error)
	return tm
}

func createPlayer(t *testing.T, db *gorm.DB, name, category string, icon bool) *player.Registration {
	t.Helper()
	p := &player.Registration{
		Name:              name,
		Category:          category,
		Status:            player.StatusAvailable,
		Role:              player.RolePlayer,
		IconPlayerRequest: icon,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createAuction(t *testing.T, e *Engine, timeLimit int) *Auction {
	t.Helper()
	a := &Auction{
		EventID:            1,
		BasePrice:          100,
		BidIncrement:       50,
		TimeLimitPerPlayer: timeLimit,
		Settings:           AuctionSettings{AllowMultipleBids: true},
	}
	require.NoError(t, e.CreateAuction(a))
	return a
}

// liveAuction builds an auction with the given pools and starts it.
func liveAuction(t *testing.T, e *Engine, db *gorm.DB, numPlayers, numTeams int) (*Auction, []*player.Registration, []*team.Team) {
	t.Helper()
	a := createAuction(t, e, 300)

	players := make([]*player.Registration, 0, numPlayers)
	playerIDs := make([]uint, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		p := createPlayer(t, db, fmt.Sprintf("Player %d", i+1), "Gold", false)
		players = append(players, p)
		playerIDs = append(playerIDs, p.ID)
	}
	teams := make([]*team.Team, 0, numTeams)
	teamIDs := make([]uint, 0, numTeams)
	for i := 0; i < numTeams; i++ {
		tm := createTeam(t, db, fmt.Sprintf("Team %d", i+1), 8000, 0)
		teams = append(teams, tm)
		teamIDs = append(teamIDs, tm.ID)
	}

	_, err := e.AddPlayers(a.ID, playerIDs)
	require.NoError(t, err)
	_, err = e.AddTeams(a.ID, teamIDs)
	require.NoError(t, err)

	a, err = e.StartAuction(a.ID)
	require.NoError(t, err)
	return a, players, teams
}

func requireSessionInvariant(t *testing.T, e *Engine, auctionID uint) *AuctionSession {
	t.Helper()
	s, err := e.GetSession(auctionID)
	require.NoError(t, err)
	assert.Equal(t, s.Stats.TotalPlayers, s.Stats.PlayersSold+s.Stats.PlayersRemaining,
		"players_sold + players_remaining must equal total_players")
	return s
}

// --- Lifecycle ---

func TestStartAuctionSeedsSession(t *testing.T) {
	e, db := newTestEngine(t)
	a := createAuction(t, e, 60)

	var ids []uint
	for i := 0; i < 3; i++ {
		ids = append(ids, createPlayer(t, db, fmt.Sprintf("P%d", i), "Gold", false).ID)
	}
	_, err := e.AddPlayers(a.ID, ids)
	require.NoError(t, err)

	started, err := e.StartAuction(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusLive, started.Status)

	s := requireSessionInvariant(t, e, a.ID)
	assert.True(t, s.IsActive)
	assert.Equal(t, 3, s.Stats.TotalPlayers)
	assert.Equal(t, 0, s.Stats.PlayersSold)
	assert.Equal(t, 3, s.Stats.PlayersRemaining)

	// Starting again is an invalid transition.
	_, err = e.StartAuction(a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLifecycleTransitions(t *testing.T) {
	e, _ := newTestEngine(t)

	t.Run("end requires live", func(t *testing.T) {
		a := createAuction(t, e, 60)
		_, err := e.EndAuction(a.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("live auction completes and deactivates session", func(t *testing.T) {
		a := createAuction(t, e, 60)
		_, err := e.StartAuction(a.ID)
		require.NoError(t, err)

		ended, err := e.EndAuction(a.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, ended.Status)

		s, err := e.GetSession(a.ID)
		require.NoError(t, err)
		assert.False(t, s.IsActive)
	})

	t.Run("cancel is allowed from upcoming and live but not terminal", func(t *testing.T) {
		a := createAuction(t, e, 60)
		cancelled, err := e.CancelAuction(a.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)

		_, err = e.CancelAuction(a.ID)
		assert.ErrorIs(t, err, ErrInvalidState)

		b := createAuction(t, e, 60)
		_, err = e.StartAuction(b.ID)
		require.NoError(t, err)
		_, err = e.CancelAuction(b.ID)
		require.NoError(t, err)
	})

	t.Run("unknown auction", func(t *testing.T) {
		_, err := e.StartAuction(99999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateSettingsMergesPatch(t *testing.T) {
	e, _ := newTestEngine(t)
	a := createAuction(t, e, 60)

	newBase := 500.0
	requireMin := true
	minBids := 2
	updated, err := e.UpdateSettings(a.ID, SettingsPatch{
		BasePrice:           &newBase,
		RequireMinimumBids:  &requireMin,
		MinimumBidsRequired: &minBids,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, updated.BasePrice)
	assert.True(t, updated.Settings.RequireMinimumBids)
	assert.Equal(t, 2, updated.Settings.MinimumBidsRequired)
	// Untouched fields keep their values.
	assert.Equal(t, 50.0, updated.BidIncrement)
	assert.Equal(t, 60, updated.TimeLimitPerPlayer)
	assert.True(t, updated.Settings.AllowMultipleBids)
}

// --- Pools ---

func TestPoolSetSemantics(t *testing.T) {
	e, db := newTestEngine(t)
	a := createAuction(t, e, 60)

	p1 := createPlayer(t, db, "A", "Gold", false)
	p2 := createPlayer(t, db, "B", "Gold", false)

	added, err := e.AddPlayers(a.ID, []uint{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Union: re-adding is a no-op.
	added, err = e.AddPlayers(a.ID, []uint{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	removed, err := e.RemovePlayers(a.ID, []uint{p2.ID, 424242})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestPoolEditsAdjustLiveSessionTotals(t *testing.T) {
	e, db := newTestEngine(t)
	a, _, _ := liveAuction(t, e, db, 2, 1)

	p := createPlayer(t, db, "Late Entry", "Silver", false)
	_, err := e.AddPlayers(a.ID, []uint{p.ID})
	require.NoError(t, err)

	s := requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, 3, s.Stats.TotalPlayers)
	assert.Equal(t, 3, s.Stats.PlayersRemaining)

	_, err = e.RemovePlayers(a.ID, []uint{p.ID})
	require.NoError(t, err)
	s = requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, 2, s.Stats.TotalPlayers)
}

// --- Bidding window ---

func TestStartBidding(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, _ := liveAuction(t, e, db, 2, 2)

	s, err := e.StartBidding(a.ID, players[0].ID)
	require.NoError(t, err)
	require.NotNil(t, s.CurrentPlayerID)
	assert.Equal(t, players[0].ID, *s.CurrentPlayerID)
	require.NotNil(t, s.BiddingStartsAt)
	require.NotNil(t, s.BiddingEndsAt)
	assert.Equal(t, time.Duration(a.TimeLimitPerPlayer)*time.Second,
		s.BiddingEndsAt.Sub(*s.BiddingStartsAt))

	t.Run("player outside the pool", func(t *testing.T) {
		stranger := createPlayer(t, db, "Stranger", "Gold", false)
		_, err := e.StartBidding(a.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("auction not live", func(t *testing.T) {
		b := createAuction(t, e, 60)
		_, err := e.StartBidding(b.ID, players[0].ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("sold player is not available", func(t *testing.T) {
		_, err := e.ManualAssign(a.ID, players[1].ID, teamIDOf(t, db, "Team 1"), 1000)
		require.NoError(t, err)
		_, err = e.StartBidding(a.ID, players[1].ID)
		assert.ErrorIs(t, err, ErrNotAvailable)
	})
}

func teamIDOf(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var tm team.Team
	require.NoError(t, db.Where("name = ?", name).First(&tm).Error)
	return tm.ID
}

func TestNextPlayerIsIdempotent(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, _ := liveAuction(t, e, db, 1, 1)

	_, err := e.StartBidding(a.ID, players[0].ID)
	require.NoError(t, err)

	s, err := e.NextPlayer(a.ID)
	require.NoError(t, err)
	assert.Nil(t, s.CurrentPlayerID)
	assert.Nil(t, s.BiddingStartsAt)
	assert.Nil(t, s.BiddingEndsAt)
	assert.Nil(t, s.CurrentHighestBidID)

	// Calling again with nothing on the block is fine.
	_, err = e.NextPlayer(a.ID)
	require.NoError(t, err)
}

// --- Bid admission ---

func TestPlaceBidAdmissionRules(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 3, 2)
	p, tm := players[0], teams[0]

	_, err := e.SetCategoryRule(a.ID, "Gold", 500, 0)
	require.NoError(t, err)

	_, err = e.StartBidding(a.ID, p.ID)
	require.NoError(t, err)

	t.Run("below category minimum", func(t *testing.T) {
		_, err := e.PlaceBid(a.ID, p.ID, tm.ID, 400)
		require.ErrorIs(t, err, ErrBidRejected)
		assert.Contains(t, err.Error(), "minimum")
	})

	t.Run("not the current player", func(t *testing.T) {
		_, err := e.PlaceBid(a.ID, players[1].ID, tm.ID, 600)
		assert.ErrorIs(t, err, ErrBidRejected)
	})

	t.Run("over budget", func(t *testing.T) {
		_, err := e.PlaceBid(a.ID, p.ID, tm.ID, 9000)
		require.ErrorIs(t, err, ErrBidRejected)
		assert.Contains(t, err.Error(), "points left")
	})

	t.Run("accepted bid is recorded with bidder info", func(t *testing.T) {
		bid, err := e.PlaceBid(a.ID, p.ID, tm.ID, 2000)
		require.NoError(t, err)
		assert.Equal(t, tm.Name, bid.TeamName)
		assert.False(t, bid.IsWinning)

		s, err := e.GetSession(a.ID)
		require.NoError(t, err)
		require.NotNil(t, s.CurrentHighestBidID)
		assert.Equal(t, bid.ID, *s.CurrentHighestBidID)
	})

	t.Run("raise must beat highest by the increment", func(t *testing.T) {
		_, err := e.PlaceBid(a.ID, p.ID, teams[1].ID, 2010)
		require.ErrorIs(t, err, ErrBidRejected)
		assert.Contains(t, err.Error(), "increment")

		_, err = e.PlaceBid(a.ID, p.ID, teams[1].ID, 2050)
		require.NoError(t, err)
	})
}

func TestPlaceBidWindowAndStateGuards(t *testing.T) {
	e, db := newTestEngine(t)

	t.Run("closed window", func(t *testing.T) {
		a, players, teams := liveAuction(t, e, db, 1, 1)
		// A zero time limit closes the window the moment it opens.
		zero := 0
		_, err := e.UpdateSettings(a.ID, SettingsPatch{TimeLimitPerPlayer: &zero})
		require.NoError(t, err)
		_, err = e.StartBidding(a.ID, players[0].ID)
		require.NoError(t, err)

		_, err = e.PlaceBid(a.ID, players[0].ID, teams[0].ID, 500)
		require.ErrorIs(t, err, ErrBidRejected)
		assert.Contains(t, err.Error(), "window")
	})

	t.Run("auction not live", func(t *testing.T) {
		a := createAuction(t, e, 60)
		_, err := e.PlaceBid(a.ID, 1, 1, 500)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("single bid per team when multiple bids are disabled", func(t *testing.T) {
		a, players, teams := liveAuction(t, e, db, 1, 2)
		off := false
		_, err := e.UpdateSettings(a.ID, SettingsPatch{AllowMultipleBids: &off})
		require.NoError(t, err)
		_, err = e.StartBidding(a.ID, players[0].ID)
		require.NoError(t, err)

		_, err = e.PlaceBid(a.ID, players[0].ID, teams[0].ID, 500)
		require.NoError(t, err)
		_, err = e.PlaceBid(a.ID, players[0].ID, teams[1].ID, 600)
		require.NoError(t, err)
		_, err = e.PlaceBid(a.ID, players[0].ID, teams[0].ID, 700)
		require.ErrorIs(t, err, ErrBidRejected)
		assert.Contains(t, err.Error(), "multiple bids")
	})
}

func TestPlaceBidSquadCap(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 2, 1)
	tm := teams[0]

	_, err := e.SetCategoryRule(a.ID, "Gold", 0, 1)
	require.NoError(t, err)

	// Fill the single Gold slot.
	_, err = e.ManualAssign(a.ID, players[0].ID, tm.ID, 1000)
	require.NoError(t, err)

	_, err = e.StartBidding(a.ID, players[1].ID)
	require.NoError(t, err)
	_, err = e.PlaceBid(a.ID, players[1].ID, tm.ID, 500)
	require.ErrorIs(t, err, ErrBidRejected)
	assert.Contains(t, err.Error(), "cap")
}

// --- Finalize ---

func TestFinalizeBidCommitsSale(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 2, 2)
	p, tm := players[0], teams[0]

	_, err := e.SetCategoryRule(a.ID, "Gold", 500, 0)
	require.NoError(t, err)
	_, err = e.StartBidding(a.ID, p.ID)
	require.NoError(t, err)

	_, err = e.PlaceBid(a.ID, p.ID, teams[1].ID, 1500)
	require.NoError(t, err)
	winning, err := e.PlaceBid(a.ID, p.ID, tm.ID, 2000)
	require.NoError(t, err)

	result, err := e.FinalizeBid(a.ID, winning.ID)
	require.NoError(t, err)

	// Budget arithmetic.
	assert.Equal(t, 2000.0, result.Team.PointsSpent)
	assert.Equal(t, 6000.0, result.Team.PointsLeft)
	assert.Equal(t, result.Team.TotalPoints-result.Team.PointsSpent, result.Team.PointsLeft)

	// Sold tri-state: status, team reference and price move together.
	require.NotNil(t, result.Player.TeamID)
	require.NotNil(t, result.Player.BidPrice)
	assert.Equal(t, player.StatusSold, result.Player.Status)
	assert.Equal(t, tm.ID, *result.Player.TeamID)
	assert.Equal(t, 2000.0, *result.Player.BidPrice)
	assert.Equal(t, tm.Name, result.Player.TeamName)

	// Roster record.
	require.Len(t, result.Team.Roster, 1)
	assert.Equal(t, p.ID, result.Team.Roster[0].RegistrationID)
	assert.Equal(t, "Gold", result.Team.Roster[0].Category)
	assert.Equal(t, 2000.0, result.Team.Roster[0].PurchasePrice)

	// Exactly one winning bid for the player.
	var winningBids []Bid
	require.NoError(t, db.Where("auction_id = ? AND player_id = ? AND is_winning = ?", a.ID, p.ID, true).Find(&winningBids).Error)
	require.Len(t, winningBids, 1)
	assert.Equal(t, winning.ID, winningBids[0].ID)

	// Ledger revenue and session stats.
	assert.Equal(t, 2000.0, result.Auction.TotalRevenue)
	s := requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, 1, s.Stats.PlayersSold)
	assert.Equal(t, 1, s.Stats.PlayersRemaining)
	assert.Equal(t, 2000.0, s.Stats.TotalRevenue)
	assert.Nil(t, s.CurrentPlayerID)
	assert.Nil(t, s.BiddingEndsAt)
}

func TestFinalizeBidConflictLeavesStateUnchanged(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 1, 2)
	p := players[0]

	_, err := e.StartBidding(a.ID, p.ID)
	require.NoError(t, err)
	bid, err := e.PlaceBid(a.ID, p.ID, teams[0].ID, 500)
	require.NoError(t, err)

	_, err = e.FinalizeBid(a.ID, bid.ID)
	require.NoError(t, err)

	// A second finalize of the same player must fail and not double count.
	_, err = e.FinalizeBid(a.ID, bid.ID)
	assert.ErrorIs(t, err, ErrConflict)

	refreshed, err := e.GetAuction(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, refreshed.TotalRevenue)

	var tm team.Team
	require.NoError(t, db.First(&tm, teams[0].ID).Error)
	assert.Equal(t, 500.0, tm.PointsSpent)
	require.Len(t, tm.Roster, 1)

	s := requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, 1, s.Stats.PlayersSold)
}

func TestFinalizeBidGuards(t *testing.T) {
	e, db := newTestEngine(t)

	t.Run("unknown bid", func(t *testing.T) {
		a, _, _ := liveAuction(t, e, db, 1, 1)
		_, err := e.FinalizeBid(a.ID, 98765)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("roster at capacity", func(t *testing.T) {
		e2, db2 := newTestEngine(t)
		a := createAuction(t, e2, 300)
		p1 := createPlayer(t, db2, "One", "Gold", false)
		p2 := createPlayer(t, db2, "Two", "Gold", false)
		tm := createTeam(t, db2, "Tiny", 8000, 1)
		_, err := e2.AddPlayers(a.ID, []uint{p1.ID, p2.ID})
		require.NoError(t, err)
		_, err = e2.AddTeams(a.ID, []uint{tm.ID})
		require.NoError(t, err)
		_, err = e2.StartAuction(a.ID)
		require.NoError(t, err)

		_, err = e2.ManualAssign(a.ID, p1.ID, tm.ID, 500)
		require.NoError(t, err)

		_, err = e2.StartBidding(a.ID, p2.ID)
		require.NoError(t, err)
		bid, err := e2.PlaceBid(a.ID, p2.ID, tm.ID, 500)
		// The bid itself is admitted (no category squad cap), the
		// finalize hits the roster cap.
		require.NoError(t, err)
		_, err = e2.FinalizeBid(a.ID, bid.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("minimum bid count required", func(t *testing.T) {
		a, players, teams := liveAuction(t, e, db, 1, 2)
		on := true
		two := 2
		_, err := e.UpdateSettings(a.ID, SettingsPatch{RequireMinimumBids: &on, MinimumBidsRequired: &two})
		require.NoError(t, err)

		_, err = e.StartBidding(a.ID, players[0].ID)
		require.NoError(t, err)
		first, err := e.PlaceBid(a.ID, players[0].ID, teams[0].ID, 500)
		require.NoError(t, err)

		_, err = e.FinalizeBid(a.ID, first.ID)
		require.ErrorIs(t, err, ErrBidRejected)

		second, err := e.PlaceBid(a.ID, players[0].ID, teams[1].ID, 600)
		require.NoError(t, err)
		_, err = e.FinalizeBid(a.ID, second.ID)
		require.NoError(t, err)
	})
}

// --- Manual assignment ---

func TestManualAssignMatchesFinalizePostconditions(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 1, 1)
	p, tm := players[0], teams[0]

	result, err := e.ManualAssign(a.ID, p.ID, tm.ID, 1200)
	require.NoError(t, err)

	assert.Equal(t, player.StatusSold, result.Player.Status)
	require.NotNil(t, result.Player.BidPrice)
	assert.Equal(t, 1200.0, *result.Player.BidPrice)
	assert.Equal(t, 1200.0, result.Team.PointsSpent)
	assert.Equal(t, 6800.0, result.Team.PointsLeft)
	assert.Equal(t, 1200.0, result.Auction.TotalRevenue)

	// No bid record is created on this path.
	var count int64
	require.NoError(t, db.Model(&Bid{}).Where("auction_id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Second assignment of the same player loses the race.
	_, err = e.ManualAssign(a.ID, p.ID, tm.ID, 900)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestManualAssignUncategorizedFallback(t *testing.T) {
	e, db := newTestEngine(t)
	a, _, teams := liveAuction(t, e, db, 0, 1)

	p := createPlayer(t, db, "No Category", "", false)
	_, err := e.AddPlayers(a.ID, []uint{p.ID})
	require.NoError(t, err)

	result, err := e.ManualAssign(a.ID, p.ID, teams[0].ID, 300)
	require.NoError(t, err)
	require.Len(t, result.Team.Roster, 1)
	assert.Equal(t, "Uncategorized", result.Team.Roster[0].Category)
}

// --- Icon draft ---

func TestAssignIconPlayersPoolExhaustion(t *testing.T) {
	e, db := newTestEngine(t)
	a := createAuction(t, e, 300)

	var playerIDs []uint
	for i := 0; i < 3; i++ {
		playerIDs = append(playerIDs, createPlayer(t, db, fmt.Sprintf("Icon %d", i), "Gold", true).ID)
	}
	var teamIDs []uint
	for i := 0; i < 5; i++ {
		teamIDs = append(teamIDs, createTeam(t, db, fmt.Sprintf("Franchise %d", i), 8000, 0).ID)
	}
	_, err := e.AddPlayers(a.ID, playerIDs)
	require.NoError(t, err)
	_, err = e.AddTeams(a.ID, teamIDs)
	require.NoError(t, err)
	_, err = e.StartAuction(a.ID)
	require.NoError(t, err)

	assigned, err := e.AssignIconPlayers(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, assigned)

	// The first three teams in stored order each got one free captain, the
	// remaining two are untouched.
	for i, id := range teamIDs {
		var tm team.Team
		require.NoError(t, db.First(&tm, id).Error)
		if i < 3 {
			require.Len(t, tm.Roster, 1, "team %d should have a captain", i)
			assert.Equal(t, 0.0, tm.Roster[0].PurchasePrice)
			assert.Equal(t, 0.0, tm.PointsSpent)
		} else {
			assert.Empty(t, tm.Roster, "team %d should be untouched", i)
		}
	}

	// Free captains contribute nothing to revenue.
	refreshed, err := e.GetAuction(a.ID)
	require.NoError(t, err)
	assert.Zero(t, refreshed.TotalRevenue)

	// Assigned players are sold captains at price zero.
	var captains []player.Registration
	require.NoError(t, db.Where("role = ?", player.RoleCaptain).Find(&captains).Error)
	require.Len(t, captains, 3)
	for _, cpt := range captains {
		assert.Equal(t, player.StatusSold, cpt.Status)
		require.NotNil(t, cpt.BidPrice)
		assert.Equal(t, 0.0, *cpt.BidPrice)
	}

	s := requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, 3, s.Stats.PlayersSold)
}

func TestAssignIconPlayersSkipConsumesNoPick(t *testing.T) {
	e, db := newTestEngine(t)
	a := createAuction(t, e, 300)

	p1 := createPlayer(t, db, "Icon A", "Gold", true)
	p2 := createPlayer(t, db, "Icon B", "Gold", true)

	open1 := createTeam(t, db, "Open 1", 8000, 0)
	full := createTeam(t, db, "Full", 8000, 1)
	full.Roster = team.PurchaseRecords{{RegistrationID: 999, PlayerName: "Existing", PurchasePrice: 100}}
	require.NoError(t, db.Save(full).Error)
	open2 := createTeam(t, db, "Open 2", 8000, 0)

	_, err := e.AddPlayers(a.ID, []uint{p1.ID, p2.ID})
	require.NoError(t, err)
	_, err = e.AddTeams(a.ID, []uint{open1.ID, full.ID, open2.ID})
	require.NoError(t, err)
	_, err = e.StartAuction(a.ID)
	require.NoError(t, err)

	assigned, err := e.AssignIconPlayers(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, assigned)

	// The team at capacity is skipped and its pick passes to the next team.
	var refreshed team.Team
	require.NoError(t, db.First(&refreshed, full.ID).Error)
	require.Len(t, refreshed.Roster, 1) // unchanged

	refreshed = team.Team{}
	require.NoError(t, db.First(&refreshed, open1.ID).Error)
	assert.Len(t, refreshed.Roster, 1)
	refreshed = team.Team{}
	require.NoError(t, db.First(&refreshed, open2.ID).Error)
	assert.Len(t, refreshed.Roster, 1)
}

// --- Category queue ---

func TestCategoryQueueSetAndShuffle(t *testing.T) {
	e, db := newTestEngine(t)
	a := createAuction(t, e, 300)

	var goldIDs []uint
	for i := 0; i < 5; i++ {
		goldIDs = append(goldIDs, createPlayer(t, db, fmt.Sprintf("Gold %d", i), "Gold", false).ID)
	}
	silver := createPlayer(t, db, "Silver", "Silver", false)

	// One player carries a stale denormalized team name but no team id;
	// both markers gate the queue, so it must be excluded.
	stale := createPlayer(t, db, "Stale", "Gold", false)
	stale.TeamName = "Ghost Team"
	require.NoError(t, db.Save(stale).Error)

	all := append(append([]uint{}, goldIDs...), silver.ID, stale.ID)
	_, err := e.AddPlayers(a.ID, all)
	require.NoError(t, err)

	queue, err := e.CategoryQueue(a.ID, "Gold")
	require.NoError(t, err)
	require.Len(t, queue, 5)

	seen := make(map[uint]bool)
	for _, reg := range queue {
		seen[reg.ID] = true
	}
	for _, id := range goldIDs {
		assert.True(t, seen[id])
	}
	assert.False(t, seen[silver.ID])
	assert.False(t, seen[stale.ID])

	// The set is stable across calls but the order is freshly shuffled:
	// with 5! orderings, 20 draws virtually never all agree.
	orders := make(map[string]bool)
	for i := 0; i < 20; i++ {
		q, err := e.CategoryQueue(a.ID, "Gold")
		require.NoError(t, err)
		require.Len(t, q, 5)
		var sb strings.Builder
		for _, reg := range q {
			fmt.Fprintf(&sb, "%d,", reg.ID)
		}
		orders[sb.String()] = true
	}
	assert.Greater(t, len(orders), 1, "queue order should vary between calls")
}

func TestCategoryQueueExcludesSoldPlayers(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 3, 1)

	_, err := e.ManualAssign(a.ID, players[0].ID, teams[0].ID, 700)
	require.NoError(t, err)

	queue, err := e.CategoryQueue(a.ID, "Gold")
	require.NoError(t, err)
	assert.Len(t, queue, 2)
	for _, reg := range queue {
		assert.NotEqual(t, players[0].ID, reg.ID)
	}
}

// --- Revenue property ---

func TestTotalRevenueEqualsSumOfCommittedPrices(t *testing.T) {
	e, db := newTestEngine(t)
	a, players, teams := liveAuction(t, e, db, 3, 2)

	_, err := e.StartBidding(a.ID, players[0].ID)
	require.NoError(t, err)
	bid, err := e.PlaceBid(a.ID, players[0].ID, teams[0].ID, 800)
	require.NoError(t, err)
	_, err = e.FinalizeBid(a.ID, bid.ID)
	require.NoError(t, err)

	_, err = e.ManualAssign(a.ID, players[1].ID, teams[1].ID, 1300)
	require.NoError(t, err)

	refreshed, err := e.GetAuction(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0+1300.0, refreshed.TotalRevenue)

	s := requireSessionInvariant(t, e, a.ID)
	assert.Equal(t, refreshed.TotalRevenue, s.Stats.TotalRevenue)
}

func TestEngineErrorKinds(t *testing.T) {
	err := BidRejectedError("bid %.0f is below the %s category minimum of %.0f", 400.0, "Gold", 500.0)
	assert.True(t, errors.Is(err, ErrBidRejected))
	assert.Contains(t, err.Error(), "Gold")

	err = NotFoundError("auction", 7)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = InvalidStateError("start", StatusCompleted)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Contains(t, err.Error(), "completed")
}
