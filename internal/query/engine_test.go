package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/store"
	"github.com/fortuna/gully/internal/store/repository"
)

const (
	csk = "Chennai Super Kings"
	mi  = "Mumbai Indians"
)

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nd(date string) sql.NullTime {
	if date == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: t, Valid: true}
}

// ball builds one legal scoring delivery; specials are layered on via out
// and wide below.
func ball(matchID int64, season string, inn, over, num int, battingTeam, bowlingTeam, striker, bowler string, runsBatter int) *store.Delivery {
	label := fmt.Sprintf("%d.%d", over, num)
	return &store.Delivery{
		MatchID:     matchID,
		Season:      season,
		Innings:     inn,
		Ball:        label,
		Over:        over,
		BallNumber:  num,
		OverBall:    label,
		BattingTeam: battingTeam,
		BowlingTeam: bowlingTeam,
		Striker:     striker,
		NonStriker:  striker,
		Bowler:      bowler,
		RunsBatter:  runsBatter,
		RunsTotal:   runsBatter,
		IsBoundary:  runsBatter == 4 || runsBatter == 6,
		IsDot:       runsBatter == 0,
		Phase:       ns(store.PhaseFromOver(over)),
	}
}

func out(d *store.Delivery, kind string) *store.Delivery {
	d.PlayerDismissed = ns(d.Striker)
	d.DismissalKind = ns(kind)
	d.WicketType = ns(kind)
	d.IsDot = false
	return d
}

func wide(d *store.Delivery) *store.Delivery {
	d.Wides = 1
	d.RunsExtras = 1
	d.RunsTotal = d.RunsBatter + 1
	d.IsDot = false
	return d
}

func matchMeta(matchID int64, season, date, team1, team2, winner, pom string, squads map[string][]string) *store.MatchMeta {
	teamsJSON, _ := json.Marshal([]string{team1, team2})
	playersJSON := []byte("{}")
	if squads != nil {
		playersJSON, _ = json.Marshal(squads)
	}
	return &store.MatchMeta{
		MatchID:          matchID,
		Season:           ns(season),
		Date:             nd(date),
		Venue:            ns("MA Chidambaram Stadium"),
		Team1:            ns(team1),
		Team2:            ns(team2),
		TeamsJSON:        string(teamsJSON),
		PlayerOfMatch:    ns(pom),
		Winner:           ns(winner),
		UmpiresJSON:      "[]",
		RefereesJSON:     "[]",
		InningsOrderJSON: "[]",
		PlayersMapJSON:   string(playersJSON),
	}
}

// newTestEngine seeds an in-memory store with three CSK/MI meetings:
//
//	1001  2011-04-10  CSK 19/1 (2.0) beat MI 17/1 (1.0)
//	1002  2011-05-20  MI 5/0 beat CSK 1/1
//	1003  2012-04-05  no winner recorded
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()

	db, err := store.NewDatabase("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	matches := repository.NewMatchRepository(db)
	deliveries := repository.NewDeliveryRepository(db)

	m1 := []*store.Delivery{
		// innings 1: MS Dhoni takes Malinga's opening over for 13
		ball(1001, "2011", 1, 1, 1, csk, mi, "MS Dhoni", "SL Malinga", 4),
		ball(1001, "2011", 1, 1, 2, csk, mi, "MS Dhoni", "SL Malinga", 6),
		ball(1001, "2011", 1, 1, 3, csk, mi, "MS Dhoni", "SL Malinga", 0),
		ball(1001, "2011", 1, 1, 4, csk, mi, "MS Dhoni", "SL Malinga", 1),
		ball(1001, "2011", 1, 1, 5, csk, mi, "MS Dhoni", "SL Malinga", 2),
		ball(1001, "2011", 1, 1, 6, csk, mi, "MS Dhoni", "SL Malinga", 0),
		// death over: Bumrah removes Raina
		ball(1001, "2011", 1, 16, 1, csk, mi, "SK Raina", "JJ Bumrah", 1),
		ball(1001, "2011", 1, 16, 2, csk, mi, "SK Raina", "JJ Bumrah", 1),
		ball(1001, "2011", 1, 16, 3, csk, mi, "SK Raina", "JJ Bumrah", 0),
		ball(1001, "2011", 1, 16, 4, csk, mi, "SK Raina", "JJ Bumrah", 4),
		ball(1001, "2011", 1, 16, 5, csk, mi, "SK Raina", "JJ Bumrah", 0),
		out(ball(1001, "2011", 1, 16, 6, csk, mi, "SK Raina", "JJ Bumrah", 0), "bowled"),
		// innings 2: RG Sharma 16 off 6 legal balls, one wide in between
		ball(1001, "2011", 2, 1, 1, mi, csk, "RG Sharma", "R Ashwin", 6),
		ball(1001, "2011", 2, 1, 2, mi, csk, "RG Sharma", "R Ashwin", 6),
		wide(ball(1001, "2011", 2, 1, 3, mi, csk, "RG Sharma", "R Ashwin", 0)),
		ball(1001, "2011", 2, 1, 4, mi, csk, "RG Sharma", "R Ashwin", 4),
		ball(1001, "2011", 2, 1, 5, mi, csk, "RG Sharma", "R Ashwin", 0),
		ball(1001, "2011", 2, 1, 6, mi, csk, "RG Sharma", "R Ashwin", 0),
		out(ball(1001, "2011", 2, 1, 7, mi, csk, "RG Sharma", "R Ashwin", 0), "caught"),
	}

	m2 := []*store.Delivery{
		ball(1002, "2011", 1, 2, 1, mi, csk, "RG Sharma", "R Ashwin", 1),
		ball(1002, "2011", 1, 2, 2, mi, csk, "RG Sharma", "R Ashwin", 0),
		ball(1002, "2011", 1, 2, 3, mi, csk, "RG Sharma", "R Ashwin", 2),
		ball(1002, "2011", 1, 2, 4, mi, csk, "RG Sharma", "R Ashwin", 0),
		ball(1002, "2011", 1, 2, 5, mi, csk, "RG Sharma", "R Ashwin", 1),
		ball(1002, "2011", 1, 2, 6, mi, csk, "RG Sharma", "R Ashwin", 1),
		ball(1002, "2011", 2, 2, 1, csk, mi, "MS Dhoni", "SL Malinga", 0),
		ball(1002, "2011", 2, 2, 2, csk, mi, "MS Dhoni", "SL Malinga", 0),
		ball(1002, "2011", 2, 2, 3, csk, mi, "MS Dhoni", "SL Malinga", 1),
		ball(1002, "2011", 2, 2, 4, csk, mi, "MS Dhoni", "SL Malinga", 0),
		ball(1002, "2011", 2, 2, 5, csk, mi, "MS Dhoni", "SL Malinga", 0),
		out(ball(1002, "2011", 2, 2, 6, csk, mi, "MS Dhoni", "SL Malinga", 0), "lbw"),
	}

	m3 := []*store.Delivery{
		ball(1003, "2012", 1, 1, 1, csk, mi, "MS Dhoni", "JJ Bumrah", 2),
		ball(1003, "2012", 1, 1, 2, csk, mi, "MS Dhoni", "JJ Bumrah", 2),
		ball(1003, "2012", 1, 1, 3, csk, mi, "MS Dhoni", "JJ Bumrah", 0),
		ball(1003, "2012", 1, 1, 4, csk, mi, "MS Dhoni", "JJ Bumrah", 0),
		ball(1003, "2012", 1, 1, 5, csk, mi, "MS Dhoni", "JJ Bumrah", 1),
		ball(1003, "2012", 1, 1, 6, csk, mi, "MS Dhoni", "JJ Bumrah", 0),
		ball(1003, "2012", 2, 1, 1, mi, csk, "RG Sharma", "KV Sharma", 1),
		ball(1003, "2012", 2, 1, 2, mi, csk, "RG Sharma", "KV Sharma", 0),
		ball(1003, "2012", 2, 1, 3, mi, csk, "RG Sharma", "KV Sharma", 4),
		ball(1003, "2012", 2, 1, 4, mi, csk, "RG Sharma", "KV Sharma", 1),
		ball(1003, "2012", 2, 1, 5, mi, csk, "RG Sharma", "KV Sharma", 0),
		ball(1003, "2012", 2, 1, 6, mi, csk, "RG Sharma", "KV Sharma", 1),
	}

	require.NoError(t, deliveries.ReplaceMatch(ctx, 1001, m1))
	require.NoError(t, deliveries.ReplaceMatch(ctx, 1002, m2))
	require.NoError(t, deliveries.ReplaceMatch(ctx, 1003, m3))

	squads := map[string][]string{
		csk: {"MS Dhoni", "SK Raina", "R Ashwin", "M Vijay"},
		mi:  {"RG Sharma", "JJ Bumrah", "SL Malinga"},
	}
	require.NoError(t, matches.Upsert(ctx, matchMeta(1001, "2011", "2011-04-10", csk, mi, csk, "MS Dhoni", squads)))
	require.NoError(t, matches.Upsert(ctx, matchMeta(1002, "2011", "2011-05-20", mi, csk, mi, "RG Sharma", nil)))
	require.NoError(t, matches.Upsert(ctx, matchMeta(1003, "2012", "2012-04-05", csk, mi, "", "", nil)))

	res, err := resolver.Load(ctx, matches, deliveries, resolver.Config{})
	require.NoError(t, err)

	return NewEngine(db, res)
}

func TestMatchSummary(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.MatchSummary(ctx, "csk", "mi", "2011", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), got.Meta.MatchID)
	assert.Equal(t, csk, got.Meta.Team1)
	assert.Equal(t, mi, got.Meta.Team2)
	assert.Equal(t, csk, got.Meta.Winner)
	assert.Equal(t, "MS Dhoni", got.Meta.PlayerOfMatch)
	assert.Equal(t, "2011-04-10", got.Meta.Date)
	assert.Equal(t, int64(1001), got.Evidence.MatchID)

	require.Len(t, got.Innings, 2)
	first := got.Innings[0]
	assert.Equal(t, csk, first.BattingTeam)
	assert.Equal(t, 19, first.Runs)
	assert.Equal(t, 1, first.Wickets)
	assert.Equal(t, "2.0", first.Overs)
	require.NotNil(t, first.RunRate)
	assert.InDelta(t, 9.5, *first.RunRate, 0.001)

	second := got.Innings[1]
	assert.Equal(t, mi, second.BattingTeam)
	assert.Equal(t, 17, second.Runs) // the wide counts toward the total
	assert.Equal(t, "1.0", second.Overs)

	// innings 1 batters ranked by runs
	require.Len(t, got.TopBatters, 3)
	assert.Equal(t, "MS Dhoni", got.TopBatters[0].Batter)
	assert.Equal(t, 13, got.TopBatters[0].Runs)
	assert.Equal(t, 6, got.TopBatters[0].Balls)
	assert.Equal(t, "SK Raina", got.TopBatters[1].Batter)

	sharma := got.TopBatters[2]
	assert.Equal(t, 2, sharma.Innings)
	assert.Equal(t, "RG Sharma", sharma.Batter)
	assert.Equal(t, 16, sharma.Runs)
	assert.Equal(t, 6, sharma.Balls) // wide faced is not a ball faced
	assert.Equal(t, 2, sharma.Sixes)
	require.NotNil(t, sharma.StrikeRate)
	assert.InDelta(t, 266.67, *sharma.StrikeRate, 0.001)

	// wicket-takers rank above cheaper wicketless overs
	require.Len(t, got.TopBowlers, 3)
	assert.Equal(t, "JJ Bumrah", got.TopBowlers[0].Bowler)
	assert.Equal(t, 1, got.TopBowlers[0].Wickets)
	assert.Equal(t, 6, got.TopBowlers[0].RunsConceded)
	assert.Equal(t, "SL Malinga", got.TopBowlers[1].Bowler)
	assert.Equal(t, 0, got.TopBowlers[1].Wickets)

	ashwin := got.TopBowlers[2]
	assert.Equal(t, "R Ashwin", ashwin.Bowler)
	assert.Equal(t, 17, ashwin.RunsConceded) // wide counted against the bowler
	assert.Equal(t, "1.0", ashwin.Overs)
}

func TestMatchSummaryNthMeeting(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.MatchSummary(ctx, "mi", "csk", "2011", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), got.Meta.MatchID)

	// only two meetings in 2011: the third must fail, not clamp
	_, err = engine.MatchSummary(ctx, "csk", "mi", "2011", 3)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Reason, "No match found")
}

func TestPlayerStats(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.PlayerStats(ctx, "dhoni", "career", "")
	require.NoError(t, err)

	assert.Equal(t, "MS Dhoni", got.Input.ResolvedName)
	assert.Equal(t, 3, got.Batting.Matches)
	assert.Equal(t, 3, got.Batting.Inns)
	assert.Equal(t, 19, got.Batting.Runs)
	assert.Equal(t, 18, got.Batting.Balls)
	assert.Equal(t, 1, got.Batting.Fours)
	assert.Equal(t, 1, got.Batting.Sixes)
	require.NotNil(t, got.Batting.SR)
	assert.InDelta(t, 105.56, *got.Batting.SR, 0.001)
	require.NotNil(t, got.Batting.Average)
	assert.InDelta(t, 19.0, *got.Batting.Average, 0.001)

	// never bowled: the zero-denominator economy stays nil, not zero
	assert.Equal(t, 0, got.Bowling.Matches)
	require.NotNil(t, got.Bowling.Overs)
	assert.Zero(t, *got.Bowling.Overs)
	assert.Nil(t, got.Bowling.Economy)

	assert.Equal(t, []string{csk}, got.Teams)
	require.NotNil(t, got.LastTeam)
	assert.Equal(t, csk, got.LastTeam.Team)
	assert.Equal(t, int64(1003), got.LastTeam.MatchID)

	nemesis := got.Matchups.Batting.NemesisBowler
	require.NotNil(t, nemesis)
	assert.Equal(t, "SL Malinga", nemesis.Bowler)
	assert.Equal(t, 1, nemesis.Outs)

	// nobody has bowled 10 overs to him in this fixture
	assert.Nil(t, got.Matchups.Batting.FavouriteBowler)
	assert.Nil(t, got.Matchups.Bowling.MostDismissedBatter)
}

func TestPlayerStatsSeasonScope(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.PlayerStats(ctx, "dhoni", "season", "2011")
	require.NoError(t, err)

	assert.Equal(t, 2, got.Batting.Matches)
	assert.Equal(t, 14, got.Batting.Runs)
	assert.Equal(t, 12, got.Batting.Balls)

	_, err = engine.PlayerStats(ctx, "raina", "season", "2012")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestPlayerStatsResolutionErrors(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.PlayerStats(ctx, "Nobody Xyz", "career", "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	// two Sharmas in the delivery log
	_, err = engine.PlayerStats(ctx, "sharma", "career", "")
	var amb *AmbiguousPlayerError
	require.ErrorAs(t, err, &amb)
	assert.ElementsMatch(t, []string{"KV Sharma", "RG Sharma"}, amb.Choices)
}

func TestTeamSquad(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.TeamSquad(ctx, "csk", "2011")
	require.NoError(t, err)
	assert.Equal(t, csk, got.Input.Team)

	names := make(map[string]*int)
	for _, m := range got.Squad {
		names[m.Player] = m.Appearances
	}

	require.Contains(t, names, "MS Dhoni")
	require.NotNil(t, names["MS Dhoni"])
	assert.Equal(t, 2, *names["MS Dhoni"])

	require.Contains(t, names, "SK Raina")
	require.NotNil(t, names["SK Raina"])
	assert.Equal(t, 1, *names["SK Raina"])

	// declared in the squad list but never batted or bowled
	require.Contains(t, names, "M Vijay")
	assert.Nil(t, names["M Vijay"])

	_, err = engine.TeamSquad(ctx, "csk", "2031")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestPlayerVsTeam(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.PlayerVsTeam(ctx, "Rohit Sharma", "csk", "career", "")
	require.NoError(t, err)

	assert.Equal(t, "RG Sharma", got.Input.ResolvedName)
	assert.Equal(t, csk, got.Input.Opponent)
	assert.Equal(t, 28, got.BattingVsTeam.Runs)
	assert.Equal(t, 18, got.BattingVsTeam.Balls)
	require.NotNil(t, got.BattingVsTeam.SR)
	assert.InDelta(t, 155.56, *got.BattingVsTeam.SR, 0.001)
	require.NotNil(t, got.BattingVsTeam.Average)
	assert.InDelta(t, 28.0, *got.BattingVsTeam.Average, 0.001)

	_, err = engine.PlayerVsTeam(ctx, "raina", "mi", "season", "2012")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestHeadToHead(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.HeadToHead(ctx, "csk", "mi", "career", "")
	require.NoError(t, err)

	s := got.Summary
	assert.Equal(t, 3, s.Matches)
	assert.Equal(t, csk, s.TeamA)
	assert.Equal(t, mi, s.TeamB)
	assert.Equal(t, 1, s.WinsTeamA)
	assert.Equal(t, 1, s.WinsTeamB)
	assert.Equal(t, 1, s.Ties) // unrecorded winner counts as a tie
	assert.Equal(t, 0, s.NoResult)
	assert.Equal(t, int64(1001), s.Earliest.MatchID)
	assert.Equal(t, "2011-04-10", s.Earliest.Date)
	assert.Equal(t, int64(1003), s.Latest.MatchID)

	require.Len(t, got.StarPerformers, 2)

	cskStars := got.StarPerformers[0]
	assert.Equal(t, csk, cskStars.Team)
	require.NotNil(t, cskStars.Batting)
	assert.Equal(t, "MS Dhoni", cskStars.Batting.Player)
	assert.Equal(t, 19, cskStars.Batting.Runs)
	require.NotNil(t, cskStars.Bowling)
	assert.Equal(t, "R Ashwin", cskStars.Bowling.Player)
	assert.Equal(t, 1, cskStars.Bowling.Wickets)

	miStars := got.StarPerformers[1]
	assert.Equal(t, mi, miStars.Team)
	require.NotNil(t, miStars.Batting)
	assert.Equal(t, "RG Sharma", miStars.Batting.Player)
	assert.Equal(t, 28, miStars.Batting.Runs)
	require.NotNil(t, miStars.Bowling)
	// Bumrah and Malinga have a wicket each; Bumrah's economy is better
	assert.Equal(t, "JJ Bumrah", miStars.Bowling.Player)
}

func TestHeadToHeadSeasonScope(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.HeadToHead(ctx, "csk", "mi", "season", "2011")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.Matches)
	assert.Equal(t, 0, got.Summary.Ties)

	_, err = engine.HeadToHead(ctx, "csk", "mi", "season", "2030")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestBestPhaseBowlers(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	got, err := engine.BestPhaseBowlers(ctx, store.PhasePowerplay, "career", "", 1)
	require.NoError(t, err)
	assert.Equal(t, store.PhasePowerplay, got.Input.Phase)
	assert.Equal(t, 1, got.Input.MinOvers)

	require.Len(t, got.Leaders, 4)
	assert.Equal(t, "JJ Bumrah", got.Leaders[0].Bowler)
	require.NotNil(t, got.Leaders[0].Economy)
	assert.InDelta(t, 5.0, *got.Leaders[0].Economy, 0.001)

	// Malinga and KV Sharma are tied on economy; Malinga has an average,
	// KV Sharma's is null and sorts last of the pair
	assert.Equal(t, "SL Malinga", got.Leaders[1].Bowler)
	assert.Equal(t, 1, got.Leaders[1].Wickets)
	assert.Equal(t, "KV Sharma", got.Leaders[2].Bowler)
	assert.Equal(t, "R Ashwin", got.Leaders[3].Bowler)

	// raising the floor drops the one-over bowlers
	got, err = engine.BestPhaseBowlers(ctx, store.PhasePowerplay, "career", "", 2)
	require.NoError(t, err)
	require.Len(t, got.Leaders, 2)
	assert.Equal(t, "SL Malinga", got.Leaders[0].Bowler)
	assert.Equal(t, "R Ashwin", got.Leaders[1].Bowler)

	got, err = engine.BestPhaseBowlers(ctx, store.PhaseDeath, "career", "", 1)
	require.NoError(t, err)
	require.Len(t, got.Leaders, 1)
	assert.Equal(t, "JJ Bumrah", got.Leaders[0].Bowler)
}
