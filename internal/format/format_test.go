package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/gully/internal/query"
	"github.com/fortuna/gully/internal/router"
)

func fp(v float64) *float64 { return &v }

func TestHeader(t *testing.T) {
	assert.Equal(t, "Batting\n-------", header("Batting"))
}

func TestBulletList(t *testing.T) {
	got := bulletList([]string{"one", "", "two"})
	assert.Equal(t, "  * one\n  * two", got)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "-", num(nil))
	assert.Equal(t, "9.5", num(fp(9.5)))
	assert.Equal(t, "266.67", num(fp(266.67)))
	assert.Equal(t, "17", num(fp(17)))
}

func TestMatchSummary(t *testing.T) {
	r := &query.MatchSummaryResult{
		Meta: query.MatchMetaResult{
			MatchID:       1001,
			Season:        "2011",
			Date:          "2011-04-10",
			Venue:         "MA Chidambaram Stadium",
			Team1:         "Chennai Super Kings",
			Team2:         "Mumbai Indians",
			Winner:        "Chennai Super Kings",
			PlayerOfMatch: "MS Dhoni",
		},
		Innings: []query.InningsResult{
			{Innings: 1, BattingTeam: "Chennai Super Kings", Runs: 19, Wickets: 1, Overs: "2.0", RunRate: fp(9.5)},
		},
		TopBatters: []query.BatterLine{
			{Innings: 1, Batter: "MS Dhoni", Runs: 13, Balls: 6, Fours: 1, Sixes: 1, StrikeRate: fp(216.67)},
		},
		TopBowlers: []query.BowlerLine{
			{Innings: 1, Bowler: "JJ Bumrah", Wickets: 1, RunsConceded: 6, Overs: "1.0", Economy: fp(6)},
		},
		Evidence: query.Evidence{MatchID: 1001},
	}

	got := MatchSummary(r)
	assert.Contains(t, got, "Chennai Super Kings vs Mumbai Indians - 2011")
	assert.Contains(t, got, "Result: Chennai Super Kings  |  Player of the Match: MS Dhoni")
	assert.Contains(t, got, "Chennai Super Kings: 19/1 in 2.0 overs (RR 9.5)")
	assert.Contains(t, got, "  * Inns 1: MS Dhoni - 13 (6) 4x1 6x1 SR 216.67")
	assert.Contains(t, got, "  * Inns 1: JJ Bumrah - 1/6 in 1.0 (Econ 6)")
	assert.Contains(t, got, "(Match ID: 1001)")
}

func TestPlayerStatsNilRates(t *testing.T) {
	r := &query.PlayerStatsResult{}
	r.Input.ResolvedName = "MS Dhoni"
	r.Input.Scope = "career"
	r.Batting = query.BattingStats{Matches: 3, Inns: 3, Runs: 19, Balls: 18, SR: fp(105.56), Average: fp(19)}
	r.Bowling = query.BowlingStats{}
	r.Teams = []string{"Chennai Super Kings"}

	got := PlayerStats(r)
	assert.Contains(t, got, "Player: MS Dhoni")
	assert.Contains(t, got, "Scope: career")
	assert.Contains(t, got, "SR: 105.56  |  Avg: 19")
	// the bowling block renders even when empty, with dashes for rates
	assert.Contains(t, got, "Overs: -  |  Wkts: 0")
	assert.Contains(t, got, "Chennai Super Kings")
	assert.NotContains(t, got, "Batting Matchups")
	assert.NotContains(t, got, "Bowling Matchups")
}

func TestTeamSquad(t *testing.T) {
	two := 2
	r := &query.TeamSquadResult{}
	r.Input.Team = "Chennai Super Kings"
	r.Input.Season = "2011"
	r.Squad = []query.SquadMember{
		{Player: "M Vijay"},
		{Player: "MS Dhoni", Appearances: &two},
	}

	got := TeamSquad(r)
	assert.Contains(t, got, "Squad: Chennai Super Kings - 2011")
	// declared-only players show an unknown appearance count
	assert.Contains(t, got, "  * M Vijay (? matches)")
	assert.Contains(t, got, "  * MS Dhoni (2 matches)")
}

func TestHeadToHead(t *testing.T) {
	r := &query.HeadToHeadResult{
		Summary: query.HeadToHeadSummary{
			Matches:   3,
			TeamA:     "Chennai Super Kings",
			TeamB:     "Mumbai Indians",
			WinsTeamA: 1,
			WinsTeamB: 1,
			Ties:      1,
			Earliest:  query.MeetingRef{MatchID: 1001, Season: "2011", Date: "2011-04-10"},
			Latest:    query.MeetingRef{MatchID: 1003, Season: "2012", Date: "2012-04-05"},
		},
		StarPerformers: []query.TeamStars{
			{
				Team:    "Chennai Super Kings",
				Batting: &query.StarBatter{Player: "MS Dhoni", Runs: 19, Balls: 18, Avg: fp(19)},
				Bowling: &query.StarBowler{Player: "R Ashwin", Balls: 13, RunsConceded: 22, Wickets: 1, Economy: fp(11)},
			},
			{Team: "Mumbai Indians"},
		},
	}

	got := HeadToHead(r)
	assert.Contains(t, got, "Matches: 3 | Wins Chennai Super Kings: 1, Mumbai Indians: 1 | Ties: 1 | No Result: 0")
	assert.Contains(t, got, "Earliest: 2011 2011-04-10 (ID 1001)")
	assert.Contains(t, got, "Batting: MS Dhoni - Runs 19, Balls 18, Avg 19, 50s 0, 100s 0")
	// 13 balls renders as 2.1 overs
	assert.Contains(t, got, "Bowling: R Ashwin - Overs 2.1, Runs 22, Econ 11, Wkts 1")
	// a side with no qualifying stars still gets placeholder lines
	assert.Contains(t, got, "Batting: -")
	assert.Contains(t, got, "Bowling: -")
}

func TestBestPhaseBowlers(t *testing.T) {
	r := &query.PhaseBowlersResult{}
	r.Input.Phase = "PP"
	r.Input.Scope = "season"
	r.Input.Season = "2016"
	r.Input.MinOvers = 10
	r.Leaders = []query.PhaseLeader{
		{Bowler: "JJ Bumrah", Overs: 12, Wickets: 5, RunsConceded: 60, Economy: fp(5), Matches: 4},
	}

	got := BestPhaseBowlers(r)
	assert.Contains(t, got, "Best Powerplay Bowlers - IPL 2016")
	assert.Contains(t, got, "Minimum overs in phase: 10")
	assert.True(t, strings.Contains(got, "1. JJ Bumrah - Overs 12, Wkts 5, Runs 60, Econ 5"), got)

	empty := &query.PhaseBowlersResult{}
	empty.Input.Phase = "Death"
	empty.Input.Scope = "career"
	empty.Input.MinOvers = 30
	got = BestPhaseBowlers(empty)
	assert.Contains(t, got, "Best Death Bowlers - IPL (All Seasons)")
	assert.Contains(t, got, "No qualifying bowlers.")
}

func TestErrorAmbiguous(t *testing.T) {
	err := &query.AmbiguousPlayerError{Input: "sharma", Choices: []string{"KV Sharma", "RG Sharma"}}

	got := Error(err)
	assert.Contains(t, got, "Ambiguous player 'sharma'")
	assert.Contains(t, got, "Did you mean?")
	assert.Contains(t, got, "  * KV Sharma")
	assert.Contains(t, got, "  * RG Sharma")

	plain := Error(query.NotFoundf("No data found for player X"))
	assert.Equal(t, "No data found for player X", plain)
}

func TestAnswerDispatch(t *testing.T) {
	r := &query.TeamSquadResult{}
	r.Input.Team = "Mumbai Indians"
	r.Input.Season = "2015"

	got := Answer(router.IntentTeamSquad, r)
	assert.Contains(t, got, "Squad: Mumbai Indians - 2015")

	assert.Equal(t, "I didn't understand that request.", Answer(router.IntentUnknown, nil))
}
