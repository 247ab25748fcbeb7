package query

import (
	"database/sql"
	"fmt"
	"math"
)

// Result payload shapes, one tagged struct per intent. Optional ratios are
// pointers: nil means the denominator was zero or null, never 0.

// MatchMetaResult is the header block of a match summary
type MatchMetaResult struct {
	MatchID       int64    `json:"match_id"`
	Season        string   `json:"season,omitempty"`
	Date          string   `json:"date,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Team1         string   `json:"team1,omitempty"`
	Team2         string   `json:"team2,omitempty"`
	Teams         []string `json:"teams"`
	Winner        string   `json:"winner,omitempty"`
	PlayerOfMatch string   `json:"player_of_match,omitempty"`
}

// InningsResult is one innings line of a match summary
type InningsResult struct {
	Innings     int      `json:"innings"`
	BattingTeam string   `json:"batting_team"`
	Runs        int      `json:"runs"`
	Wickets     int      `json:"wickets"`
	Overs       string   `json:"overs"`
	RunRate     *float64 `json:"run_rate"`
}

// BatterLine is one ranked batting card entry
type BatterLine struct {
	Innings    int      `json:"innings"`
	Batter     string   `json:"batter"`
	Runs       int      `json:"runs"`
	Balls      int      `json:"balls"`
	Fours      int      `json:"fours"`
	Sixes      int      `json:"sixes"`
	StrikeRate *float64 `json:"strike_rate"`
}

// BowlerLine is one ranked bowling card entry
type BowlerLine struct {
	Innings      int      `json:"innings"`
	Bowler       string   `json:"bowler"`
	Wickets      int      `json:"wickets"`
	RunsConceded int      `json:"runs_conceded"`
	Overs        string   `json:"overs"`
	Economy      *float64 `json:"economy"`
}

// MatchSummaryResult is the full match_summary payload
type MatchSummaryResult struct {
	Meta       MatchMetaResult `json:"meta"`
	Innings    []InningsResult `json:"innings"`
	TopBatters []BatterLine    `json:"top_batters"`
	TopBowlers []BowlerLine    `json:"top_bowlers"`
	Evidence   Evidence        `json:"evidence"`
}

// Evidence points back at the match the answer was computed from
type Evidence struct {
	MatchID int64 `json:"match_id"`
}

// PlayerInput echoes the resolved player query
type PlayerInput struct {
	PlayerQuery  string `json:"player_query"`
	ResolvedName string `json:"resolved_name"`
	Scope        string `json:"scope"`
	Season       string `json:"season,omitempty"`
}

// BattingStats is a player's batting block
type BattingStats struct {
	Matches int      `json:"matches"`
	Inns    int      `json:"inns"`
	Runs    int      `json:"runs"`
	Balls   int      `json:"balls"`
	Fours   int      `json:"fours"`
	Sixes   int      `json:"sixes"`
	SR      *float64 `json:"sr"`
	Average *float64 `json:"average"`
}

// BowlingStats is a player's bowling block
type BowlingStats struct {
	Matches      int      `json:"matches"`
	Overs        *float64 `json:"overs"`
	Wickets      int      `json:"wickets"`
	RunsConceded int      `json:"runs_conceded"`
	Economy      *float64 `json:"economy"`
}

// LastTeam is the team of a player's most recent appearance
type LastTeam struct {
	Team    string `json:"team"`
	MatchID int64  `json:"match_id"`
	Date    string `json:"date,omitempty"`
}

// NemesisBowler dismissed the player most often
type NemesisBowler struct {
	Bowler         string   `json:"bowler"`
	Outs           int      `json:"outs"`
	Balls          int      `json:"balls"`
	EconomyAgainst *float64 `json:"economy_against"`
}

// FavouriteBowler conceded the highest economy to the player
type FavouriteBowler struct {
	Bowler  string   `json:"bowler"`
	Balls   int      `json:"balls"`
	Economy *float64 `json:"economy"`
}

// MostDismissedBatter fell to the bowler most often
type MostDismissedBatter struct {
	Batter         string   `json:"batter"`
	Outs           int      `json:"outs"`
	Balls          int      `json:"balls"`
	EconomyAgainst *float64 `json:"economy_against"`
}

// WorstVsBatter took the bowler for the highest economy
type WorstVsBatter struct {
	Batter  string   `json:"batter"`
	Balls   int      `json:"balls"`
	Economy *float64 `json:"economy"`
}

// Matchups groups the per-player matchup nuggets
type Matchups struct {
	Batting struct {
		NemesisBowler   *NemesisBowler   `json:"nemesis_bowler"`
		FavouriteBowler *FavouriteBowler `json:"favourite_bowler"`
	} `json:"batting"`
	Bowling struct {
		MostDismissedBatter *MostDismissedBatter `json:"most_dismissed_batter"`
		WorstVsBatter       *WorstVsBatter       `json:"worst_vs_batter"`
	} `json:"bowling"`
}

// PlayerStatsResult is the full player_stats payload
type PlayerStatsResult struct {
	Input    PlayerInput  `json:"input"`
	Batting  BattingStats `json:"batting"`
	Bowling  BowlingStats `json:"bowling"`
	Teams    []string     `json:"teams"`
	LastTeam *LastTeam    `json:"last_team"`
	Matchups Matchups     `json:"matchups"`
}

// SquadMember is one squad entry. Appearances is nil for players listed in
// the declared squad who never batted or bowled.
type SquadMember struct {
	Player      string `json:"player"`
	Appearances *int   `json:"appearances"`
}

// TeamSquadResult is the full team_squad payload
type TeamSquadResult struct {
	Input struct {
		Team   string `json:"team"`
		Season string `json:"season"`
	} `json:"input"`
	Squad []SquadMember `json:"squad"`
}

// VsInput echoes a player-vs-team query
type VsInput struct {
	PlayerQuery  string `json:"player_query"`
	ResolvedName string `json:"resolved_name"`
	Opponent     string `json:"opponent"`
	Scope        string `json:"scope"`
	Season       string `json:"season,omitempty"`
}

// BattingVsTeam is the batting block of player_vs_team
type BattingVsTeam struct {
	Runs    int      `json:"runs"`
	Balls   int      `json:"balls"`
	Fours   int      `json:"fours"`
	Sixes   int      `json:"sixes"`
	SR      *float64 `json:"sr"`
	Average *float64 `json:"average"`
}

// BowlingVsTeam is the bowling block of player_vs_team
type BowlingVsTeam struct {
	Overs        *float64 `json:"overs"`
	Wickets      int      `json:"wickets"`
	RunsConceded int      `json:"runs_conceded"`
	Economy      *float64 `json:"economy"`
}

// PlayerVsTeamResult is the full player_vs_team payload
type PlayerVsTeamResult struct {
	Input         VsInput       `json:"input"`
	BattingVsTeam BattingVsTeam `json:"batting_vs_team"`
	BowlingVsTeam BowlingVsTeam `json:"bowling_vs_team"`
}

// MeetingRef identifies one meeting in a head-to-head summary
type MeetingRef struct {
	MatchID int64  `json:"match_id"`
	Season  string `json:"season,omitempty"`
	Date    string `json:"date,omitempty"`
}

// HeadToHeadSummary is the totals block of a head-to-head
type HeadToHeadSummary struct {
	Matches   int        `json:"matches"`
	TeamA     string     `json:"team_a"`
	TeamB     string     `json:"team_b"`
	WinsTeamA int        `json:"wins_team_a"`
	WinsTeamB int        `json:"wins_team_b"`
	Ties      int        `json:"ties"`
	NoResult  int        `json:"no_result"`
	Earliest  MeetingRef `json:"earliest"`
	Latest    MeetingRef `json:"latest"`
}

// StarBatter is a head-to-head batting star line
type StarBatter struct {
	Player   string   `json:"player"`
	Runs     int      `json:"runs"`
	Balls    int      `json:"balls"`
	Avg      *float64 `json:"avg"`
	Fifties  int      `json:"fifties"`
	Hundreds int      `json:"hundreds"`
}

// StarBowler is a head-to-head bowling star line
type StarBowler struct {
	Player       string   `json:"player"`
	Balls        int      `json:"balls"`
	RunsConceded int      `json:"runs_conceded"`
	Wickets      int      `json:"wickets"`
	Economy      *float64 `json:"economy"`
}

// TeamStars pairs a team with its best batter and bowler in the rivalry
type TeamStars struct {
	Team    string      `json:"team"`
	Batting *StarBatter `json:"batting"`
	Bowling *StarBowler `json:"bowling"`
}

// HeadToHeadResult is the full head_to_head payload
type HeadToHeadResult struct {
	Summary        HeadToHeadSummary `json:"summary"`
	StarPerformers []TeamStars       `json:"star_performers"`
}

// PhaseLeader is one leaderboard row of best_phase_bowlers
type PhaseLeader struct {
	Bowler       string   `json:"bowler"`
	Overs        float64  `json:"overs"`
	Wickets      int      `json:"wickets"`
	RunsConceded int      `json:"runs_conceded"`
	Economy      *float64 `json:"economy"`
	Average      *float64 `json:"average"`
	StrikeRate   *float64 `json:"strike_rate"`
	DotPct       *float64 `json:"dot_pct"`
	BoundaryPct  *float64 `json:"boundary_pct"`
	Matches      int      `json:"matches"`
}

// PhaseBowlersResult is the full best_phase_bowlers payload
type PhaseBowlersResult struct {
	Input struct {
		Phase    string `json:"phase"`
		Scope    string `json:"scope"`
		Season   string `json:"season,omitempty"`
		MinOvers int    `json:"min_overs"`
	} `json:"input"`
	Leaders []PhaseLeader `json:"leaders"`
}

// round2 rounds to two decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ratio divides n*scale by d rounded to 2 decimals, nil when d is zero
func ratio(n, d, scale float64) *float64 {
	if d == 0 {
		return nil
	}
	v := round2(n * scale / d)
	return &v
}

// nullableFloat converts a scanned nullable to the payload pointer form
func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// oversString renders a legal-ball count as "O.B" overs notation
func oversString(balls int) string {
	return fmt.Sprintf("%d.%d", balls/6, balls%6)
}
