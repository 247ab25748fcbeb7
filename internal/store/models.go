package store

import (
	"database/sql"
)

// Phase buckets derived from the over number. Overs 1-6 are the powerplay,
// 7-15 the middle overs, 16 onward the death overs.
const (
	PhasePowerplay = "PP"
	PhaseMiddle    = "Middle"
	PhaseDeath     = "Death"
)

// Delivery is one ball bowled. A delivery is legal (advances the over
// counter) iff wides and noballs are both zero; runs_total is always
// runs_batter + runs_extras.
type Delivery struct {
	MatchID              int64          `json:"match_id" db:"match_id"`
	Season               string         `json:"season" db:"season"`
	StartDate            sql.NullTime   `json:"start_date,omitempty" db:"start_date"`
	Venue                sql.NullString `json:"venue,omitempty" db:"venue"`
	Innings              int            `json:"innings" db:"innings"`
	Ball                 string         `json:"ball" db:"ball"`
	Over                 int            `json:"over" db:"over"`
	BallNumber           int            `json:"ball_number" db:"ball_number"`
	OverBall             string         `json:"over_ball" db:"over_ball"`
	BattingTeam          string         `json:"batting_team" db:"batting_team"`
	BowlingTeam          string         `json:"bowling_team" db:"bowling_team"`
	Striker              string         `json:"striker" db:"striker"`
	NonStriker           string         `json:"non_striker" db:"non_striker"`
	Bowler               string         `json:"bowler" db:"bowler"`
	RunsBatter           int            `json:"runs_batter" db:"runs_batter"`
	RunsExtras           int            `json:"runs_extras" db:"runs_extras"`
	RunsTotal            int            `json:"runs_total" db:"runs_total"`
	Wides                int            `json:"wides" db:"wides"`
	Noballs              int            `json:"noballs" db:"noballs"`
	Byes                 int            `json:"byes" db:"byes"`
	Legbyes              int            `json:"legbyes" db:"legbyes"`
	Penalty              int            `json:"penalty" db:"penalty"`
	WicketType           sql.NullString `json:"wicket_type,omitempty" db:"wicket_type"`
	OtherWicketType      sql.NullString `json:"other_wicket_type,omitempty" db:"other_wicket_type"`
	DismissalKind        sql.NullString `json:"dismissal_kind,omitempty" db:"dismissal_kind"`
	PlayerDismissed      sql.NullString `json:"player_dismissed,omitempty" db:"player_dismissed"`
	OtherPlayerDismissed sql.NullString `json:"other_player_dismissed,omitempty" db:"other_player_dismissed"`
	IsBoundary           bool           `json:"is_boundary" db:"is_boundary"`
	IsDot                bool           `json:"is_dot" db:"is_dot"`
	Phase                sql.NullString `json:"phase,omitempty" db:"phase"`
}

// IsLegal reports whether this delivery counts toward the 6-per-over quota
func (d *Delivery) IsLegal() bool {
	return d.Wides == 0 && d.Noballs == 0
}

// MatchMeta is one row per match. Winner is null for ties, no-results and
// abandoned matches. The *_json columns carry the declared squads and
// officials exactly as parsed from the cricsheet info file.
type MatchMeta struct {
	MatchID          int64          `json:"match_id" db:"match_id"`
	Season           sql.NullString `json:"season,omitempty" db:"season"`
	Date             sql.NullTime   `json:"date,omitempty" db:"date"`
	Venue            sql.NullString `json:"venue,omitempty" db:"venue"`
	Event            sql.NullString `json:"event,omitempty" db:"event"`
	MatchNumber      sql.NullString `json:"match_number,omitempty" db:"match_number"`
	Team1            sql.NullString `json:"team1,omitempty" db:"team1"`
	Team2            sql.NullString `json:"team2,omitempty" db:"team2"`
	TeamsJSON        string         `json:"teams_json" db:"teams_json"`
	PlayerOfMatch    sql.NullString `json:"player_of_match,omitempty" db:"player_of_match"`
	Winner           sql.NullString `json:"winner,omitempty" db:"winner"`
	UmpiresJSON      string         `json:"umpires_json" db:"umpires_json"`
	RefereesJSON     string         `json:"referees_json" db:"referees_json"`
	InningsOrderJSON string         `json:"innings_order_json" db:"innings_order_json"`
	PlayersMapJSON   string         `json:"players_map_json" db:"players_map_json"`
}

// PhaseFromOver returns the phase bucket for a 1-based over number
func PhaseFromOver(over int) string {
	switch {
	case over >= 1 && over <= 6:
		return PhasePowerplay
	case over >= 7 && over <= 15:
		return PhaseMiddle
	default:
		return PhaseDeath
	}
}
