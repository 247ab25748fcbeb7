package router

// Intent tags the query classification produced by Route
type Intent string

const (
	IntentMatchSummary    Intent = "match_summary"
	IntentPlayerStats     Intent = "player_stats"
	IntentTeamSquad       Intent = "team_squad"
	IntentPlayerVsTeam    Intent = "player_vs_team"
	IntentHeadToHead      Intent = "head_to_head"
	IntentBestPhaseBowler Intent = "best_phase_bowler"
	IntentUnknown         Intent = "unknown"
)

// Scope values carried in routed params. Season scope means one season;
// career scope means all data.
const (
	ScopeCareer = "career"
	ScopeSeason = "season"
)

// RoutedQuery is the router's output: an intent tag plus the parameter
// record that intent's aggregation needs. Params is nil for unknown.
type RoutedQuery struct {
	Intent Intent `json:"intent"`
	Params any    `json:"params"`
}

// MatchSummaryParams asks for the nth meeting of two teams in a season
type MatchSummaryParams struct {
	TeamA  string `json:"team_a"`
	TeamB  string `json:"team_b"`
	Season string `json:"season"`
	Nth    int    `json:"nth"`
}

// PlayerStatsParams asks for a player's career or season record
type PlayerStatsParams struct {
	Player string `json:"player"`
	Scope  string `json:"scope"`
	Season string `json:"season"`
}

// TeamSquadParams asks who played for a team in a season
type TeamSquadParams struct {
	Team   string `json:"team"`
	Season string `json:"season"`
}

// PlayerVsTeamParams asks for a player's record against one opponent
type PlayerVsTeamParams struct {
	Player   string `json:"player"`
	Opponent string `json:"opponent"`
	Scope    string `json:"scope"`
	Season   string `json:"season"`
}

// HeadToHeadParams asks for the all-time or season record between two teams
type HeadToHeadParams struct {
	TeamA  string `json:"team_a"`
	TeamB  string `json:"team_b"`
	Scope  string `json:"scope"`
	Season string `json:"season"`
}

// PhaseBowlerParams asks for the phase bowling leaderboard
type PhaseBowlerParams struct {
	Phase  string `json:"phase"`
	Scope  string `json:"scope"`
	Season string `json:"season"`
}
