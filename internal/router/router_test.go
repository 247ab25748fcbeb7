package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	assert.Equal(t, "2011", ParseSeason("summary of CSK vs MI in 2011"))
	assert.Equal(t, "2007/08", ParseSeason("squad of RR in 2007/08"))
	assert.Equal(t, "", ParseSeason("Dhoni career record"))
	assert.Equal(t, "", ParseSeason("match 3 of the season"))
}

func TestParseNth(t *testing.T) {
	assert.Equal(t, 1, ParseNth("first match between CSK and MI"))
	assert.Equal(t, 2, ParseNth("the second meeting"))
	assert.Equal(t, 3, ParseNth("3rd match between MI and RCB in 2014"))
	assert.Equal(t, 4, ParseNth("match 4 of the rivalry"))
	assert.Equal(t, 1, ParseNth("summary of CSK vs MI in 2011"))
	assert.Equal(t, 1, ParseNth("no ordinal here"))
}

func TestDetectPhase(t *testing.T) {
	r := New(nil)

	assert.Equal(t, "PP", r.DetectPhase("best powerplay bowlers"))
	assert.Equal(t, "PP", r.DetectPhase("top power play bowlers in 2019"))
	assert.Equal(t, "Middle", r.DetectPhase("best middle overs bowlers"))
	assert.Equal(t, "Death", r.DetectPhase("best death over bowlers in 2016"))
	assert.Equal(t, "Death", r.DetectPhase("top slog bowlers"))
	assert.Equal(t, "", r.DetectPhase("best bowlers ever"))
}

func TestNormalizeTeamToken(t *testing.T) {
	r := New(nil)

	assert.Equal(t, "CSK", r.NormalizeTeamToken("csk"))
	assert.Equal(t, "MI", r.NormalizeTeamToken(" mi "))
	assert.Equal(t, "Royal Challengers Bangalore", r.NormalizeTeamToken("royal challengers bangalore"))
}

func TestStripIntentPrefix(t *testing.T) {
	assert.Equal(t, "the 1st match between CSK and MI",
		StripIntentPrefix("summary of the 1st match between CSK and MI"))
	assert.Equal(t, "CSK vs MI", StripIntentPrefix("show CSK vs MI"))
	assert.Equal(t, "Dhoni career", StripIntentPrefix("Dhoni career"))
}

func TestExtractTeamsPair(t *testing.T) {
	r := New(nil)

	a, b, ok := r.ExtractTeamsPair("MI vs CSK head to head")
	require.True(t, ok)
	assert.Equal(t, "MI", a)
	assert.Equal(t, "CSK", b)

	a, b, ok = r.ExtractTeamsPair("summary of the match between CSK and MI in 2011")
	require.True(t, ok)
	assert.Equal(t, "CSK", a)
	assert.Equal(t, "MI", b)

	// bare "A and B" needs both sides to look like teams
	_, _, ok = r.ExtractTeamsPair("Dhoni and Kohli records")
	assert.False(t, ok)

	a, b, ok = r.ExtractTeamsPair("KKR & SRH")
	require.True(t, ok)
	assert.Equal(t, "KKR", a)
	assert.Equal(t, "SRH", b)
}

func TestExtractPlayerVsTeam(t *testing.T) {
	r := New(nil)

	player, opp, ok := r.ExtractPlayerVsTeam("Bumrah vs CSK")
	require.True(t, ok)
	assert.Equal(t, "Bumrah", player)
	assert.Equal(t, "CSK", opp)

	// a team on the left is a head-to-head, not a player matchup
	_, _, ok = r.ExtractPlayerVsTeam("MI vs CSK")
	assert.False(t, ok)
}

func TestRouteMatchSummary(t *testing.T) {
	r := New(nil)

	got := r.Route("summary of the 1st match between CSK and MI in 2011")
	require.Equal(t, IntentMatchSummary, got.Intent)

	params, ok := got.Params.(MatchSummaryParams)
	require.True(t, ok)
	assert.Equal(t, "CSK", params.TeamA)
	assert.Equal(t, "MI", params.TeamB)
	assert.Equal(t, "2011", params.Season)
	assert.Equal(t, 1, params.Nth)
}

func TestRouteBestPhaseBowler(t *testing.T) {
	r := New(nil)

	got := r.Route("best death over bowlers in 2016")
	require.Equal(t, IntentBestPhaseBowler, got.Intent)

	params, ok := got.Params.(PhaseBowlerParams)
	require.True(t, ok)
	assert.Equal(t, "Death", params.Phase)
	assert.Equal(t, ScopeSeason, params.Scope)
	assert.Equal(t, "2016", params.Season)

	got = r.Route("top powerplay bowlers")
	require.Equal(t, IntentBestPhaseBowler, got.Intent)
	params = got.Params.(PhaseBowlerParams)
	assert.Equal(t, "PP", params.Phase)
	assert.Equal(t, ScopeCareer, params.Scope)
	assert.Empty(t, params.Season)
}

func TestRouteTeamSquad(t *testing.T) {
	r := New(nil)

	got := r.Route("squad of Mumbai Indians 2015")
	require.Equal(t, IntentTeamSquad, got.Intent)

	params, ok := got.Params.(TeamSquadParams)
	require.True(t, ok)
	assert.Equal(t, "Mumbai Indians", params.Team)
	assert.Equal(t, "2015", params.Season)
}

func TestRoutePlayerStats(t *testing.T) {
	r := New(nil)

	got := r.Route("Kohli stats")
	require.Equal(t, IntentPlayerStats, got.Intent)

	params, ok := got.Params.(PlayerStatsParams)
	require.True(t, ok)
	assert.Equal(t, "Kohli", params.Player)
	assert.Equal(t, ScopeCareer, params.Scope)
}

func TestRoutePlayerVsTeam(t *testing.T) {
	r := New(nil)

	got := r.Route("Bumrah vs CSK")
	require.Equal(t, IntentPlayerVsTeam, got.Intent)

	params, ok := got.Params.(PlayerVsTeamParams)
	require.True(t, ok)
	assert.Equal(t, "Bumrah", params.Player)
	assert.Equal(t, "CSK", params.Opponent)
	assert.Equal(t, ScopeCareer, params.Scope)
}

func TestRouteHeadToHead(t *testing.T) {
	r := New(nil)

	got := r.Route("MI vs CSK head to head in 2019")
	require.Equal(t, IntentHeadToHead, got.Intent)

	params, ok := got.Params.(HeadToHeadParams)
	require.True(t, ok)
	assert.Equal(t, "MI", params.TeamA)
	assert.Equal(t, "CSK", params.TeamB)
	assert.Equal(t, ScopeSeason, params.Scope)
	assert.Equal(t, "2019", params.Season)
}

func TestRouteUnknown(t *testing.T) {
	r := New(nil)

	got := r.Route("hello")
	assert.Equal(t, IntentUnknown, got.Intent)
	assert.Nil(t, got.Params)
}
