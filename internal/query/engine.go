package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/store"
	"github.com/fortuna/gully/internal/store/repository"
)

const (
	// topPerInnings is how many batting and bowling lines a match summary
	// carries per innings.
	topPerInnings = 2

	// matchupMinBalls is the qualification floor (10 overs) for the
	// favourite-bowler and worst-economy matchups.
	matchupMinBalls = 60

	// phaseLeaderboardSize caps the best_phase_bowlers leaderboard
	phaseLeaderboardSize = 10
)

// Default minimum overs for the phase leaderboard by scope
const (
	DefaultMinOversSeason = 10
	DefaultMinOversCareer = 30
)

// Engine runs the aggregations behind every intent. All methods take
// user-typed names, resolve them through the snapshot resolver, and return
// a typed result or a NotFoundError/AmbiguousPlayerError.
type Engine struct {
	matches    *repository.MatchRepository
	deliveries *repository.DeliveryRepository
	aggregates *repository.AggregateRepository
	resolver   *resolver.Resolver
}

// NewEngine creates an engine over the store with a prebuilt resolver
func NewEngine(db *store.Database, res *resolver.Resolver) *Engine {
	return &Engine{
		matches:    repository.NewMatchRepository(db),
		deliveries: repository.NewDeliveryRepository(db),
		aggregates: repository.NewAggregateRepository(db),
		resolver:   res,
	}
}

// resolveTeam falls back to the raw input when the resolver has no answer;
// downstream queries then simply find no rows for it.
func (e *Engine) resolveTeam(input string) string {
	if canon, ok := e.resolver.ResolveTeam(input); ok {
		return canon
	}
	return input
}

func (e *Engine) resolvePlayer(input string) (string, error) {
	canon, choices := e.resolver.ResolvePlayer(input)
	if canon == "" && len(choices) > 0 {
		return "", &AmbiguousPlayerError{Input: input, Choices: choices}
	}
	if canon == "" {
		return "", NotFoundf("No appearances for '%s' in current data.", input)
	}
	return canon, nil
}

func scopeFilter(scope, season string) repository.StatFilter {
	if scope == "season" && season != "" {
		return repository.StatFilter{Season: season}
	}
	return repository.StatFilter{}
}

func dateString(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02")
}

// MatchSummary builds the scorecard of the nth meeting of two teams in a
// season: per-innings totals plus the top batting and bowling lines.
func (e *Engine) MatchSummary(ctx context.Context, teamA, teamB, season string, nth int) (*MatchSummaryResult, error) {
	a := e.resolveTeam(teamA)
	b := e.resolveTeam(teamB)

	meeting, err := e.matches.NthMeeting(ctx, a, b, season, nth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundf("No match found between %s and %s in %s", a, b, season)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting meeting: %w", err)
	}

	summaries, err := e.aggregates.InningsSummaries(ctx, meeting.MatchID)
	if err != nil {
		return nil, err
	}
	batters, err := e.aggregates.TopBatters(ctx, meeting.MatchID, topPerInnings)
	if err != nil {
		return nil, err
	}
	bowlers, err := e.aggregates.TopBowlers(ctx, meeting.MatchID, topPerInnings)
	if err != nil {
		return nil, err
	}

	result := &MatchSummaryResult{
		Meta: MatchMetaResult{
			MatchID:       meeting.MatchID,
			Season:        meeting.Season.String,
			Date:          dateString(meeting.Date),
			Venue:         meeting.Venue.String,
			Team1:         meeting.Team1.String,
			Team2:         meeting.Team2.String,
			Teams:         []string{meeting.Team1.String, meeting.Team2.String},
			Winner:        meeting.Winner.String,
			PlayerOfMatch: meeting.PlayerOfMatch.String,
		},
		Evidence: Evidence{MatchID: meeting.MatchID},
	}

	for _, s := range summaries {
		result.Innings = append(result.Innings, InningsResult{
			Innings:     s.Innings,
			BattingTeam: s.BattingTeam,
			Runs:        s.Runs,
			Wickets:     s.Wickets,
			Overs:       oversString(s.LegalBalls),
			RunRate:     nullableFloat(s.RunRate),
		})
	}
	for _, b := range batters {
		result.TopBatters = append(result.TopBatters, BatterLine{
			Innings:    b.Innings,
			Batter:     b.Batter,
			Runs:       b.Runs,
			Balls:      b.Balls,
			Fours:      b.Fours,
			Sixes:      b.Sixes,
			StrikeRate: nullableFloat(b.StrikeRate),
		})
	}
	for _, w := range bowlers {
		result.TopBowlers = append(result.TopBowlers, BowlerLine{
			Innings:      w.Innings,
			Bowler:       w.Bowler,
			Wickets:      w.Wickets,
			RunsConceded: w.RunsConceded,
			Overs:        oversString(w.LegalBalls),
			Economy:      nullableFloat(w.Economy),
		})
	}

	return result, nil
}

// PlayerStats aggregates a player's batting and bowling record in scope,
// plus team history and the matchup nuggets.
func (e *Engine) PlayerStats(ctx context.Context, playerQuery, scope, season string) (*PlayerStatsResult, error) {
	player, err := e.resolvePlayer(playerQuery)
	if err != nil {
		return nil, err
	}
	f := scopeFilter(scope, season)

	appearances, err := e.aggregates.AppearanceMatches(ctx, player, f)
	if err != nil {
		return nil, err
	}
	if appearances == 0 {
		return nil, NotFoundf("No data found for player %s", player)
	}

	bat, err := e.aggregates.Batting(ctx, player, f)
	if err != nil {
		return nil, err
	}
	bowl, err := e.aggregates.Bowling(ctx, player, f)
	if err != nil {
		return nil, err
	}

	teams, err := e.aggregates.TeamsRepresented(ctx, player)
	if err != nil {
		return nil, err
	}

	last, err := e.aggregates.LastTeam(ctx, player)
	if err != nil {
		return nil, err
	}

	result := &PlayerStatsResult{
		Input: PlayerInput{
			PlayerQuery:  playerQuery,
			ResolvedName: player,
			Scope:        scope,
			Season:       season,
		},
		Batting: BattingStats{
			Matches: appearances,
			Inns:    bat.Innings,
			Runs:    bat.Runs,
			Balls:   bat.Balls,
			Fours:   bat.Fours,
			Sixes:   bat.Sixes,
			SR:      ratio(float64(bat.Runs), float64(bat.Balls), 100),
			Average: ratio(float64(bat.Runs), float64(bat.Dismissals), 1),
		},
		Bowling: BowlingStats{
			Matches:      bowl.Matches,
			Overs:        ratio(float64(bowl.Balls), 6, 1),
			Wickets:      bowl.Wickets,
			RunsConceded: bowl.RunsConceded,
			Economy:      ratio(float64(bowl.RunsConceded)*6, float64(bowl.Balls), 1),
		},
		Teams: teams,
	}

	if last != nil {
		result.LastTeam = &LastTeam{
			Team:    last.Team,
			MatchID: last.MatchID,
			Date:    dateString(last.Date),
		}
	}

	nemesis, err := e.aggregates.NemesisBowler(ctx, player)
	if err != nil {
		return nil, err
	}
	if nemesis != nil {
		result.Matchups.Batting.NemesisBowler = &NemesisBowler{
			Bowler:         nemesis.Bowler,
			Outs:           nemesis.Outs,
			Balls:          nemesis.Balls,
			EconomyAgainst: nullableFloat(nemesis.Economy),
		}
	}

	favourite, err := e.aggregates.FavouriteBowler(ctx, player, matchupMinBalls)
	if err != nil {
		return nil, err
	}
	if favourite != nil {
		result.Matchups.Batting.FavouriteBowler = &FavouriteBowler{
			Bowler:  favourite.Bowler,
			Balls:   favourite.Balls,
			Economy: nullableFloat(favourite.Economy),
		}
	}

	bunny, err := e.aggregates.MostDismissedBatter(ctx, player)
	if err != nil {
		return nil, err
	}
	if bunny != nil {
		result.Matchups.Bowling.MostDismissedBatter = &MostDismissedBatter{
			Batter:         bunny.Batter,
			Outs:           bunny.Outs,
			Balls:          bunny.Balls,
			EconomyAgainst: nullableFloat(bunny.Economy),
		}
	}

	worst, err := e.aggregates.WorstEconomyBatter(ctx, player, matchupMinBalls)
	if err != nil {
		return nil, err
	}
	if worst != nil {
		result.Matchups.Bowling.WorstVsBatter = &WorstVsBatter{
			Batter:  worst.Batter,
			Balls:   worst.Balls,
			Economy: nullableFloat(worst.Economy),
		}
	}

	return result, nil
}

// TeamSquad unions the players who took the field for a team in a season
// with the declared squads from the match metadata. Declared-only players
// carry a nil appearance count.
func (e *Engine) TeamSquad(ctx context.Context, team, season string) (*TeamSquadResult, error) {
	t := e.resolveTeam(team)

	appearances, err := e.deliveries.TeamAppearances(ctx, t, season)
	if err != nil {
		return nil, err
	}

	payloads, err := e.matches.DeclaredSquads(ctx, t, season)
	if err != nil {
		return nil, err
	}

	listed := make(map[string]struct{})
	for _, payload := range payloads {
		var squads map[string][]string
		if err := json.Unmarshal([]byte(payload), &squads); err != nil {
			continue // malformed squad blob, appearance data still stands
		}
		for _, p := range squads[t] {
			if p != "" {
				listed[p] = struct{}{}
			}
		}
	}

	counts := make(map[string]int, len(appearances))
	for _, a := range appearances {
		counts[a.Player] = a.Matches
	}

	union := make(map[string]struct{}, len(counts)+len(listed))
	for p := range counts {
		union[p] = struct{}{}
	}
	for p := range listed {
		union[p] = struct{}{}
	}
	if len(union) == 0 {
		return nil, NotFoundf("No squad data found for %s in %s", t, season)
	}

	names := make([]string, 0, len(union))
	for p := range union {
		names = append(names, p)
	}
	sort.Strings(names)

	result := &TeamSquadResult{}
	result.Input.Team = t
	result.Input.Season = season
	for _, p := range names {
		member := SquadMember{Player: p}
		if n, ok := counts[p]; ok {
			member.Appearances = &n
		}
		result.Squad = append(result.Squad, member)
	}

	return result, nil
}

// PlayerVsTeam is PlayerStats narrowed to deliveries against one opponent
func (e *Engine) PlayerVsTeam(ctx context.Context, playerQuery, opponent, scope, season string) (*PlayerVsTeamResult, error) {
	player, err := e.resolvePlayer(playerQuery)
	if err != nil {
		return nil, err
	}
	opp := e.resolveTeam(opponent)

	f := scopeFilter(scope, season)
	f.Opponent = opp

	appearances, err := e.aggregates.AppearanceMatches(ctx, player, f)
	if err != nil {
		return nil, err
	}
	if appearances == 0 {
		return nil, NotFoundf("No data found for %s vs %s", player, opp)
	}

	bat, err := e.aggregates.Batting(ctx, player, f)
	if err != nil {
		return nil, err
	}
	bowl, err := e.aggregates.Bowling(ctx, player, f)
	if err != nil {
		return nil, err
	}

	return &PlayerVsTeamResult{
		Input: VsInput{
			PlayerQuery:  playerQuery,
			ResolvedName: player,
			Opponent:     opp,
			Scope:        scope,
			Season:       season,
		},
		BattingVsTeam: BattingVsTeam{
			Runs:    bat.Runs,
			Balls:   bat.Balls,
			Fours:   bat.Fours,
			Sixes:   bat.Sixes,
			SR:      ratio(float64(bat.Runs), float64(bat.Balls), 100),
			Average: ratio(float64(bat.Runs), float64(bat.Dismissals), 1),
		},
		BowlingVsTeam: BowlingVsTeam{
			Overs:        ratio(float64(bowl.Balls), 6, 1),
			Wickets:      bowl.Wickets,
			RunsConceded: bowl.RunsConceded,
			Economy:      ratio(float64(bowl.RunsConceded)*6, float64(bowl.Balls), 1),
		},
	}, nil
}

// HeadToHead totals every meeting between two teams and picks each side's
// star batter and bowler across those matches. Matches with no recorded
// winner count as ties; genuine no-results are not distinguished in the
// source data.
func (e *Engine) HeadToHead(ctx context.Context, teamA, teamB, scope, season string) (*HeadToHeadResult, error) {
	a := e.resolveTeam(teamA)
	b := e.resolveTeam(teamB)

	seasonScope := ""
	if scope == "season" && season != "" {
		seasonScope = season
	}

	meetings, err := e.matches.MeetingsBetween(ctx, a, b, seasonScope)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		if seasonScope != "" {
			return nil, NotFoundf("No head-to-head matches found between %s and %s in %s", a, b, seasonScope)
		}
		return nil, NotFoundf("No head-to-head matches found between %s and %s", a, b)
	}

	var winsA, winsB, ties int
	matchIDs := make([]int64, len(meetings))
	for i, m := range meetings {
		matchIDs[i] = m.MatchID
		switch {
		case !m.Winner.Valid:
			ties++
		case m.Winner.String == a:
			winsA++
		case m.Winner.String == b:
			winsB++
		}
	}

	earliest, latest := meetings[0], meetings[len(meetings)-1]
	result := &HeadToHeadResult{
		Summary: HeadToHeadSummary{
			Matches:   len(meetings),
			TeamA:     a,
			TeamB:     b,
			WinsTeamA: winsA,
			WinsTeamB: winsB,
			Ties:      ties,
			NoResult:  0,
			Earliest: MeetingRef{
				MatchID: earliest.MatchID,
				Season:  earliest.Season.String,
				Date:    dateString(earliest.Date),
			},
			Latest: MeetingRef{
				MatchID: latest.MatchID,
				Season:  latest.Season.String,
				Date:    dateString(latest.Date),
			},
		},
	}

	for _, side := range []struct{ forTeam, against string }{{a, b}, {b, a}} {
		stars := TeamStars{Team: side.forTeam}

		batter, err := e.aggregates.StarBatter(ctx, matchIDs, side.forTeam, side.against)
		if err != nil {
			return nil, err
		}
		if batter != nil {
			stars.Batting = &StarBatter{
				Player:   batter.Batter,
				Runs:     batter.Runs,
				Balls:    batter.Balls,
				Avg:      nullableFloat(batter.Average),
				Fifties:  batter.Fifties,
				Hundreds: batter.Hundreds,
			}
		}

		bowler, err := e.aggregates.StarBowler(ctx, matchIDs, side.forTeam, side.against)
		if err != nil {
			return nil, err
		}
		if bowler != nil {
			stars.Bowling = &StarBowler{
				Player:       bowler.Bowler,
				Balls:        bowler.Balls,
				RunsConceded: bowler.RunsConceded,
				Wickets:      bowler.Wickets,
				Economy:      nullableFloat(bowler.Economy),
			}
		}

		result.StarPerformers = append(result.StarPerformers, stars)
	}

	return result, nil
}

// BestPhaseBowlers ranks bowlers within a phase by economy, filtered to a
// minimum of minOvers legal overs bowled.
func (e *Engine) BestPhaseBowlers(ctx context.Context, phase, scope, season string, minOvers int) (*PhaseBowlersResult, error) {
	seasonScope := ""
	if scope == "season" && season != "" {
		seasonScope = season
	}

	rows, err := e.aggregates.PhaseLeaders(ctx, phase, seasonScope, minOvers*6, phaseLeaderboardSize)
	if err != nil {
		return nil, err
	}

	result := &PhaseBowlersResult{}
	result.Input.Phase = phase
	result.Input.Scope = scope
	result.Input.Season = season
	result.Input.MinOvers = minOvers

	for _, r := range rows {
		result.Leaders = append(result.Leaders, PhaseLeader{
			Bowler:       r.Bowler,
			Overs:        round2(float64(r.LegalBalls) / 6),
			Wickets:      r.Wickets,
			RunsConceded: r.RunsConceded,
			Economy:      nullableFloat(r.Economy),
			Average:      nullableFloat(r.Average),
			StrikeRate:   nullableFloat(r.StrikeRate),
			DotPct:       nullableFloat(r.DotPct),
			BoundaryPct:  nullableFloat(r.BoundaryPct),
			Matches:      r.Matches,
		})
	}

	return result, nil
}
