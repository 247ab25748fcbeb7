// Package format renders aggregation results as plain readable text.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fortuna/gully/internal/query"
	"github.com/fortuna/gully/internal/router"
)

func header(title string) string {
	return title + "\n" + strings.Repeat("-", len(title))
}

func bulletList(items []string) string {
	var lines []string
	for _, it := range items {
		if it != "" {
			lines = append(lines, "  * "+it)
		}
	}
	return strings.Join(lines, "\n")
}

// num renders a nullable rate, "-" when nil
func num(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// MatchSummary renders the scorecard-style summary
func MatchSummary(r *query.MatchSummaryResult) string {
	title := fmt.Sprintf("%s vs %s", r.Meta.Team1, r.Meta.Team2)
	if r.Meta.Season != "" {
		title += " - " + r.Meta.Season
	}

	lines := []string{
		header(title),
		fmt.Sprintf("Date: %s  |  Venue: %s", r.Meta.Date, r.Meta.Venue),
		fmt.Sprintf("Result: %s  |  Player of the Match: %s",
			orDash(r.Meta.Winner), orDash(r.Meta.PlayerOfMatch)),
	}

	if len(r.Innings) > 0 {
		lines = append(lines, "", header("Innings Summary"))
		for _, i := range r.Innings {
			lines = append(lines, fmt.Sprintf("%s: %d/%d in %s overs (RR %s)",
				i.BattingTeam, i.Runs, i.Wickets, i.Overs, num(i.RunRate)))
		}
	}

	if len(r.TopBatters) > 0 {
		var items []string
		for _, b := range r.TopBatters {
			items = append(items, fmt.Sprintf("Inns %d: %s - %d (%d) 4x%d 6x%d SR %s",
				b.Innings, b.Batter, b.Runs, b.Balls, b.Fours, b.Sixes, num(b.StrikeRate)))
		}
		lines = append(lines, "", header("Top Batters"), bulletList(items))
	}

	if len(r.TopBowlers) > 0 {
		var items []string
		for _, b := range r.TopBowlers {
			items = append(items, fmt.Sprintf("Inns %d: %s - %d/%d in %s (Econ %s)",
				b.Innings, b.Bowler, b.Wickets, b.RunsConceded, b.Overs, num(b.Economy)))
		}
		lines = append(lines, "", header("Top Bowlers"), bulletList(items))
	}

	lines = append(lines, "", fmt.Sprintf("(Match ID: %d)", r.Evidence.MatchID))
	return strings.Join(lines, "\n")
}

// PlayerStats renders batting/bowling blocks, matchup nuggets and teams
func PlayerStats(r *query.PlayerStatsResult) string {
	scopeLine := "Scope: " + r.Input.Scope
	if r.Input.Season != "" {
		scopeLine += "  |  Season: " + r.Input.Season
	}

	lines := []string{
		header("Player: " + r.Input.ResolvedName),
		scopeLine,
		"",
		header("Batting"),
		fmt.Sprintf("Matches: %d  |  Inns: %d", r.Batting.Matches, r.Batting.Inns),
		fmt.Sprintf("Runs: %d  |  Balls: %d", r.Batting.Runs, r.Batting.Balls),
		fmt.Sprintf("4s/6s: %d/%d", r.Batting.Fours, r.Batting.Sixes),
		fmt.Sprintf("SR: %s  |  Avg: %s", num(r.Batting.SR), num(r.Batting.Average)),
	}

	nb := r.Matchups.Batting.NemesisBowler
	fb := r.Matchups.Batting.FavouriteBowler
	if nb != nil || fb != nil {
		lines = append(lines, "", header("Batting Matchups"))
		if nb != nil {
			lines = append(lines, fmt.Sprintf("Nemesis bowler: %s - outs %d, balls %d, econ vs %s",
				nb.Bowler, nb.Outs, nb.Balls, num(nb.EconomyAgainst)))
		}
		if fb != nil {
			lines = append(lines, fmt.Sprintf("Favourite bowler: %s - balls %d, econ %s (min 10 overs)",
				fb.Bowler, fb.Balls, num(fb.Economy)))
		}
	}

	lines = append(lines, "",
		header("Bowling"),
		fmt.Sprintf("Matches: %d", r.Bowling.Matches),
		fmt.Sprintf("Overs: %s  |  Wkts: %d", num(r.Bowling.Overs), r.Bowling.Wickets),
		fmt.Sprintf("Runs Conceded: %d  |  Econ: %s", r.Bowling.RunsConceded, num(r.Bowling.Economy)),
	)

	md := r.Matchups.Bowling.MostDismissedBatter
	ww := r.Matchups.Bowling.WorstVsBatter
	if md != nil || ww != nil {
		lines = append(lines, "", header("Bowling Matchups"))
		if md != nil {
			lines = append(lines, fmt.Sprintf("Most dismissals: %s - outs %d, balls %d, econ vs %s",
				md.Batter, md.Outs, md.Balls, num(md.EconomyAgainst)))
		}
		if ww != nil {
			lines = append(lines, fmt.Sprintf("Worst econ vs batter: %s - balls %d, econ %s (min 10 overs)",
				ww.Batter, ww.Balls, num(ww.Economy)))
		}
	}

	if len(r.Teams) > 0 || r.LastTeam != nil {
		lines = append(lines, "", header("Teams"))
		if len(r.Teams) > 0 {
			lines = append(lines, strings.Join(r.Teams, ", "))
		}
		if r.LastTeam != nil {
			lt := r.LastTeam.Team
			var ctx []string
			if r.LastTeam.Date != "" {
				ctx = append(ctx, r.LastTeam.Date)
			}
			if r.LastTeam.MatchID != 0 {
				ctx = append(ctx, fmt.Sprintf("ID %d", r.LastTeam.MatchID))
			}
			if len(ctx) > 0 {
				lt += fmt.Sprintf("  (last appearance: %s)", strings.Join(ctx, ", "))
			}
			lines = append(lines, lt)
		}
	}

	return strings.Join(lines, "\n")
}

// TeamSquad renders the season squad as a bulleted list
func TeamSquad(r *query.TeamSquadResult) string {
	lines := []string{header(fmt.Sprintf("Squad: %s - %s", r.Input.Team, r.Input.Season))}
	if len(r.Squad) == 0 {
		lines = append(lines, "No players found.")
		return strings.Join(lines, "\n")
	}

	var items []string
	for _, m := range r.Squad {
		apps := "?"
		if m.Appearances != nil {
			apps = strconv.Itoa(*m.Appearances)
		}
		items = append(items, fmt.Sprintf("%s (%s matches)", m.Player, apps))
	}
	lines = append(lines, bulletList(items))
	return strings.Join(lines, "\n")
}

// PlayerVsTeam renders one player's record against an opponent
func PlayerVsTeam(r *query.PlayerVsTeamResult) string {
	title := fmt.Sprintf("%s vs %s", r.Input.ResolvedName, r.Input.Opponent)
	if r.Input.Scope == "season" && r.Input.Season != "" {
		title += " - " + r.Input.Season
	}

	lines := []string{
		header(title),
		"",
		header("Batting vs Opponent"),
		fmt.Sprintf("Runs: %d  |  Balls: %d  |  4s/6s: %d/%d",
			r.BattingVsTeam.Runs, r.BattingVsTeam.Balls, r.BattingVsTeam.Fours, r.BattingVsTeam.Sixes),
		fmt.Sprintf("SR: %s  |  Avg: %s", num(r.BattingVsTeam.SR), num(r.BattingVsTeam.Average)),
		"",
		header("Bowling vs Opponent"),
		fmt.Sprintf("Overs: %s  |  Wkts: %d  |  Runs: %d",
			num(r.BowlingVsTeam.Overs), r.BowlingVsTeam.Wickets, r.BowlingVsTeam.RunsConceded),
		fmt.Sprintf("Econ: %s", num(r.BowlingVsTeam.Economy)),
	}
	return strings.Join(lines, "\n")
}

// HeadToHead renders totals, first/last meeting and the star performers
func HeadToHead(r *query.HeadToHeadResult) string {
	s := r.Summary
	lines := []string{
		header("Head-to-Head"),
		fmt.Sprintf("Matches: %d | Wins %s: %d, %s: %d | Ties: %d | No Result: %d",
			s.Matches, s.TeamA, s.WinsTeamA, s.TeamB, s.WinsTeamB, s.Ties, s.NoResult),
		fmt.Sprintf("Earliest: %s %s (ID %d)", orDash(s.Earliest.Season), orDash(s.Earliest.Date), s.Earliest.MatchID),
		fmt.Sprintf("Latest:   %s %s (ID %d)", orDash(s.Latest.Season), orDash(s.Latest.Date), s.Latest.MatchID),
	}

	if len(r.StarPerformers) > 0 {
		lines = append(lines, "", header("Star Performers"))
		for _, stars := range r.StarPerformers {
			lines = append(lines, "", stars.Team)
			if stars.Batting != nil {
				b := stars.Batting
				lines = append(lines, fmt.Sprintf(
					"Batting: %s - Runs %d, Balls %d, Avg %s, 50s %d, 100s %d",
					b.Player, b.Runs, b.Balls, num(b.Avg), b.Fifties, b.Hundreds))
			} else {
				lines = append(lines, "Batting: -")
			}
			if stars.Bowling != nil {
				w := stars.Bowling
				oversStr := "-"
				if w.Balls > 0 {
					oversStr = fmt.Sprintf("%d.%d", w.Balls/6, w.Balls%6)
				}
				lines = append(lines, fmt.Sprintf(
					"Bowling: %s - Overs %s, Runs %d, Econ %s, Wkts %d",
					w.Player, oversStr, w.RunsConceded, num(w.Economy), w.Wickets))
			} else {
				lines = append(lines, "Bowling: -")
			}
		}
	}

	return strings.Join(lines, "\n")
}

// BestPhaseBowlers renders the phase leaderboard
func BestPhaseBowlers(r *query.PhaseBowlersResult) string {
	labels := map[string]string{"PP": "Powerplay", "Middle": "Middle", "Death": "Death"}
	label, ok := labels[r.Input.Phase]
	if !ok {
		label = r.Input.Phase
	}

	title := "Best " + label + " Bowlers - "
	if r.Input.Scope == "season" && r.Input.Season != "" {
		title += "IPL " + r.Input.Season
	} else {
		title += "IPL (All Seasons)"
	}

	lines := []string{header(title), fmt.Sprintf("Minimum overs in phase: %d", r.Input.MinOvers)}
	if len(r.Leaders) == 0 {
		lines = append(lines, "No qualifying bowlers.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "")
	for i, l := range r.Leaders {
		lines = append(lines, fmt.Sprintf(
			"%d. %s - Overs %s, Wkts %d, Runs %d, Econ %s, Avg %s, SR %s, Dot%% %s, Boundary%% %s (Matches %d)",
			i+1, l.Bowler, strconv.FormatFloat(l.Overs, 'g', -1, 64),
			l.Wickets, l.RunsConceded, num(l.Economy), num(l.Average),
			num(l.StrikeRate), num(l.DotPct), num(l.BoundaryPct), l.Matches))
	}

	return strings.Join(lines, "\n")
}

// Error renders a failed lookup, with a "Did you mean?" block when the
// failure is an ambiguous player name.
func Error(err error) string {
	if amb, ok := err.(*query.AmbiguousPlayerError); ok {
		return amb.Error() + "\n" + header("Did you mean?") + "\n" + bulletList(amb.Choices)
	}
	return err.Error()
}

// Answer dispatches a typed result to its renderer
func Answer(intent router.Intent, result any) string {
	switch r := result.(type) {
	case *query.MatchSummaryResult:
		return MatchSummary(r)
	case *query.PlayerStatsResult:
		return PlayerStats(r)
	case *query.TeamSquadResult:
		return TeamSquad(r)
	case *query.PlayerVsTeamResult:
		return PlayerVsTeam(r)
	case *query.HeadToHeadResult:
		return HeadToHead(r)
	case *query.PhaseBowlersResult:
		return BestPhaseBowlers(r)
	}
	_ = intent
	return "I didn't understand that request."
}
