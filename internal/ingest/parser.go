// Package ingest loads cricsheet CSV exports into the delivery store.
package ingest

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/store"
)

// MatchInfo is everything parsed out of a cricsheet <id>_info.csv
type MatchInfo struct {
	Season        string
	Date          string
	Venue         string
	Event         string
	MatchNumber   string
	Teams         []string
	Team1         string
	Team2         string
	PlayerOfMatch string
	Winner        string // "" for ties, no-results and abandoned matches
	Umpires       []string
	Referees      []string
	InningsOrder  []string
	PlayersMap    map[string][]string
}

// Meta converts the parsed info into a metadata row for the given match
func (mi *MatchInfo) Meta(matchID int64) (*store.MatchMeta, error) {
	teamsJSON, err := json.Marshal(mi.Teams)
	if err != nil {
		return nil, fmt.Errorf("encoding teams: %w", err)
	}
	umpiresJSON, _ := json.Marshal(mi.Umpires)
	refereesJSON, _ := json.Marshal(mi.Referees)
	orderJSON, _ := json.Marshal(mi.InningsOrder)
	playersJSON, err := json.Marshal(mi.PlayersMap)
	if err != nil {
		return nil, fmt.Errorf("encoding squads: %w", err)
	}

	meta := &store.MatchMeta{
		MatchID:          matchID,
		Season:           nullString(mi.Season),
		Date:             nullDate(mi.Date),
		Venue:            nullString(mi.Venue),
		Event:            nullString(mi.Event),
		MatchNumber:      nullString(mi.MatchNumber),
		Team1:            nullString(mi.Team1),
		Team2:            nullString(mi.Team2),
		TeamsJSON:        string(teamsJSON),
		PlayerOfMatch:    nullString(mi.PlayerOfMatch),
		Winner:           nullString(mi.Winner),
		UmpiresJSON:      string(umpiresJSON),
		RefereesJSON:     string(refereesJSON),
		InningsOrderJSON: string(orderJSON),
		PlayersMapJSON:   string(playersJSON),
	}
	return meta, nil
}

// ParseInfoCSV reads the tagged key-value rows of a cricsheet info file.
// Rows look like "info,venue,Wankhede Stadium" or "player,Mumbai Indians,RG Sharma";
// values may themselves contain commas, so we split on the first two only.
func ParseInfoCSV(path string) (*MatchInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening info file: %w", err)
	}
	defer f.Close()

	mi := &MatchInfo{PlayersMap: map[string][]string{}}
	outcome := map[string]string{}
	var winnerCand string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		tag := parts[0]

		switch tag {
		case "version":
			continue
		case "info":
			if len(parts) < 3 {
				continue
			}
			k, v := parts[1], strings.TrimSpace(parts[2])
			switch k {
			case "team":
				mi.Teams = append(mi.Teams, v)
			case "umpire", "tv_umpire", "umpire1", "umpire2":
				mi.Umpires = append(mi.Umpires, v)
			case "match_referee":
				mi.Referees = append(mi.Referees, v)
			case "player_of_match":
				if mi.PlayerOfMatch == "" {
					mi.PlayerOfMatch = v
				}
			case "season":
				mi.Season = v
			case "date":
				if mi.Date == "" {
					mi.Date = v
				}
			case "venue":
				mi.Venue = v
			case "event":
				mi.Event = v
			case "match_number":
				mi.MatchNumber = v
			case "winner":
				winnerCand = v
			case "outcome":
				outcome["result"] = v
			}
		case "player":
			if len(parts) >= 3 {
				team, player := parts[1], strings.TrimSpace(parts[2])
				mi.PlayersMap[team] = append(mi.PlayersMap[team], player)
			}
		case "outcome":
			if len(parts) >= 3 {
				outcome[parts[1]] = strings.TrimSpace(parts[2])
			}
		case "innings":
			if len(parts) >= 3 {
				mi.InningsOrder = append(mi.InningsOrder, strings.TrimSpace(parts[2]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading info file: %w", err)
	}

	if len(mi.Teams) > 0 {
		mi.Team1 = mi.Teams[0]
	}
	if len(mi.Teams) > 1 {
		mi.Team2 = mi.Teams[1]
	}
	if winnerCand == "" {
		winnerCand = outcome["winner"]
	}
	mi.Winner = resolveWinner(winnerCand, outcome["result"], mi.Team1, mi.Team2)

	return mi, nil
}

// resolveWinner maps the declared winner onto one of the two team names.
// Ties, no-results and abandoned matches have no winner. An unmatched
// candidate is kept verbatim rather than dropped.
func resolveWinner(cand, result, team1, team2 string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "tie", "no result", "abandoned":
		return ""
	}
	if cand == "" {
		return ""
	}

	n := resolver.Normalize(cand)
	n1 := resolver.Normalize(team1)
	n2 := resolver.Normalize(team2)
	switch {
	case team1 != "" && n == n1:
		return team1
	case team2 != "" && n == n2:
		return team2
	case team1 != "" && strings.Contains(n, n1):
		return team1
	case team2 != "" && strings.Contains(n, n2):
		return team2
	}
	return cand
}

// ParseDeliveriesCSV reads a cricsheet ball-by-ball file and derives the
// computed columns: over/ball split, phase bucket, boundary and dot flags.
// Column names vary across vintages; runs_off_bat/extras/batsman are the
// older spellings of runs_batter/runs_extras/striker.
func ParseDeliveriesCSV(path string) ([]*store.Delivery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deliveries file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case "runs_off_bat":
			name = "runs_batter"
		case "extras":
			name = "runs_extras"
		case "batsman":
			name = "striker"
		}
		idx[name] = i
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	intField := func(rec []string, name string) int {
		s := field(rec, name)
		if s == "" {
			return 0
		}
		// cricsheet sometimes writes integral counts as "1.0"
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int(v)
		}
		return 0
	}

	var deliveries []*store.Delivery
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		line++

		matchID, err := strconv.ParseInt(field(rec, "match_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad match_id %q", line, field(rec, "match_id"))
		}

		ball := field(rec, "ball")
		over, ballNum := splitOverBall(ball)

		d := &store.Delivery{
			MatchID:     matchID,
			Season:      field(rec, "season"),
			StartDate:   nullDate(field(rec, "start_date")),
			Venue:       nullString(field(rec, "venue")),
			Innings:     intField(rec, "innings"),
			Ball:        ball,
			Over:        over,
			BallNumber:  ballNum,
			OverBall:    fmt.Sprintf("%d.%d", over, ballNum),
			BattingTeam: field(rec, "batting_team"),
			BowlingTeam: field(rec, "bowling_team"),
			Striker:     field(rec, "striker"),
			NonStriker:  field(rec, "non_striker"),
			Bowler:      field(rec, "bowler"),
			RunsBatter:  intField(rec, "runs_batter"),
			RunsExtras:  intField(rec, "runs_extras"),
			Wides:       intField(rec, "wides"),
			Noballs:     intField(rec, "noballs"),
			Byes:        intField(rec, "byes"),
			Legbyes:     intField(rec, "legbyes"),
			Penalty:     intField(rec, "penalty"),

			WicketType:           nullString(field(rec, "wicket_type")),
			OtherWicketType:      nullString(field(rec, "other_wicket_type")),
			DismissalKind:        nullString(field(rec, "dismissal_kind")),
			PlayerDismissed:      nullString(field(rec, "player_dismissed")),
			OtherPlayerDismissed: nullString(field(rec, "other_player_dismissed")),
		}

		d.RunsTotal = d.RunsBatter + d.RunsExtras
		d.IsBoundary = d.RunsBatter == 4 || d.RunsBatter == 6
		isWicket := d.WicketType.Valid || d.DismissalKind.Valid
		d.IsDot = d.RunsTotal == 0 && !isWicket
		d.Phase = sql.NullString{String: store.PhaseFromOver(over), Valid: true}

		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// splitOverBall parses a ball label like "4.2" into over 4, ball 2.
// A bare integer is the start of an over.
func splitOverBall(s string) (over, ball int) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		o, _ := strconv.Atoi(s[:i])
		b, _ := strconv.Atoi(s[i+1:])
		return o, b
	}
	o, _ := strconv.Atoi(s)
	return o, 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		// some files carry d/m/y dates
		t, err = time.Parse("2006/01/02", s)
		if err != nil {
			return sql.NullTime{}
		}
	}
	return sql.NullTime{Time: t, Valid: true}
}
