package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/gully/internal/store"
)

// AggregateRepository holds the analytical queries over the delivery log.
// Every method is read-only and takes already-canonicalized names.
//
// A delivery is legal iff wides and noballs are both zero; that CASE
// expression recurs in every legal-ball sum below.
type AggregateRepository struct {
	db *store.Database
}

// NewAggregateRepository creates a new aggregate repository
func NewAggregateRepository(db *store.Database) *AggregateRepository {
	return &AggregateRepository{db: db}
}

const legalBall = `CASE WHEN COALESCE(wides,0)>0 OR COALESCE(noballs,0)>0 THEN 0 ELSE 1 END`

// StatFilter narrows player aggregates to a season and/or an opponent.
// Zero values mean "no restriction" (career scope, any opponent).
type StatFilter struct {
	Season   string
	Opponent string
}

// InningsSummary is one innings' totals for a single match
type InningsSummary struct {
	Innings     int             `json:"innings"`
	BattingTeam string          `json:"batting_team"`
	Runs        int             `json:"runs"`
	Wickets     int             `json:"wickets"`
	LegalBalls  int             `json:"legal_balls"`
	RunRate     sql.NullFloat64 `json:"run_rate"`
}

// InningsSummaries returns per-innings totals for a match, innings order
func (r *AggregateRepository) InningsSummaries(ctx context.Context, matchID int64) ([]InningsSummary, error) {
	query := `
		WITH base AS (
			SELECT
				innings,
				batting_team,
				SUM(runs_total) AS runs,
				SUM(` + legalBall + `) AS legal_balls,
				COUNT(CASE WHEN player_dismissed IS NOT NULL THEN 1 END) AS wickets
			FROM deliveries
			WHERE match_id = ?
			GROUP BY innings, batting_team
		)
		SELECT
			innings,
			batting_team,
			runs::INTEGER,
			wickets::INTEGER,
			legal_balls::INTEGER,
			ROUND((runs * 6.0) / NULLIF(legal_balls, 0), 2) AS run_rate
		FROM base
		ORDER BY innings
	`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("querying innings summaries: %w", err)
	}
	defer rows.Close()

	var summaries []InningsSummary
	for rows.Next() {
		var s InningsSummary
		if err := rows.Scan(&s.Innings, &s.BattingTeam, &s.Runs, &s.Wickets, &s.LegalBalls, &s.RunRate); err != nil {
			return nil, fmt.Errorf("scanning innings summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// MatchBatter is one ranked batting line within a match innings
type MatchBatter struct {
	Innings    int             `json:"innings"`
	Batter     string          `json:"batter"`
	Runs       int             `json:"runs"`
	Balls      int             `json:"balls"`
	Fours      int             `json:"fours"`
	Sixes      int             `json:"sixes"`
	StrikeRate sql.NullFloat64 `json:"strike_rate"`
}

// TopBatters returns the top batting lines per innings for a match, ranked by
// runs desc, strike rate desc (nulls last), balls asc, then name.
func (r *AggregateRepository) TopBatters(ctx context.Context, matchID int64, perInnings int) ([]MatchBatter, error) {
	query := `
		WITH bat AS (
			SELECT
				innings,
				striker AS batter,
				SUM(runs_batter) AS runs,
				SUM(` + legalBall + `) AS balls,
				SUM(CASE WHEN runs_batter = 4 THEN 1 ELSE 0 END) AS fours,
				SUM(CASE WHEN runs_batter = 6 THEN 1 ELSE 0 END) AS sixes
			FROM deliveries
			WHERE match_id = ?
			GROUP BY innings, striker
		),
		ranked AS (
			SELECT
				innings,
				batter,
				runs::INTEGER AS runs,
				balls::INTEGER AS balls,
				fours::INTEGER AS fours,
				sixes::INTEGER AS sixes,
				ROUND((runs * 100.0) / NULLIF(balls, 0), 2) AS strike_rate,
				ROW_NUMBER() OVER (
					PARTITION BY innings
					ORDER BY runs DESC, strike_rate DESC NULLS LAST, balls ASC, batter ASC
				) AS rk
			FROM bat
		)
		SELECT innings, batter, runs, balls, fours, sixes, strike_rate
		FROM ranked
		WHERE rk <= ?
		ORDER BY innings, rk
	`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID, perInnings)
	if err != nil {
		return nil, fmt.Errorf("querying top batters: %w", err)
	}
	defer rows.Close()

	var batters []MatchBatter
	for rows.Next() {
		var b MatchBatter
		if err := rows.Scan(&b.Innings, &b.Batter, &b.Runs, &b.Balls, &b.Fours, &b.Sixes, &b.StrikeRate); err != nil {
			return nil, fmt.Errorf("scanning top batter: %w", err)
		}
		batters = append(batters, b)
	}

	return batters, rows.Err()
}

// MatchBowler is one ranked bowling line within a match innings
type MatchBowler struct {
	Innings      int             `json:"innings"`
	Bowler       string          `json:"bowler"`
	Wickets      int             `json:"wickets"`
	RunsConceded int             `json:"runs_conceded"`
	LegalBalls   int             `json:"legal_balls"`
	Economy      sql.NullFloat64 `json:"economy"`
}

// TopBowlers returns the top bowling lines per innings for a match, ranked by
// wickets desc, economy asc (nulls last), runs conceded asc, then name.
func (r *AggregateRepository) TopBowlers(ctx context.Context, matchID int64, perInnings int) ([]MatchBowler, error) {
	query := `
		WITH bowl AS (
			SELECT
				innings,
				bowler,
				SUM(` + legalBall + `) AS legal_balls,
				SUM(runs_total) AS runs_conceded,
				COUNT(CASE WHEN player_dismissed IS NOT NULL THEN 1 END) AS wickets
			FROM deliveries
			WHERE match_id = ?
			GROUP BY innings, bowler
		),
		ranked AS (
			SELECT
				innings,
				bowler,
				wickets::INTEGER AS wickets,
				runs_conceded::INTEGER AS runs_conceded,
				legal_balls::INTEGER AS legal_balls,
				ROUND((runs_conceded * 6.0) / NULLIF(legal_balls, 0), 2) AS economy,
				ROW_NUMBER() OVER (
					PARTITION BY innings
					ORDER BY wickets DESC, economy ASC NULLS LAST, runs_conceded ASC, bowler ASC
				) AS rk
			FROM bowl
		)
		SELECT innings, bowler, wickets, runs_conceded, legal_balls, economy
		FROM ranked
		WHERE rk <= ?
		ORDER BY innings, rk
	`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID, perInnings)
	if err != nil {
		return nil, fmt.Errorf("querying top bowlers: %w", err)
	}
	defer rows.Close()

	var bowlers []MatchBowler
	for rows.Next() {
		var b MatchBowler
		if err := rows.Scan(&b.Innings, &b.Bowler, &b.Wickets, &b.RunsConceded, &b.LegalBalls, &b.Economy); err != nil {
			return nil, fmt.Errorf("scanning top bowler: %w", err)
		}
		bowlers = append(bowlers, b)
	}

	return bowlers, rows.Err()
}

// playerScope builds the WHERE tail shared by the player aggregates
func playerScope(f StatFilter, args *[]any) string {
	var sb strings.Builder
	if f.Season != "" {
		sb.WriteString(" AND season = ?")
		*args = append(*args, f.Season)
	}
	if f.Opponent != "" {
		sb.WriteString(" AND (batting_team = ? OR bowling_team = ?)")
		*args = append(*args, f.Opponent, f.Opponent)
	}
	return sb.String()
}

// AppearanceMatches counts distinct matches in which the player batted or
// bowled within the filter scope.
func (r *AggregateRepository) AppearanceMatches(ctx context.Context, player string, f StatFilter) (int, error) {
	args := []any{player, player}
	query := `
		SELECT COUNT(DISTINCT match_id)
		FROM deliveries
		WHERE (striker = ? OR bowler = ?)` + playerScope(f, &args)

	var matches int
	if err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(&matches); err != nil {
		return 0, fmt.Errorf("counting appearance matches: %w", err)
	}
	return matches, nil
}

// BattingAggregate is a player's batting totals within a filter scope.
// Balls counts legal deliveries faced only.
type BattingAggregate struct {
	Innings    int `json:"innings"`
	Runs       int `json:"runs"`
	Balls      int `json:"balls"`
	Fours      int `json:"fours"`
	Sixes      int `json:"sixes"`
	Dismissals int `json:"dismissals"`
}

// Batting returns the player's batting totals within the filter scope
func (r *AggregateRepository) Batting(ctx context.Context, player string, f StatFilter) (*BattingAggregate, error) {
	args := []any{player}
	query := `
		WITH bat AS (
			SELECT match_id, innings, runs_batter, wides, noballs, player_dismissed
			FROM deliveries
			WHERE striker = ?` + playerScope(f, &args) + `
		)
		SELECT
			(SELECT COUNT(*) FROM (SELECT DISTINCT match_id, innings FROM bat)) AS inns,
			COALESCE(SUM(runs_batter), 0),
			COALESCE(SUM(` + legalBall + `), 0),
			COALESCE(SUM(CASE WHEN runs_batter = 4 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN runs_batter = 6 THEN 1 ELSE 0 END), 0),
			COUNT(CASE WHEN player_dismissed IS NOT NULL THEN 1 END)
		FROM bat
	`

	agg := &BattingAggregate{}
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(
		&agg.Innings, &agg.Runs, &agg.Balls, &agg.Fours, &agg.Sixes, &agg.Dismissals,
	)
	if err != nil {
		return nil, fmt.Errorf("querying batting aggregate: %w", err)
	}

	return agg, nil
}

// BowlingAggregate is a player's bowling totals within a filter scope.
// Balls counts legal deliveries bowled only.
type BowlingAggregate struct {
	Matches      int `json:"matches"`
	Balls        int `json:"balls"`
	RunsConceded int `json:"runs_conceded"`
	Wickets      int `json:"wickets"`
}

// Bowling returns the player's bowling totals within the filter scope
func (r *AggregateRepository) Bowling(ctx context.Context, player string, f StatFilter) (*BowlingAggregate, error) {
	args := []any{player}
	query := `
		SELECT
			COUNT(DISTINCT match_id),
			COALESCE(SUM(` + legalBall + `), 0),
			COALESCE(SUM(runs_total), 0),
			COUNT(CASE WHEN player_dismissed IS NOT NULL THEN 1 END)
		FROM deliveries
		WHERE bowler = ?` + playerScope(f, &args)

	agg := &BowlingAggregate{}
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(
		&agg.Matches, &agg.Balls, &agg.RunsConceded, &agg.Wickets,
	)
	if err != nil {
		return nil, fmt.Errorf("querying bowling aggregate: %w", err)
	}

	return agg, nil
}

// TeamsRepresented returns every team the player has appeared for, sorted.
// Always career-wide: the team history is context, not a scoped stat.
func (r *AggregateRepository) TeamsRepresented(ctx context.Context, player string) ([]string, error) {
	query := `
		WITH appearances AS (
			SELECT DISTINCT match_id,
				CASE WHEN striker = ? THEN batting_team END AS team_a,
				CASE WHEN bowler = ? THEN bowling_team END AS team_b
			FROM deliveries
			WHERE striker = ? OR bowler = ?
		),
		teams AS (
			SELECT team_a AS team FROM appearances WHERE team_a IS NOT NULL
			UNION
			SELECT team_b AS team FROM appearances WHERE team_b IS NOT NULL
		)
		SELECT DISTINCT team FROM teams WHERE team IS NOT NULL ORDER BY team
	`

	rows, err := r.db.DB().QueryContext(ctx, query, player, player, player, player)
	if err != nil {
		return nil, fmt.Errorf("querying teams represented: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// LastTeamRow is the player's most recent team appearance
type LastTeamRow struct {
	Team    string       `json:"team"`
	MatchID int64        `json:"match_id"`
	Date    sql.NullTime `json:"date"`
}

// LastTeam returns the team of the player's latest appearance, by match date
// descending then match id descending. Returns nil when the player has none.
func (r *AggregateRepository) LastTeam(ctx context.Context, player string) (*LastTeamRow, error) {
	query := `
		WITH ap AS (
			SELECT d.match_id, m.date,
				CASE
					WHEN d.striker = ? THEN d.batting_team
					WHEN d.bowler = ? THEN d.bowling_team
				END AS team
			FROM deliveries d
			JOIN matches_meta m USING (match_id)
			WHERE d.striker = ? OR d.bowler = ?
		),
		ranked AS (
			SELECT *, ROW_NUMBER() OVER (ORDER BY date DESC NULLS LAST, match_id DESC) AS rk
			FROM ap
			WHERE team IS NOT NULL
		)
		SELECT team, match_id, date
		FROM ranked
		WHERE rk = 1
	`

	row := &LastTeamRow{}
	err := r.db.DB().QueryRowContext(ctx, query, player, player, player, player).Scan(
		&row.Team, &row.MatchID, &row.Date,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last team: %w", err)
	}

	return row, nil
}

// BowlerMatchup pairs a bowler with a batter's record against them
type BowlerMatchup struct {
	Bowler  string          `json:"bowler"`
	Outs    int             `json:"outs"`
	Balls   int             `json:"balls"`
	Economy sql.NullFloat64 `json:"economy"`
}

// NemesisBowler returns the bowler with the most dismissals of the player
// (ties: lower economy conceded, then name), or nil when nobody has one.
func (r *AggregateRepository) NemesisBowler(ctx context.Context, player string) (*BowlerMatchup, error) {
	query := `
		WITH agg AS (
			SELECT
				bowler,
				COUNT(CASE WHEN player_dismissed = ? THEN 1 END) AS outs,
				SUM(` + legalBall + `) AS legal_balls_vs,
				SUM(runs_total) AS runs_vs
			FROM deliveries
			WHERE striker = ?
			GROUP BY bowler
		)
		SELECT
			bowler,
			outs::INTEGER,
			legal_balls_vs::INTEGER,
			ROUND((runs_vs * 6.0) / NULLIF(legal_balls_vs, 0), 2) AS econ_vs
		FROM agg
		WHERE outs > 0
		ORDER BY outs DESC, econ_vs ASC NULLS LAST, bowler ASC
		LIMIT 1
	`

	m := &BowlerMatchup{}
	err := r.db.DB().QueryRowContext(ctx, query, player, player).Scan(&m.Bowler, &m.Outs, &m.Balls, &m.Economy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying nemesis bowler: %w", err)
	}

	return m, nil
}

// FavouriteBowler returns the bowler who has conceded the highest economy to
// the player among bowlers with at least minBalls legal balls bowled to them.
func (r *AggregateRepository) FavouriteBowler(ctx context.Context, player string, minBalls int) (*BowlerMatchup, error) {
	query := `
		WITH agg AS (
			SELECT
				bowler,
				SUM(` + legalBall + `) AS legal_balls_vs,
				SUM(runs_total) AS runs_vs
			FROM deliveries
			WHERE striker = ?
			GROUP BY bowler
		)
		SELECT
			bowler,
			0 AS outs,
			legal_balls_vs::INTEGER,
			ROUND((runs_vs * 6.0) / NULLIF(legal_balls_vs, 0), 2) AS economy
		FROM agg
		WHERE legal_balls_vs >= ?
		ORDER BY economy DESC, bowler ASC
		LIMIT 1
	`

	m := &BowlerMatchup{}
	err := r.db.DB().QueryRowContext(ctx, query, player, minBalls).Scan(&m.Bowler, &m.Outs, &m.Balls, &m.Economy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying favourite bowler: %w", err)
	}

	return m, nil
}

// BatterMatchup pairs a batter with a bowler's record against them
type BatterMatchup struct {
	Batter  string          `json:"batter"`
	Outs    int             `json:"outs"`
	Balls   int             `json:"balls"`
	Economy sql.NullFloat64 `json:"economy"`
}

// MostDismissedBatter returns the batter the bowler has dismissed most often
// (ties: lower economy conceded to them, then name), or nil when none.
func (r *AggregateRepository) MostDismissedBatter(ctx context.Context, bowler string) (*BatterMatchup, error) {
	query := `
		WITH agg AS (
			SELECT
				striker AS batter,
				COUNT(CASE WHEN player_dismissed = striker THEN 1 END) AS outs,
				SUM(` + legalBall + `) AS legal_balls_vs,
				SUM(runs_total) AS runs_vs
			FROM deliveries
			WHERE bowler = ?
			GROUP BY striker
		)
		SELECT
			batter,
			outs::INTEGER,
			legal_balls_vs::INTEGER,
			ROUND((runs_vs * 6.0) / NULLIF(legal_balls_vs, 0), 2) AS econ_vs
		FROM agg
		WHERE outs > 0
		ORDER BY outs DESC, econ_vs ASC NULLS LAST, batter ASC
		LIMIT 1
	`

	m := &BatterMatchup{}
	err := r.db.DB().QueryRowContext(ctx, query, bowler).Scan(&m.Batter, &m.Outs, &m.Balls, &m.Economy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying most dismissed batter: %w", err)
	}

	return m, nil
}

// WorstEconomyBatter returns the batter to whom the bowler concedes the
// highest economy, minimum minBalls legal balls bowled to them.
func (r *AggregateRepository) WorstEconomyBatter(ctx context.Context, bowler string, minBalls int) (*BatterMatchup, error) {
	query := `
		WITH agg AS (
			SELECT
				striker AS batter,
				SUM(` + legalBall + `) AS legal_balls_vs,
				SUM(runs_total) AS runs_vs
			FROM deliveries
			WHERE bowler = ?
			GROUP BY striker
		)
		SELECT
			batter,
			0 AS outs,
			legal_balls_vs::INTEGER,
			ROUND((runs_vs * 6.0) / NULLIF(legal_balls_vs, 0), 2) AS economy
		FROM agg
		WHERE legal_balls_vs >= ?
		ORDER BY economy DESC, batter ASC
		LIMIT 1
	`

	m := &BatterMatchup{}
	err := r.db.DB().QueryRowContext(ctx, query, bowler, minBalls).Scan(&m.Batter, &m.Outs, &m.Balls, &m.Economy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying worst economy batter: %w", err)
	}

	return m, nil
}

// StarBatterRow is the best batting line for one side of a head-to-head
type StarBatterRow struct {
	Batter     string          `json:"batter"`
	Runs       int             `json:"runs"`
	Balls      int             `json:"balls"`
	Outs       int             `json:"outs"`
	Hundreds   int             `json:"hundreds"`
	Fifties    int             `json:"fifties"`
	StrikeRate sql.NullFloat64 `json:"strike_rate"`
	Average    sql.NullFloat64 `json:"average"`
}

// matchIDPlaceholders renders "?, ?, ..." for an IN clause
func matchIDPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// StarBatter returns the best batter playing for teamFor against teamAgainst
// across the given matches: runs desc, average desc (nulls last), strike rate
// desc (nulls last), balls asc, name asc. Fifties and hundreds are counted
// per match-innings. Returns nil when nobody batted in that direction.
func (r *AggregateRepository) StarBatter(ctx context.Context, matchIDs []int64, teamFor, teamAgainst string) (*StarBatterRow, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	args := make([]any, 0, 2*len(matchIDs)+2)
	for _, id := range matchIDs {
		args = append(args, id)
	}
	in := matchIDPlaceholders(len(matchIDs))

	query := `
		WITH scope_delv AS (
			SELECT *
			FROM deliveries
			WHERE match_id IN (` + in + `)
		),
		bat AS (
			SELECT
				striker AS batter,
				batting_team AS team_for,
				bowling_team AS team_against,
				SUM(runs_batter) AS runs,
				SUM(` + legalBall + `) AS balls,
				COUNT(CASE WHEN player_dismissed = striker THEN 1 END) AS outs
			FROM scope_delv
			GROUP BY striker, batting_team, bowling_team
		),
		inns_runs AS (
			SELECT
				striker AS batter,
				batting_team AS team_for,
				bowling_team AS team_against,
				match_id, innings,
				SUM(runs_batter) AS inns_runs
			FROM scope_delv
			GROUP BY striker, batting_team, bowling_team, match_id, innings
		),
		milestones AS (
			SELECT
				batter, team_for, team_against,
				SUM(CASE WHEN inns_runs >= 100 THEN 1 ELSE 0 END) AS hundreds,
				SUM(CASE WHEN inns_runs >= 50 AND inns_runs < 100 THEN 1 ELSE 0 END) AS fifties
			FROM inns_runs
			GROUP BY batter, team_for, team_against
		),
		agg AS (
			SELECT
				b.batter, b.team_for, b.team_against,
				b.runs, b.balls, b.outs,
				COALESCE(m.hundreds, 0) AS hundreds,
				COALESCE(m.fifties, 0) AS fifties,
				ROUND((b.runs * 100.0) / NULLIF(b.balls, 0), 2) AS sr,
				ROUND((b.runs * 1.0) / NULLIF(b.outs, 0), 2) AS avg
			FROM bat b
			LEFT JOIN milestones m
				ON (b.batter = m.batter AND b.team_for = m.team_for AND b.team_against = m.team_against)
		)
		SELECT batter, runs::INTEGER, balls::INTEGER, outs::INTEGER,
			hundreds::INTEGER, fifties::INTEGER, sr, avg
		FROM agg
		WHERE team_for = ? AND team_against = ?
		ORDER BY runs DESC, avg DESC NULLS LAST, sr DESC NULLS LAST, balls ASC, batter ASC
		LIMIT 1
	`
	args = append(args, teamFor, teamAgainst)

	row := &StarBatterRow{}
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(
		&row.Batter, &row.Runs, &row.Balls, &row.Outs,
		&row.Hundreds, &row.Fifties, &row.StrikeRate, &row.Average,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying star batter: %w", err)
	}

	return row, nil
}

// StarBowlerRow is the best bowling line for one side of a head-to-head
type StarBowlerRow struct {
	Bowler       string          `json:"bowler"`
	Balls        int             `json:"balls"`
	RunsConceded int             `json:"runs_conceded"`
	Wickets      int             `json:"wickets"`
	Economy      sql.NullFloat64 `json:"economy"`
}

// StarBowler returns the best bowler playing for teamFor against teamAgainst
// across the given matches: wickets desc (run outs excluded), economy asc
// (nulls last), runs conceded asc, balls desc, name asc. Nil when none.
func (r *AggregateRepository) StarBowler(ctx context.Context, matchIDs []int64, teamFor, teamAgainst string) (*StarBowlerRow, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(matchIDs)+2)
	for _, id := range matchIDs {
		args = append(args, id)
	}
	in := matchIDPlaceholders(len(matchIDs))

	query := `
		WITH scope_delv AS (
			SELECT *
			FROM deliveries
			WHERE match_id IN (` + in + `)
		),
		agg AS (
			SELECT
				bowler,
				bowling_team AS team_for,
				batting_team AS team_against,
				SUM(` + legalBall + `) AS balls,
				SUM(runs_total) AS runs_conceded,
				COUNT(
					CASE WHEN player_dismissed IS NOT NULL
						AND LOWER(COALESCE(dismissal_kind, wicket_type, '')) NOT LIKE '%run out%'
					THEN 1 END
				) AS wickets
			FROM scope_delv
			GROUP BY bowler, bowling_team, batting_team
		)
		SELECT
			bowler,
			balls::INTEGER,
			runs_conceded::INTEGER,
			wickets::INTEGER,
			ROUND((runs_conceded * 6.0) / NULLIF(balls, 0), 2) AS economy
		FROM agg
		WHERE team_for = ? AND team_against = ?
		ORDER BY wickets DESC, economy ASC NULLS LAST, runs_conceded ASC, balls DESC, bowler ASC
		LIMIT 1
	`
	args = append(args, teamFor, teamAgainst)

	row := &StarBowlerRow{}
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(
		&row.Bowler, &row.Balls, &row.RunsConceded, &row.Wickets, &row.Economy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying star bowler: %w", err)
	}

	return row, nil
}

// PhaseLeaderRow is one qualified bowler on a phase leaderboard
type PhaseLeaderRow struct {
	Bowler       string          `json:"bowler"`
	LegalBalls   int             `json:"legal_balls"`
	Wickets      int             `json:"wickets"`
	RunsConceded int             `json:"runs_conceded"`
	Economy      sql.NullFloat64 `json:"economy"`
	Average      sql.NullFloat64 `json:"average"`
	StrikeRate   sql.NullFloat64 `json:"strike_rate"`
	DotPct       sql.NullFloat64 `json:"dot_pct"`
	BoundaryPct  sql.NullFloat64 `json:"boundary_pct"`
	Matches      int             `json:"matches"`
}

// PhaseLeaders ranks bowlers within a phase (optionally one season) by
// economy asc, average asc, strike rate asc (all nulls last), then legal
// balls desc, then name. Only bowlers with at least minBalls legal balls
// qualify. Rates come back rounded to 2 decimals.
func (r *AggregateRepository) PhaseLeaders(ctx context.Context, phase, season string, minBalls, limit int) ([]PhaseLeaderRow, error) {
	where := "phase = ?"
	args := []any{phase}
	if season != "" {
		where += " AND season = ?"
		args = append(args, season)
	}

	query := `
		WITH bowl AS (
			SELECT
				bowler,
				SUM(` + legalBall + `) AS legal_balls,
				SUM(runs_total) AS runs_conceded,
				COUNT(CASE WHEN player_dismissed IS NOT NULL THEN 1 END) AS wickets,
				COUNT(DISTINCT match_id) AS matches,
				SUM(CASE WHEN runs_total = 0 AND player_dismissed IS NULL THEN 1 ELSE 0 END)::DOUBLE AS dots,
				SUM(CASE WHEN runs_batter IN (4, 6) THEN 1 ELSE 0 END)::DOUBLE AS boundaries
			FROM deliveries
			WHERE ` + where + `
			GROUP BY bowler
		),
		filt AS (
			SELECT *,
				(runs_conceded * 6.0) / NULLIF(legal_balls, 0) AS economy,
				(runs_conceded * 1.0) / NULLIF(wickets, 0) AS average,
				(legal_balls * 1.0) / NULLIF(wickets, 0) AS strike_rate,
				(dots * 100.0) / NULLIF(legal_balls, 0) AS dot_pct,
				(boundaries * 100.0) / NULLIF(legal_balls, 0) AS boundary_pct
			FROM bowl
			WHERE legal_balls >= ?
		),
		ranked AS (
			SELECT *,
				ROW_NUMBER() OVER (
					ORDER BY economy ASC NULLS LAST, average ASC NULLS LAST,
						strike_rate ASC NULLS LAST, legal_balls DESC, bowler ASC
				) AS rk
			FROM filt
		)
		SELECT bowler,
			legal_balls::INTEGER,
			wickets::INTEGER,
			runs_conceded::INTEGER,
			ROUND(economy, 2),
			ROUND(average, 2),
			ROUND(strike_rate, 2),
			ROUND(dot_pct, 2),
			ROUND(boundary_pct, 2),
			matches::INTEGER
		FROM ranked
		WHERE rk <= ?
		ORDER BY rk
	`
	args = append(args, minBalls, limit)

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying phase leaders: %w", err)
	}
	defer rows.Close()

	var leaders []PhaseLeaderRow
	for rows.Next() {
		var l PhaseLeaderRow
		err := rows.Scan(
			&l.Bowler, &l.LegalBalls, &l.Wickets, &l.RunsConceded,
			&l.Economy, &l.Average, &l.StrikeRate, &l.DotPct, &l.BoundaryPct, &l.Matches,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning phase leader: %w", err)
		}
		leaders = append(leaders, l)
	}

	return leaders, rows.Err()
}
