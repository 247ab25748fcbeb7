package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/gully/internal/store"
)

// MatchRepository handles matches_meta data access
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// Meeting is one row of match metadata for a pairing query
type Meeting struct {
	MatchID       int64          `json:"match_id"`
	Season        sql.NullString `json:"season"`
	Date          sql.NullTime   `json:"date"`
	Venue         sql.NullString `json:"venue"`
	Team1         sql.NullString `json:"team1"`
	Team2         sql.NullString `json:"team2"`
	Winner        sql.NullString `json:"winner"`
	PlayerOfMatch sql.NullString `json:"player_of_match"`
}

const meetingColumns = `match_id, season, date, venue, team1, team2, winner, player_of_match`

// DistinctTeams returns every team name appearing in either team column,
// sorted ascending. This is the canonical team universe for the resolver.
func (r *MatchRepository) DistinctTeams(ctx context.Context) ([]string, error) {
	query := `
		WITH t AS (
			SELECT team1 AS team FROM matches_meta
			UNION ALL
			SELECT team2 AS team FROM matches_meta
		)
		SELECT DISTINCT team FROM t WHERE team IS NOT NULL ORDER BY team
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying distinct teams: %w", err)
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

// NthMeeting returns the nth (1-indexed, chronological then by match id)
// meeting of two teams in a season, regardless of which column each team
// occupies. Returns sql.ErrNoRows when fewer than nth meetings exist.
func (r *MatchRepository) NthMeeting(ctx context.Context, teamA, teamB, season string, nth int) (*Meeting, error) {
	if nth < 1 {
		nth = 1
	}

	query := `
		SELECT ` + meetingColumns + `
		FROM matches_meta
		WHERE season = ?
		  AND (
		        (team1 = ? AND team2 = ?) OR
		        (team1 = ? AND team2 = ?)
		      )
		ORDER BY date NULLS LAST, match_id
		LIMIT 1 OFFSET ?
	`

	m := &Meeting{}
	err := r.db.DB().QueryRowContext(ctx, query,
		season, teamA, teamB, teamB, teamA, nth-1,
	).Scan(
		&m.MatchID, &m.Season, &m.Date, &m.Venue,
		&m.Team1, &m.Team2, &m.Winner, &m.PlayerOfMatch,
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MeetingsBetween returns every meeting of two teams, oldest first, optionally
// restricted to one season (empty season means career scope).
func (r *MatchRepository) MeetingsBetween(ctx context.Context, teamA, teamB, season string) ([]*Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM matches_meta
		WHERE ((team1 = ? AND team2 = ?) OR (team1 = ? AND team2 = ?))
	`
	args := []any{teamA, teamB, teamB, teamA}
	if season != "" {
		query += " AND season = ?"
		args = append(args, season)
	}
	query += " ORDER BY date NULLS LAST, match_id"

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m := &Meeting{}
		err := rows.Scan(
			&m.MatchID, &m.Season, &m.Date, &m.Venue,
			&m.Team1, &m.Team2, &m.Winner, &m.PlayerOfMatch,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}

// DeclaredSquads returns the players_map_json payloads of every match a team
// played in a season. The caller decodes them; rows with null payloads are
// skipped.
func (r *MatchRepository) DeclaredSquads(ctx context.Context, team, season string) ([]string, error) {
	query := `
		SELECT players_map_json
		FROM matches_meta
		WHERE season = ? AND (team1 = ? OR team2 = ?)
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, team, team)
	if err != nil {
		return nil, fmt.Errorf("querying declared squads: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var payload sql.NullString
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning squad payload: %w", err)
		}
		if payload.Valid && payload.String != "" {
			payloads = append(payloads, payload.String)
		}
	}

	return payloads, rows.Err()
}

// Upsert replaces the metadata row for a match
func (r *MatchRepository) Upsert(ctx context.Context, meta *store.MatchMeta) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM matches_meta WHERE match_id = ?", meta.MatchID); err != nil {
		return fmt.Errorf("deleting stale metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches_meta (
			match_id, season, date, venue, event, match_number, team1, team2,
			teams_json, player_of_match, winner, umpires_json, referees_json,
			innings_order_json, players_map_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.MatchID, meta.Season, meta.Date, meta.Venue, meta.Event, meta.MatchNumber,
		meta.Team1, meta.Team2, meta.TeamsJSON, meta.PlayerOfMatch, meta.Winner,
		meta.UmpiresJSON, meta.RefereesJSON, meta.InningsOrderJSON, meta.PlayersMapJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting metadata: %w", err)
	}

	return tx.Commit()
}

// SeasonCoverage summarizes how many matches each season holds
type SeasonCoverage struct {
	Season  string `json:"season"`
	Matches int    `json:"matches"`
}

// Coverage returns the per-season match counts, oldest season first
func (r *MatchRepository) Coverage(ctx context.Context) ([]SeasonCoverage, error) {
	query := `
		SELECT season, COUNT(*) AS matches
		FROM matches_meta
		WHERE season IS NOT NULL
		GROUP BY season
		ORDER BY season
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying coverage: %w", err)
	}
	defer rows.Close()

	var coverage []SeasonCoverage
	for rows.Next() {
		var c SeasonCoverage
		if err := rows.Scan(&c.Season, &c.Matches); err != nil {
			return nil, fmt.Errorf("scanning coverage: %w", err)
		}
		coverage = append(coverage, c)
	}

	return coverage, rows.Err()
}

// SampleMatches returns the first few matches in chronological order,
// used by the dbinfo endpoint and the ingester's sanity report.
func (r *MatchRepository) SampleMatches(ctx context.Context, limit int) ([]*Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM matches_meta
		ORDER BY date NULLS LAST, match_id
		LIMIT ?
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sample matches: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m := &Meeting{}
		err := rows.Scan(
			&m.MatchID, &m.Season, &m.Date, &m.Venue,
			&m.Team1, &m.Team2, &m.Winner, &m.PlayerOfMatch,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sample match: %w", err)
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}

// SeasonTeams returns every team name appearing in a season's fixtures
func (r *MatchRepository) SeasonTeams(ctx context.Context, season string) ([]string, error) {
	query := `
		WITH t AS (
			SELECT team1 AS team FROM matches_meta WHERE season = ?
			UNION ALL
			SELECT team2 AS team FROM matches_meta WHERE season = ?
		)
		SELECT DISTINCT team FROM t WHERE team IS NOT NULL ORDER BY team
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, season)
	if err != nil {
		return nil, fmt.Errorf("querying season teams: %w", err)
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

// Count returns the number of matches_meta rows
func (r *MatchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM matches_meta").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return count, nil
}
