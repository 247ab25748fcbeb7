package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/gully/internal/store"
)

// DeliveryRepository handles delivery (ball-by-ball) data access
type DeliveryRepository struct {
	db *store.Database
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *store.Database) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// DistinctPlayers returns every name appearing as striker or bowler, sorted
// ascending. This is the canonical player universe for the resolver.
func (r *DeliveryRepository) DistinctPlayers(ctx context.Context) ([]string, error) {
	query := `
		WITH p AS (
			SELECT striker AS name FROM deliveries
			UNION ALL
			SELECT bowler AS name FROM deliveries
		)
		SELECT DISTINCT name FROM p WHERE name IS NOT NULL ORDER BY name
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying distinct players: %w", err)
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, name)
	}

	return players, rows.Err()
}

// ReplaceMatch swaps in the full delivery log for one match: any prior rows
// for the match id are removed and the new rows inserted in one transaction.
func (r *DeliveryRepository) ReplaceMatch(ctx context.Context, matchID int64, deliveries []*store.Delivery) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM deliveries WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("deleting stale deliveries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO deliveries (
			match_id, season, start_date, venue, innings, ball,
			"over", ball_number, over_ball, batting_team, bowling_team,
			striker, non_striker, bowler,
			runs_batter, runs_extras, runs_total,
			wides, noballs, byes, legbyes, penalty,
			wicket_type, other_wicket_type, dismissal_kind,
			player_dismissed, other_player_dismissed,
			is_boundary, is_dot, phase
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deliveries {
		_, err := stmt.ExecContext(ctx,
			d.MatchID, d.Season, d.StartDate, d.Venue, d.Innings, d.Ball,
			d.Over, d.BallNumber, d.OverBall, d.BattingTeam, d.BowlingTeam,
			d.Striker, d.NonStriker, d.Bowler,
			d.RunsBatter, d.RunsExtras, d.RunsTotal,
			d.Wides, d.Noballs, d.Byes, d.Legbyes, d.Penalty,
			d.WicketType, d.OtherWicketType, d.DismissalKind,
			d.PlayerDismissed, d.OtherPlayerDismissed,
			d.IsBoundary, d.IsDot, d.Phase,
		)
		if err != nil {
			return fmt.Errorf("inserting delivery %s: %w", d.OverBall, err)
		}
	}

	return tx.Commit()
}

// PlayerAppearance is one player's distinct-match count for a team/season
type PlayerAppearance struct {
	Player  string `json:"player"`
	Matches int    `json:"matches"`
}

// TeamAppearances returns who actually took the field (batted or bowled) for
// a team in a season, with distinct-match counts, most matches first.
func (r *DeliveryRepository) TeamAppearances(ctx context.Context, team, season string) ([]PlayerAppearance, error) {
	query := `
		WITH ap AS (
			SELECT DISTINCT match_id, striker AS player
			FROM deliveries
			WHERE season = ? AND batting_team = ? AND striker IS NOT NULL

			UNION

			SELECT DISTINCT match_id, bowler AS player
			FROM deliveries
			WHERE season = ? AND bowling_team = ? AND bowler IS NOT NULL
		)
		SELECT player, COUNT(DISTINCT match_id) AS matches
		FROM ap
		GROUP BY player
		ORDER BY matches DESC, player
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, team, season, team)
	if err != nil {
		return nil, fmt.Errorf("querying appearances: %w", err)
	}
	defer rows.Close()

	var appearances []PlayerAppearance
	for rows.Next() {
		var a PlayerAppearance
		if err := rows.Scan(&a.Player, &a.Matches); err != nil {
			return nil, fmt.Errorf("scanning appearance: %w", err)
		}
		appearances = append(appearances, a)
	}

	return appearances, rows.Err()
}

// SearchNames returns player names containing the fragment (case-insensitive),
// optionally restricted to one season. Diagnostics only.
func (r *DeliveryRepository) SearchNames(ctx context.Context, fragment, season string) ([]string, error) {
	pattern := "%" + fragment + "%"

	query := `
		WITH names AS (
			SELECT DISTINCT striker AS who FROM deliveries WHERE striker ILIKE ?
			UNION
			SELECT DISTINCT bowler AS who FROM deliveries WHERE bowler ILIKE ?
		)
		SELECT who FROM names ORDER BY who
	`
	args := []any{pattern, pattern}
	if season != "" {
		query = `
			WITH names AS (
				SELECT DISTINCT striker AS who FROM deliveries WHERE season = ? AND striker ILIKE ?
				UNION
				SELECT DISTINCT bowler AS who FROM deliveries WHERE season = ? AND bowler ILIKE ?
			)
			SELECT who FROM names ORDER BY who
		`
		args = []any{season, pattern, season, pattern}
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Count returns the number of delivery rows
func (r *DeliveryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM deliveries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting deliveries: %w", err)
	}
	return count, nil
}
