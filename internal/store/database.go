package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// Database represents the DuckDB analytical store holding the ball-by-ball
// delivery log and per-match metadata.
type Database struct {
	conn *sql.DB
	path string
}

// NewDatabase opens (or creates) a DuckDB database at the given path.
// An empty path opens an in-memory database, which is what the tests use.
func NewDatabase(path string) (*Database, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB is embedded; a small pool is plenty
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		path: path,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// Path returns the database file path ("" for in-memory)
func (db *Database) Path() string {
	return db.path
}

const ddlDeliveries = `
	CREATE TABLE IF NOT EXISTS deliveries (
		match_id BIGINT, season TEXT, start_date DATE, venue TEXT,
		innings INTEGER, ball VARCHAR, "over" INTEGER, ball_number INTEGER, over_ball VARCHAR,
		batting_team TEXT, bowling_team TEXT,
		striker TEXT, non_striker TEXT, bowler TEXT,
		runs_batter INTEGER, runs_extras INTEGER, runs_total INTEGER,
		wides INTEGER, noballs INTEGER, byes INTEGER, legbyes INTEGER, penalty INTEGER,
		wicket_type TEXT, other_wicket_type TEXT, dismissal_kind TEXT,
		player_dismissed TEXT, other_player_dismissed TEXT,
		is_boundary BOOLEAN, is_dot BOOLEAN, phase TEXT
	)
`

const ddlMatchesMeta = `
	CREATE TABLE IF NOT EXISTS matches_meta (
		match_id BIGINT,
		season TEXT, date DATE, venue TEXT, event TEXT, match_number TEXT,
		team1 TEXT, team2 TEXT,
		teams_json JSON, player_of_match TEXT, winner TEXT,
		umpires_json JSON, referees_json JSON,
		innings_order_json JSON, players_map_json JSON
	)
`

// EnsureSchema creates the deliveries and matches_meta tables if missing
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, ddlDeliveries); err != nil {
		return fmt.Errorf("creating deliveries table: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, ddlMatchesMeta); err != nil {
		return fmt.Errorf("creating matches_meta table: %w", err)
	}
	return nil
}

// ValidateSchema verifies both required tables exist and hold at least one
// row. This is the startup precondition: the query layer assumes a populated
// store and never re-checks per request.
func (db *Database) ValidateSchema(ctx context.Context) error {
	for _, table := range []string{"deliveries", "matches_meta"} {
		var one int
		err := db.conn.QueryRowContext(ctx, `
			SELECT 1 FROM information_schema.tables WHERE table_name = ?
		`, table).Scan(&one)
		if err == sql.ErrNoRows {
			return fmt.Errorf("required table %q is missing", table)
		}
		if err != nil {
			return fmt.Errorf("checking table %q: %w", table, err)
		}

		var count int64
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return fmt.Errorf("counting rows in %q: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("required table %q has zero rows", table)
		}
	}
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
