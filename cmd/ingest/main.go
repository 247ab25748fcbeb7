// Command gully-ingest loads cricsheet IPL CSV exports into a DuckDB file.
//
// Modes:
//
//	gully-ingest --db ipl_data.duckdb                                  sanity check only
//	gully-ingest --db ipl_data.duckdb --match 335982.csv --info 335982_info.csv
//	gully-ingest --db ipl_data.duckdb --folder /path/to/cricsheet      bulk ingest
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fortuna/gully/internal/cache"
	"github.com/fortuna/gully/internal/ingest"
	"github.com/fortuna/gully/internal/logger"
	"github.com/fortuna/gully/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	dbPath := pflag.String("db", "ipl_data.duckdb", "DuckDB file path")
	folder := pflag.String("folder", "", "folder with <id>.csv and <id>_info.csv pairs for bulk ingest")
	matchCSV := pflag.String("match", "", "path to <id>.csv for single-pair ingest")
	infoCSV := pflag.String("info", "", "path to <id>_info.csv for single-pair ingest")
	logLevel := pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	log := logger.New(logger.ParseLevel(*logLevel))

	if (*matchCSV == "") != (*infoCSV == "") {
		fmt.Fprintln(os.Stderr, "--match and --info must be given together")
		os.Exit(2)
	}

	db, err := store.NewDatabase(*dbPath)
	if err != nil {
		log.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	ingester := ingest.NewIngester(db, log)
	ingested := false

	switch {
	case *folder != "":
		start := time.Now()
		res, err := ingester.IngestFolder(ctx, *folder)
		if err != nil {
			log.Error("bulk ingest failed", "folder", *folder, "error", err)
			os.Exit(1)
		}
		log.Info("bulk ingest done",
			"succeeded", res.Succeeded,
			"failed", res.Failed,
			"total", res.Succeeded+res.Failed,
			"duration", time.Since(start),
		)
		ingested = res.Succeeded > 0

	case *matchCSV != "":
		matchID, err := ingester.IngestPair(ctx, *matchCSV, *infoCSV)
		if err != nil {
			log.Error("pair ingest failed", "error", err)
			os.Exit(1)
		}
		log.Info("ingested one match", "match_id", matchID)
		ingested = true
	}

	report, err := ingester.Sanity(ctx)
	if err != nil {
		log.Error("sanity check failed", "error", err)
		os.Exit(1)
	}
	printSanity(report)

	// stale answers would survive a re-ingest otherwise
	if ingested {
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			answers, err := cache.NewRedisCache(redisURL)
			if err != nil {
				log.Warn("could not reach redis to invalidate answers", "error", err)
			} else {
				defer answers.Close()
				if err := answers.Invalidate(ctx); err != nil {
					log.Warn("answer cache invalidation failed", "error", err)
				} else {
					log.Info("answer cache invalidated")
				}
			}
		}
	}
}

func printSanity(report *ingest.SanityReport) {
	fmt.Printf("matches_meta rows: %d\n", report.Matches)
	fmt.Printf("deliveries rows:   %d\n", report.Deliveries)

	if len(report.Coverage) > 0 {
		fmt.Println("\ncoverage by season:")
		for _, c := range report.Coverage {
			fmt.Printf("  %-10s %d matches\n", c.Season, c.Matches)
		}
	}

	if len(report.Sample) > 0 {
		fmt.Println("\nsample matches:")
		for _, m := range report.Sample {
			date := "-"
			if m.Date.Valid {
				date = m.Date.Time.Format("2006-01-02")
			}
			fmt.Printf("  %d  %s  %s  %s vs %s  winner: %s\n",
				m.MatchID, m.Season.String, date,
				m.Team1.String, m.Team2.String, orDash(m.Winner.String))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
