package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/fortuna/gully/internal/store"
	"github.com/fortuna/gully/internal/store/repository"
)

// Pair is one match's deliveries file and its companion info file
type Pair struct {
	MatchID        int64
	DeliveriesPath string
	InfoPath       string
}

var infoFileRe = regexp.MustCompile(`(?i)^(\d+)_info\.csv$`)

// FindPairs scans a folder for <id>_info.csv files and pairs each with its
// <id>.csv deliveries file. Info files without deliveries are skipped.
func FindPairs(folder string) ([]Pair, []string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("listing folder: %w", err)
	}

	var pairs []Pair
	var skipped []string
	for _, e := range entries {
		m := infoFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		matchID, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		deliveriesPath := filepath.Join(folder, m[1]+".csv")
		if _, err := os.Stat(deliveriesPath); err != nil {
			skipped = append(skipped, m[1])
			continue
		}
		pairs = append(pairs, Pair{
			MatchID:        matchID,
			DeliveriesPath: deliveriesPath,
			InfoPath:       filepath.Join(folder, e.Name()),
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].MatchID < pairs[j].MatchID })
	return pairs, skipped, nil
}

// Ingester writes parsed matches into the store
type Ingester struct {
	matches    *repository.MatchRepository
	deliveries *repository.DeliveryRepository
	log        *slog.Logger
}

// NewIngester creates an ingester over the given database
func NewIngester(db *store.Database, log *slog.Logger) *Ingester {
	if log == nil {
		log = slog.Default()
	}
	return &Ingester{
		matches:    repository.NewMatchRepository(db),
		deliveries: repository.NewDeliveryRepository(db),
		log:        log,
	}
}

// IngestPair loads one match from its deliveries and info files, replacing
// any previously ingested data for the same match id.
func (in *Ingester) IngestPair(ctx context.Context, deliveriesPath, infoPath string) (int64, error) {
	deliveries, err := ParseDeliveriesCSV(deliveriesPath)
	if err != nil {
		return 0, fmt.Errorf("parsing deliveries: %w", err)
	}
	if len(deliveries) == 0 {
		return 0, fmt.Errorf("no deliveries in %s", deliveriesPath)
	}
	matchID := deliveries[0].MatchID

	info, err := ParseInfoCSV(infoPath)
	if err != nil {
		return 0, fmt.Errorf("parsing info: %w", err)
	}
	meta, err := info.Meta(matchID)
	if err != nil {
		return 0, fmt.Errorf("building metadata: %w", err)
	}

	if err := in.deliveries.ReplaceMatch(ctx, matchID, deliveries); err != nil {
		return 0, fmt.Errorf("storing deliveries: %w", err)
	}
	if err := in.matches.Upsert(ctx, meta); err != nil {
		return 0, fmt.Errorf("storing metadata: %w", err)
	}

	return matchID, nil
}

// BulkResult summarizes a folder ingest
type BulkResult struct {
	Succeeded int
	Failed    int
}

// IngestFolder loads every pair in the folder in match-id order. Individual
// match failures are logged and counted, not fatal.
func (in *Ingester) IngestFolder(ctx context.Context, folder string) (*BulkResult, error) {
	pairs, skipped, err := FindPairs(folder)
	if err != nil {
		return nil, err
	}
	for _, mid := range skipped {
		in.log.Warn("missing deliveries file, skipping", "match_id", mid)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no match pairs found in %s", folder)
	}

	res := &BulkResult{}
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := in.IngestPair(ctx, p.DeliveriesPath, p.InfoPath); err != nil {
			res.Failed++
			in.log.Error("match ingest failed", "match_id", p.MatchID, "error", err)
			continue
		}
		res.Succeeded++
		if res.Succeeded%100 == 0 {
			in.log.Info("ingest progress", "matches", res.Succeeded)
		}
	}

	return res, nil
}

// SanityReport is a quick integrity snapshot of the store
type SanityReport struct {
	Matches    int64                       `json:"matches"`
	Deliveries int64                       `json:"deliveries"`
	Coverage   []repository.SeasonCoverage `json:"coverage"`
	Sample     []*repository.Meeting       `json:"sample"`
}

// Sanity reports row counts, per-season coverage and a few sample matches
func (in *Ingester) Sanity(ctx context.Context) (*SanityReport, error) {
	matches, err := in.matches.Count(ctx)
	if err != nil {
		return nil, err
	}
	deliveries, err := in.deliveries.Count(ctx)
	if err != nil {
		return nil, err
	}
	coverage, err := in.matches.Coverage(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := in.matches.SampleMatches(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &SanityReport{
		Matches:    matches,
		Deliveries: deliveries,
		Coverage:   coverage,
		Sample:     sample,
	}, nil
}
