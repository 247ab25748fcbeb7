package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/gully/internal/store/repository"
)

const (
	// DefaultFuzzyCutoff is the minimum partial-ratio score for the fuzzy
	// fallback to accept a candidate.
	DefaultFuzzyCutoff = 85

	// maxAmbiguousChoices caps the candidate list surfaced on an ambiguous
	// substring match.
	maxAmbiguousChoices = 10
)

// Config carries the injectable pieces of a Resolver. Zero values fall back
// to the defaults, so tests can substitute just the alias tables.
type Config struct {
	TeamAliases   map[string]string
	PlayerAliases map[string]string
	Scorer        Scorer
	FuzzyCutoff   int
}

func (c *Config) applyDefaults() {
	if c.TeamAliases == nil {
		c.TeamAliases = DefaultTeamAliases()
	}
	if c.PlayerAliases == nil {
		c.PlayerAliases = DefaultPlayerAliases()
	}
	if c.Scorer == nil {
		c.Scorer = NewScorer()
	}
	if c.FuzzyCutoff == 0 {
		c.FuzzyCutoff = DefaultFuzzyCutoff
	}
}

// Resolver maps user-typed team and player names to the canonical strings
// the store holds. The universes are immutable snapshots taken at
// construction; a Resolver is safe for concurrent reads.
//
// Resolution precedence, first hit wins:
//
//	manual alias -> exact normalized -> initials key (players only)
//	-> substring containment -> fuzzy partial-ratio
type Resolver struct {
	cfg Config

	teams   []string
	players []string

	byNormTeam       map[string]string
	byNormPlayer     map[string]string
	byInitialsPlayer map[string]string

	teamNormKeys []string
	playerNorms  []string
}

// New builds a resolver over explicit universes. Both slices are copied and
// sorted, so substring scans resolve deterministically.
func New(teams, players []string, cfg Config) *Resolver {
	cfg.applyDefaults()

	r := &Resolver{
		cfg:              cfg,
		teams:            append([]string(nil), teams...),
		players:          append([]string(nil), players...),
		byNormTeam:       make(map[string]string, len(teams)),
		byNormPlayer:     make(map[string]string, len(players)),
		byInitialsPlayer: make(map[string]string, len(players)),
	}
	sort.Strings(r.teams)
	sort.Strings(r.players)

	for _, t := range r.teams {
		r.byNormTeam[Normalize(t)] = t
	}
	r.teamNormKeys = make([]string, 0, len(r.byNormTeam))
	for nk := range r.byNormTeam {
		r.teamNormKeys = append(r.teamNormKeys, nk)
	}
	sort.Strings(r.teamNormKeys)

	r.playerNorms = make([]string, len(r.players))
	for i, p := range r.players {
		r.playerNorms[i] = Normalize(p)
		r.byNormPlayer[r.playerNorms[i]] = p
		r.byInitialsPlayer[InitialsKey(p)] = p
	}

	return r
}

// Load snapshots the team and player universes from the store and builds a
// resolver over them.
func Load(ctx context.Context, matches *repository.MatchRepository, deliveries *repository.DeliveryRepository, cfg Config) (*Resolver, error) {
	teams, err := matches.DistinctTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading team universe: %w", err)
	}

	players, err := deliveries.DistinctPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading player universe: %w", err)
	}

	return New(teams, players, cfg), nil
}

// Teams returns the canonical team universe, sorted
func (r *Resolver) Teams() []string {
	return r.teams
}

// Players returns the canonical player universe, sorted
func (r *Resolver) Players() []string {
	return r.players
}

// ResolveTeam maps input to a canonical team name. The second return is
// false when nothing matched.
func (r *Resolver) ResolveTeam(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	key := Normalize(input)

	if target, ok := r.cfg.TeamAliases[key]; ok {
		// Canonical preference: the alias target itself may exist in the
		// universe under a slightly different spelling.
		if canon, ok := r.byNormTeam[Normalize(target)]; ok {
			return canon, true
		}
		return target, true
	}

	if canon, ok := r.byNormTeam[key]; ok {
		return canon, true
	}

	if key != "" {
		for _, nk := range r.teamNormKeys {
			if strings.Contains(nk, key) {
				return r.byNormTeam[nk], true
			}
		}
	}

	if match, ok := BestMatch(r.cfg.Scorer, input, r.teams, r.cfg.FuzzyCutoff); ok {
		return match, true
	}

	return "", false
}

// ResolvePlayer maps input to a canonical player name. When a substring scan
// hits several players the name is ambiguous: the canonical result is empty
// and choices carries up to 10 candidates for the caller to surface.
func (r *Resolver) ResolvePlayer(input string) (string, []string) {
	if input == "" {
		return "", nil
	}
	key := Normalize(input)

	if target, ok := r.cfg.PlayerAliases[key]; ok {
		if canon, ok := r.byNormPlayer[Normalize(target)]; ok {
			return canon, nil
		}
		if canon, ok := r.byInitialsPlayer[InitialsKey(target)]; ok {
			return canon, nil
		}
		return target, nil
	}

	if canon, ok := r.byNormPlayer[key]; ok {
		return canon, nil
	}

	if canon, ok := r.byInitialsPlayer[InitialsKey(input)]; ok {
		return canon, nil
	}

	if key != "" {
		var choices []string
		for i, norm := range r.playerNorms {
			if strings.Contains(norm, key) {
				choices = append(choices, r.players[i])
				if len(choices) >= maxAmbiguousChoices {
					break
				}
			}
		}
		if len(choices) == 1 {
			return choices[0], nil
		}
		if len(choices) > 1 {
			return "", choices
		}
	}

	if match, ok := BestMatch(r.cfg.Scorer, input, r.players, r.cfg.FuzzyCutoff); ok {
		return match, nil
	}

	return "", nil
}
