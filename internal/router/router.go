package router

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/gully/internal/resolver"
)

// Short team tags accepted verbatim
var defaultTeamShorts = map[string]string{
	"CSK": "CSK", "MI": "MI", "RCB": "RCB", "KKR": "KKR", "SRH": "SRH",
	"DC": "DC", "DD": "DD", "KXIP": "KXIP", "PBKS": "PBKS", "RR": "RR",
	"RPS": "RPS", "GL": "GL", "KTK": "KTK", "PWI": "PWI",
}

// Full franchise names recognized by the team-token heuristic
var defaultTeamFull = []string{
	"Chennai Super Kings", "Mumbai Indians", "Royal Challengers Bangalore",
	"Kolkata Knight Riders", "Sunrisers Hyderabad", "Delhi Capitals",
	"Deccan Chargers", "Kings XI Punjab", "Punjab Kings", "Rajasthan Royals",
	"Rising Pune Supergiant", "Rising Pune Supergiants", "Gujarat Lions",
	"Kochi Tuskers Kerala", "Pune Warriors India",
}

var defaultPhaseAliases = map[string]string{
	"pp":           "PP",
	"powerplay":    "PP",
	"power play":   "PP",
	"power-play":   "PP",
	"middle":       "Middle",
	"middle overs": "Middle",
	"middles":      "Middle",
	"death":        "Death",
	"slog":         "Death",
	"end overs":    "Death",
}

var defaultIntentKeywords = map[Intent][]string{
	IntentMatchSummary:    {"summary", "recap", "result", "what happened", "match report", "scorecard"},
	IntentTeamSquad:       {"squad", "roster", "lineup", "line-up", "team list", "players list"},
	IntentPlayerStats:     {"stats", "statistics", "figures", "record", "profile"},
	IntentPlayerVsTeam:    {"vs", "against"},
	IntentHeadToHead:      {"head to head", "h2h", "compare", "comparison", "versus", "vs"},
	IntentBestPhaseBowler: {"best", "top", "death", "powerplay", "power play", "middle overs", "slog", "end overs"},
}

const vsWords = `(?:vs|v\.?|versus|against)`

var (
	seasonRe    = regexp.MustCompile(`\b(20\d{2})(?:/\d{2})?\b`)
	ordinalRe   = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)
	smallNumRe  = regexp.MustCompile(`\b(\d{1,2})\b`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
	seasonTagRe = regexp.MustCompile(`(?i)\b(?:IN|FOR)\s+20\d{2}(?:/\d{2})?\b`)

	summaryWordsRe = regexp.MustCompile(`(?i)(?:summary|recap|result|tell me about|what happened|match report|scorecard)`)
	h2hWordsRe     = regexp.MustCompile(`(?i)(?:head\s*to\s*head|h2h|compare|comparison)`)
	squadWordsRe   = regexp.MustCompile(`(?i)(?:squad|roster|line[-\s]?up|team list|players list)`)
	statsWordsRe   = regexp.MustCompile(`(?i)(?:stats?|statistics|figures|numbers|record|profile)`)
	matchTokenRe   = regexp.MustCompile(`(?i)\bmatch\b`)
	bestTopRe      = regexp.MustCompile(`(?i)\b(best|top)\b`)
	bowlerRe       = regexp.MustCompile(`(?i)\b(bowler|bowlers)\b`)

	intentPrefixRe = regexp.MustCompile(`(?i)^\s*(?:show|tell|give|get|display|list|compare|comparison|head\s*to\s*head|h2h|versus|vs|v\.?|summary(?:\s+of)?|what\s+happened|match\s+report|result(?:\s+of)?|scorecard(?:\s+of)?)\b[:,\-\s]*`)

	teamsVsRe      = regexp.MustCompile(`(?i)\b([a-z .&/]+?)\s+` + vsWords + `\s+([a-z .&/]+?)\b`)
	teamsBetweenRe = regexp.MustCompile(`(?i)(?:between)\s+([a-z .&/]+?)\s+(?:and)\s+([a-z .&/]+?)\b`)
	teamsAndRe     = regexp.MustCompile(`(?i)\b([a-z .&/]+?)\s+(?:and)\s+([a-z .&/]+?)\b`)
	seasonTailRe   = regexp.MustCompile(`(?i)\b(?:in|for)\s+20\d{2}(?:/\d{2})?\b.*$`)

	playerVsRe      = regexp.MustCompile(`(?i)\b([a-z .]+?)\s+` + vsWords + `\s+([a-z .&]+?)\b`)
	playerAgainstRe = regexp.MustCompile(`(?i)\b([a-z .]+?)\s+(?:against)\s+([a-z .&]+?)\b`)

	squadOfRe    = regexp.MustCompile(`(?i)\b(?:squad|roster|line[-\s]?up|team list|players list)\s+(?:of|for)?\s*([a-z .&]+)`)
	squadAfterRe = regexp.MustCompile(`(?i)\b([a-z .&]+)\s+(?:squad|roster|line[-\s]?up|team list|players list)\b`)

	statsThenNameRe = regexp.MustCompile(`(?i)\b(?:stats?|statistics|figures|numbers|record|profile)\b.*?\b([a-z .]+)\b`)
	nameThenStatsRe = regexp.MustCompile(`(?i)\b([a-z .]+)\b.*?\b(?:stats?|statistics|figures|numbers|record|profile)\b`)
)

// Router classifies free-text questions into intents with typed parameters.
// Pure and deterministic: no data store access, only the fixed tables and
// the injected similarity scorer.
type Router struct {
	scorer   resolver.Scorer
	keywords map[Intent][]string
	shorts   map[string]string
	full     map[string]struct{}

	// phase alias keys sorted longest first so "middle overs" wins
	// over "middle"
	phaseKeys    []string
	phaseRes     map[string]*regexp.Regexp
	phaseAliases map[string]string
}

// New creates a router with the default keyword, phase and team tables
func New(scorer resolver.Scorer) *Router {
	if scorer == nil {
		scorer = resolver.NewScorer()
	}

	r := &Router{
		scorer:       scorer,
		keywords:     defaultIntentKeywords,
		shorts:       defaultTeamShorts,
		full:         make(map[string]struct{}, len(defaultTeamFull)),
		phaseAliases: defaultPhaseAliases,
		phaseRes:     make(map[string]*regexp.Regexp, len(defaultPhaseAliases)),
	}
	for _, t := range defaultTeamFull {
		r.full[strings.ToLower(t)] = struct{}{}
	}
	for k := range defaultPhaseAliases {
		r.phaseKeys = append(r.phaseKeys, k)
		r.phaseRes[k] = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
	}
	sort.Slice(r.phaseKeys, func(i, j int) bool {
		if len(r.phaseKeys[i]) != len(r.phaseKeys[j]) {
			return len(r.phaseKeys[i]) > len(r.phaseKeys[j])
		}
		return r.phaseKeys[i] < r.phaseKeys[j]
	})

	return r
}

var ordinalWords = []struct {
	re *regexp.Regexp
	n  int
}{
	{regexp.MustCompile(`\bfirst\b`), 1},
	{regexp.MustCompile(`\bsecond\b`), 2},
	{regexp.MustCompile(`\bthird\b`), 3},
	{regexp.MustCompile(`\bfourth\b`), 4},
	{regexp.MustCompile(`\bfifth\b`), 5},
}

// ParseSeason returns the first 4-digit year in the 2000-2099 range, or ""
func ParseSeason(q string) string {
	if m := seasonRe.FindString(q); m != "" {
		return m
	}
	return ""
}

// ParseNth extracts a match ordinal: ordinal words first through fifth, then
// patterns like "3rd", then the first standalone 1-10 integer, else 1.
func ParseNth(q string) int {
	s := strings.ToLower(q)

	for _, ord := range ordinalWords {
		if ord.re.MatchString(s) {
			return ord.n
		}
	}

	if m := ordinalRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	for _, m := range smallNumRe.FindAllStringSubmatch(s, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 10 {
			return n
		}
	}

	return 1
}

// DetectPhase finds a phase mention in the query, longest alias first
func (r *Router) DetectPhase(q string) string {
	low := strings.ToLower(q)
	for _, k := range r.phaseKeys {
		if r.phaseRes[k].MatchString(low) {
			return r.phaseAliases[k]
		}
	}
	return ""
}

// ScoreIntent returns, per intent, the best partial-ratio between the query
// and that intent's keyword phrases.
func (r *Router) ScoreIntent(q string) map[Intent]int {
	t := strings.ToLower(q)
	scores := make(map[Intent]int, len(r.keywords))
	for intent, keys := range r.keywords {
		best := 0
		for _, k := range keys {
			if s := r.scorer.PartialRatio(t, k); s > best {
				best = s
			}
		}
		scores[intent] = best
	}
	return scores
}

func (r *Router) isTeamToken(tok string) bool {
	u := strings.ToUpper(strings.TrimSpace(tok))
	if _, ok := r.shorts[u]; ok {
		return true
	}
	_, ok := r.full[strings.ToLower(strings.TrimSpace(tok))]
	return ok
}

// NormalizeTeamToken maps a raw extracted token to a short code when known,
// else title-cases it for the resolver downstream.
func (r *Router) NormalizeTeamToken(tok string) string {
	u := spaceRunRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(tok)), " ")
	u = strings.TrimSpace(seasonTagRe.ReplaceAllString(u, ""))
	if short, ok := r.shorts[u]; ok {
		return short
	}
	return titleCase(strings.TrimSpace(tok))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func cleanSpace(s string) string {
	return spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// StripIntentPrefix removes leading intent words ("show", "summary of", ...)
// so they are not mistaken for player or team names.
func StripIntentPrefix(q string) string {
	prev := q
	for {
		next := intentPrefixRe.ReplaceAllString(prev, "")
		if next == prev {
			return cleanSpace(next)
		}
		prev = next
	}
}

// ExtractTeamsPair pulls (teamA, teamB) from "A vs B", "between A and B",
// or "A and B" when both sides pass the team-token heuristic.
func (r *Router) ExtractTeamsPair(q string) (string, string, bool) {
	qs := strings.ReplaceAll(StripIntentPrefix(q), "&", " and ")

	if m := teamsVsRe.FindStringSubmatch(qs); m != nil {
		a, b := cleanSpace(m[1]), cleanSpace(m[2])
		b = strings.TrimSpace(seasonTailRe.ReplaceAllString(b, ""))
		return a, b, true
	}

	if m := teamsBetweenRe.FindStringSubmatch(qs); m != nil {
		return cleanSpace(m[1]), cleanSpace(m[2]), true
	}

	if m := teamsAndRe.FindStringSubmatch(qs); m != nil {
		a, b := cleanSpace(m[1]), cleanSpace(m[2])
		if r.isTeamToken(a) && r.isTeamToken(b) {
			return a, b, true
		}
	}

	return "", "", false
}

// ExtractPlayerVsTeam pulls (player, opponent) from "X vs Y" when the left
// side does not look like a team.
func (r *Router) ExtractPlayerVsTeam(q string) (string, string, bool) {
	qs := strings.ReplaceAll(StripIntentPrefix(q), "&", " and ")

	m := playerVsRe.FindStringSubmatch(qs)
	if m == nil {
		m = playerAgainstRe.FindStringSubmatch(qs)
	}
	if m == nil {
		return "", "", false
	}

	left, right := cleanSpace(m[1]), cleanSpace(m[2])
	if !r.isTeamToken(left) {
		return left, r.NormalizeTeamToken(right), true
	}
	return "", "", false
}

// ExtractTeamForSquad pulls the team name around squad keywords
func (r *Router) ExtractTeamForSquad(q string) (string, bool) {
	qs := StripIntentPrefix(q)

	if m := squadOfRe.FindStringSubmatch(qs); m != nil {
		return cleanSpace(m[1]), true
	}
	if m := squadAfterRe.FindStringSubmatch(qs); m != nil {
		return cleanSpace(m[1]), true
	}
	return "", false
}

// ExtractPlayerForStats pulls the player name around stats keywords
func (r *Router) ExtractPlayerForStats(q string) (string, bool) {
	qs := StripIntentPrefix(q)

	if m := statsThenNameRe.FindStringSubmatch(qs); m != nil {
		return cleanSpace(m[1]), true
	}
	if m := nameThenStatsRe.FindStringSubmatch(qs); m != nil {
		return cleanSpace(m[1]), true
	}
	return "", false
}

func scopeFor(season string) string {
	if season != "" {
		return ScopeSeason
	}
	return ScopeCareer
}

// Route classifies a question. A priority cascade, not a scored classifier:
// the specific intents (phase leaderboard, match summary, player-vs-team)
// are checked before the generic head-to-head fallback because a bare team
// pair is ambiguous between summary and head-to-head.
func (r *Router) Route(text string) RoutedQuery {
	q := cleanSpace(text)
	season := ParseSeason(q)
	nth := ParseNth(q)
	scores := r.ScoreIntent(q)

	if bestTopRe.MatchString(q) && bowlerRe.MatchString(q) {
		if phase := r.DetectPhase(q); phase != "" {
			return RoutedQuery{
				Intent: IntentBestPhaseBowler,
				Params: PhaseBowlerParams{Phase: phase, Scope: scopeFor(season), Season: season},
			}
		}
	}

	teamA, teamB, haveTeams := r.ExtractTeamsPair(q)
	player, opponent, havePVT := r.ExtractPlayerVsTeam(q)

	if haveTeams && (summaryWordsRe.MatchString(q) || matchTokenRe.MatchString(q)) {
		return RoutedQuery{
			Intent: IntentMatchSummary,
			Params: MatchSummaryParams{
				TeamA:  r.NormalizeTeamToken(teamA),
				TeamB:  r.NormalizeTeamToken(teamB),
				Season: season,
				Nth:    nth,
			},
		}
	}

	if havePVT {
		return RoutedQuery{
			Intent: IntentPlayerVsTeam,
			Params: PlayerVsTeamParams{
				Player: player, Opponent: opponent,
				Scope: scopeFor(season), Season: season,
			},
		}
	}

	if team, ok := r.ExtractTeamForSquad(q); ok {
		if scores[IntentTeamSquad] >= 55 || squadWordsRe.MatchString(q) {
			return RoutedQuery{
				Intent: IntentTeamSquad,
				Params: TeamSquadParams{Team: r.NormalizeTeamToken(team), Season: season},
			}
		}
	}

	if name, ok := r.ExtractPlayerForStats(q); ok {
		if scores[IntentPlayerStats] >= 55 || statsWordsRe.MatchString(q) {
			return RoutedQuery{
				Intent: IntentPlayerStats,
				Params: PlayerStatsParams{Player: name, Scope: scopeFor(season), Season: season},
			}
		}
	}

	low := strings.ToLower(q)
	if haveTeams && (scores[IntentHeadToHead] >= 40 || h2hWordsRe.MatchString(q) ||
		strings.Contains(low, " vs ") || strings.Contains(low, " between ") || strings.Contains(q, "&")) {
		return RoutedQuery{
			Intent: IntentHeadToHead,
			Params: HeadToHeadParams{
				TeamA:  r.NormalizeTeamToken(teamA),
				TeamB:  r.NormalizeTeamToken(teamB),
				Scope:  scopeFor(season),
				Season: season,
			},
		}
	}

	return RoutedQuery{Intent: IntentUnknown}
}
