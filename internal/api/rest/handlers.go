package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/fortuna/gully/internal/cache"
	"github.com/fortuna/gully/internal/format"
	"github.com/fortuna/gully/internal/query"
	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/router"
	"github.com/fortuna/gully/internal/store"
	"github.com/fortuna/gully/internal/store/repository"
)

const unknownHint = "Try: 'summary of CSK vs MI in 2011', 'Kohli stats in 2016', 'squad of Mumbai Indians 2015' or 'MI vs CSK head to head'."

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db         *store.Database
	engine     *query.Engine
	router     *router.Router
	resolver   *resolver.Resolver
	matches    *repository.MatchRepository
	deliveries *repository.DeliveryRepository
	answers    *cache.RedisCache
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, engine *query.Engine, res *resolver.Resolver, answers *cache.RedisCache) *Handler {
	return &Handler{
		db:         db,
		engine:     engine,
		router:     router.New(nil),
		resolver:   res,
		matches:    repository.NewMatchRepository(db),
		deliveries: repository.NewDeliveryRepository(db),
		answers:    answers,
	}
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	OK         bool          `json:"ok"`
	Intent     router.Intent `json:"intent"`
	Query      string        `json:"query"`
	Result     any           `json:"result,omitempty"`
	AnswerText string        `json:"answer_text,omitempty"`
	Hint       string        `json:"hint,omitempty"`
}

// errorPayload is the result body for recoverable lookup failures. These
// still answer with HTTP 200: the request itself succeeded.
type errorPayload struct {
	Error   string   `json:"error"`
	Choices []string `json:"choices,omitempty"`
}

// Ask routes a natural-language question, runs its aggregation and returns
// the structured result plus a rendered text answer.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "Missing 'query' field", nil)
		return
	}

	if h.answers != nil {
		if body, err := h.answers.GetAnswer(r.Context(), req.Query); err == nil && body != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
			return
		}
	}

	routed := h.router.Route(req.Query)
	slog.Debug("routed question", "query", req.Query, "intent", routed.Intent)

	if routed.Intent == router.IntentUnknown {
		respondJSON(w, http.StatusOK, askResponse{
			OK:     false,
			Intent: routed.Intent,
			Query:  req.Query,
			Hint:   unknownHint,
		})
		return
	}

	result, err := h.runIntent(r, routed)
	if err != nil {
		payload := errorPayload{Error: err.Error()}
		if amb, ok := err.(*query.AmbiguousPlayerError); ok {
			payload.Choices = amb.Choices
		} else if _, ok := err.(*query.NotFoundError); !ok {
			respondError(w, http.StatusInternalServerError, "Query failed", err)
			return
		}
		respondJSON(w, http.StatusOK, askResponse{
			OK:         false,
			Intent:     routed.Intent,
			Query:      req.Query,
			Result:     payload,
			AnswerText: format.Error(err),
		})
		return
	}

	resp := askResponse{
		OK:         true,
		Intent:     routed.Intent,
		Query:      req.Query,
		Result:     result,
		AnswerText: format.Answer(routed.Intent, result),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode response", err)
		return
	}
	if h.answers != nil {
		if err := h.answers.SetAnswer(r.Context(), req.Query, string(body), 0); err != nil {
			slog.Warn("answer cache write failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// runIntent dispatches a routed question to its aggregation
func (h *Handler) runIntent(r *http.Request, routed router.RoutedQuery) (any, error) {
	ctx := r.Context()

	switch p := routed.Params.(type) {
	case router.MatchSummaryParams:
		if p.Season == "" {
			return nil, query.NotFoundf("Please specify a season, e.g. 'in 2011'.")
		}
		return h.engine.MatchSummary(ctx, p.TeamA, p.TeamB, p.Season, p.Nth)
	case router.PlayerStatsParams:
		return h.engine.PlayerStats(ctx, p.Player, p.Scope, p.Season)
	case router.TeamSquadParams:
		if p.Season == "" {
			return nil, query.NotFoundf("Please specify a season, e.g. 'in 2015'.")
		}
		return h.engine.TeamSquad(ctx, p.Team, p.Season)
	case router.PlayerVsTeamParams:
		return h.engine.PlayerVsTeam(ctx, p.Player, p.Opponent, p.Scope, p.Season)
	case router.HeadToHeadParams:
		return h.engine.HeadToHead(ctx, p.TeamA, p.TeamB, p.Scope, p.Season)
	case router.PhaseBowlerParams:
		minOvers := query.DefaultMinOversCareer
		if p.Scope == router.ScopeSeason {
			minOvers = query.DefaultMinOversSeason
		}
		return h.engine.BestPhaseBowlers(ctx, p.Phase, p.Scope, p.Season, minOvers)
	}

	return nil, query.NotFoundf("Unknown intent")
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbPath := h.db.Path()
	exists := dbPath == "" // in-memory databases always exist
	if dbPath != "" {
		_, statErr := os.Stat(dbPath)
		exists = statErr == nil
	}

	status := "ok"
	if err := h.db.HealthCheck(); err != nil || !exists {
		status = "warn"
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"db_path":   dbPath,
		"db_exists": exists,
	})
}

// DBInfo reports row counts, season coverage and a few sample matches
func (h *Handler) DBInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matches, err := h.matches.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count matches", err)
		return
	}
	deliveries, err := h.deliveries.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count deliveries", err)
		return
	}
	coverage, err := h.matches.Coverage(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read coverage", err)
		return
	}
	if len(coverage) > 10 {
		coverage = coverage[:10]
	}
	sample, err := h.matches.SampleMatches(ctx, 5)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read sample matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"db_path":           h.db.Path(),
		"matches_meta_rows": matches,
		"deliveries_rows":   deliveries,
		"sample_seasons":    coverage,
		"sample_matches":    meetingsToRows(sample),
	})
}

// meetingRow is a flattened meeting for debug and info responses
type meetingRow struct {
	MatchID       int64  `json:"match_id"`
	Season        string `json:"season"`
	Date          string `json:"date"`
	Venue         string `json:"venue"`
	Team1         string `json:"team1"`
	Team2         string `json:"team2"`
	Winner        string `json:"winner"`
	PlayerOfMatch string `json:"player_of_match"`
}

func meetingsToRows(meetings []*repository.Meeting) []meetingRow {
	rows := make([]meetingRow, 0, len(meetings))
	for _, m := range meetings {
		row := meetingRow{
			MatchID:       m.MatchID,
			Season:        m.Season.String,
			Venue:         m.Venue.String,
			Team1:         m.Team1.String,
			Team2:         m.Team2.String,
			Winner:        m.Winner.String,
			PlayerOfMatch: m.PlayerOfMatch.String,
		}
		if m.Date.Valid {
			row.Date = m.Date.Time.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return rows
}

// DebugHeadToHead shows the raw fixture rows behind a head-to-head query
func (h *Handler) DebugHeadToHead(w http.ResponseWriter, r *http.Request) {
	teamA := r.URL.Query().Get("team_a")
	teamB := r.URL.Query().Get("team_b")
	season := r.URL.Query().Get("season")
	if teamA == "" || teamB == "" || season == "" {
		respondError(w, http.StatusBadRequest, "team_a, team_b and season are required", nil)
		return
	}

	a, _ := h.resolver.ResolveTeam(teamA)
	if a == "" {
		a = teamA
	}
	b, _ := h.resolver.ResolveTeam(teamB)
	if b == "" {
		b = teamB
	}

	meetings, err := h.matches.MeetingsBetween(r.Context(), a, b, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read meetings", err)
		return
	}
	teams, err := h.matches.SeasonTeams(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read season teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"input":        map[string]string{"team_a": teamA, "team_b": teamB, "season": season},
		"resolved":     map[string]string{"team_a": a, "team_b": b},
		"rows":         meetingsToRows(meetings),
		"rowcount":     len(meetings),
		"season_teams": teams,
	})
}

// DebugPlayer shows how a name resolves and which stored names contain it
func (h *Handler) DebugPlayer(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	season := r.URL.Query().Get("season")

	canonical, choices := h.resolver.ResolvePlayer(name)

	examples, err := h.deliveries.SearchNames(r.Context(), name, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to search names", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"input":    map[string]string{"name": name, "season": season},
		"resolved": canonical,
		"choices":  choices,
		"examples": examples,
		"count":    len(examples),
	})
}

// DebugSQL runs a read-only query and returns its rows. SELECT and WITH
// statements only.
func (h *Handler) DebugSQL(w http.ResponseWriter, r *http.Request) {
	stmt := r.URL.Query().Get("sql")
	if stmt == "" {
		respondError(w, http.StatusBadRequest, "sql is required", nil)
		return
	}
	upper := strings.ToUpper(strings.TrimSpace(stmt))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		respondError(w, http.StatusBadRequest, "Only SELECT statements are allowed", nil)
		return
	}

	rows, err := h.db.DB().QueryContext(r.Context(), stmt)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"error": err.Error()})
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"error": err.Error()})
		return
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			respondJSON(w, http.StatusOK, map[string]any{"error": err.Error()})
			return
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"rows": out, "rowcount": len(out)})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
