package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleInfo = `version,2.1.0
info,team,Chennai Super Kings
info,team,Mumbai Indians
info,season,2011
info,date,2011/04/10
info,venue,MA Chidambaram Stadium, Chepauk, Chennai
info,event,Indian Premier League
info,match_number,5
info,player_of_match,MS Dhoni
info,umpire,HDPK Dharmasena
info,umpire,S Ravi
info,match_referee,J Srinath
info,winner,Chennai Super Kings
player,Chennai Super Kings,MS Dhoni
player,Chennai Super Kings,SK Raina
player,Mumbai Indians,RG Sharma
`

func TestParseInfoCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1001_info.csv", sampleInfo)

	mi, err := ParseInfoCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Chennai Super Kings", "Mumbai Indians"}, mi.Teams)
	assert.Equal(t, "Chennai Super Kings", mi.Team1)
	assert.Equal(t, "Mumbai Indians", mi.Team2)
	assert.Equal(t, "2011", mi.Season)
	assert.Equal(t, "2011/04/10", mi.Date)
	// the venue value itself contains commas
	assert.Equal(t, "MA Chidambaram Stadium, Chepauk, Chennai", mi.Venue)
	assert.Equal(t, "Indian Premier League", mi.Event)
	assert.Equal(t, "5", mi.MatchNumber)
	assert.Equal(t, "MS Dhoni", mi.PlayerOfMatch)
	assert.Equal(t, "Chennai Super Kings", mi.Winner)
	assert.Equal(t, []string{"HDPK Dharmasena", "S Ravi"}, mi.Umpires)
	assert.Equal(t, []string{"J Srinath"}, mi.Referees)
	assert.Equal(t, []string{"MS Dhoni", "SK Raina"}, mi.PlayersMap["Chennai Super Kings"])
	assert.Equal(t, []string{"RG Sharma"}, mi.PlayersMap["Mumbai Indians"])
}

func TestParseInfoCSVTie(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1002_info.csv", `info,team,Kolkata Knight Riders
info,team,Rajasthan Royals
info,season,2014
outcome,result,tie
outcome,winner,Kolkata Knight Riders
`)

	mi, err := ParseInfoCSV(path)
	require.NoError(t, err)
	assert.Empty(t, mi.Winner)
}

func TestResolveWinner(t *testing.T) {
	team1 := "Chennai Super Kings"
	team2 := "Mumbai Indians"

	assert.Equal(t, team1, resolveWinner("chennai super kings", "", team1, team2))
	assert.Equal(t, team2, resolveWinner("Mumbai Indians", "won by 5 wickets", team1, team2))
	// containment catches decorated winner strings
	assert.Equal(t, team1, resolveWinner("the Chennai Super Kings", "", team1, team2))
	// results without a winner
	assert.Empty(t, resolveWinner("Chennai Super Kings", "tie", team1, team2))
	assert.Empty(t, resolveWinner("", "no result", team1, team2))
	assert.Empty(t, resolveWinner("Chennai Super Kings", "Abandoned", team1, team2))
	// a candidate naming neither team is kept verbatim
	assert.Equal(t, "Rising Pune Supergiant", resolveWinner("Rising Pune Supergiant", "", team1, team2))
}

func TestMatchInfoMeta(t *testing.T) {
	mi := &MatchInfo{
		Season:     "2011",
		Date:       "2011-04-10",
		Teams:      []string{"Chennai Super Kings", "Mumbai Indians"},
		Team1:      "Chennai Super Kings",
		Team2:      "Mumbai Indians",
		PlayersMap: map[string][]string{"Chennai Super Kings": {"MS Dhoni"}},
	}

	meta, err := mi.Meta(1001)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), meta.MatchID)
	assert.Equal(t, "2011", meta.Season.String)
	require.True(t, meta.Date.Valid)
	assert.Equal(t, "2011-04-10", meta.Date.Time.Format("2006-01-02"))
	assert.False(t, meta.Winner.Valid)
	assert.JSONEq(t, `["Chennai Super Kings","Mumbai Indians"]`, meta.TeamsJSON)
	assert.JSONEq(t, `{"Chennai Super Kings":["MS Dhoni"]}`, meta.PlayersMapJSON)
	assert.JSONEq(t, `[]`, meta.UmpiresJSON)
}

const sampleDeliveries = `match_id,season,start_date,venue,innings,ball,batting_team,bowling_team,batsman,non_striker,bowler,runs_off_bat,extras,wides,noballs,byes,legbyes,penalty,wicket_type,player_dismissed
335982,2008,2008-04-18,M Chinnaswamy Stadium,1,0.1,KKR,RCB,SC Ganguly,BB McCullum,P Kumar,0,1,,,,1,,,
335982,2008,2008-04-18,M Chinnaswamy Stadium,1,5.3,KKR,RCB,BB McCullum,SC Ganguly,Z Khan,0,1,1.0,,,,,,
335982,2008,2008-04-18,M Chinnaswamy Stadium,1,16.4,KKR,RCB,BB McCullum,RT Ponting,AA Noffke,6,0,,,,,,,
335982,2008,2008-04-18,M Chinnaswamy Stadium,2,1.2,RCB,KKR,R Dravid,W Jaffer,I Sharma,0,0,,,,,,caught,R Dravid
`

func TestParseDeliveriesCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "335982.csv", sampleDeliveries)

	ds, err := ParseDeliveriesCSV(path)
	require.NoError(t, err)
	require.Len(t, ds, 4)

	// legbye off the first ball; old column spellings are renamed
	first := ds[0]
	assert.Equal(t, int64(335982), first.MatchID)
	assert.Equal(t, "2008", first.Season)
	require.True(t, first.StartDate.Valid)
	assert.Equal(t, 1, first.Innings)
	assert.Equal(t, 0, first.Over)
	assert.Equal(t, 1, first.BallNumber)
	assert.Equal(t, "0.1", first.OverBall)
	assert.Equal(t, "SC Ganguly", first.Striker)
	assert.Equal(t, 0, first.RunsBatter)
	assert.Equal(t, 1, first.RunsExtras)
	assert.Equal(t, 1, first.Legbyes)
	assert.Equal(t, 1, first.RunsTotal)
	assert.False(t, first.IsDot)
	assert.False(t, first.IsBoundary)
	assert.True(t, first.IsLegal())

	// wides written as "1.0" still parse as a count
	wide := ds[1]
	assert.Equal(t, 1, wide.Wides)
	assert.Equal(t, 1, wide.RunsTotal)
	assert.False(t, wide.IsLegal())
	assert.Equal(t, "PP", wide.Phase.String)

	six := ds[2]
	assert.Equal(t, 6, six.RunsBatter)
	assert.True(t, six.IsBoundary)
	assert.Equal(t, "Death", six.Phase.String)

	// a wicket off a scoreless ball is not a dot
	wkt := ds[3]
	assert.Equal(t, "caught", wkt.WicketType.String)
	assert.Equal(t, "R Dravid", wkt.PlayerDismissed.String)
	assert.Equal(t, 0, wkt.RunsTotal)
	assert.False(t, wkt.IsDot)
}

func TestSplitOverBall(t *testing.T) {
	over, ball := splitOverBall("4.2")
	assert.Equal(t, 4, over)
	assert.Equal(t, 2, ball)

	over, ball = splitOverBall("12")
	assert.Equal(t, 12, over)
	assert.Equal(t, 0, ball)
}

func TestNullDate(t *testing.T) {
	assert.True(t, nullDate("2011-04-10").Valid)
	assert.True(t, nullDate("2011/04/10").Valid)
	assert.False(t, nullDate("").Valid)
	assert.False(t, nullDate("next tuesday").Valid)
}

func TestFindPairs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "335982.csv", "x")
	writeFile(t, dir, "335982_info.csv", "x")
	writeFile(t, dir, "1001.csv", "x")
	writeFile(t, dir, "1001_info.csv", "x")
	// info file without a deliveries file
	writeFile(t, dir, "5555_info.csv", "x")
	// stray files that must not pair
	writeFile(t, dir, "README.txt", "x")
	writeFile(t, dir, "notes.csv", "x")

	pairs, skipped, err := FindPairs(dir)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, int64(1001), pairs[0].MatchID)
	assert.Equal(t, int64(335982), pairs[1].MatchID)
	assert.Equal(t, filepath.Join(dir, "1001.csv"), pairs[0].DeliveriesPath)
	assert.Equal(t, filepath.Join(dir, "1001_info.csv"), pairs[0].InfoPath)

	assert.Equal(t, []string{"5555"}, skipped)
}
