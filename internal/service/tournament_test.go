package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/models"
)

func tournamentLedger() []models.MatchRecord {
	return []models.MatchRecord{
		{Date: day(2024, time.January, 13), HomeTeam: "Nigeria", AwayTeam: "Cameroon", HomeGoals: 2, AwayGoals: 1},
		{Date: day(2024, time.January, 14), HomeTeam: "Senegal", AwayTeam: "Gambia", HomeGoals: 3, AwayGoals: 0},
		{Date: day(2024, time.January, 18), HomeTeam: "Cameroon", AwayTeam: "Nigeria", HomeGoals: 1, AwayGoals: 1},
		{Date: day(2021, time.January, 9), HomeTeam: "Cameroon", AwayTeam: "Nigeria", HomeGoals: 0, AwayGoals: 2},
	}
}

func TestSummary(t *testing.T) {
	s := Summary(tournamentLedger())

	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 10, s.Goals)
	assert.InDelta(t, 2.5, s.AvgGoals, 1e-12)
	assert.Equal(t, 2, s.HomeWins)
	assert.Equal(t, 1, s.AwayWins)
	assert.Equal(t, 1, s.Draws)
}

func TestSummaryEmptyLedger(t *testing.T) {
	assert.Equal(t, models.TournamentSummary{}, Summary(nil))
}

func TestHeadToHead(t *testing.T) {
	games := HeadToHead(tournamentLedger(), "Nigeria", "Cameroon")

	require.Len(t, games, 3)
	assert.Equal(t, day(2024, time.January, 18), games[0].Date)
	assert.Equal(t, "1 - 1", games[0].ResultText)
	assert.Equal(t, day(2021, time.January, 9), games[2].Date)
	assert.Equal(t, "0 - 2", games[2].ResultText)

	assert.Empty(t, HeadToHead(tournamentLedger(), "Nigeria", "Gambia"))
}

func TestDataValidator(t *testing.T) {
	v := NewDataValidator()

	assert.Empty(t, v.ValidateMatch(tournamentLedger()[0]))
	assert.NotEmpty(t, v.ValidateMatch(models.MatchRecord{Date: day(2024, 1, 1), HomeTeam: "Mali", AwayTeam: "Mali"}))
	assert.NotEmpty(t, v.ValidateMatch(models.MatchRecord{Date: day(2024, 1, 1), HomeTeam: "Mali", AwayTeam: "Ghana", HomeGoals: -1}))

	problems := v.ValidateFixtures([]models.Fixture{
		{HomeTeam: "Nigeria", AwayTeam: "Cameroon"},
		{HomeTeam: "Nigeria", AwayTeam: "Cameroon"},
		{HomeTeam: "Gambia", AwayTeam: "Senegal"},
	}, tournamentLedger())
	assert.Len(t, problems, 3)
}
