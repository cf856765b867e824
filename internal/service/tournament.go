package service

import (
	"sort"

	"github.com/girguy/concaf/internal/models"
)

// Summary aggregates the ledger into the tournament header figures
func Summary(records []models.MatchRecord) models.TournamentSummary {
	var s models.TournamentSummary
	for _, m := range records {
		s.Games++
		s.Goals += m.TotalGoals()
		switch {
		case m.HomeGoals > m.AwayGoals:
			s.HomeWins++
		case m.HomeGoals < m.AwayGoals:
			s.AwayWins++
		default:
			s.Draws++
		}
	}
	if s.Games > 0 {
		s.AvgGoals = float64(s.Goals) / float64(s.Games)
	}
	return s
}

// HeadToHead lists past meetings of a and b in either venue, newest first
func HeadToHead(records []models.MatchRecord, a, b string) []models.HeadToHeadGame {
	var games []models.HeadToHeadGame
	for _, m := range records {
		if (m.HomeTeam == a && m.AwayTeam == b) || (m.HomeTeam == b && m.AwayTeam == a) {
			games = append(games, models.HeadToHeadGame{MatchRecord: m, ResultText: m.Result()})
		}
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.After(games[j].Date)
	})
	return games
}
