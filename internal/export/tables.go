// Package export renders ledger, fixture and outcome tables as CSV and
// uploads them to object storage.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/girguy/concaf/internal/models"
	"github.com/shopspring/decimal"
)

// Object names of the exported tables
const (
	GamesObject    = "Game.csv"
	FixturesObject = "Fixture.csv"
	OutcomesObject = "Outcome.csv"
)

// OutcomeHeader is the column layout read by the dashboard
var OutcomeHeader = []string{
	"HomeTeam", "AwayTeam", "Win", "Draw", "Loose", "BothScore",
	"Over 1.5", "Over 2.5", "Over 3.5", "error",
}

var (
	gamesHeader    = []string{"Date", "HomeTeam", "AwayTeam", "HomeTeamGoal", "AwayTeamGoal"}
	fixturesHeader = []string{"Date", "HomeTeam", "AwayTeam"}
)

// Percent renders a percentage rounded half away from zero to two decimals
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// OutcomeTable renders one row per fixture in batch order. Failed
// fixtures leave the percentage columns empty and fill error.
func OutcomeTable(batch *models.BatchResult) ([]byte, error) {
	rows := make([][]string, 0, len(batch.Predictions))
	for _, p := range batch.Predictions {
		if p.Failed() {
			rows = append(rows, []string{p.HomeTeam, p.AwayTeam, "", "", "", "", "", "", "", p.ErrorMessage()})
			continue
		}
		o := p.Outcome
		rows = append(rows, []string{
			p.HomeTeam, p.AwayTeam,
			Percent(o.Win), Percent(o.Draw), Percent(o.Loss), Percent(o.BothScore),
			Percent(o.Over15), Percent(o.Over25), Percent(o.Over35),
			"",
		})
	}
	return render(OutcomeHeader, rows)
}

// GamesTable renders the ledger with day-first dates
func GamesTable(records []models.MatchRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		rows = append(rows, []string{
			m.Date.Format(models.DateLayout), m.HomeTeam, m.AwayTeam,
			strconv.Itoa(m.HomeGoals), strconv.Itoa(m.AwayGoals),
		})
	}
	return render(gamesHeader, rows)
}

// FixturesTable renders upcoming fixtures; undated ones get an empty date
func FixturesTable(fixtures []models.Fixture) ([]byte, error) {
	rows := make([][]string, 0, len(fixtures))
	for _, f := range fixtures {
		date := ""
		if !f.Date.IsZero() {
			date = f.Date.Format(models.DateLayout)
		}
		rows = append(rows, []string{date, f.HomeTeam, f.AwayTeam})
	}
	return render(fixturesHeader, rows)
}

func render(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	return buf.Bytes(), nil
}
