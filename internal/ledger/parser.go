// Package ledger turns provider rows into validated match records and fixtures.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/datasource"
	"github.com/girguy/concaf/internal/models"
)

var dateLayouts = []string{models.DateLayout, "2006-01-02"}

// MalformedError describes one rejected row
type MalformedError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s row %d: %s %q: %s", e.Source, e.Row, e.Field, e.Value, e.Reason)
}

// Unwrap ties every rejected row to models.ErrMalformedRecord
func (e *MalformedError) Unwrap() error {
	return models.ErrMalformedRecord
}

// Parser validates provider rows
type Parser struct {
	policy     string
	normalizer *TeamNormalizer
}

// NewParser creates a parser for the given malformed-record policy
// (config.PolicySkip or config.PolicyFail).
func NewParser(policy string, normalizer *TeamNormalizer) (*Parser, error) {
	switch policy {
	case config.PolicySkip, config.PolicyFail:
	default:
		return nil, models.NewPredictionError("ledger.NewParser", models.ErrInvalidConfiguration, "unknown malformed record policy %q", policy)
	}
	if normalizer == nil {
		normalizer = NewTeamNormalizer(nil)
	}
	return &Parser{policy: policy, normalizer: normalizer}, nil
}

// Policy returns the configured malformed-record policy
func (p *Parser) Policy() string {
	return p.policy
}

// ParseMatches converts result rows into match records. Under the skip
// policy bad rows are dropped and returned for reporting; under the fail
// policy the first bad row aborts parsing.
func (p *Parser) ParseMatches(rows []datasource.MatchData) ([]models.MatchRecord, []*MalformedError, error) {
	records := make([]models.MatchRecord, 0, len(rows))
	var rejected []*MalformedError

	for _, row := range rows {
		rec, merr := p.parseMatch(row)
		if merr != nil {
			if p.policy == config.PolicyFail {
				return nil, []*MalformedError{merr}, merr
			}
			rejected = append(rejected, merr)
			continue
		}
		records = append(records, rec)
	}
	return records, rejected, nil
}

// ParseFixtures converts fixture rows, dropping placeholder pairings and
// fixtures dated before today. A fixture without a date is kept. A
// fixture whose date cannot be read is malformed.
func (p *Parser) ParseFixtures(rows []datasource.FixtureData, today time.Time) ([]models.Fixture, []*MalformedError, error) {
	today = truncateDay(today)
	fixtures := make([]models.Fixture, 0, len(rows))
	var rejected []*MalformedError

	for _, row := range rows {
		fx, merr := p.parseFixture(row)
		if merr != nil {
			if p.policy == config.PolicyFail {
				return nil, []*MalformedError{merr}, merr
			}
			rejected = append(rejected, merr)
			continue
		}
		if IsPlaceholder(fx.HomeTeam) || IsPlaceholder(fx.AwayTeam) {
			continue
		}
		if !fx.Date.IsZero() && fx.Date.Before(today) {
			continue
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, rejected, nil
}

func (p *Parser) parseMatch(row datasource.MatchData) (models.MatchRecord, *MalformedError) {
	bad := func(field, value, reason string) *MalformedError {
		return &MalformedError{Source: row.Source, Row: row.Row, Field: field, Value: value, Reason: reason}
	}

	date, err := ParseDate(row.Date)
	if err != nil {
		return models.MatchRecord{}, bad("date", row.Date, "unparseable date")
	}
	home := p.normalizer.Normalize(row.HomeTeam)
	if home == "" {
		return models.MatchRecord{}, bad("home_team", row.HomeTeam, "missing team")
	}
	away := p.normalizer.Normalize(row.AwayTeam)
	if away == "" {
		return models.MatchRecord{}, bad("away_team", row.AwayTeam, "missing team")
	}
	homeGoals, ok := parseGoals(row.HomeGoals)
	if !ok {
		return models.MatchRecord{}, bad("home_goals", row.HomeGoals, "goals must be a non-negative integer")
	}
	awayGoals, ok := parseGoals(row.AwayGoals)
	if !ok {
		return models.MatchRecord{}, bad("away_goals", row.AwayGoals, "goals must be a non-negative integer")
	}

	return models.MatchRecord{
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
	}, nil
}

func (p *Parser) parseFixture(row datasource.FixtureData) (models.Fixture, *MalformedError) {
	fx := models.Fixture{
		HomeTeam: p.normalizer.Normalize(row.HomeTeam),
		AwayTeam: p.normalizer.Normalize(row.AwayTeam),
	}
	if fx.HomeTeam == "" || fx.AwayTeam == "" {
		return fx, &MalformedError{Source: row.Source, Row: row.Row, Field: "team", Value: row.HomeTeam + " vs " + row.AwayTeam, Reason: "missing team"}
	}
	if strings.TrimSpace(row.Date) != "" {
		date, err := ParseDate(row.Date)
		if err != nil {
			return fx, &MalformedError{Source: row.Source, Row: row.Row, Field: "date", Value: row.Date, Reason: "unparseable date"}
		}
		fx.Date = date
	}
	return fx, nil
}

// ParseDate accepts dd/mm/yyyy and yyyy-mm-dd
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseGoals(value string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
