package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/girguy/concaf/internal/models"
)

// DataValidator runs sanity checks over parsed ledgers and fixture lists.
// Findings are warnings; the engine reports hard failures itself.
type DataValidator struct {
	validate *validator.Validate
}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidator {
	return &DataValidator{validate: validator.New()}
}

// ValidateMatch checks a ledger record against its struct tags and that
// the two sides differ.
func (v *DataValidator) ValidateMatch(m models.MatchRecord) []string {
	var problems []string

	if err := v.validate.Struct(m); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if m.HomeTeam != "" && strings.EqualFold(m.HomeTeam, m.AwayTeam) {
		problems = append(problems, fmt.Sprintf("%s is listed on both sides", m.HomeTeam))
	}

	return problems
}

// ValidateFixtures reports self-pairings, repeated fixtures and sides
// with no ledger history in the role they will play.
func (v *DataValidator) ValidateFixtures(fixtures []models.Fixture, records []models.MatchRecord) []string {
	homeSeen := make(map[string]bool)
	awaySeen := make(map[string]bool)
	for _, m := range records {
		homeSeen[m.HomeTeam] = true
		awaySeen[m.AwayTeam] = true
	}

	var problems []string
	seen := make(map[string]bool, len(fixtures))
	for _, f := range fixtures {
		if err := v.validate.Struct(f); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", f, err))
			continue
		}
		if strings.EqualFold(f.HomeTeam, f.AwayTeam) {
			problems = append(problems, fmt.Sprintf("%s: team plays itself", f))
		}
		key := f.HomeTeam + "|" + f.AwayTeam
		if seen[key] {
			problems = append(problems, fmt.Sprintf("%s: listed more than once", f))
		}
		seen[key] = true
		if !homeSeen[f.HomeTeam] {
			problems = append(problems, fmt.Sprintf("%s: no home history for %s", f, f.HomeTeam))
		}
		if !awaySeen[f.AwayTeam] {
			problems = append(problems, fmt.Sprintf("%s: no away history for %s", f, f.AwayTeam))
		}
	}

	return problems
}
