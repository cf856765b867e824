package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVSourceName identifies rows read from local CSV files
const CSVSourceName = "csv"

// CSVSource reads results and fixtures from files laid out like the
// exported tables. With a header row, columns are matched by name and
// extra columns are ignored. Without one they are read by position:
// date,home_team,away_team[,home_goals,away_goals].
type CSVSource struct {
	resultsPath  string
	fixturesPath string
}

// NewCSVSource creates a file-backed source. Either path may be empty.
func NewCSVSource(resultsPath, fixturesPath string) *CSVSource {
	return &CSVSource{resultsPath: resultsPath, fixturesPath: fixturesPath}
}

// Name returns the name of the data source
func (s *CSVSource) Name() string {
	return CSVSourceName
}

// IsEnabled returns whether any file is configured
func (s *CSVSource) IsEnabled() bool {
	return s.resultsPath != "" || s.fixturesPath != ""
}

// FetchResults reads the results file
func (s *CSVSource) FetchResults(ctx context.Context) ([]MatchData, error) {
	if s.resultsPath == "" {
		return nil, nil
	}
	f, err := os.Open(s.resultsPath)
	if err != nil {
		return nil, NewSourceError(CSVSourceName, ErrCodeNotFound, s.resultsPath, err)
	}
	defer f.Close()
	return ReadResultsCSV(ctx, f)
}

// FetchFixtures reads the fixtures file
func (s *CSVSource) FetchFixtures(ctx context.Context) ([]FixtureData, error) {
	if s.fixturesPath == "" {
		return nil, nil
	}
	f, err := os.Open(s.fixturesPath)
	if err != nil {
		return nil, NewSourceError(CSVSourceName, ErrCodeNotFound, s.fixturesPath, err)
	}
	defer f.Close()
	return ReadFixturesCSV(ctx, f)
}

// csvColumn is one logical column: its position in a headerless file and
// the header spellings it accepts, lower case with separators removed.
type csvColumn struct {
	position int
	names    []string
}

var (
	resultColumns = []csvColumn{
		{position: 0, names: []string{"date"}},
		{position: 1, names: []string{"hometeam", "home"}},
		{position: 2, names: []string{"awayteam", "away"}},
		{position: 3, names: []string{"hometeamgoal", "homegoals", "homegoal", "fthg"}},
		{position: 4, names: []string{"awayteamgoal", "awaygoals", "awaygoal", "ftag"}},
	}
	fixtureColumns = resultColumns[:3]
)

// ReadResultsCSV parses result rows. Short rows are kept with empty goal
// columns so the ledger parser reports them as malformed.
func ReadResultsCSV(ctx context.Context, r io.Reader) ([]MatchData, error) {
	var rows []MatchData
	err := readCSV(ctx, r, resultColumns, func(line int, v []string) {
		rows = append(rows, MatchData{
			Source:    CSVSourceName,
			Row:       line,
			Date:      v[0],
			HomeTeam:  v[1],
			AwayTeam:  v[2],
			HomeGoals: v[3],
			AwayGoals: v[4],
		})
	})
	return rows, err
}

// ReadFixturesCSV parses fixture rows
func ReadFixturesCSV(ctx context.Context, r io.Reader) ([]FixtureData, error) {
	var rows []FixtureData
	err := readCSV(ctx, r, fixtureColumns, func(line int, v []string) {
		rows = append(rows, FixtureData{
			Source:   CSVSourceName,
			Row:      line,
			Date:     v[0],
			HomeTeam: v[1],
			AwayTeam: v[2],
		})
	})
	return rows, err
}

// readCSV emits the values of columns for every data row, in column order
func readCSV(ctx context.Context, r io.Reader, columns []csvColumn, emit func(line int, values []string)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	index := make([]int, len(columns))
	for i, c := range columns {
		index[i] = c.position
	}

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return NewSourceError(CSVSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d", line+1), err)
		}
		line++
		if line == 1 && isHeader(rec) {
			index = headerIndex(rec, columns)
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		values := make([]string, len(columns))
		for i, pos := range index {
			values[i] = field(rec, pos)
		}
		emit(line, values)
	}
}

func isHeader(rec []string) bool {
	for _, cell := range rec {
		if headerKey(cell) == "date" {
			return true
		}
	}
	return false
}

// headerIndex maps columns to header positions; a missing column reads as -1
func headerIndex(header []string, columns []csvColumn) []int {
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		key := headerKey(cell)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	index := make([]int, len(columns))
	for i, c := range columns {
		index[i] = -1
		for _, name := range c.names {
			if pos, ok := positions[name]; ok {
				index[i] = pos
				break
			}
		}
	}
	return index
}

func headerKey(cell string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(key)
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
