package datasource

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/config"
)

const resultsPage = `<html><body>
<div class="fixres__body">
  <h4 class="fixres__header2">Sunday 14th January</h4>
  <div class="fixres__item">
    <span class="matches__participant matches__participant--side1"> Nigeria </span>
    <span class="matches__teamscores">
      <span class="matches__teamscores-side">1</span>
      <span class="matches__teamscores-side">1</span>
    </span>
    <span class="matches__participant matches__participant--side2">Equatorial   Guinea</span>
  </div>
  <div class="fixres__item">
    <span class="matches__participant--side1">Egypt</span>
    <span class="matches__teamscores-side">2</span>
    <span class="matches__teamscores-side">2</span>
    <span class="matches__participant--side2">Mozambique</span>
  </div>
  <h4 class="fixres__header2">Monday 22nd January</h4>
  <div class="fixres__item">
    <span class="matches__participant--side1">Morocco</span>
    <span class="matches__teamscores-side">P</span>
    <span class="matches__participant--side2">Zambia</span>
  </div>
  <div class="fixres__item">
    <span class="matches__participant--side1">Morocco</span>
    <span class="matches__teamscores-side">1</span>
    <span class="matches__teamscores-side">0</span>
    <span class="matches__participant--side2">Zambia</span>
  </div>
</div>
</body></html>`

const fixturesPage = `<html><body>
<h4 class="fixres__header2">Saturday 3rd February</h4>
<div class="fixres__item">
  <span class="matches__participant--side1">Nigeria</span>
  <span class="matches__participant--side2">Angola</span>
</div>
<div class="fixres__item">
  <span class="matches__participant--side1">Winner Group A</span>
  <span class="matches__participant--side2">Runner-up Group C</span>
</div>
</body></html>`

func TestParseResultsPage(t *testing.T) {
	rows, err := ParseResultsPage(strings.NewReader(resultsPage), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, MatchData{
		Source: SkySportsSourceName, Date: "14/01/2024",
		HomeTeam: "Nigeria", AwayTeam: "Equatorial Guinea",
		HomeGoals: "1", AwayGoals: "1",
	}, rows[0])
	assert.Equal(t, "14/01/2024", rows[1].Date)
	assert.Equal(t, "Egypt", rows[1].HomeTeam)
	// The postponed item has a single score span and is skipped
	assert.Equal(t, "22/01/2024", rows[2].Date)
	assert.Equal(t, "Morocco", rows[2].HomeTeam)
	assert.Equal(t, "0", rows[2].AwayGoals)
}

func TestParseFixturesPage(t *testing.T) {
	rows, err := ParseFixturesPage(strings.NewReader(fixturesPage), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "03/02/2024", rows[0].Date)
	assert.Equal(t, "Angola", rows[0].AwayTeam)
	assert.Equal(t, "Winner Group A", rows[1].HomeTeam)
}

func TestConvertHeaderDate(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Sunday 14th January", "14/01/2024", false},
		{"Thursday 1st February", "01/02/2024", false},
		{"Wednesday 22nd  January", "22/01/2024", false},
		{"Friday 23rd June", "23/06/2024", false},
		{"Today", "", true},
		{"Sunday 14th Janvier", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ConvertHeaderDate(tt.header, 2024)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadResultsCSV(t *testing.T) {
	input := "Date,HomeTeam,AwayTeam,HomeTeamGoal,AwayTeamGoal\n" +
		"13/01/2024,Ivory Coast,Guinea-Bissau,2,0\n" +
		"14/01/2024, Nigeria ,Equatorial Guinea,1\n"

	rows, err := ReadResultsCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MatchData{
		Source: CSVSourceName, Row: 2, Date: "13/01/2024",
		HomeTeam: "Ivory Coast", AwayTeam: "Guinea-Bissau",
		HomeGoals: "2", AwayGoals: "0",
	}, rows[0])
	assert.Equal(t, "Nigeria", rows[1].HomeTeam)
	assert.Equal(t, "", rows[1].AwayGoals)
}

func TestReadResultsCSVMapsHeaderNames(t *testing.T) {
	input := "Stage,Date,HomeTeam,AwayTeam,HomeTeamGoal,AwayTeamGoal,SpecialWinConditions\n" +
		"Final,11/02/2024,Nigeria,Ivory Coast,1,2,\n" +
		"Round of 16,28/01/2024,Egypt,DR Congo,1,1,DR Congo won on penalties\n"

	rows, err := ReadResultsCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MatchData{
		Source: CSVSourceName, Row: 2, Date: "11/02/2024",
		HomeTeam: "Nigeria", AwayTeam: "Ivory Coast",
		HomeGoals: "1", AwayGoals: "2",
	}, rows[0])
	assert.Equal(t, "DR Congo", rows[1].AwayTeam)
	assert.Equal(t, "1", rows[1].AwayGoals)
}

func TestReadResultsCSVMissingGoalColumn(t *testing.T) {
	input := "Date,HomeTeam,AwayTeam,HomeTeamGoal\n" +
		"13/01/2024,Ivory Coast,Guinea-Bissau,2\n"

	rows, err := ReadResultsCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].HomeGoals)
	assert.Equal(t, "", rows[0].AwayGoals)
}

func TestCSVSourceFiles(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.csv")
	fixtures := filepath.Join(dir, "fixtures.csv")
	require.NoError(t, os.WriteFile(results, []byte("13/01/2024,Ivory Coast,Guinea-Bissau,2,0\n"), 0o644))
	require.NoError(t, os.WriteFile(fixtures, []byte("date,home,away\n03/02/2024,Nigeria,Angola\n"), 0o644))

	src := NewCSVSource(results, fixtures)
	assert.True(t, src.IsEnabled())

	matches, err := src.FetchResults(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Row)

	upcoming, err := src.FetchFixtures(context.Background())
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Angola", upcoming[0].AwayTeam)

	_, err = NewCSVSource(filepath.Join(dir, "missing.csv"), "").FetchResults(context.Background())
	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeNotFound, srcErr.Code)
}

func TestFetchPageDecodesBrotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, _ = bw.Write([]byte(resultsPage))
		_ = bw.Close()

		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	defer client.Close()

	body, err := client.FetchPage(context.Background(), "test", server.URL)
	require.NoError(t, err)
	assert.Equal(t, resultsPage, string(body))
}

func TestFetchPageNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	_, err := client.FetchPage(context.Background(), "test", server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFetchPageNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	defer client.Close()

	_, err := client.FetchPage(context.Background(), "test", url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetworkError))

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeNetworkError, srcErr.Code)
}

func TestSkySportsSourceUsesPageCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasSuffix(r.URL.Path, "fixtures") {
			_, _ = w.Write([]byte(fixturesPage))
			return
		}
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	pages := NewPageCache(client, time.Minute)
	src := NewSkySportsSource(pages, []string{server.URL + "/results"}, []string{server.URL + "/fixtures"}, 2024, nil)

	for i := 0; i < 3; i++ {
		rows, err := src.FetchResults(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, 3, rows[2].Row)
	}
	fixtures, err := src.FetchFixtures(context.Background())
	require.NoError(t, err)
	assert.Len(t, fixtures, 2)

	assert.Equal(t, int32(2), hits.Load())
	h, m := pages.Stats()
	assert.Equal(t, uint64(2), h)
	assert.Equal(t, uint64(2), m)

	pages.Invalidate()
	_, err = src.FetchResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFactoryCombinesLedgerSources(t *testing.T) {
	cfg := &config.SourcesConfig{
		LedgerCSV:    "past_games.csv",
		ResultsURLs:  []string{"https://www.skysports.com/africa-cup-of-nations-results"},
		FixturesURLs: []string{"https://www.skysports.com/africa-cup-of-nations-fixtures"},
		DefaultYear:  2024,
	}

	sources, err := NewFactory(cfg, nil).NewSources()
	require.NoError(t, err)
	defer sources.Close()

	require.Len(t, sources.Ledger, 2)
	assert.Equal(t, CSVSourceName, sources.Ledger[0].Name())
	assert.Equal(t, SkySportsSourceName, sources.Ledger[1].Name())
	require.Len(t, sources.Fixtures, 1)
	assert.Equal(t, SkySportsSourceName, sources.Fixtures[0].Name())
	assert.NotNil(t, sources.Pages)
}

func TestFactoryFixturesCSVReplacesPages(t *testing.T) {
	cfg := &config.SourcesConfig{
		LedgerCSV:    "past_games.csv",
		FixturesCSV:  "fixtures.csv",
		FixturesURLs: []string{"https://www.skysports.com/africa-cup-of-nations-fixtures"},
		DefaultYear:  2024,
	}

	sources, err := NewFactory(cfg, nil).NewSources()
	require.NoError(t, err)
	defer sources.Close()

	require.Len(t, sources.Ledger, 1)
	assert.Equal(t, CSVSourceName, sources.Ledger[0].Name())
	require.Len(t, sources.Fixtures, 1)
	assert.Equal(t, CSVSourceName, sources.Fixtures[0].Name())
}

func TestFactoryRequiresBothSides(t *testing.T) {
	_, err := NewFactory(&config.SourcesConfig{LedgerCSV: "results.csv"}, nil).NewSources()
	assert.Error(t, err)
}

func testHTTPConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}
