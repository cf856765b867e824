package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// SkySportsSourceName identifies rows scraped from Sky Sports pages
const SkySportsSourceName = "skysports"

var (
	ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// SkySportsSource scrapes the fixtures and results pages of a competition
type SkySportsSource struct {
	fetcher      PageFetcher
	resultsURLs  []string
	fixturesURLs []string
	defaultYear  int
	enabled      bool
	logger       *logrus.Entry
}

// NewSkySportsSource creates a scraper over the given result and fixture pages.
// Page headers carry no year, so defaultYear is applied to every date.
func NewSkySportsSource(fetcher PageFetcher, resultsURLs, fixturesURLs []string, defaultYear int, logger *logrus.Logger) *SkySportsSource {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if defaultYear == 0 {
		defaultYear = time.Now().Year()
	}
	return &SkySportsSource{
		fetcher:      fetcher,
		resultsURLs:  resultsURLs,
		fixturesURLs: fixturesURLs,
		defaultYear:  defaultYear,
		enabled:      len(resultsURLs)+len(fixturesURLs) > 0,
		logger:       logger.WithField("source", SkySportsSourceName),
	}
}

// Name returns the name of the data source
func (s *SkySportsSource) Name() string {
	return SkySportsSourceName
}

// IsEnabled returns whether any page is configured
func (s *SkySportsSource) IsEnabled() bool {
	return s.enabled
}

// FetchResults scrapes every configured results page
func (s *SkySportsSource) FetchResults(ctx context.Context) ([]MatchData, error) {
	var all []MatchData
	for _, url := range s.resultsURLs {
		body, err := s.fetcher.FetchPage(ctx, SkySportsSourceName, url)
		if err != nil {
			return nil, err
		}
		rows, err := ParseResultsPage(bytes.NewReader(body), s.defaultYear)
		if err != nil {
			return nil, NewSourceError(SkySportsSourceName, ErrCodeInvalidData, "parse "+url, err)
		}
		s.logger.WithFields(logrus.Fields{"url": url, "rows": len(rows)}).Debug("Parsed results page")
		all = append(all, rows...)
	}
	renumber(all)
	return all, nil
}

// FetchFixtures scrapes every configured fixtures page
func (s *SkySportsSource) FetchFixtures(ctx context.Context) ([]FixtureData, error) {
	var all []FixtureData
	for _, url := range s.fixturesURLs {
		body, err := s.fetcher.FetchPage(ctx, SkySportsSourceName, url)
		if err != nil {
			return nil, err
		}
		rows, err := ParseFixturesPage(bytes.NewReader(body), s.defaultYear)
		if err != nil {
			return nil, NewSourceError(SkySportsSourceName, ErrCodeInvalidData, "parse "+url, err)
		}
		s.logger.WithFields(logrus.Fields{"url": url, "rows": len(rows)}).Debug("Parsed fixtures page")
		for i := range rows {
			rows[i].Row = len(all) + i + 1
		}
		all = append(all, rows...)
	}
	return all, nil
}

// ParseResultsPage extracts played matches. Items without a date header,
// both participants and exactly two score spans are skipped. A header that
// cannot be read is kept verbatim so the ledger parser reports it.
func ParseResultsPage(r io.Reader, defaultYear int) ([]MatchData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []MatchData
	doc.Find("div.fixres__item").Each(func(_ int, item *goquery.Selection) {
		header, home, away, ok := itemParticipants(item)
		if !ok {
			return
		}
		scores := item.Find("span.matches__teamscores-side")
		if scores.Length() != 2 {
			return
		}
		rows = append(rows, MatchData{
			Source:    SkySportsSourceName,
			Date:      headerDate(header, defaultYear),
			HomeTeam:  home,
			AwayTeam:  away,
			HomeGoals: cleanText(scores.Eq(0).Text()),
			AwayGoals: cleanText(scores.Eq(1).Text()),
		})
	})
	return rows, nil
}

// ParseFixturesPage extracts upcoming matches
func ParseFixturesPage(r io.Reader, defaultYear int) ([]FixtureData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []FixtureData
	doc.Find("div.fixres__item").Each(func(_ int, item *goquery.Selection) {
		header, home, away, ok := itemParticipants(item)
		if !ok {
			return
		}
		rows = append(rows, FixtureData{
			Source:   SkySportsSourceName,
			Date:     headerDate(header, defaultYear),
			HomeTeam: home,
			AwayTeam: away,
		})
	})
	return rows, nil
}

// ConvertHeaderDate turns "Sunday 14th January" into "14/01/2024" for year 2024
func ConvertHeaderDate(header string, year int) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return "", fmt.Errorf("unexpected date header %q", header)
	}
	// Drop the weekday
	dayMonth := ordinalSuffix.ReplaceAllString(strings.Join(fields[1:], " "), "$1")
	parsed, err := time.Parse("2 January 2006", dayMonth+" "+strconv.Itoa(year))
	if err != nil {
		return "", fmt.Errorf("unexpected date header %q: %w", header, err)
	}
	return parsed.Format("02/01/2006"), nil
}

func itemParticipants(item *goquery.Selection) (header, home, away string, ok bool) {
	h := item.PrevAllFiltered("h4.fixres__header2").First()
	homeSel := item.Find("span.matches__participant--side1")
	awaySel := item.Find("span.matches__participant--side2")
	if h.Length() == 0 || homeSel.Length() == 0 || awaySel.Length() == 0 {
		return "", "", "", false
	}
	return cleanText(h.Text()), cleanText(homeSel.First().Text()), cleanText(awaySel.First().Text()), true
}

func headerDate(header string, year int) string {
	converted, err := ConvertHeaderDate(header, year)
	if err != nil {
		return header
	}
	return converted
}

func cleanText(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func renumber(rows []MatchData) {
	for i := range rows {
		rows[i].Row = i + 1
	}
}
