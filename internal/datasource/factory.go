package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/girguy/concaf/internal/config"
)

// Sources groups the enabled ledger and fixture providers
type Sources struct {
	Ledger   []LedgerSource
	Fixtures []FixtureSource
	Pages    *PageCache
	client   *RateLimitedHTTPClient
}

// Close releases the shared HTTP client
func (s *Sources) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Factory creates sources based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.SourcesConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.SourcesConfig, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// HTTPClientConfig derives the scraper client settings from configuration
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	hc := DefaultHTTPClientConfig()
	if f.config.TimeoutSeconds > 0 {
		hc.Timeout = f.config.HTTPTimeout()
	}
	hc.MaxRetries = f.config.MaxRetries
	if f.config.RequestsPerSecond > 0 {
		hc.RateLimit = f.config.RequestsPerSecond
	}
	if f.config.UserAgent != "" {
		hc.UserAgent = f.config.UserAgent
	}
	return hc
}

// NewSources creates every enabled source. The ledger combines the
// historical CSV file with the scraped results of the current tournament.
// A fixtures CSV file takes the place of the scraped fixture pages.
func (f *Factory) NewSources() (*Sources, error) {
	if f.config == nil {
		return nil, fmt.Errorf("sources config is required")
	}

	out := &Sources{}
	csvSource := NewCSVSource(f.config.LedgerCSV, f.config.FixturesCSV)

	var sky *SkySportsSource
	if len(f.config.ResultsURLs)+len(f.config.FixturesURLs) > 0 {
		out.client = NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)
		out.Pages = NewPageCache(out.client, f.config.CacheTTL())
		sky = NewSkySportsSource(out.Pages, f.config.ResultsURLs, f.config.FixturesURLs, f.config.DefaultYear, f.logger)
	}

	if f.config.LedgerCSV != "" {
		out.Ledger = append(out.Ledger, csvSource)
	}
	if sky != nil && len(f.config.ResultsURLs) > 0 {
		out.Ledger = append(out.Ledger, sky)
	}

	switch {
	case f.config.FixturesCSV != "":
		out.Fixtures = append(out.Fixtures, csvSource)
	case sky != nil && len(f.config.FixturesURLs) > 0:
		out.Fixtures = append(out.Fixtures, sky)
	}

	if len(out.Ledger) == 0 {
		return nil, fmt.Errorf("no ledger source configured")
	}
	if len(out.Fixtures) == 0 {
		return nil, fmt.Errorf("no fixture source configured")
	}

	for _, s := range out.Ledger {
		f.logger.WithField("source", s.Name()).Info("Created ledger source")
	}
	for _, s := range out.Fixtures {
		f.logger.WithField("source", s.Name()).Info("Created fixture source")
	}
	return out, nil
}
