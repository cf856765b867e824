package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/girguy/concaf/internal/blob/s3blob"
	"github.com/girguy/concaf/internal/datasource"
	"github.com/girguy/concaf/internal/export"
	"github.com/girguy/concaf/internal/ledger"
	"github.com/girguy/concaf/internal/prediction"
	"github.com/girguy/concaf/internal/repository"
	"github.com/girguy/concaf/internal/service"
)

var errExportDisabled = errors.New("export requested but storage.enabled is false")

// pipelineOptions selects the optional stages of a command
type pipelineOptions struct {
	store     bool
	export    bool
	publisher service.Publisher
}

// pipeline owns everything a command needs to run the prediction service
type pipeline struct {
	sources *datasource.Sources
	repos   *repository.Repositories
	engine  *prediction.Engine
	blob    *s3blob.Client
	service *service.PredictionService
}

func buildPipeline(ctx context.Context, opts pipelineOptions) (*pipeline, error) {
	p := &pipeline{}

	sources, err := datasource.NewFactory(&cfg.Sources, appLog).NewSources()
	if err != nil {
		return nil, fmt.Errorf("failed to create sources: %w", err)
	}
	p.sources = sources

	parser, err := ledger.NewParser(cfg.Model.MalformedPolicy, ledger.NewTeamNormalizer(cfg.Sources.AliasMap()))
	if err != nil {
		p.Close()
		return nil, err
	}

	engineCfg, err := prediction.FromConfig(&cfg.Model)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.engine, err = prediction.NewEngine(engineCfg, appLog)
	if err != nil {
		p.Close()
		return nil, err
	}

	deps := service.Dependencies{
		Ledger:    sources.Ledger,
		Fixtures:  sources.Fixtures,
		Parser:    parser,
		Engine:    p.engine,
		Publisher: opts.publisher,
		Logger:    appLog,
	}

	if opts.store {
		p.repos, err = repository.Open(ctx, cfg)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		deps.Repositories = p.repos
	}

	if opts.export {
		if !cfg.Storage.Enabled {
			p.Close()
			return nil, errExportDisabled
		}
		p.blob, err = s3blob.New(ctx, cfg.Storage)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		deps.Exporter = export.NewExporter(s3blob.NewWriter(p.blob), appLog)
	}

	p.service, err = service.NewPredictionService(deps)
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the store and the scraper client
func (p *pipeline) Close() {
	if p.repos != nil {
		if err := p.repos.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close store")
		}
	}
	if p.sources != nil {
		if err := p.sources.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close sources")
		}
	}
}
