package main

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/config"
)

func useTestConfig(t *testing.T, storageEnabled bool) {
	t.Helper()

	prevCfg, prevLog := cfg, appLog
	t.Cleanup(func() { cfg, appLog = prevCfg, prevLog })

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	appLog = quiet
	cfg = &config.Config{
		Sources: config.SourcesConfig{
			LedgerCSV:   "past_games.csv",
			FixturesCSV: "fixtures.csv",
		},
		Model: config.ModelConfig{
			DecayRate:       0.1,
			ScorelineCutoff: 6,
			MalformedPolicy: config.PolicySkip,
		},
		Storage: config.StorageConfig{Enabled: storageEnabled},
	}
}

func TestBuildPipelineRejectsExportWithoutStorage(t *testing.T) {
	useTestConfig(t, false)

	p, err := buildPipeline(context.Background(), pipelineOptions{export: true})
	assert.Nil(t, p)
	assert.ErrorIs(t, err, errExportDisabled)
}

func TestBuildPipelineWithoutExport(t *testing.T) {
	useTestConfig(t, false)

	p, err := buildPipeline(context.Background(), pipelineOptions{})
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.blob)
	assert.Nil(t, p.repos)
	assert.NotNil(t, p.service)
}
