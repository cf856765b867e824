package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/export"
	"github.com/girguy/concaf/internal/health"
	"github.com/girguy/concaf/internal/models"
)

var (
	predictLedgerCSV   string
	predictFixturesCSV string
	predictStore       bool
	predictExport      bool
	predictFormat      string
)

func init() {
	predictCmd.Flags().StringVar(&predictLedgerCSV, "ledger", "", "Historical results CSV, combined with any configured results pages")
	predictCmd.Flags().StringVar(&predictFixturesCSV, "fixtures", "", "Read fixtures from this CSV instead of the configured sources")
	predictCmd.Flags().BoolVar(&predictStore, "store", false, "Persist the ledger, fixtures and predictions")
	predictCmd.Flags().BoolVar(&predictExport, "export", false, "Upload the result tables to object storage")
	predictCmd.Flags().StringVarP(&predictFormat, "output", "o", "table", "Output format (table, json)")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one prediction pass and print the outcome table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if predictFormat != "table" && predictFormat != "json" {
			return fmt.Errorf("unknown output format %q", predictFormat)
		}
		p, err := buildPipeline(cmd.Context(), pipelineOptions{store: predictStore, export: predictExport})
		if err != nil {
			return err
		}
		defer p.Close()

		appLog.WithField("settings", p.engine.Config().String()).Debug("Engine configured")

		batch, err := p.service.Run(cmd.Context())
		if err != nil {
			return err
		}

		if predictFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(health.NewPredictionsResponse(batch))
		}
		return writeOutcomeTable(os.Stdout, batch)
	},
}

// applySourceOverrides points the sources at the CSV files given on the
// command line. It runs before validation so a config without sources is
// accepted when both files are passed.
func applySourceOverrides(c *config.Config) {
	if predictLedgerCSV != "" {
		c.Sources.LedgerCSV = predictLedgerCSV
	}
	if predictFixturesCSV != "" {
		c.Sources.FixturesCSV = predictFixturesCSV
	}
}

func writeOutcomeTable(out io.Writer, batch *models.BatchResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOME\tAWAY\tWIN\tDRAW\tLOSS\tBTTS\tO1.5\tO2.5\tO3.5\tERROR")
	for _, p := range batch.Predictions {
		if p.Failed() {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\t-\t-\t-\t%s\n", p.HomeTeam, p.AwayTeam, p.ErrorMessage())
			continue
		}
		o := p.Outcome
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.HomeTeam, p.AwayTeam,
			export.Percent(o.Win), export.Percent(o.Draw), export.Percent(o.Loss),
			export.Percent(o.BothScore),
			export.Percent(o.Over15), export.Percent(o.Over25), export.Percent(o.Over35))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nrun %s: %d predicted, %d failed\n", batch.RunID, batch.Succeeded, batch.Failed)
	return err
}
