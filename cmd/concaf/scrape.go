package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch results and fixtures and store them without predicting",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cmd.Context(), pipelineOptions{store: true})
		if err != nil {
			return err
		}
		defer p.Close()

		snap, err := p.service.Ingest(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("stored %d results and %d fixtures (%d rows rejected)\n",
			len(snap.Records), len(snap.Fixtures), len(snap.Rejected))
		for _, r := range snap.Rejected {
			fmt.Printf("  rejected: %v\n", r)
		}
		return nil
	},
}
