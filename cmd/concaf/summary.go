package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/girguy/concaf/internal/ledger"
	"github.com/girguy/concaf/internal/models"
	"github.com/girguy/concaf/internal/service"
)

var headToHead string

func init() {
	summaryCmd.Flags().StringVar(&headToHead, "head-to-head", "", "Also list past meetings of two teams, e.g. \"Maroc,Tunisie\"")
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show tournament totals from the stored ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		var teamA, teamB string
		if headToHead != "" {
			parts := strings.Split(headToHead, ",")
			if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
				return fmt.Errorf("--head-to-head expects two comma separated teams")
			}
			names := ledger.NewTeamNormalizer(cfg.Sources.AliasMap())
			teamA, teamB = names.Normalize(parts[0]), names.Normalize(parts[1])
		}

		p, err := buildPipeline(cmd.Context(), pipelineOptions{store: true})
		if err != nil {
			return err
		}
		defer p.Close()

		records, err := p.repos.Match.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			appLog.Info("Stored ledger is empty, fetching results")
			snap, err := p.service.Ingest(cmd.Context())
			if err != nil {
				return err
			}
			records = snap.Records
		}

		s := service.Summary(records)
		fmt.Printf("games:      %d\n", s.Games)
		fmt.Printf("goals:      %d (%.2f per game)\n", s.Goals, s.AvgGoals)
		fmt.Printf("home wins:  %d\n", s.HomeWins)
		fmt.Printf("away wins:  %d\n", s.AwayWins)
		fmt.Printf("draws:      %d\n", s.Draws)

		if teamA == "" {
			return nil
		}
		return writeHeadToHead(service.HeadToHead(records, teamA, teamB), teamA, teamB)
	},
}

func writeHeadToHead(games []models.HeadToHeadGame, a, b string) error {
	fmt.Printf("\n%s vs %s: %d meetings\n", a, b, len(games))
	if len(games) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%d-%d\t%s\t%s\n",
			g.Date.Format(models.DateLayout), g.HomeTeam, g.HomeGoals, g.AwayGoals, g.AwayTeam, g.ResultText)
	}
	return w.Flush()
}
