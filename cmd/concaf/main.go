// Command concaf predicts outcome probabilities for upcoming tournament
// fixtures from the weighted history of past results.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	rootCmd.AddCommand(predictCmd, scrapeCmd, summaryCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "concaf",
	Short: "Tournament match outcome predictions",
	Long: `Builds a time-weighted ledger of past results, estimates scoring and
conceding rates per team and turns them into win, draw, loss, both-teams-score
and over/under probabilities for every upcoming fixture.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("concaf %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the dotenv file, the YAML configuration and the optional
// Secrets Manager overlay, then validates the result.
func loadConfig(ctx context.Context) error {
	// A missing dotenv file is normal outside development
	_ = godotenv.Load(envFile)

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	applySourceOverrides(cfg)

	if ctx == nil {
		ctx = context.Background()
	}
	secretsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := config.LoadSecretsFromAWS(secretsCtx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	return config.Validate(cfg)
}
