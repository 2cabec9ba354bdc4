package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "pennywatch"
	version = "v1.3.0"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Distress/dilution risk scanner for small-cap tickers",
		Version: version,
		Long: `PennyWatch scans a universe of small-cap tickers for distress and
dilution risk: staged filtering, weighted multi-factor scoring, outcome
probabilities, convergence detection and cooldown-gated alerting.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (defaults apply when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		levelStr, _ := cmd.Flags().GetString("log-level")
		level, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", levelStr, err)
		}
		zerolog.SetGlobalLevel(level)
		return nil
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the full pipeline once and print the leaderboard",
		RunE:  runScan,
	}
	scanCmd.Flags().Bool("post", false, "Hand the top eligible candidate to the poster")
	addCooldownFlags(scanCmd.Flags())

	alertCmd := &cobra.Command{
		Use:   "alert",
		Short: "Run the pipeline and post the top eligible candidate",
		RunE:  runAlert,
	}
	addCooldownFlags(alertCmd.Flags())

	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the most recently persisted leaderboard",
		RunE:  runLeaderboard,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled scans with the telemetry HTTP surface",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("post", false, "Post alerts on scheduled runs")

	rootCmd.AddCommand(scanCmd, alertCmd, leaderboardCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// addCooldownFlags registers the cooldown override shared by the
// alert-capable commands.
func addCooldownFlags(fs *pflag.FlagSet) {
	fs.Bool("override-cooldown", false, "Bypass the cooldown gate (record still updates)")
}
