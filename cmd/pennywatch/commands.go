package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/grifflux/pennywatch/internal/alert"
	"github.com/grifflux/pennywatch/internal/cache"
	"github.com/grifflux/pennywatch/internal/config"
	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/funnel"
	"github.com/grifflux/pennywatch/internal/ledger"
	"github.com/grifflux/pennywatch/internal/net/ratelimit"
	"github.com/grifflux/pennywatch/internal/persistence"
	"github.com/grifflux/pennywatch/internal/provider"
	"github.com/grifflux/pennywatch/internal/scan"
	"github.com/grifflux/pennywatch/internal/telemetry"
	"github.com/grifflux/pennywatch/internal/universe"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg      config.Config
	runner   *scan.Runner
	store    persistence.RunStore
	registry *telemetry.Registry
}

// buildApp wires the whole pipeline from configuration.
func buildApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	registry := telemetry.NewRegistry()

	client := provider.NewHTTPClient(cfg.Provider.BaseURL, cfg.Provider.APIKey,
		provider.WithCache(cache.New(cfg.RedisAddr)),
		provider.WithLimiter(ratelimit.New(cfg.Provider.RPS, cfg.Provider.Burst)),
	)

	var store persistence.RunStore
	if cfg.PostgresDSN != "" {
		pg, err := persistence.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		store = pg
	} else {
		store = persistence.NewFileStore("data/leaderboard.json")
	}

	ld := ledger.New(ledger.NewFileStore(cfg.Alerting.LedgerPath), cfg.Alerting.Cooldown())
	publisher := alert.NewPublisher(ld, alert.PlainGenerator{}, alert.LogPoster{}, cfg.Alerting.MinIndexScore, registry)

	runner := scan.NewRunner(
		universe.NewProvider(client, cfg.Universe),
		funnel.New(client, cfg.Funnel, registry),
		cfg.Scorer(),
		converge.NewDetector(cfg.Convergence),
		publisher,
		store,
		registry,
		cfg.Alerting.TopK,
	)

	return &app{cfg: cfg, runner: runner, store: store, registry: registry}, nil
}

func runScan(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	post, _ := cmd.Flags().GetBool("post")
	override, _ := cmd.Flags().GetBool("override-cooldown")

	report, err := a.runner.Run(signalContext(), scan.Options{PostAlert: post, OverrideCooldown: override})
	if err != nil {
		return err
	}
	printLeaderboard(report)
	return nil
}

func runAlert(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	override, _ := cmd.Flags().GetBool("override-cooldown")

	report, err := a.runner.Run(signalContext(), scan.Options{PostAlert: true, OverrideCooldown: override})
	if err != nil {
		return err
	}
	if !report.AlertResult.Selected {
		log.Info().Strs("skipped", report.AlertResult.Skipped).Msg("No alert emitted")
	}
	return nil
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	lb, err := a.store.LatestLeaderboard(signalContext())
	if err != nil {
		return err
	}
	if lb == nil {
		fmt.Println("no leaderboard stored yet")
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(lb)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	post, _ := cmd.Flags().GetBool("post")
	ctx := signalContext()

	server := telemetry.NewServer(a.cfg.Server.Addr, a.registry)
	go server.Start()

	runOnce := func() {
		report, err := a.runner.Run(ctx, scan.Options{PostAlert: post})
		if err != nil {
			log.Error().Err(err).Msg("Scheduled scan failed")
			return
		}
		server.SetLeaderboard(report.Leaderboard)
	}

	c := cron.New()
	if _, err := c.AddFunc(a.cfg.Server.Schedule, runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.cfg.Server.Schedule, err)
	}
	c.Start()
	log.Info().Str("schedule", a.cfg.Server.Schedule).Msg("Scheduler started")

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func printLeaderboard(report *scan.Report) {
	fmt.Printf("run %s: %d candidates, %d survivors\n", report.RunID, report.Universe, report.Survivors)
	for _, e := range report.Leaderboard.Entries {
		fmt.Printf("%3d. %-6s %6.1f  [%s]  %s\n", e.Rank, e.Symbol, e.Score, e.Card.Index.Tier, e.Reason)
	}
	for _, nm := range report.NearMisses {
		fmt.Printf("near miss: %s failing %v\n", nm.Symbol, nm.FailedCriteria)
	}
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
