// Package main provides the Better Bets scanner CLI and HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/better-bets/internal/config"
	"github.com/yourusername/better-bets/internal/scanner"
	"github.com/yourusername/better-bets/internal/scheduler"
	"github.com/yourusername/better-bets/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

// scan and watch flags
var (
	sportFlag      string
	marketTypeFlag string
	bookFlag       string
	minEdgeFlag    float64
	stakeFlag      float64
	outputFlag     string
	intervalFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "betterbets",
	Short: "Sportsbook odds devig, EV and arbitrage scanner",
	Long: `Better Bets fetches live sportsbook odds, estimates vig-free fair
probabilities, and reports +EV prices and cross-book arbitrage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.LoadAndValidate(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = newAppLogger(cfg)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := scanRequestFromFlags(sportFlag)
		if err != nil {
			return err
		}
		app := buildApp(cfg, appLog)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OddsAPITimeout()*2)
		defer cancel()

		result, err := app.service.Scan(ctx, req)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		return writeResult(cmd.OutOrStdout(), outputFlag, result)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan on an interval and log the top opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "betterbets %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default config/config.yaml or $BETTERBETS_CONFIG_PATH)")

	for _, cmd := range []*cobra.Command{scanCmd, watchCmd} {
		cmd.Flags().StringVar(&marketTypeFlag, "market-type", string(scanner.BucketAll), "Market bucket: all, main or props")
		cmd.Flags().StringVar(&bookFlag, "book", "", "Only report prices from this bookmaker key")
		cmd.Flags().Float64Var(&minEdgeFlag, "min-edge", 0, "Minimum edge percent to report")
		cmd.Flags().Float64Var(&stakeFlag, "stake", 0, "Notional arbitrage stake (default from config)")
	}
	scanCmd.Flags().StringVar(&sportFlag, "sport", "", "Sport key, e.g. basketball_nba")
	scanCmd.Flags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table or json")
	_ = scanCmd.MarkFlagRequired("sport")

	watchCmd.Flags().StringVar(&sportFlag, "sport", "", "Sport key; defaults to watch.sports from config")
	watchCmd.Flags().IntVar(&intervalFlag, "interval", 0, "Seconds between scans (default from config)")

	rootCmd.AddCommand(serveCmd, scanCmd, watchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func scanRequestFromFlags(sport string) (service.ScanRequest, error) {
	if !cfg.IsSportAllowed(sport) {
		return service.ScanRequest{}, fmt.Errorf("sport %q is not in scan.allowed_sports", sport)
	}
	bucket, err := scanner.ParseBucket(marketTypeFlag)
	if err != nil {
		return service.ScanRequest{}, err
	}
	return service.ScanRequest{
		Sport:          sport,
		Markets:        cfg.OddsAPI.DefaultMarkets,
		Regions:        cfg.OddsAPI.DefaultRegions,
		MarketType:     bucket,
		Book:           bookFlag,
		MinEdgePercent: scanner.ClampMinEdge(minEdgeFlag),
		Stake:          stakeFlag,
	}, nil
}

func runServe() error {
	app := buildApp(cfg, appLog)
	server := app.newServer(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	app.health.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"addr":        cfg.ListenAddr(),
		"version":     Version,
	}).Info("Better Bets server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	}

	app.health.SetReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.close()
	appLog.Info("Better Bets server stopped")
	return nil
}

func runWatch(cmd *cobra.Command) error {
	sports := cfg.Watch.Sports
	if sportFlag != "" {
		sports = []string{sportFlag}
	}
	if len(sports) == 0 {
		return fmt.Errorf("no sport to watch: pass --sport or set watch.sports")
	}
	interval := cfg.Watch.IntervalSeconds
	if intervalFlag > 0 {
		interval = intervalFlag
	}
	if !cmdFlagChanged(cmd, "min-edge") {
		minEdgeFlag = cfg.Watch.MinEdgePercent
	}

	app := buildApp(cfg, appLog)
	var sched *scheduler.Scheduler
	nextRun := func() time.Time { return sched.GetNextRun() }
	sched = scheduler.NewScheduler(app.service, topOpportunitiesLogger(appLog, cfg.Watch.TopN, nextRun), appLog)
	for _, sport := range sports {
		req, err := scanRequestFromFlags(sport)
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleWatch(interval, req); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", sport, err)
		}
	}

	// first pass runs immediately rather than one interval in
	sched.RunNow()
	if err := sched.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	if sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}
	app.close()
	return nil
}

func cmdFlagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
