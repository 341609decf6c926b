// Package main provides the entry point for the pitwall race simulator CLI.
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

	"github.com/yourusername/pitwall/internal/config"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/health"
	"github.com/yourusername/pitwall/internal/logger"
	"github.com/yourusername/pitwall/internal/metrics"
	"github.com/yourusername/pitwall/internal/notifier"
	"github.com/yourusername/pitwall/internal/repository"
	"github.com/yourusername/pitwall/internal/scheduler"
	"github.com/yourusername/pitwall/internal/service"
	"github.com/yourusername/pitwall/internal/simulation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logLevel   string

	iterations int
	seed       int64
	workers    int
	csvPath    string
	jsonPath   string
	htmlPath   string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{runCmd, serveCmd} {
		cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Override number of simulated races")
		cmd.Flags().Int64Var(&seed, "seed", 0, "Override random seed (0 keeps the configured seed)")
		cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override number of parallel workers")
	}
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the summary table as CSV")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "Write the full result as JSON")
	runCmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML report")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every race outcome at debug level")

	rootCmd.AddCommand(runCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "Monte Carlo race strategy simulator",
	Long:  `Simulates multi-car races lap by lap with tyre wear, pit stops, push laps and crashes, and aggregates many races into win, podium and DNF statistics.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured simulation once and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := setup(ctx)
		if err != nil {
			return err
		}
		defer app.close()

		result, err := app.svc.Run(ctx, app.spec)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), simulation.GenerateConsoleReport(result.Result))
		return writeReports(app, result.Result)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, metrics and the latest summary, re-running on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := setup(ctx)
		if err != nil {
			return err
		}
		defer app.close()

		serverCfg := health.Config{
			ServiceName: app.cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        app.cfg.Metrics.Port,
			MetricsPath: app.cfg.Metrics.Path,
			Logger:      app.logger,
			Summaries:   app.svc,
		}
		if app.cfg.Metrics.Enabled {
			serverCfg.MetricsHandler = metrics.Handler()
		}
		if app.db != nil {
			serverCfg.DB = app.db
		}
		feed := health.NewFeed(app.logger)
		app.svc.AddNotifier(feed)
		serverCfg.Feed = feed
		server := health.NewServer(serverCfg)
		if err := server.Start(ctx); err != nil {
			return err
		}

		if _, err := app.svc.Run(ctx, app.spec); err != nil {
			return err
		}
		server.SetReady(true)

		if app.cfg.Schedule.Enabled {
			sched := scheduler.NewScheduler(app.svc, app.logger)
			if _, err := sched.ScheduleSimulation(app.cfg.Schedule.Cron, app.spec); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		<-ctx.Done()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pitwall %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

type application struct {
	cfg    *config.Config
	logger *logrus.Logger
	spec   simulation.RunSpec
	db     *database.DB
	svc    *service.SimulationService
	hook   *notifier.Webhook
}

func (a *application) close() {
	if a.hook != nil {
		_ = a.hook.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func setup(ctx context.Context) (*application, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	appLogger := logger.NewLogger(level)

	spec, err := simulation.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if cfg.Simulation.Verbose || verbose {
		spec.MonteCarlo.Logger = appLogger
	}

	app := &application{cfg: cfg, logger: appLogger, spec: spec}

	var repo repository.SimulationRunRepository
	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.db = db
		repo = repos.SimulationRun
	}

	var resultCache *service.ResultCache
	if cfg.Cache.TTLSeconds > 0 {
		resultCache = service.NewResultCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	}
	metrics.InitRegistry()
	app.svc = service.NewSimulationService(repo, resultCache, appLogger)

	if cfg.Notify.Enabled {
		hookCfg := notifier.DefaultWebhookConfig(cfg.Notify.WebhookURL)
		hookCfg.Timeout = time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
		hookCfg.MaxRetries = cfg.Notify.MaxRetries
		hookCfg.RateLimit = cfg.Notify.RateLimit
		hookCfg.CircuitBreakerMax = cfg.Notify.CircuitBreakerMax
		hookCfg.CooldownPeriod = time.Duration(cfg.Notify.CooldownSeconds) * time.Second
		app.hook = notifier.NewWebhook(hookCfg, appLogger)
		app.svc.AddNotifier(app.hook)
	}

	return app, nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	applyOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if iterations > 0 {
		cfg.Simulation.Iterations = iterations
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}
	if workers > 0 {
		cfg.Simulation.Workers = workers
	}
	if csvPath != "" {
		cfg.Output.CSVPath = csvPath
	}
	if jsonPath != "" {
		cfg.Output.JSONPath = jsonPath
	}
	if htmlPath != "" {
		cfg.Output.HTMLPath = htmlPath
	}
}

func writeReports(app *application, result simulation.MonteCarloResult) error {
	out := app.cfg.Output
	if out.CSVPath != "" {
		if err := simulation.GenerateCSVExport(result, out.CSVPath); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		app.logger.WithField("path", out.CSVPath).Info("Saved summary CSV")
	}
	if out.JSONPath != "" {
		if err := simulation.GenerateJSONExport(result, out.JSONPath); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		app.logger.WithField("path", out.JSONPath).Info("Saved summary JSON")
	}
	if out.HTMLPath != "" {
		if err := simulation.GenerateHTMLReport(result, out.HTMLPath); err != nil {
			return fmt.Errorf("failed to write html: %w", err)
		}
		app.logger.WithField("path", out.HTMLPath).Info("Saved HTML report")
	}
	return nil
}
