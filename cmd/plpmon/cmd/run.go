package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"plp-monitor/internal/browser"
	"plp-monitor/internal/config"
	"plp-monitor/internal/extract"
	"plp-monitor/internal/model"
	"plp-monitor/internal/notify"
	"plp-monitor/internal/report"
	"plp-monitor/internal/service"
	"plp-monitor/internal/state"
)

// Command flags
var (
	statePath string   // Alert state file override
	noNotify  bool     // Print alerts without sending them
	formats   []string // Report formats (excel, html)
	outputDir string   // Report output directory
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check every category page once",
	Long: `Run one monitoring pass:
1. Load the alert state file
2. Load each page in a headless browser and count the sub-category tiles
3. Raise an issue for pages newly below the minimum, timeouts and load errors
4. Send one SMS listing every issue
5. Save the alert state file

Exits with status 1 when any issue was found.

Examples:
  # Run with built-in defaults and Twilio credentials from .env
  plpmon run

  # Use a config file and a custom state file
  plpmon run -c configs/config.yaml --state /var/lib/plpmon/alert_state.json

  # Dry run: print the alert without sending it
  plpmon run --no-notify

  # Also write Excel and HTML reports
  plpmon run -f excel,html -o ./reports`,
	Run: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&statePath, "state", "", "alert state file (overrides state.path)")
	runCmd.Flags().BoolVar(&noNotify, "no-notify", false, "print alerts without sending them")
	runCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "report formats (excel,html), comma separated")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "report output directory")
}

// runMonitor executes the run command and exits with the run's status.
func runMonitor(cmd *cobra.Command, args []string) {
	os.Exit(executeRun())
}

// executeRun wires the components and performs one run. It returns the
// process exit code so that deferred cleanup runs before exiting.
func executeRun() int {
	if err := config.LoadEnvFile(GetEnvFile()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		tmpLogger := bootstrapLogger()
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		return 1
	}

	cfg.Logging = resolveLogging(cfg.Logging)
	logger := setupLogger(cfg.Logging)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", cfg.Logging.Level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	if statePath != "" {
		cfg.State.Path = statePath
	}

	targets, err := config.ResolveTargets(&cfg.Monitor)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve targets")
		fmt.Fprintf(os.Stderr, "❌ Failed to resolve targets: %v\n", err)
		return 1
	}

	counter, err := extract.NewCounter(cfg.Monitor.Selector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid selector: %v\n", err)
		return 1
	}

	evaluator := service.NewEvaluator(
		cfg.Monitor.MinSubcategories,
		logger,
		service.WithRealertAfter(cfg.Monitor.RealertAfter),
	)
	store := state.NewFileStore(cfg.State.Path, logger)

	opts := []service.MonitorOption{
		service.WithOutput(os.Stdout),
		service.WithMessagePrefix(cfg.Notify.SMS.Prefix),
	}
	if notifier := buildNotifier(cfg, logger); notifier != nil {
		opts = append(opts, service.WithNotifier(notifier))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := browser.NewSession(cfg.Browser, cfg.Monitor.Selector, logger)
	if err := session.Open(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to start browser")
		fmt.Fprintf(os.Stderr, "❌ Failed to start browser: %v\n", err)
		return 1
	}
	defer session.Close()

	monitor := service.NewMonitor(session, counter, evaluator, store, logger, opts...)
	result, runErr := monitor.Run(ctx, targets)

	if result != nil {
		writeReports(cfg, result, logger)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "❌ Run failed: %v\n", runErr)
		return 1
	}

	return result.ExitCode()
}

// buildNotifier assembles the enabled alert channels. It returns nil when
// sending is disabled with --no-notify.
func buildNotifier(cfg *config.Config, logger zerolog.Logger) notify.Notifier {
	if noNotify {
		logger.Info().Msg("notifications disabled by flag")
		return nil
	}

	channels := []notify.Notifier{notify.NewSMSNotifier(cfg.Notify.SMS, logger)}
	if missing := cfg.Notify.SMS.Missing(); len(missing) > 0 {
		logger.Warn().Strs("missing", missing).Msg("sms credentials incomplete, alerts will not be delivered by sms")
	}
	if cfg.Notify.Webhook.Enabled {
		channels = append(channels, notify.NewWebhookNotifier(cfg.Notify.Webhook, logger))
	}

	return notify.NewMulti(channels...)
}

// writeReports writes the optional run report files. Report failures are
// logged and never change the exit status.
func writeReports(cfg *config.Config, result *model.RunResult, logger zerolog.Logger) {
	selected := resolveFormats(cfg)
	if len(selected) == 0 {
		return
	}

	timezone, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.Report.Timezone).Msg("invalid timezone, using UTC")
		timezone = time.UTC
	}

	registry := report.NewRegistry(timezone, cfg.Report.HTMLTemplate)
	baseName := report.Filename(cfg.Report.FilenameTemplate, result.StartedAt, timezone)

	fmt.Println("📄 Writing reports:")
	generated, err := registry.WriteAll(result, resolveOutputDir(cfg), baseName, selected)
	if err != nil {
		logger.Error().Err(err).Msg("failed to write reports")
		fmt.Fprintf(os.Stderr, "   ❌ %v\n", err)
		return
	}

	for _, g := range generated {
		if g.Err != nil {
			logger.Error().Err(g.Err).Str("format", g.Format).Str("path", g.Path).Msg("failed to generate report")
			fmt.Fprintf(os.Stderr, "   ❌ %s report failed: %v\n", g.Format, g.Err)
			continue
		}
		logger.Info().Str("format", g.Format).Str("path", g.Path).Msg("report generated successfully")
		fmt.Printf("   ✅ %s\n", g.Path)
	}
}

// resolveFormats determines the report formats to use.
// Command line flags take precedence over config file.
func resolveFormats(cfg *config.Config) []string {
	if len(formats) > 0 {
		return formats
	}
	return cfg.Report.Formats
}

// resolveOutputDir determines the output directory to use.
// Command line flags take precedence over config file.
func resolveOutputDir(cfg *config.Config) string {
	if outputDir != "" {
		return outputDir
	}
	if cfg.Report.OutputDir != "" {
		return cfg.Report.OutputDir
	}
	return "./reports"
}
