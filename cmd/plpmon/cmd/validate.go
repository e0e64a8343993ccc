package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plp-monitor/internal/config"
	"plp-monitor/internal/extract"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load and validate the configuration: format, required fields, value
ranges, the CSS selector and the target list. Missing Twilio credentials are
reported as a warning because alerts can still be printed without them.`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	if err := config.LoadEnvFile(GetEnvFile()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	targets, err := config.ResolveTargets(&cfg.Monitor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Targets invalid: %v\n", err)
		os.Exit(1)
	}

	if _, err := extract.NewCounter(cfg.Monitor.Selector); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Selector invalid: %v\n", err)
		os.Exit(1)
	}

	source := GetConfigFile()
	if source == "" {
		source = "defaults + environment"
	}
	fmt.Printf("✅ Configuration valid: %s\n", source)
	fmt.Printf("   Targets: %d\n", len(targets))
	fmt.Printf("   Selector: %s\n", cfg.Monitor.Selector)
	fmt.Printf("   Minimum: %d\n", cfg.Monitor.MinSubcategories)
	fmt.Printf("   State file: %s\n", cfg.State.Path)

	if missing := cfg.Notify.SMS.Missing(); len(missing) > 0 {
		fmt.Printf("⚠️  SMS not configured, missing: %s\n", strings.Join(missing, ", "))
	}
}
