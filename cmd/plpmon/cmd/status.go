package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"plp-monitor/internal/config"
	"plp-monitor/internal/model"
	"plp-monitor/internal/state"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorGreen   = lipgloss.Color("#10B981")
	colorRed     = lipgloss.Color("#EF4444")
	colorDim     = lipgloss.Color("#6B7280")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
	styleAlerted = styleCell.Foreground(colorRed).Bold(true)
	styleCleared = styleCell.Foreground(colorGreen)
	styleURL     = styleCell.Foreground(colorDim)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	dotAlerted   = lipgloss.NewStyle().Foreground(colorRed).Render("●")
	dotCleared   = lipgloss.NewStyle().Foreground(colorGreen).Render("●")
)

const (
	colState = 2
	colURL   = 5
)

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored alert state",
	Long: `Print the alert state file: which pages are currently alerted, the count
observed when the record was written and when that was.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statePath, "state", "", "alert state file (overrides state.path)")
}

// runStatus executes the status command logic.
func runStatus(cmd *cobra.Command, args []string) {
	if err := config.LoadEnvFile(GetEnvFile()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if statePath != "" {
		cfg.State.Path = statePath
	}

	store := state.NewFileStore(cfg.State.Path, zerolog.Nop())
	alerts, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Print(renderStatus(store.Path(), alerts, targetLabels(&cfg.Monitor)))
}

// targetLabels maps configured target URLs to their labels. Labels for
// URLs no longer configured fall back to the URL path in renderStatus.
func targetLabels(cfg *config.MonitorConfig) map[string]string {
	targets, err := config.ResolveTargets(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Could not resolve targets, using URL labels: %v\n", err)
		return nil
	}
	labels := make(map[string]string, len(targets))
	for _, t := range targets {
		labels[t.URL] = t.Label
	}
	return labels
}

// renderStatus formats the alert state as a table.
func renderStatus(path string, alerts model.AlertState, labels map[string]string) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Alert state"))
	sb.WriteString("\n")
	sb.WriteString(styleDim.Render(path))
	sb.WriteString("\n\n")

	if len(alerts) == 0 {
		sb.WriteString(styleDim.Render("No pages have breached the minimum yet."))
		sb.WriteString("\n")
		return sb.String()
	}

	urls := alerts.URLs()
	rows := make([][]string, 0, len(urls))
	alertedCount := 0
	for _, url := range urls {
		rec := alerts[url]
		dot, stateText := dotCleared, "cleared"
		if rec.IsAlerted() {
			dot, stateText = dotAlerted, "alerted"
			alertedCount++
		}
		label, ok := labels[url]
		if !ok {
			label = model.LabelFromURL(url)
		}
		rows = append(rows, []string{dot, label, stateText, strconv.Itoa(rec.Count), rec.Timestamp, url})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleDim).
		Headers("", "PAGE", "STATE", "COUNT", "SINCE", "URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == colState && alerts.Get(urls[row]).IsAlerted():
				return styleAlerted
			case col == colState:
				return styleCleared
			case col == colURL:
				return styleURL
			default:
				return styleCell
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%d alerted, %d cleared\n", alertedCount, len(rows)-alertedCount))
	return sb.String()
}
