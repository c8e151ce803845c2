// Gaus Thesis — catalyst and risk synthesis for stock tickers
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gausfin/gausthesis/api"
	"github.com/gausfin/gausthesis/internal/config"
	"github.com/gausfin/gausthesis/internal/thesis"
	"github.com/gausfin/gausthesis/pkg/models"
	"github.com/gausfin/gausthesis/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gausthesis",
	Short: "Gaus Thesis — catalyst and risk synthesis for stock tickers",
	Long: `Gaus Thesis aggregates market data, news, and social signals for a
stock ticker and synthesizes a catalyst thesis and a risk thesis with a
1-10 risk score.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Gaus Thesis %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Analyze a ticker and print the synthesized theses",
	Long: `Run the full pipeline for one ticker: market snapshot, news and
social collection, and catalyst/risk synthesis.

Examples:
  gausthesis analyze AAPL
  gausthesis analyze TSLA --days 30
  gausthesis analyze NVDA --days ytd --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		daysFlag, _ := cmd.Flags().GetString("days")
		asJSON, _ := cmd.Flags().GetBool("json")

		days, err := parseDaysFlag(daysFlag)
		if err != nil {
			return err
		}
		windowDays := utils.ResolveWindowDays(days, time.Now())

		orch, err := thesis.NewFromConfig(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		result, err := orch.Run(ctx, ticker, windowDays)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printAnalysis(result)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("days", "7", `analysis window in days, or "ytd"`)
	analyzeCmd.Flags().Bool("json", false, "print the raw JSON result")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting Gaus Thesis API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Helpers ---

func parseDaysFlag(raw string) (int, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "ytd" {
		return utils.YTDSentinel, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("invalid --days %q; use a positive integer or \"ytd\"", raw)
	}
	return days, nil
}

func printAnalysis(a *models.Analysis) {
	fmt.Printf("%s (%s) — last %d days\n", a.Ticker, a.CompanyName, a.DaysAnalyzed)
	fmt.Printf("  Price:  $%.2f (%s)\n", a.PriceData.CurrentPrice, utils.FormatChangePct(a.PriceData.PriceChangePct))
	fmt.Println()

	fmt.Println("Catalyst Thesis:")
	if len(a.CatalystThesis) == 0 {
		fmt.Println("  (no catalysts extracted)")
	}
	for _, b := range a.CatalystThesis {
		fmt.Printf("  - %s\n", b.Text)
		for _, src := range b.Sources {
			fmt.Printf("      [%s] %s\n", src.Source, src.Link)
		}
	}
	fmt.Println()

	fmt.Printf("Risk Thesis (score %d/10):\n", a.RiskScore)
	if len(a.RiskThesis) == 0 {
		fmt.Println("  (no risks extracted)")
	}
	for _, b := range a.RiskThesis {
		fmt.Printf("  - %s\n", b)
	}

	if a.Status.LowNews || !a.Status.SocialAvailable || len(a.Status.NewsSourcesFailed) > 0 {
		fmt.Println()
		fmt.Println("Data status:")
		if a.Status.LowNews {
			fmt.Println("  - low news coverage; thesis may rely on general knowledge")
		}
		if !a.Status.SocialAvailable {
			fmt.Println("  - social signals unavailable")
		}
		for _, src := range a.Status.NewsSourcesFailed {
			fmt.Printf("  - news source failed: %s\n", src)
		}
	}
}
