// Package cli implements the stocklens command line interface: the
// cobra command tree, interactive prompts and terminal output.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkocik/stocklens/internal/analyzer"
	"github.com/mkocik/stocklens/internal/config"
	"github.com/mkocik/stocklens/internal/market"
)

const version = "1.0.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		periodFlag string
		outputFlag string
		noPlots    bool
	)

	rootCmd := &cobra.Command{
		Use:   "stocklens [TICKER...]",
		Short: "stocklens - stock market data download and analysis",
		Long: `stocklens downloads market data for one or more ticker symbols and
writes Excel workbooks, summary statistics and candlestick charts.

Run without arguments for interactive mode, or pass tickers directly:
  stocklens AAPL MSFT --period=1y --output=reports`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			periodSet := false
			if outputFlag != "" {
				cfg.OutputDir = outputFlag
			}
			if noPlots {
				cfg.GeneratePlots = false
			}
			if periodFlag != "" {
				if _, err := market.ParsePeriod(periodFlag); err != nil {
					DisplayWarning(fmt.Sprintf("%v, falling back to %s", err, cfg.DefaultPeriod))
				} else {
					cfg.DefaultPeriod = periodFlag
					periodSet = true
				}
			}

			return suppressExit(run(&cfg, args, periodSet, outputFlag != ""))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&periodFlag, "period", "p", "", "History period (1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory")
	rootCmd.Flags().BoolVar(&noPlots, "no-plots", false, "Skip candlestick chart generation")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(&configPath))

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stocklens v%s\n", version)
			fmt.Println("Stock market data download and analysis")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(configPath *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithConfigPath(*configPath))
			if err != nil {
				return err
			}
			showConfig(mgr)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithConfigPath(*configPath))
			if err != nil {
				return err
			}
			cfg := mgr.Get()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			DisplaySuccess("Configuration is valid")
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithConfigPath(*configPath))
			if err != nil {
				return err
			}
			fmt.Println(mgr.Path())
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(mgr *config.Manager) {
	cfg := mgr.Get()

	fmt.Println("📋 Current stocklens Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Config File:          %s\n", mgr.Path())
	fmt.Printf("Output Directory:     %s\n", cfg.OutputDir)
	fmt.Printf("Default Period:       %s\n", cfg.DefaultPeriod)
	fmt.Println()
	fmt.Printf("Generate Plots:       %t\n", cfg.GeneratePlots)
	fmt.Printf("Generate Summary:     %t\n", cfg.GenerateSummary)
	fmt.Printf("Max Retries:          %d\n", cfg.MaxRetries)
	fmt.Printf("HTTP Timeout:         %s\n", cfg.HTTPTimeout())
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Cache Directory:      %s\n", cfg.CacheDir)
	fmt.Printf("Cache TTL:            %s\n", cfg.CacheTTL())
	fmt.Println()
	fmt.Printf("Categories:           %s\n", strings.Join(cfg.Categories, ", "))
	fmt.Printf("Export Formats:       %s\n", strings.Join(cfg.ExportFormats, ", "))
	fmt.Printf("Chart Size:           %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
}

// run dispatches between the one-shot mode (tickers as args) and the
// interactive prompt loop. Categories are always chosen at a prompt;
// the period and output prompts are skipped when the flags set them.
func run(cfg *config.Config, args []string, periodSet, outputSet bool) error {
	a := analyzer.New(newMarketClient(cfg), os.Stdout)

	if len(args) > 0 {
		tickers, err := ParseTickers(strings.Join(args, " "))
		if err != nil {
			return err
		}
		req, err := resolveRequest(cfg, tickers, periodSet, outputSet)
		if err != nil {
			return err
		}
		return executeRun(a, cfg, req)
	}

	DisplayWelcomeBanner()

	var hadFailure bool
	for {
		tickers, err := PromptForTickers()
		if err != nil {
			return err
		}

		req, err := resolveRequest(cfg, tickers, periodSet, outputSet)
		if err != nil {
			return err
		}

		if err := executeRun(a, cfg, req); err != nil {
			DisplayError(err)
			hadFailure = true
		}

		again, err := PromptForAnotherRun()
		if err != nil {
			return err
		}
		if !again {
			if hadFailure {
				return fmt.Errorf("some tickers produced no output")
			}
			return nil
		}
	}
}

// resolveRequest fills in everything beyond the tickers, prompting for
// whatever the flags left open.
func resolveRequest(cfg *config.Config, tickers []string, periodSet, outputSet bool) (analyzer.Request, error) {
	categories, err := PromptForCategories(cfg.Categories)
	if err != nil {
		return analyzer.Request{}, err
	}

	period, err := market.ParsePeriod(cfg.DefaultPeriod)
	if err != nil {
		return analyzer.Request{}, err
	}
	if !periodSet {
		period, err = PromptForPeriod(cfg.DefaultPeriod)
		if err != nil {
			return analyzer.Request{}, err
		}
	}

	outputDir := cfg.OutputDir
	if !outputSet {
		outputDir, err = PromptForOutputDir(cfg.OutputDir)
		if err != nil {
			return analyzer.Request{}, err
		}
	}

	return analyzer.Request{
		Tickers:         tickers,
		Categories:      categories,
		Period:          period,
		OutputDir:       outputDir,
		GeneratePlots:   cfg.GeneratePlots,
		GenerateSummary: cfg.GenerateSummary,
		ChartSettings:   cfg.Chart,
		ExportFormats:   cfg.ExportFormats,
	}, nil
}

func executeRun(a *analyzer.Analyzer, cfg *config.Config, req analyzer.Request) error {
	// The output and cache roots are created before any download so a
	// permission problem surfaces immediately. The resolved directory
	// also becomes the prompt default for the next round.
	cfg.OutputDir = req.OutputDir
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	DisplayRunHeader(req.Tickers, string(req.Period), req.OutputDir)
	DisplayInfo(fmt.Sprintf("Downloading %d categor%s per ticker...",
		len(req.Categories), pluralYies(len(req.Categories))))

	report, err := a.Run(req)
	if err != nil {
		return err
	}
	DisplayRunSummary(report)

	if failed := report.FailedTickers(); len(failed) > 0 {
		return fmt.Errorf("no data retrieved for: %v", failed)
	}
	return nil
}

// suppressExit hides a user-requested exit from cobra so the process
// finishes with status zero.
func suppressExit(err error) error {
	if errors.Is(err, ErrExitRequested) {
		return nil
	}
	return err
}

func newMarketClient(cfg *config.Config) *market.Client {
	retry := market.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	return market.NewClient(market.Options{
		CacheDir:     cfg.CacheDir,
		CacheTTL:     cfg.CacheTTL(),
		CacheEnabled: cfg.CacheEnabled,
		Retry:        retry,
		Timeout:      cfg.HTTPTimeout(),
	})
}
