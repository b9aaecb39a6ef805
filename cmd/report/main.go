package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"amesdash/app"
	"amesdash/internal/config"
	"amesdash/internal/container"
	"amesdash/internal/logging"
)

func main() {
	rootCmd := newReportCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "amesdash-report: %v\n", err)
		os.Exit(1)
	}
}

func newReportCmd() *cobra.Command {
	var dataFile string
	var maxLogPrice float64

	cmd := &cobra.Command{
		Use:   "amesdash-report",
		Short: "Run every housing price analysis and print the markdown report",
		Long: `Headless run of the dashboard's full analysis set: assumption
diagnostics, the configured omnibus test, group summaries, and the written
conclusion for each grouping attribute. The report goes to stdout as
markdown; logs go to stderr.

Example: amesdash-report --data AmesHousing.csv --max-log-price 12.2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var threshold *float64
			if cmd.Flags().Changed("max-log-price") {
				threshold = &maxLogPrice
			}
			return runReport(cmd, dataFile, threshold)
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "dataset file path, overrides AMES_DATA_FILE")
	cmd.Flags().Float64Var(&maxLogPrice, "max-log-price", 0, "keep only sales with log price at or below this value")

	return cmd
}

func runReport(cmd *cobra.Command, dataFile string, maxLogPrice *float64) error {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded environment from .env")
	}

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if dataFile != "" {
		appConfig.Data.File = dataFile
	}

	logging.ConfigureCLI(appConfig.Log.Level)

	appContainer, err := container.New(appConfig)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}

	ctx := cmd.Context()
	overview, err := appContainer.Analysis.Overview(ctx)
	if err != nil {
		return err
	}
	analyses, err := appContainer.Analysis.RunAll(ctx, maxLogPrice)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), app.RenderReport(overview, analyses))
	return nil
}
