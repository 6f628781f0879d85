package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"srl_report/internal/chart"
	"srl_report/internal/report"
)

func main() {
	logger := log.New(os.Stderr)
	logger.SetReportTimestamp(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(logger, os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatal("report failed", "err", err)
	}
}

// newRootCmd builds the command tree: the root renders the full report and
// "basic" renders the first four charts.
func newRootCmd(logger *log.Logger, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "report",
		Short:         "Render charts from data/output/simulation.results.csv",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), logger, stdout, report.VariantFull)
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "basic",
		Short: "Render the state of charge, grid, battery and SRL charts only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), logger, stdout, report.VariantBasic)
		},
	})
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func run(ctx context.Context, logger *log.Logger, stdout io.Writer, v report.Variant) error {
	catalog, err := chart.LoadCatalog()
	if err != nil {
		return err
	}

	res, err := report.New(catalog, logger, stdout).Run(ctx, v)
	if err != nil {
		return err
	}

	logger.Info("done", "variant", v, "charts", len(res.Charts), "exports", len(res.Exports))
	return nil
}
