package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hongminglow/levelup-be/internal/report"
)

var (
	reportPeriod string
	reportDir    string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show dashboard figures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			m, err := b.admin.Dashboard(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, m)
			}
			fmt.Fprintf(out, "Users:           %d\n", m.TotalUsers)
			fmt.Fprintf(out, "Pending:         %d\n", m.PendingCount)
			fmt.Fprintf(out, "Revenue:         %d\n", m.Revenue)
			fmt.Fprintf(out, "Today:           %d\n", m.Daily)
			fmt.Fprintf(out, "This month:      %d / %d (%.1f%%)\n", m.Monthly, m.MonthlyTarget, m.MonthlyProgress)
			fmt.Fprintf(out, "This year:       %d / %d\n", m.Yearly, m.YearlyTarget)
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export CSV reports",
}

var reportFullCmd = &cobra.Command{
	Use:   "full",
	Short: "Export every user and payment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			f, err := b.admin.FullReport(ctx)
			if err != nil {
				return err
			}
			return saveReport(cmd, f)
		})
	},
}

var reportRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Export approved payments for a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := report.ParsePeriod(reportPeriod)
		if err != nil {
			return err
		}
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			f, err := b.admin.RevenueReport(ctx, period)
			if err != nil {
				return err
			}
			return saveReport(cmd, f)
		})
	},
}

func init() {
	reportCmd.PersistentFlags().StringVarP(&reportDir, "output", "o", ".", "Directory to write the CSV into")
	reportRevenueCmd.Flags().StringVarP(&reportPeriod, "period", "p", string(report.Monthly), "Period (daily, monthly, yearly)")

	reportCmd.AddCommand(reportFullCmd)
	reportCmd.AddCommand(reportRevenueCmd)
}

func saveReport(cmd *cobra.Command, f report.File) error {
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(reportDir, f.Name)
	if err := os.WriteFile(path, f.Content, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
