package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/levelup-be/internal/admin"
	"github.com/hongminglow/levelup-be/internal/models"
)

var paymentStatusFilter string

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Review submitted payments",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments, newest first",
	Args:  cobra.NoArgs,
	RunE:  runPaymentsList,
}

var paymentsHistoryCmd = &cobra.Command{
	Use:   "history <payment-id>",
	Short: "Show the review trail of a payment",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaymentsHistory,
}

func init() {
	paymentsListCmd.Flags().StringVarP(&paymentStatusFilter, "status", "s", "all", "Filter by status (all, pending, approved, denied)")

	paymentsCmd.AddCommand(paymentsListCmd)
	paymentsCmd.AddCommand(statusCmd("approve", "Approve a payment", models.StatusApproved))
	paymentsCmd.AddCommand(statusCmd("deny", "Deny a payment", models.StatusDenied))
	paymentsCmd.AddCommand(statusCmd("reset", "Put a payment back to pending", models.StatusPending))
	paymentsCmd.AddCommand(paymentsHistoryCmd)
}

func runPaymentsList(cmd *cobra.Command, args []string) error {
	filter, err := admin.ParseFilter(paymentStatusFilter)
	if err != nil {
		return err
	}
	return withBackend(cmd, func(ctx context.Context, b *backend) error {
		payments, err := b.admin.ListPayments(ctx, filter)
		if err != nil {
			return err
		}
		return printPayments(cmd.OutOrStdout(), payments)
	})
}

func statusCmd(use, short string, status models.PaymentStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <payment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b *backend) error {
				p, err := b.admin.SetStatus(ctx, cliActor, args[0], status)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Payment %s (%s) is now %s\n", p.ID, p.ReferenceNumber, p.Status)
				return nil
			})
		},
	}
}

func runPaymentsHistory(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b *backend) error {
		changes, err := b.admin.History(ctx, args[0])
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), changes)
	})
}
