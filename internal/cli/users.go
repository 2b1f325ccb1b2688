package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var userQuery string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users and roles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally matching name or email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			users, err := b.admin.SearchUsers(ctx, userQuery)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		})
	},
}

var usersToggleRoleCmd = &cobra.Command{
	Use:   "toggle-role <uid>",
	Short: "Switch a user between user and admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			u, err := b.admin.ToggleRole(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.ID, u.Role)
			return nil
		})
	},
}

func init() {
	usersListCmd.Flags().StringVarP(&userQuery, "query", "q", "", "Match against display name or email")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersToggleRoleCmd)
}
