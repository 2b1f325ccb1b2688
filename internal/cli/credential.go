package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongminglow/levelup-be/internal/auth"
	"github.com/hongminglow/levelup-be/internal/config"
	"github.com/hongminglow/levelup-be/internal/models"
)

var (
	credentialEmail string
	credentialName  string
	credentialPhoto string
	credentialTTL   time.Duration
)

// credentialCmd mints an identity assertion for local testing, standing in
// for the identity provider's sign-in popup.
var credentialCmd = &cobra.Command{
	Use:   "credential <uid>",
	Short: "Mint a sign-in credential for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		id := models.Identity{
			UID:         strings.TrimSpace(args[0]),
			Email:       credentialEmail,
			DisplayName: credentialName,
			PhotoURL:    credentialPhoto,
		}
		token, err := auth.SignAssertion(cfg.IdentitySecret, cfg.IdentityIssuer, id, credentialTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	credentialCmd.Flags().StringVar(&credentialEmail, "email", "", "Email claim")
	credentialCmd.Flags().StringVar(&credentialName, "name", "", "Display name claim")
	credentialCmd.Flags().StringVar(&credentialPhoto, "photo", "", "Photo URL claim")
	credentialCmd.Flags().DurationVar(&credentialTTL, "ttl", 5*time.Minute, "Credential lifetime")
}
