package main

import (
	"fmt"

	"github.com/spf13/cobra"

	jwtsvc "imagedrop/internal/pkg/jwt"
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Mint an API token for a user",
	Example: `  imagedrop token --user-id 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")
		if userID <= 0 {
			return fmt.Errorf("--user-id must be positive")
		}

		token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(userID)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64("user-id", 0, "user the token is issued for")
}
