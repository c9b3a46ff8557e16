package commands

import (
	"sikola-tools/cmd/sikola-cli/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks that the configured (or prompted) credentials can log in.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := login(cmd.Context(), globals.Get(cmd.Context()))
		return err
	},
}
