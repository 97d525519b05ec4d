package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
)

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored record and the device key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset removes all vault data; pass --yes to confirm")
			}
			return a.withSession(cmd, func(ctx context.Context, s *vaultx.Session) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "vault reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
