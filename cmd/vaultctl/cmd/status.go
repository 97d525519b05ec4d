package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the restored wizard state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(_ context.Context, s *vaultx.Session) error {
				return a.printState(cmd, s.State())
			})
		},
	}
}
