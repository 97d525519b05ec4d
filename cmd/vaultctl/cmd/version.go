package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), vaultx.VersionInfo())
		},
	}
}
