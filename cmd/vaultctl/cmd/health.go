package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
	"github.com/hengadev/vaultx/internal/health"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the mirror and every durable backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *vaultx.Session) error {
				report := s.Health(ctx)
				if a.jsonOutput {
					if err := printJSON(cmd, report); err != nil {
						return err
					}
				} else {
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintf(w, "overall\t%s\n", report.Status)
					for _, r := range report.Results {
						fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.Error)
					}
					if err := w.Flush(); err != nil {
						return err
					}
				}
				if report.Status == health.StatusUnhealthy {
					return fmt.Errorf("vault is unhealthy")
				}
				return nil
			})
		},
	}
}
