package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
	"github.com/hengadev/vaultx/internal/policy"
)

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the field privacy registry",
	}
	cmd.AddCommand(newPolicyListCmd(a), newPolicyCheckCmd(a), newPolicyClassifyCmd(a))
	return cmd
}

// policyContext resolves the registry and the strictness mode without opening any
// storage backend.
func (a *app) policyContext() (policy.Registry, policy.StrictnessMode, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return policy.Registry{}, 0, err
	}
	return vaultx.DefaultRegistry(), policy.StrictnessModeFor(cfg.Environment), nil
}

func newPolicyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered field with its classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, mode, err := a.policyContext()
			if err != nil {
				return err
			}
			if a.jsonOutput {
				out := make(map[string]policy.Classification, len(reg.Fields()))
				for _, f := range reg.Fields() {
					out[f], _ = reg.Lookup(f)
				}
				return printJSON(cmd, map[string]any{"mode": mode.String(), "fields": out})
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "mode\t%s\n", mode)
			for _, f := range reg.Fields() {
				c, _ := reg.Lookup(f)
				fmt.Fprintf(w, "%s\t%s\n", f, c)
			}
			return w.Flush()
		},
	}
}

func newPolicyCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that no restricted field can ever be disclosed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := a.policyContext()
			if err != nil {
				return err
			}
			if err := policy.AssertInvariant(reg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "policy ok")
			return nil
		},
	}
}

func newPolicyClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <field>...",
		Short: "Classify fields under the configured strictness mode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, mode, err := a.policyContext()
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(args))
			for _, field := range args {
				c, err := reg.Classify(field, mode)
				if err != nil {
					return err
				}
				lines = append(lines, fmt.Sprintf("%s\t%s", field, c))
			}
			printLines(cmd.OutOrStdout(), lines)
			return nil
		},
	}
}
