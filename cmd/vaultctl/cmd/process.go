package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
	"github.com/hengadev/vaultx/internal/services"
)

func newProcessCmd(a *app) *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run document processing for the current step",
		Long: "Run the processing pipeline when the wizard sits on the processing step. " +
			"After navigating back to that step the pipeline does not run again on its own; pass --continue to move on.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *vaultx.Session) error {
				progress := func(i int, stage services.Stage) {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d] %s\n", i+1, stage.Label)
				}
				st, err := s.RunProcessing(ctx, progress)
				if errors.Is(err, vaultx.ErrProcessingSkipped) && resume {
					st, err = s.Continue(ctx)
				}
				if err != nil {
					return err
				}
				return a.printState(cmd, st)
			})
		},
	}
	cmd.Flags().BoolVar(&resume, "continue", false, "continue past a processing step that was re-entered backwards")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run credential verification and compliance checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *vaultx.Session) error {
				st, err := s.Verify(ctx)
				if err != nil {
					return err
				}
				return a.printState(cmd, st)
			})
		},
	}
}

func newMintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mint",
		Short: "Mint the profile token once every compliance gate passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *vaultx.Session) error {
				st, err := s.Mint(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return printJSON(cmd, st.NFTResult)
				}
				return a.printState(cmd, st)
			})
		},
	}
}
