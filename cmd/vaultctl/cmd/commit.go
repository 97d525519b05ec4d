package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
)

func newCommitCmd(a *app) *cobra.Command {
	var (
		salt  string
		file  string
		check bool
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Compute the commitment hash of the profile draft",
		Long: "Compute the commitment hash of the current profile draft, or of the JSON object in --file. " +
			"With --check, verify the latest recorded profile version against the current draft instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data map[string]any
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &data); err != nil {
					return fmt.Errorf("failed to parse %s: %w", file, err)
				}
			}
			return a.withSession(cmd, func(_ context.Context, s *vaultx.Session) error {
				if check {
					if !s.VerifyCommitment() {
						return errors.New("commitment does not match the current draft")
					}
					fmt.Fprintln(cmd.OutOrStdout(), "commitment ok")
					return nil
				}
				if data == nil {
					data = s.State().DraftAsMap()
				}
				if salt == "" {
					salt = uuid.NewString()
				}
				hash, err := s.CommitmentHash(data, salt)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return printJSON(cmd, map[string]string{"commitmentHash": hash, "salt": salt})
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "salt to hash with (default: a random UUID)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object to hash instead of the stored draft")
	cmd.Flags().BoolVar(&check, "check", false, "verify the latest profile version against the draft")
	return cmd
}
