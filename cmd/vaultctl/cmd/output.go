package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
	"github.com/hengadev/vaultx/internal/wizard"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printState(cmd *cobra.Command, st vaultx.State) error {
	if a.jsonOutput {
		return printJSON(cmd, st)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	row := func(k string, v any) { fmt.Fprintf(w, "%s\t%v\n", k, v) }

	row("step", fmt.Sprintf("%s (%d)", st.CurrentStep, int(st.CurrentStep)))
	row("wallet", deref(st.WalletAddress))
	row("jurisdiction", orDash(st.Jurisdiction))
	row("consents", consentSummary(st))
	row("files", len(st.UploadedFiles))
	row("draft", fmt.Sprintf("%s (%d fields)", st.ProfileDraftStatus, len(st.ProfileDraft)))
	row("verification", gateSummary(len(st.VerificationGates), countVerification(st)))
	row("compliance", gateSummary(len(st.ComplianceGates), countCompliance(st)))
	if st.NFTResult != nil {
		row("token", st.NFTResult.TokenID)
	} else {
		row("token", "-")
	}
	row("discord", deref(st.DiscordUsername))
	row("demo", st.DemoMode)
	row("versions", len(st.ProfileVersionHistory))
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func consentSummary(st vaultx.State) string {
	var given []string
	for c, ok := range st.Consents {
		if ok {
			given = append(given, string(c))
		}
	}
	if len(given) == 0 {
		return "-"
	}
	slices.Sort(given)
	return strings.Join(given, ",")
}

func countVerification(st vaultx.State) int {
	n := 0
	for _, g := range st.VerificationGates {
		if g.Status == wizard.VerificationApproved {
			n++
		}
	}
	return n
}

func countCompliance(st vaultx.State) int {
	n := 0
	for _, g := range st.ComplianceGates {
		if g.Status == wizard.CompliancePass {
			n++
		}
	}
	return n
}

func gateSummary(total, ok int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", ok, total)
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
