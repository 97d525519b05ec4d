package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/wizard"
)

type actionSpec struct {
	usage   string
	minArgs int
	maxArgs int
	build   func(args []string) (wizard.Action, error)
}

var actions = map[string]actionSpec{
	"next": {usage: "next", build: func([]string) (wizard.Action, error) { return wizard.NextStep{}, nil }},
	"prev": {usage: "prev", build: func([]string) (wizard.Action, error) { return wizard.PrevStep{}, nil }},
	"goto": {usage: "goto <step>", minArgs: 1, maxArgs: 1, build: func(args []string) (wizard.Action, error) {
		step, err := wizard.ParseStep(args[0])
		if err != nil {
			return nil, err
		}
		return wizard.GoToStep{Step: step}, nil
	}},
	"wallet": {usage: "wallet [address] [name]", maxArgs: 2, build: func(args []string) (wizard.Action, error) {
		a := wizard.SetWallet{Address: services.MockWalletAddress, Name: "Nami"}
		if len(args) > 0 {
			a.Address = args[0]
		}
		if len(args) > 1 {
			a.Name = args[1]
		}
		return a, nil
	}},
	"disconnect": {usage: "disconnect", build: func([]string) (wizard.Action, error) { return wizard.DisconnectWallet{}, nil }},
	"jurisdiction": {usage: "jurisdiction <code>", minArgs: 1, maxArgs: 1, build: func(args []string) (wizard.Action, error) {
		code := strings.ToUpper(args[0])
		if !services.IsSupportedJurisdiction(code) {
			return nil, fmt.Errorf("unsupported jurisdiction %q (supported: %s)", args[0], strings.Join(services.JurisdictionCodes(), ","))
		}
		return wizard.SetJurisdiction{Jurisdiction: code}, nil
	}},
	"consent": {usage: "consent <type>", minArgs: 1, maxArgs: 1, build: func(args []string) (wizard.Action, error) {
		c, err := parseConsent(args[0])
		if err != nil {
			return nil, err
		}
		return wizard.ToggleConsent{Consent: c}, nil
	}},
	"upload": {usage: "upload <path> [type]", minArgs: 1, maxArgs: 2, build: func(args []string) (wizard.Action, error) {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", args[0])
		}
		kind := wizard.CredentialResume
		if len(args) > 1 {
			if kind, err = parseCredential(args[1]); err != nil {
				return nil, err
			}
		}
		return wizard.UploadFile{File: wizard.UploadedFile{
			ID:         uuid.NewString(),
			Name:       filepath.Base(args[0]),
			Size:       info.Size(),
			Type:       kind,
			UploadedAt: time.Now().UTC(),
		}}, nil
	}},
	"remove": {usage: "remove <file-id>", minArgs: 1, maxArgs: 1, build: func(args []string) (wizard.Action, error) {
		return wizard.RemoveFile{FileID: args[0]}, nil
	}},
	"draft": {usage: "draft <key> <value>", minArgs: 2, maxArgs: 2, build: func(args []string) (wizard.Action, error) {
		return wizard.UpdateDraftField{Key: args[0], Value: args[1]}, nil
	}},
	"confirm": {usage: "confirm", build: func([]string) (wizard.Action, error) { return wizard.ConfirmProfile{}, nil }},
	"discord": {usage: "discord <username>", minArgs: 1, maxArgs: 1, build: func(args []string) (wizard.Action, error) {
		return wizard.LinkDiscord{Username: args[0]}, nil
	}},
	"demo": {usage: "demo", build: func([]string) (wizard.Action, error) { return wizard.EnableDemoMode{}, nil }},
}

func actionUsages() []string {
	usages := make([]string, 0, len(actions))
	for _, spec := range actions {
		usages = append(usages, "  "+spec.usage)
	}
	slices.Sort(usages)
	return usages
}

func parseAction(args []string) (wizard.Action, error) {
	spec, ok := actions[strings.ToLower(args[0])]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", args[0])
	}
	rest := args[1:]
	if len(rest) < spec.minArgs || len(rest) > spec.maxArgs {
		return nil, fmt.Errorf("usage: dispatch %s", spec.usage)
	}
	return spec.build(rest)
}

func parseConsent(s string) (wizard.ConsentType, error) {
	norm := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for _, c := range wizard.ConsentTypes() {
		if string(c) == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown consent %q", s)
}

func parseCredential(s string) (wizard.CredentialType, error) {
	norm := wizard.CredentialType(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	switch norm {
	case wizard.CredentialResume, wizard.CredentialCertification, wizard.CredentialRightToWork,
		wizard.CredentialTax, wizard.CredentialOther:
		return norm, nil
	}
	return "", fmt.Errorf("unknown credential type %q", s)
}

func newDispatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <action> [args...]",
		Short: "Apply one wizard action and save the result",
		Long:  "Apply one wizard action and save the result.\n\nActions:\n" + strings.Join(actionUsages(), "\n"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(args)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(_ context.Context, s *vaultx.Session) error {
				if _, ok := action.(wizard.ConfirmProfile); ok {
					st, err := s.Confirm()
					if err != nil {
						return err
					}
					return a.printState(cmd, st)
				}
				return a.printState(cmd, s.Dispatch(action))
			})
		},
	}
}
