package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is the ordinal position of the wizard.
type Step int

const (
	Landing Step = iota
	WalletConnect
	UploadDocs
	Processing
	ReviewConfirm
	VerificationMint
	DiscordSuccess
)

var stepNames = [...]string{
	Landing:          "LANDING",
	WalletConnect:    "WALLET_CONNECT",
	UploadDocs:       "UPLOAD_DOCS",
	Processing:       "PROCESSING",
	ReviewConfirm:    "REVIEW_CONFIRM",
	VerificationMint: "VERIFICATION_MINT",
	DiscordSuccess:   "DISCORD_SUCCESS",
}

func (s Step) String() string {
	if s.IsValid() {
		return stepNames[s]
	}
	return "Step(" + strconv.Itoa(int(s)) + ")"
}

// IsValid reports whether s is between Landing and DiscordSuccess.
func (s Step) IsValid() bool {
	return s >= Landing && s <= DiscordSuccess
}

// ParseStep accepts a step name (case-insensitive) or its ordinal.
func ParseStep(s string) (Step, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if step := Step(n); step.IsValid() {
			return step, nil
		}
		return 0, fmt.Errorf("step %d out of range", n)
	}
	for i, name := range stepNames {
		if strings.EqualFold(name, s) {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", s)
}

func clampStep(s Step) Step {
	return min(max(s, Landing), DiscordSuccess)
}
