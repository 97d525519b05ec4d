package vaultx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hengadev/errsx"

	"github.com/hengadev/vaultx/internal/autosave"
	"github.com/hengadev/vaultx/internal/commitment"
	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/health"
	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/vault"
	"github.com/hengadev/vaultx/internal/wizard"
)

// Session is one user's onboarding flow: the wizard state, its encrypted persistence
// and the collaborators each step talks to.
//
// Dispatch applies actions synchronously and schedules a debounced save. Saving stays
// off until Hydrate has run so that the initial empty state never overwrites a stored
// session. A Session is safe for concurrent use; dispatches are serialised.
type Session struct {
	cfg      Config
	logger   *slog.Logger
	metrics  monitoring.MetricsCollector
	registry policy.Registry
	mode     policy.StrictnessMode
	hasher   *commitment.Hasher
	machine  *wizard.Machine
	demoMode func() bool
	services services.Set

	keys       *vault.DeviceKeys
	store      *vault.Store[wizard.State]
	onboarding *OnboardingVault
	autosave   *autosave.Scheduler[wizard.State]
	backends   *backends

	mu       sync.Mutex
	state    wizard.State
	hydrated bool
}

// New validates cfg, checks the field registry against the public-projection invariant
// and opens the configured backends. It refuses to build a session whose registry would
// publish a restricted field.
func New(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	logger := s.logger
	if logger == nil {
		logger = monitoring.NewLogger(cfg.LoggerConfig("session"))
	}
	metrics := s.metrics
	if metrics == nil {
		metrics = monitoring.NoOpMetricsCollector{}
	}

	registry := policy.DefaultRegistry()
	if s.registry != nil {
		registry = *s.registry
	}
	if err := policy.AssertInvariant(registry); err != nil {
		logger.Error("field registry violates the public projection invariant", "error", err)
		return nil, fmt.Errorf("refusing to start: %w", err)
	}

	demoMode := s.demoMode
	if demoMode == nil {
		demoMode = func() bool { return cfg.DemoMode }
	}
	clock := s.clock
	if clock == nil {
		clock = time.Now
	}

	set := services.Set{}
	if s.services != nil {
		set = *s.services
	} else {
		var err error
		if set, err = services.NewMockSet(1); err != nil {
			return nil, fmt.Errorf("failed to build services: %w", err)
		}
	}

	b, err := openBackends(ctx, cfg, s, logger, metrics)
	if err != nil {
		return nil, err
	}

	keyOpts := []vault.KeyOption{vault.WithKeyLogger(logger), vault.WithKeyMetrics(metrics)}
	if cfg.Passphrase != "" {
		keyOpts = append(keyOpts, vault.WithPassphrase(cfg.Passphrase, crypto.DefaultArgon2Params()))
	}
	keys := vault.NewDeviceKeys(b.mirror, keyOpts...)

	mirror := vault.Backend{Name: BackendMirror, Adapter: vault.NewMirror(b.mirror)}
	storeOpts := []vault.StoreOption{
		vault.WithDurable(b.durables...),
		vault.WithDurableTimeout(cfg.DurableTimeout),
		vault.WithLogger(logger),
		vault.WithMetrics(metrics),
	}

	hasherOpts := []commitment.Option{commitment.WithClock(clock)}
	if s.salt != nil {
		hasherOpts = append(hasherOpts, commitment.WithSaltFunc(s.salt))
	}
	hasher := commitment.NewHasher(registry, hasherOpts...)

	session := &Session{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
		mode:     policy.StrictnessModeFor(cfg.Environment),
		hasher:   hasher,
		machine:  wizard.NewMachine(hasher, demoMode, wizard.WithLogger(logger)),
		demoMode: demoMode,
		services: set,
		keys:     keys,
		store:    vault.NewStore[wizard.State](vault.WizardRecord, keys, mirror, storeOpts...),
		backends: b,
		state:    wizard.InitialState(),
	}
	session.onboarding = newOnboardingVault(
		vault.NewStore[OnboardingState](vault.OnboardingRecord, keys, mirror, storeOpts...), hasher)
	session.autosave = autosave.New[wizard.State](session.store.Save,
		autosave.WithDelay(cfg.AutosaveDelay),
		autosave.WithLogger(logger),
		autosave.WithMetrics(metrics),
	)

	logger.Info("session ready",
		"environment", cfg.Environment,
		"strictness", session.mode.String(),
		"durable_backends", len(b.durables),
	)
	return session, nil
}

// Hydrate loads the stored session, if any, and enables autosave. A missing or
// unreadable session starts over at the landing step without an error.
func (s *Session) Hydrate(ctx context.Context) (wizard.State, error) {
	saved, err := s.store.Load(ctx)
	if err != nil {
		return wizard.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if saved == nil {
		s.state = wizard.InitialState()
		s.state.DemoMode = s.demoMode()
		s.logger.Info("no stored session, starting fresh")
	} else {
		s.state = s.machine.Reduce(s.state, wizard.RestoreState{Saved: *saved})
		if err := commitment.ValidateChain(s.state.ProfileVersionHistory); err != nil {
			s.logger.Warn("restored profile version history is inconsistent", "error", err)
		}
		s.logger.Info("session restored", "step", s.state.CurrentStep.String())
	}
	s.hydrated = true
	return s.state, nil
}

// Hydrated reports whether Hydrate has completed.
func (s *Session) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// State returns the current wizard state.
func (s *Session) State() wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state. Once hydrated, the new state is
// scheduled for saving after the autosave delay.
func (s *Session) Dispatch(a wizard.Action) wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(a)
}

func (s *Session) dispatchLocked(a wizard.Action) wizard.State {
	return s.applyLocked(a.Type(), s.machine.Reduce(s.state, a))
}

func (s *Session) applyLocked(action wizard.ActionType, next wizard.State) wizard.State {
	from := s.state.CurrentStep
	s.state = next
	s.logger.Debug("action applied", "action", string(action), "from", from.String(), "to", s.state.CurrentStep.String())
	if s.hydrated {
		s.autosave.Schedule(s.state, 0)
	}
	return s.state
}

// Confirm applies ConfirmProfile and reports a versioning failure, which Dispatch can
// only log. On error the state is unchanged and nothing is scheduled.
func (s *Session) Confirm() (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.Confirm(s.state)
	if err != nil {
		s.logger.Error("profile confirmation failed", "error", err)
		return s.state, err
	}
	return s.applyLocked(wizard.ActionConfirmProfile, next), nil
}

// Flush writes any pending autosave immediately. Call it before the process exits.
func (s *Session) Flush(ctx context.Context) error {
	return s.autosave.FlushNow(ctx)
}

// Reset cancels pending saves, waits for a save already running, deletes both records
// from every backend and forgets the device key. The session starts over at the landing
// step.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave.Cancel()
	s.autosave.Wait()
	errs := errsx.Map{}
	if err := s.onboarding.store.Reset(ctx); err != nil {
		errs.Set(vault.OnboardingRecord.Name, err)
	}
	if err := s.store.Reset(ctx); err != nil {
		errs.Set(vault.WizardRecord.Name, err)
	}
	s.state = wizard.InitialState()
	s.state.DemoMode = s.demoMode()
	s.logger.Info("session reset")
	return errs.AsError()
}

// Close flushes pending writes and closes the backends the session opened.
func (s *Session) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	s.autosave.Wait()
	return errors.Join(flushErr, s.backends.Close())
}

// RunProcessing runs the processing pipeline when the state allows it to start on its
// own: on the Processing step, not re-entered backwards. On success the extraction is
// applied and the wizard advances to review. It returns ErrProcessingSkipped otherwise.
func (s *Session) RunProcessing(ctx context.Context, progress services.ProgressFunc) (wizard.State, error) {
	s.mu.Lock()
	current := s.state
	s.mu.Unlock()

	if !wizard.ShouldAutoRunProcessing(current) {
		return current, ErrProcessingSkipped
	}
	if s.services.Pipeline == nil {
		return current, fmt.Errorf("%w: no processing pipeline", ErrInvalidConfiguration)
	}

	result, err := s.services.Pipeline.Run(ctx, services.ExtractionRequest{
		Files:        current.UploadedFiles,
		Jurisdiction: current.Jurisdiction,
	}, progress)
	if err != nil {
		return current, fmt.Errorf("processing failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !wizard.ShouldAutoRunProcessing(s.state) {
		// the user navigated away while the pipeline ran
		return s.state, ErrProcessingSkipped
	}
	s.dispatchLocked(wizard.SetExtraction{Result: result})
	return s.dispatchLocked(wizard.NextStep{}), nil
}

// Continue is the manual path out of Processing after backward navigation. It applies
// the existing extraction result, or extracts anew when there is none, and advances.
func (s *Session) Continue(ctx context.Context) (wizard.State, error) {
	s.mu.Lock()
	current := s.state
	s.mu.Unlock()

	if current.CurrentStep != wizard.Processing {
		return current, fmt.Errorf("continue is only possible from %s, current step is %s",
			wizard.Processing, current.CurrentStep)
	}

	var result wizard.ExtractionResult
	if current.ExtractionResult != nil {
		result = *current.ExtractionResult
	} else {
		if s.services.Extractor == nil {
			return current, fmt.Errorf("%w: no extractor", ErrInvalidConfiguration)
		}
		var err error
		result, err = s.services.Extractor.Extract(ctx, services.ExtractionRequest{
			Files:        current.UploadedFiles,
			Jurisdiction: current.Jurisdiction,
		})
		if err != nil {
			return current, fmt.Errorf("extraction failed: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(wizard.SetExtraction{Result: result})
	return s.dispatchLocked(wizard.NextStep{}), nil
}

// Verify runs credential verification and compliance evaluation and records both
// gate lists.
func (s *Session) Verify(ctx context.Context) (wizard.State, error) {
	current := s.State()
	if s.services.Verifier == nil || s.services.Compliance == nil {
		return current, fmt.Errorf("%w: verification services missing", ErrInvalidConfiguration)
	}

	s.Dispatch(wizard.SetVerification{Gates: services.PendingVerificationGates()})
	gates, err := s.services.Verifier.Verify(ctx, current)
	if err != nil {
		return s.State(), fmt.Errorf("verification failed: %w", err)
	}
	next := s.Dispatch(wizard.SetVerification{Gates: gates})

	compliance, err := s.services.Compliance.Evaluate(ctx, next)
	if err != nil {
		return next, fmt.Errorf("compliance evaluation failed: %w", err)
	}
	return s.Dispatch(wizard.SetCompliance{Gates: compliance}), nil
}

// Mint mints the profile token once every compliance gate passed.
func (s *Session) Mint(ctx context.Context) (wizard.State, error) {
	current := s.State()
	if s.services.Minter == nil {
		return current, fmt.Errorf("%w: no minter", ErrInvalidConfiguration)
	}
	if current.NFTResult != nil {
		return current, nil
	}
	if !services.AllPass(current.ComplianceGates) {
		return current, errors.New("compliance gates have not all passed")
	}
	if current.WalletAddress == nil {
		return current, ErrWalletRequired
	}

	refs := make([]string, 0, len(current.ProfileVersionHistory))
	for _, v := range current.ProfileVersionHistory {
		refs = append(refs, v.CommitmentHash)
	}
	result, err := s.services.Minter.Mint(ctx, services.MintRequest{
		OwnerAddress:   *current.WalletAddress,
		SkillTags:      services.SplitSkillTags(current.ProfileDraft["extractedSkillTags"]),
		CommitmentRefs: refs,
	})
	if err != nil {
		return current, fmt.Errorf("mint failed: %w", err)
	}
	return s.Dispatch(wizard.SetNFT{Result: result}), nil
}

// Classify returns the classification of field under the session's strictness mode.
func (s *Session) Classify(field string) (policy.Classification, error) {
	return s.registry.Classify(field, s.mode)
}

// PublicProfile returns the part of the profile draft that may be disclosed. Every
// draft key is classified first, so in strict mode an unlisted key is an error.
func (s *Session) PublicProfile() (map[string]any, error) {
	draft := s.State().DraftAsMap()
	for field := range draft {
		if _, err := s.Classify(field); err != nil {
			return nil, err
		}
	}
	return s.registry.PickPublicFields(draft), nil
}

// VerifyCommitment checks the latest profile version against the current draft and the
// salt kept in the private state.
func (s *Session) VerifyCommitment() bool {
	st := s.State()
	n := len(st.ProfileVersionHistory)
	if n == 0 || st.LastCommitmentSalt == "" {
		return false
	}
	return s.hasher.Verify(st.DraftAsMap(), st.LastCommitmentSalt, st.ProfileVersionHistory[n-1].CommitmentHash)
}

// CommitmentHash hashes data with salt using the session's registry. Private and
// restricted keys are part of the hashed content but never of the output.
func (s *Session) CommitmentHash(data map[string]any, salt string) (string, error) {
	return s.hasher.CommitmentHash(data, salt)
}

// Onboarding returns the vault for the six-step onboarding record. It shares the
// session's device key and backends.
func (s *Session) Onboarding() *OnboardingVault { return s.onboarding }

// Registry returns the field registry in use.
func (s *Session) Registry() policy.Registry { return s.registry }

// StrictnessMode returns the classification mode derived from the environment.
func (s *Session) StrictnessMode() policy.StrictnessMode { return s.mode }

// Health probes the mirror and every durable backend. A failing durable backend only
// degrades the report; a failing mirror makes it unhealthy.
func (s *Session) Health(ctx context.Context) health.Report {
	return s.backends.checker().Run(ctx)
}

// Config returns the validated configuration.
func (s *Session) Config() Config { return s.cfg }
