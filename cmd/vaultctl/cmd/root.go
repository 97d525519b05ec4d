package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hengadev/vaultx"
)

// closeTimeout bounds the final flush after a command finished or was interrupted.
const closeTimeout = 10 * time.Second

// app carries the flags shared by every subcommand.
type app struct {
	configFile string
	envFile    string
	dataDir    string
	memory     bool
	jsonOutput bool

	opts []vaultx.Option
}

// NewRootCmd builds the command tree. The options are passed to vaultx.New for every
// command that opens a session.
func NewRootCmd(opts ...vaultx.Option) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Inspect and drive an encrypted onboarding vault",
		Long:          "vaultctl opens the local onboarding vault, applies one action and flushes the result to every configured backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file (default: VAULTX_* environment)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&a.dataDir, "data-dir", "", "override the data directory")
	flags.BoolVar(&a.memory, "memory", false, "keep everything in memory for this run")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newStatusCmd(a),
		newDispatchCmd(a),
		newProcessCmd(a),
		newVerifyCmd(a),
		newMintCmd(a),
		newResetCmd(a),
		newPolicyCmd(a),
		newCommitCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the running command; pending state
// is still flushed before the process exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) loadConfig() (vaultx.Config, error) {
	var (
		cfg vaultx.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = vaultx.LoadConfigFile(a.configFile)
	} else {
		cfg, err = vaultx.LoadConfigFromEnvironment(a.envFile)
	}
	if err != nil {
		return vaultx.Config{}, err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.memory {
		cfg.Memory = true
	}
	return cfg, nil
}

// withSession opens and hydrates the vault, runs fn and closes the session, which
// flushes any pending write.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *vaultx.Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	s, err := vaultx.New(ctx, cfg, a.opts...)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		err = errors.Join(err, s.Close(closeCtx))
	}()

	if _, err := s.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate vault: %w", err)
	}
	return fn(ctx, s)
}
