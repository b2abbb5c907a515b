package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/app"
	"github.com/trebuchet-org/daovote/internal/cli/render"
	"github.com/trebuchet-org/daovote/internal/config"
	"github.com/trebuchet-org/daovote/internal/domain"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// commands that run without a wired app
var skipAppInit = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cleanup func()

	rootCmd := &cobra.Command{
		Use:   "daovote",
		Short: "Token-weighted DAO governance engine",
		Long: `daovote runs a token-weighted governance contract locally.

Depositors lock tokens to gain voting power, the chairman opens proposals
that bundle a call, and accepted proposals execute their call once the
debating period is over and the quorum is met.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipAppInit[cmd.Name()] {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, appCleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			cleanup = appCleanup

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// serve runs until interrupted
			if appInstance.Config.Timeout > 0 && cmd.Name() != "serve" {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				previous := cleanup
				cleanup = func() {
					cancel()
					previous()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("from", "f", "", "Sender name from daovote.toml or a hex address")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "", "State directory (defaults to .daovote)")
	rootCmd.PersistentFlags().String("store", "", "State backend: file, badger or sqlite")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "governance",
		Title: "Governance Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "proposals",
		Title: "Proposal Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	addToGroup(rootCmd, "governance",
		NewInitCmd(),
		NewStatusCmd(),
		NewDepositCmd(),
		NewWithdrawCmd(),
		NewDepositorCmd(),
		NewSetQuorumCmd(),
		NewSetTokenCmd(),
	)
	addToGroup(rootCmd, "proposals",
		NewProposeCmd(),
		NewElectCmd(),
		NewVoteCmd(),
		NewFinishCmd(),
		NewShowCmd(),
		NewListCmd(),
	)
	addToGroup(rootCmd, "management",
		NewTokenCmd(),
		NewServeCmd(),
		NewConfigCmd(),
	)

	rootCmd.AddCommand(NewVersionCmd())

	releaseAfterRun(rootCmd, func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	})

	return rootCmd
}

// releaseAfterRun makes every runnable command call release when it returns,
// including on error
func releaseAfterRun(cmd *cobra.Command, release func()) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			defer release()
			return run(cmd, args)
		}
	}
	for _, child := range cmd.Commands() {
		releaseAfterRun(child, release)
	}
}

func addToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.GroupID = group
		root.AddCommand(c)
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// sender resolves --from into an address
func sender(a *app.App) (common.Address, error) {
	s, err := a.Senders.Default()
	if err != nil {
		return common.Address{}, err
	}
	a.Logger.Debug("resolved sender", "name", s.Name, "address", s.Address.Hex())
	return s.Address, nil
}

// addressArg accepts a configured sender name or a hex address
func addressArg(a *app.App, value string) (common.Address, error) {
	s, err := a.Senders.Resolve(value)
	if err != nil {
		return common.Address{}, err
	}
	return s.Address, nil
}

// output writes result as JSON when --json is set and calls human otherwise
func output(cmd *cobra.Command, a *app.App, result any, human func(io.Writer) error) error {
	if a.Config.JSON {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return human(cmd.OutOrStdout())
}

// now is the wall clock used for relative times in human output
func now() time.Time {
	return time.Now().UTC()
}

// hints maps sentinel errors to a followup suggestion
var hints = []struct {
	err  error
	hint string
}{
	{domain.ErrNotInitialized, "run `daovote init` first"},
	{domain.ErrUnauthorized, "only the chairman can do this; check --from"},
	{domain.ErrNoDeposit, "deposit tokens with `daovote deposit` first"},
	{domain.ErrInsufficientVotingPower, "vote weight cannot exceed your deposit"},
	{domain.ErrDepositLocked, "deposits stay locked until every proposal you voted on has ended"},
	{domain.ErrDebateNotOver, "wait for the debating period to end"},
	{domain.ErrQuorumNotMet, "lower the quorum with `daovote set-quorum` to settle it"},
	{domain.ErrTransferFailed, "check the balance and allowance with `daovote token balance`"},
}

// RenderError prints err with a hint for known governance failures
func RenderError(w io.Writer, err error) {
	fmt.Fprintln(w, render.FormatError(err.Error()))
	for _, h := range hints {
		if errors.Is(err, h.err) {
			fmt.Fprintln(w, render.FormatWarning(h.hint))
			return
		}
	}
}
