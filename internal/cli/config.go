package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/cli/render"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// NewConfigCmd shows or edits .daovote/config.local.json
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the default sender and state backend",
		Long: `Defaults in .daovote/config.local.json apply when --from or --store
are not given. They sit below flags and DAOVOTE_* env variables and above
daovote.toml.

Without a subcommand, prints the stored defaults and the sender, store and
data directory commands will actually use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ShowConfig.Run(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewConfigRenderer(w).RenderConfig(result)
			})
		},
	}

	cmd.AddCommand(newConfigSetCmd(), newConfigRemoveCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set the default sender (from) or state backend (store)",
		Long: `The sender must be a name from [senders] in daovote.toml or a hex
address. The store must be one of file, badger or sqlite.

Examples:
  daovote config set from alice
  daovote config set store sqlite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewConfigRenderer(w).RenderSet(result)
			})
		},
	}
}

func newConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"unset"},
		Short:   "Clear a default; the file is deleted once nothing is left",
		Long: `Removing from makes --from required for commands that send transactions.
Removing store falls back to [store] in daovote.toml, then to the file store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{Key: args[0]})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewConfigRenderer(w).RenderRemove(result)
			})
		},
	}
}
