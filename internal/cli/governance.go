package cli

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/app"
	"github.com/trebuchet-org/daovote/internal/cli/render"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var (
		chairman    string
		token       string
		governance  string
		quorum      string
		duration    string
		tokenName   string
		tokenSymbol string
		tokenSupply string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Deploy a governance instance",
		Long: `Deploy the governance contract.

Without --token a sandbox ERC-20 is deployed alongside it and --supply is
minted to the chairman. Flags fall back to the [governance] table of
daovote.toml.

Examples:
  daovote init --from chairman --quorum 1000 --duration 3d
  daovote init --chairman 0xabc... --token 0xdef... --quorum 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			defaults := app.Config.Governance

			params := usecase.InitGovernanceParams{
				TokenName:   firstNonEmpty(tokenName, defaults.TokenName),
				TokenSymbol: firstNonEmpty(tokenSymbol, defaults.TokenSymbol),
			}

			if c := firstNonEmpty(chairman, defaults.Chairman); c != "" {
				params.Chairman, err = addressArg(app, c)
			} else {
				params.Chairman, err = sender(app)
			}
			if err != nil {
				return err
			}

			if t := firstNonEmpty(token, defaults.Token); t != "" {
				addr, err := usecase.ParseAddress(t)
				if err != nil {
					return err
				}
				params.TokenAddress = &addr
			}
			if governance != "" {
				addr, err := usecase.ParseAddress(governance)
				if err != nil {
					return err
				}
				params.GovernanceAddress = &addr
			}

			if params.MinimumQuorum, err = optionalAmount(firstNonEmpty(quorum, defaults.MinimumQuorum)); err != nil {
				return err
			}
			if params.TokenSupply, err = optionalAmount(firstNonEmpty(tokenSupply, defaults.TokenSupply)); err != nil {
				return err
			}
			if params.MinimumDuration, err = usecase.ParseDuration(firstNonEmpty(duration, defaults.MinimumDuration)); err != nil {
				return err
			}

			result, err := app.InitGovernance.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewGovernanceRenderer(w).RenderInit(result)
			})
		},
	}

	cmd.Flags().StringVar(&chairman, "chairman", "", "Chairman sender name or address (defaults to --from)")
	cmd.Flags().StringVar(&token, "token", "", "Existing deposit token address")
	cmd.Flags().StringVar(&governance, "address", "", "Governance contract address (defaults to the CREATE address)")
	cmd.Flags().StringVar(&quorum, "quorum", "", "Minimum combined turnout to settle a proposal")
	cmd.Flags().StringVar(&duration, "duration", "", "Minimum debating period (seconds, 3d or 72h)")
	cmd.Flags().StringVar(&tokenName, "token-name", "", "Sandbox token name")
	cmd.Flags().StringVar(&tokenSymbol, "token-symbol", "", "Sandbox token symbol")
	cmd.Flags().StringVar(&tokenSupply, "supply", "", "Sandbox token supply minted to the chairman")

	return cmd
}

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the governance overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			status, err := app.ShowGovernance.Run(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, app, status, func(w io.Writer) error {
				return render.NewGovernanceRenderer(w).RenderStatus(status)
			})
		},
	}
}

// NewDepositCmd creates the deposit command
func NewDepositCmd() *cobra.Command {
	var approve bool

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Lock tokens to gain voting power",
		Long: `Transfer tokens from the sender into the governance contract.

The governance contract needs an allowance first; pass --approve to grant
exactly the deposited amount before depositing.

Examples:
  daovote deposit 1000 --from alice --approve`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			amount, err := usecase.ParseAmount(args[0])
			if err != nil {
				return err
			}

			result, err := app.Deposit.Run(cmd.Context(), usecase.DepositParams{
				Sender:  from,
				Amount:  amount,
				Approve: approve,
			})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewDepositorRenderer(w, now()).RenderDeposit(result)
			})
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the governance contract for the amount first")
	return cmd
}

// NewWithdrawCmd creates the withdraw command
func NewWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "withdraw",
		Aliases: []string{"return-deposit"},
		Short:   "Return the sender's whole deposit",
		Long: `Return the sender's whole deposit once every proposal the sender
voted on has ended.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			result, err := app.ReturnDeposit.Run(cmd.Context(), usecase.ReturnDepositParams{Sender: from})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewDepositorRenderer(w, now()).RenderWithdraw(result)
			})
		},
	}
}

// NewDepositorCmd creates the depositor command
func NewDepositorCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "depositor [address]",
		Aliases: []string{"voter"},
		Short:   "Show a depositor's deposit, lock and votes",
		Long: `Show a depositor's deposit, unlock time and votes.
Defaults to the --from sender.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := addressOrSender(app, args)
			if err != nil {
				return err
			}
			result, err := app.ShowDepositor.Run(cmd.Context(), usecase.ShowDepositorParams{Address: addr})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewDepositorRenderer(w, now()).RenderDepositor(result)
			})
		},
	}
}

// NewSetQuorumCmd creates the set-quorum command
func NewSetQuorumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-quorum <amount>",
		Short: "Change the minimum quorum (chairman only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			quorum, err := usecase.ParseAmount(args[0])
			if err != nil {
				return err
			}
			if err := app.SetMinimumQuorum.Run(cmd.Context(), usecase.SetMinimumQuorumParams{
				Sender: from,
				Quorum: quorum,
			}); err != nil {
				return err
			}
			return output(cmd, app, map[string]*big.Int{"minimumQuorum": quorum}, func(w io.Writer) error {
				return render.NewGovernanceRenderer(w).RenderQuorumSet(quorum)
			})
		},
	}
}

// NewSetTokenCmd creates the set-token command
func NewSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <address>",
		Short: "Point deposits at another token (chairman only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			token, err := usecase.ParseAddress(args[0])
			if err != nil {
				return err
			}
			if err := app.SetTokenAddress.Run(cmd.Context(), usecase.SetTokenAddressParams{
				Sender: from,
				Token:  token,
			}); err != nil {
				return err
			}
			return output(cmd, app, map[string]common.Address{"tokenAddress": token}, func(w io.Writer) error {
				return render.NewGovernanceRenderer(w).RenderTokenSet(token)
			})
		},
	}
}

func addressOrSender(a *app.App, args []string) (common.Address, error) {
	if len(args) > 0 {
		return addressArg(a, args[0])
	}
	return sender(a)
}

func optionalAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	amount, err := usecase.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return amount, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
