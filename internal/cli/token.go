package cli

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/cli/render"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// NewTokenCmd creates the token command group for sandbox tokens
func NewTokenCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and fund sandbox tokens",
		Long: `Sandbox ERC-20 helpers used to fund depositors.

Commands act on the governance deposit token unless --token is given.

Examples:
  daovote token mint 0xalice... 1000 --from chairman
  daovote token transfer bob 250 --from alice
  daovote token balance alice`,
	}

	cmd.PersistentFlags().StringVar(&token, "token", "", "Token address (defaults to the deposit token)")

	tokenAddr := func() (*common.Address, error) {
		if token == "" {
			return nil, nil
		}
		addr, err := usecase.ParseAddress(token)
		if err != nil {
			return nil, err
		}
		return &addr, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance [owner]",
		Short: "Show an account's balance and allowance (defaults to --from)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			owner, err := addressOrSender(app, args)
			if err != nil {
				return err
			}
			addr, err := tokenAddr()
			if err != nil {
				return err
			}
			result, err := app.ManageToken.Balance(cmd.Context(), usecase.TokenBalanceParams{Owner: owner, Token: addr})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewTokenRenderer(w).RenderBalance(result)
			})
		},
	})

	for _, op := range []struct {
		operation usecase.TokenOperation
		use       string
		short     string
	}{
		{usecase.TokenOpTransfer, "transfer <to> <amount>", "Transfer tokens from --from"},
		{usecase.TokenOpApprove, "approve <spender> <amount>", "Set --from's allowance for a spender; use the governance address to allow deposits"},
		{usecase.TokenOpMint, "mint <to> <amount>", "Mint tokens (token owner only)"},
	} {
		operation := op.operation
		cmd.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := getApp(cmd)
				if err != nil {
					return err
				}
				from, err := sender(app)
				if err != nil {
					return err
				}
				to, err := addressArg(app, args[0])
				if err != nil {
					return err
				}
				amount, err := usecase.ParseAmount(args[1])
				if err != nil {
					return err
				}
				addr, err := tokenAddr()
				if err != nil {
					return err
				}

				params := usecase.TokenActionParams{
					Operation: operation,
					Sender:    from,
					Token:     addr,
					To:        to,
					Amount:    amount,
				}
				result, err := app.ManageToken.Run(cmd.Context(), params)
				if err != nil {
					return err
				}
				return output(cmd, app, result, func(w io.Writer) error {
					return render.NewTokenRenderer(w).RenderAction(params, result)
				})
			},
		})
	}

	return cmd
}
