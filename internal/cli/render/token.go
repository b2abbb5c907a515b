package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/daovote/internal/usecase"
)

// TokenRenderer renders sandbox token output
type TokenRenderer struct {
	out io.Writer
}

// NewTokenRenderer creates a new token renderer
func NewTokenRenderer(out io.Writer) *TokenRenderer {
	return &TokenRenderer{out: out}
}

// RenderBalance renders an account on a token
func (r *TokenRenderer) RenderBalance(result *usecase.TokenBalanceResult) error {
	symbol := result.Symbol
	writeFields(r.out, [][2]string{
		{"Token", fmt.Sprintf("%s %s", formatAddress(result.Token), timestampStyle.Sprint(symbol))},
		{"Owner", formatAddress(result.Owner)},
		{"Balance", formatAmount(result.Balance, symbol)},
		{"Allowance (governance)", formatAmount(result.Allowance, symbol)},
		{"Total supply", formatAmount(result.TotalSupply, symbol)},
	})
	return nil
}

// RenderAction renders a transfer, approval or mint followed by the
// recipient's balance
func (r *TokenRenderer) RenderAction(params usecase.TokenActionParams, result *usecase.TokenBalanceResult) error {
	var msg string
	switch params.Operation {
	case usecase.TokenOpTransfer:
		msg = fmt.Sprintf("Transferred %s %s to %s", params.Amount, result.Symbol, params.To.Hex())
	case usecase.TokenOpApprove:
		msg = fmt.Sprintf("Approved %s to spend %s %s", params.To.Hex(), params.Amount, result.Symbol)
	case usecase.TokenOpMint:
		msg = fmt.Sprintf("Minted %s %s to %s", params.Amount, result.Symbol, params.To.Hex())
	}
	fmt.Fprintln(r.out, FormatSuccess(msg))
	fmt.Fprintf(r.out, "Balance of %s: %s\n", params.To.Hex(), formatAmount(result.Balance, result.Symbol))
	return nil
}
