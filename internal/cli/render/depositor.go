package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// DepositorRenderer renders deposits and depositor positions
type DepositorRenderer struct {
	out io.Writer
	now time.Time
}

// NewDepositorRenderer creates a new depositor renderer
func NewDepositorRenderer(out io.Writer, now time.Time) *DepositorRenderer {
	return &DepositorRenderer{out: out, now: now}
}

// RenderDeposit renders a deposit
func (r *DepositorRenderer) RenderDeposit(result *usecase.DepositResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deposited %s tokens", result.Deposited)))
	fmt.Fprintf(r.out, "Voting power: %s\n", formatAmount(result.Balance, ""))
	return nil
}

// RenderWithdraw renders a returned deposit
func (r *DepositorRenderer) RenderWithdraw(result *usecase.ReturnDepositResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Returned %s tokens", result.Amount)))
	return nil
}

// RenderDepositor renders a depositor's position and votes
func (r *DepositorRenderer) RenderDepositor(result *usecase.ShowDepositorResult) error {
	headerStyle.Fprintf(r.out, "Depositor %s\n\n", result.Address.Hex())

	unlock := "unlocked"
	if result.Locked {
		unlock = pendingUnlock(result.UnlockTime, r.now)
	}
	fields := [][2]string{
		{"Deposit", formatAmount(result.Deposit, "")},
		{"Unlock time", formatTime(result.UnlockTime)},
		{"Withdrawal", unlock},
	}
	if result.TokenBalance != nil {
		fields = append(fields, [2]string{"Token balance", formatAmount(result.TokenBalance, "")})
	}
	if result.Allowance != nil {
		fields = append(fields, [2]string{"Allowance", formatAmount(result.Allowance, "")})
	}
	writeFields(r.out, fields)

	if len(result.Votes) == 0 {
		return nil
	}
	fmt.Fprintln(r.out)
	t := newTable()
	t.AppendHeader(table.Row{"PROPOSAL", "SIDE", "WEIGHT", "ENDS"})
	for _, v := range result.Votes {
		t.AppendRow(table.Row{
			fmt.Sprintf("#%d", v.ProposalID),
			sideLabel(v.Support),
			v.Weight.String(),
			timestampStyle.Sprint(formatRelative(v.EndTime, r.now)),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func pendingUnlock(unlock, now time.Time) string {
	return againstStyle.Sprintf("locked, unlocks %s", formatRelative(unlock, now))
}
