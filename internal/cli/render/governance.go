package render

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// GovernanceRenderer renders governance-level output
type GovernanceRenderer struct {
	out io.Writer
}

// NewGovernanceRenderer creates a new governance renderer
func NewGovernanceRenderer(out io.Writer) *GovernanceRenderer {
	return &GovernanceRenderer{out: out}
}

// RenderInit renders a freshly deployed governance instance
func (r *GovernanceRenderer) RenderInit(result *usecase.InitGovernanceResult) error {
	fmt.Fprintln(r.out, FormatSuccess("Governance deployed"))
	fmt.Fprintln(r.out)

	token := formatAddress(result.TokenAddress)
	if result.TokenDeployed {
		token += timestampStyle.Sprint(" (sandbox token)")
	}
	writeFields(r.out, [][2]string{
		{"Governance", formatAddress(result.GovernanceAddress)},
		{"Token", token},
		{"Chairman", formatAddress(result.Chairman)},
		{"Minimum quorum", formatAmount(result.MinimumQuorum, "")},
		{"Minimum duration", humanDuration(result.MinimumDuration)},
	})
	return nil
}

// RenderStatus renders the governance overview
func (r *GovernanceRenderer) RenderStatus(status *usecase.GovernanceStatus) error {
	headerStyle.Fprintf(r.out, "Governance %s\n\n", status.Address.Hex())

	fields := [][2]string{
		{"Chairman", formatAddress(status.Chairman)},
		{"Token", formatAddress(status.TokenAddress)},
		{"Minimum quorum", formatAmount(status.MinimumQuorum, status.TokenSymbol)},
		{"Minimum duration", humanDuration(status.MinimumDuration)},
		{"Proposals", fmt.Sprintf("%d (%d open, %d awaiting settlement)", status.LastIndex, status.OpenProposals, status.PendingSettle)},
		{"Depositors", fmt.Sprintf("%d", status.Depositors)},
		{"Total deposited", formatAmount(status.TotalDeposited, status.TokenSymbol)},
	}
	if status.Custody != nil {
		fields = append(fields, [2]string{"Custody", formatAmount(status.Custody, status.TokenSymbol)})
	}
	fields = append(fields, [2]string{"Now", timestampStyle.Sprint(formatTime(status.Now))})
	writeFields(r.out, fields)
	return nil
}

// RenderQuorumSet renders a quorum change
func (r *GovernanceRenderer) RenderQuorumSet(quorum *big.Int) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Minimum quorum set to %s", quorum)))
	return nil
}

// RenderTokenSet renders a deposit token change
func (r *GovernanceRenderer) RenderTokenSet(token common.Address) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deposit token set to %s", token.Hex())))
	fmt.Fprintln(r.out, FormatWarning("Existing deposits are now accounted in the new token"))
	return nil
}
