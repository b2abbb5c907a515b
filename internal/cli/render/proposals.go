package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/daovote/internal/adapters/abi"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

const descriptionWidth = 48

// ProposalRenderer renders proposals and votes
type ProposalRenderer struct {
	out io.Writer
	now time.Time
}

// NewProposalRenderer creates a new proposal renderer. now is used for
// relative end times.
func NewProposalRenderer(out io.Writer, now time.Time) *ProposalRenderer {
	return &ProposalRenderer{out: out, now: now}
}

// RenderList renders the proposal table
func (r *ProposalRenderer) RenderList(result *usecase.ListProposalsResult) error {
	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "STATUS", "DESCRIPTION", "FOR", "AGAINST", "ENDS"})
	for _, v := range result.Proposals {
		p := v.Proposal
		t.AppendRow(table.Row{
			fmt.Sprintf("#%d", p.ID),
			StatusLabel(v.Status),
			truncate(p.Description, descriptionWidth),
			forStyle.Sprint(p.ForVotes.String()),
			againstStyle.Sprint(p.AgainstVotes.String()),
			timestampStyle.Sprint(formatRelative(p.EndTime, r.now)),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryLine(result.Summary))
	return nil
}

func summaryLine(summary usecase.ProposalSummary) string {
	statuses := make([]string, 0, len(summary.ByStatus))
	for status := range summary.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("%d %s", summary.ByStatus[models.ProposalStatus(s)], s))
	}
	line := fmt.Sprintf("Total: %d", summary.Total)
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return color.New(color.Faint).Sprint(line)
}

// RenderProposal renders a single proposal in detail
func (r *ProposalRenderer) RenderProposal(result *usecase.ShowProposalResult) error {
	r.renderView(result.ProposalView)

	fmt.Fprintln(r.out)
	writeFields(r.out, [][2]string{{"Voters", fmt.Sprintf("%d", result.Votes)}})

	if result.Voter != nil {
		if result.Vote == nil {
			fmt.Fprintf(r.out, "%s has not voted\n", result.Voter.Hex())
		} else {
			fmt.Fprintf(r.out, "%s voted %s with %s votes at %s\n",
				result.Voter.Hex(),
				sideLabel(result.Vote.Support),
				result.Vote.Weight,
				formatTime(result.Vote.CastAt))
		}
	}
	return nil
}

// RenderCreated renders newly created proposals
func (r *ProposalRenderer) RenderCreated(views []*usecase.ProposalView) error {
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Created proposal #%d", v.Proposal.ID)))
		r.renderView(v)
	}
	return nil
}

// RenderVote renders a cast vote
func (r *ProposalRenderer) RenderVote(result *usecase.CastVoteResult) error {
	p := result.Proposal.Proposal
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("voted %s proposal #%d with %s votes",
		sideLabel(result.Support), p.ID, result.Weight)))
	fmt.Fprintf(r.out, "Tally: %s for / %s against\n",
		forStyle.Sprint(p.ForVotes), againstStyle.Sprint(p.AgainstVotes))
	return nil
}

// RenderFinish renders a settlement
func (r *ProposalRenderer) RenderFinish(result *usecase.FinishProposalResult) error {
	s := result.Settlement
	if !s.Accepted {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Proposal #%d rejected", s.ProposalID)))
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Proposal #%d accepted", s.ProposalID)))
	switch {
	case s.CallError != nil:
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Call failed: %v", s.CallError)))
	case s.CallAttempted:
		line := "Call executed"
		if len(s.ReturnData) > 0 {
			line += fmt.Sprintf(" (returned 0x%x)", s.ReturnData)
		}
		fmt.Fprintln(r.out, line)
	}
	if result.Proposal.Proposal.Kind == models.ProposalKindChairmanElection {
		fmt.Fprintf(r.out, "Chairman is now %s\n", formatAddress(result.Chairman))
	}
	return nil
}

func (r *ProposalRenderer) renderView(v *usecase.ProposalView) {
	p := v.Proposal
	headerStyle.Fprintf(r.out, "Proposal #%d ", p.ID)
	fmt.Fprintln(r.out, StatusLabel(v.Status))
	fmt.Fprintln(r.out)

	end := formatTime(p.EndTime) + timestampStyle.Sprintf(" (%s)", formatRelative(p.EndTime, r.now))
	fields := [][2]string{
		{"Description", p.Description},
		{"Kind", KindLabel(p.Kind)},
		{"Proposer", formatAddress(p.Proposer)},
		{"Created", formatTime(p.CreatedAt)},
		{"Ends", end},
		{"For", forStyle.Sprint(p.ForVotes.String())},
		{"Against", againstStyle.Sprint(p.AgainstVotes.String())},
	}
	if p.Settled {
		settled := "-"
		if p.SettledAt != nil {
			settled = formatTime(*p.SettledAt)
		}
		fields = append(fields, [2]string{"Settled", settled})
	}
	if p.ExecutionError != "" {
		fields = append(fields, [2]string{"Execution error", againstStyle.Sprint(p.ExecutionError)})
	}
	writeFields(r.out, fields)

	if v.Call != nil {
		fmt.Fprintln(r.out)
		renderCall(r.out, v.Call)
	}
}

func renderCall(out io.Writer, call *models.DecodedCall) {
	fmt.Fprintf(out, "%s %s\n", labelStyle.Sprint("Call:"), abi.FormatCompact(call))
	fmt.Fprintf(out, "  to      %s\n", formatAddress(call.To))
	if call.Signature != "" {
		fmt.Fprintf(out, "  method  %s\n", call.Signature)
	}
	for _, in := range call.Inputs {
		fmt.Fprintf(out, "    %s %s = %s\n", in.Type, in.Name, abi.FormatValue(in.Value))
	}
}

func sideLabel(support bool) string {
	if support {
		return forStyle.Sprint("FOR")
	}
	return againstStyle.Sprint("AGAINST")
}
