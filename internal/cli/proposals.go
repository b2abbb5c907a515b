package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/app"
	"github.com/trebuchet-org/daovote/internal/cli/render"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// NewProposeCmd creates the propose command
func NewProposeCmd() *cobra.Command {
	var (
		target    string
		callData  string
		signature string
		callArgs  []string
		duration  string
		file      string
	)

	cmd := &cobra.Command{
		Use:     "propose [description]",
		Aliases: []string{"add-proposal"},
		Short:   "Create a proposal bundling a call (chairman only)",
		Long: `Create a proposal that executes a call on --target once accepted.

The call is given either as raw --calldata or as a --sig with one --arg
per parameter. Durations shorter than the minimum duration are raised to
it. A YAML file given with -F creates several proposals at once; either
all of them are created or none.

Examples:
  daovote propose "Pay the auditors" --target 0xtoken... \
    --sig "transfer(address,uint256)" --arg 0xauditor... --arg 5000 --duration 3d
  daovote propose "Ping" --target 0xabc... --calldata 0x5c36b186
  daovote propose -F proposals.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}

			params := usecase.AddProposalParams{Sender: from, File: file}
			if len(args) > 0 {
				params.Proposals = append(params.Proposals, usecase.ProposalSpec{
					Description: args[0],
					Duration:    duration,
					Target:      target,
					CallData:    callData,
					Signature:   signature,
					Args:        callArgs,
				})
			} else if file == "" {
				return fmt.Errorf("a description or a proposal file (-F) is required")
			}

			result, err := app.AddProposal.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderCreated(result.Proposals)
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Address the accepted proposal calls")
	cmd.Flags().StringVar(&callData, "calldata", "", "Hex encoded call data")
	cmd.Flags().StringVar(&signature, "sig", "", "Function signature, e.g. transfer(address,uint256)")
	cmd.Flags().StringArrayVar(&callArgs, "arg", nil, "Argument for --sig (repeatable)")
	cmd.Flags().StringVar(&duration, "duration", "", "Debating period (seconds, 3d or 72h)")
	cmd.Flags().StringVarP(&file, "file", "F", "", "YAML file with proposals to create")

	return cmd
}

// NewElectCmd creates the elect command
func NewElectCmd() *cobra.Command {
	var duration string

	cmd := &cobra.Command{
		Use:     "elect <candidate>",
		Aliases: []string{"start-chairman-election"},
		Short:   "Propose a new chairman (chairman only)",
		Long: `Open a chairman election. Once accepted the candidate becomes the
chairman.

Examples:
  daovote elect 0xcandidate... --duration 7d`,
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
			candidate, err := addressArg(app, args[0])
			if err != nil {
				return err
			}
			d, err := usecase.ParseDuration(duration)
			if err != nil {
				return err
			}

			view, err := app.StartChairmanElection.Run(cmd.Context(), usecase.StartChairmanElectionParams{
				Sender:    from,
				Candidate: candidate,
				Duration:  d,
			})
			if err != nil {
				return err
			}
			return output(cmd, app, view, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderCreated([]*usecase.ProposalView{view})
			})
		},
	}

	cmd.Flags().StringVar(&duration, "duration", "", "Debating period (seconds, 3d or 72h)")
	return cmd
}

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	var against bool

	cmd := &cobra.Command{
		Use:   "vote <id> <weight>",
		Short: "Vote on a proposal with deposited tokens",
		Long: `Vote for a proposal, or against it with --against. The weight cannot
exceed the sender's deposit and every address votes at most once.

Examples:
  daovote vote 1 500 --from alice
  daovote vote 1 200 --from bob --against`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			weight, err := usecase.ParseAmount(args[1])
			if err != nil {
				return err
			}

			result, err := app.CastVote.Run(cmd.Context(), usecase.CastVoteParams{
				Sender:     from,
				ProposalID: id,
				Weight:     weight,
				Support:    !against,
			})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderVote(result)
			})
		},
	}

	cmd.Flags().BoolVar(&against, "against", false, "Vote against the proposal")
	return cmd
}

// NewFinishCmd creates the finish command
func NewFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "finish [id]",
		Aliases: []string{"finish-proposal"},
		Short:   "Settle a proposal whose debating period is over",
		Long: `Settle a proposal. Accepted proposals execute their bundled call.

Without an id a proposal awaiting settlement is picked interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			from, err := sender(app)
			if err != nil {
				return err
			}
			id, err := proposalIDOrSelect(cmd, app, args, usecase.ProposalFilter{
				Status: models.ProposalStatusEnded,
			}, "Select a proposal to settle")
			if err != nil {
				return err
			}

			result, err := app.FinishProposal.Run(cmd.Context(), usecase.FinishProposalParams{
				Sender:     from,
				ProposalID: id,
			})
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderFinish(result)
			})
		},
	}
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var voter string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show proposal details",
		Long: `Show a proposal with its decoded call and tallies. --voter adds the
vote cast by an address. Without an id an open proposal is picked
interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := proposalIDOrSelect(cmd, app, args, usecase.ProposalFilter{
				Status: models.ProposalStatusOpen,
			}, "Select a proposal")
			if err != nil {
				return err
			}

			params := usecase.ShowProposalParams{ID: id}
			if voter != "" {
				addr, err := addressArg(app, voter)
				if err != nil {
					return err
				}
				params.Voter = &addr
			}

			result, err := app.ShowProposal.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderProposal(result)
			})
		},
	}

	cmd.Flags().StringVar(&voter, "voter", "", "Include the vote of this sender name or address")
	return cmd
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		status  string
		settled string
		query   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Long: `List proposals, optionally filtered by status (open, ended, accepted,
rejected), settlement, or a fuzzy description query.

Examples:
  daovote list --status open
  daovote list --settled=false
  daovote list --query treasury`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			filter, err := buildFilter(status, settled, query)
			if err != nil {
				return err
			}

			result, err := app.ListProposals.Run(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return output(cmd, app, result, func(w io.Writer) error {
				return render.NewProposalRenderer(w, now()).RenderList(result)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: open, ended, accepted, rejected")
	cmd.Flags().StringVar(&settled, "settled", "", "Filter by settlement: true or false")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Fuzzy match descriptions")

	return cmd
}

func buildFilter(status, settled, query string) (usecase.ProposalFilter, error) {
	filter := usecase.ProposalFilter{Query: query}
	if status != "" {
		s := models.ProposalStatus(strings.ToLower(status))
		switch s {
		case models.ProposalStatusOpen, models.ProposalStatusEnded,
			models.ProposalStatusAccepted, models.ProposalStatusRejected:
			filter.Status = s
		default:
			return filter, fmt.Errorf("unknown status %q", status)
		}
	}
	if settled != "" {
		b, err := strconv.ParseBool(settled)
		if err != nil {
			return filter, fmt.Errorf("invalid --settled value %q", settled)
		}
		filter.Settled = &b
	}
	return filter, nil
}

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return id, nil
}

func proposalIDOrSelect(cmd *cobra.Command, a *app.App, args []string, filter usecase.ProposalFilter, prompt string) (uint64, error) {
	if len(args) > 0 {
		return parseProposalID(args[0])
	}
	if a.Config.NonInteractive || a.Config.JSON {
		return 0, fmt.Errorf("a proposal id is required in non-interactive mode")
	}
	return a.SelectProposal.Run(cmd.Context(), filter, prompt)
}
