package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// hardhat accounts #0 and #1
const (
	chairmanKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	aliceAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

const projectFile = `
[senders.chairman]
private_key = "` + chairmanKey + `"

[senders.alice]
address = "` + aliceAddress + `"
`

func setupProject(t *testing.T) {
	t.Helper()
	color.NoColor = true
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "daovote.toml"), []byte(projectFile), 0644))
	t.Chdir(root)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--non-interactive"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, append(args, "--json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestGovernanceFlow(t *testing.T) {
	setupProject(t)
	alice := common.HexToAddress(aliceAddress)

	_, err := run(t, "status")
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	var initResult usecase.InitGovernanceResult
	runJSON(t, &initResult, "init", "--from", "chairman", "--quorum", "100", "--supply", "1000", "--duration", "1h")
	assert.True(t, initResult.TokenDeployed)
	assert.Equal(t, "100", initResult.MinimumQuorum.String())

	var balance usecase.TokenBalanceResult
	runJSON(t, &balance, "token", "transfer", "alice", "400", "--from", "chairman")
	assert.Equal(t, alice, balance.Owner)
	assert.Equal(t, "400", balance.Balance.String())

	out, err := run(t, "deposit", "300", "--approve", "--from", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deposited 300 tokens")

	_, err = run(t, "propose", "Pay alice", "--target", initResult.TokenAddress.Hex(), "--from", "alice",
		"--sig", "transfer(address,uint256)", "--arg", aliceAddress, "--arg", "10")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	var created usecase.AddProposalResult
	runJSON(t, &created, "propose", "Pay alice", "--target", initResult.TokenAddress.Hex(), "--from", "chairman",
		"--sig", "transfer(address,uint256)", "--arg", aliceAddress, "--arg", "10", "--duration", "2h")
	require.Len(t, created.Proposals, 1)
	assert.Equal(t, uint64(1), created.Proposals[0].Proposal.ID)
	require.NotNil(t, created.Proposals[0].Call)
	assert.Equal(t, "transfer", created.Proposals[0].Call.Method)

	out, err = run(t, "vote", "1", "200", "--from", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "voted FOR proposal #1 with 200 votes")

	_, err = run(t, "vote", "1", "50", "--against", "--from", "alice")
	require.ErrorIs(t, err, domain.ErrAlreadyVoted)

	var list usecase.ListProposalsResult
	runJSON(t, &list, "list", "--status", "open")
	assert.Equal(t, 1, list.Summary.Total)

	_, err = run(t, "withdraw", "--from", "alice")
	require.ErrorIs(t, err, domain.ErrDepositLocked)

	_, err = run(t, "finish", "1", "--from", "chairman")
	require.ErrorIs(t, err, domain.ErrDebateNotOver)

	out, err = run(t, "config", "set", "from", "alice")
	require.NoError(t, err, out)

	var depositor usecase.ShowDepositorResult
	runJSON(t, &depositor, "depositor")
	assert.Equal(t, alice, depositor.Address)
	assert.Equal(t, "300", depositor.Deposit.String())
	assert.True(t, depositor.Locked)
	require.Len(t, depositor.Votes, 1)
	assert.Equal(t, uint64(1), depositor.Votes[0].ProposalID)

	out, err = run(t, "show", "1", "--voter", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pay alice")
	assert.Contains(t, out, "voted FOR with 200 votes")
}

func TestStoreBackends(t *testing.T) {
	for _, backend := range []string{"badger", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			setupProject(t)

			_, err := run(t, "init", "--from", "chairman", "--quorum", "5", "--store", backend)
			require.NoError(t, err)

			var status usecase.GovernanceStatus
			runJSON(t, &status, "status", "--store", backend)
			assert.Equal(t, "5", status.MinimumQuorum.String())

			_, err = run(t, "status", "--store", "file")
			require.ErrorIs(t, err, domain.ErrNotInitialized)
		})
	}
}

func TestSenderRequired(t *testing.T) {
	setupProject(t)

	_, err := run(t, "deposit", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sender selected")
}

func TestProposalIDRequiredNonInteractive(t *testing.T) {
	setupProject(t)

	_, err := run(t, "init", "--from", "chairman")
	require.NoError(t, err)

	_, err = run(t, "finish", "--from", "chairman")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proposal id is required")
}

func TestBuildFilter(t *testing.T) {
	filter, err := buildFilter("OPEN", "false", "treasury")
	require.NoError(t, err)
	assert.Equal(t, "open", string(filter.Status))
	require.NotNil(t, filter.Settled)
	assert.False(t, *filter.Settled)
	assert.Equal(t, "treasury", filter.Query)

	_, err = buildFilter("pending", "", "")
	assert.Error(t, err)

	_, err = buildFilter("", "maybe", "")
	assert.Error(t, err)
}

func TestRenderError(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	RenderError(&buf, domain.UnauthorizedError{Caller: common.HexToAddress(aliceAddress)})
	assert.Contains(t, buf.String(), "SenderDontHasRights")
	assert.Contains(t, buf.String(), "only the chairman")
}

func TestVersionSkipsAppInit(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "daovote version")
}

func TestConfigCommand(t *testing.T) {
	setupProject(t)

	_, err := run(t, "config", "set", "store", "postgres")
	assert.ErrorContains(t, err, "unknown store backend")

	_, err = run(t, "config", "set", "from", "mallory")
	assert.ErrorContains(t, err, "unknown sender")

	var set usecase.SetConfigResult
	runJSON(t, &set, "config", "set", "from", "alice")
	require.NotNil(t, set.SenderAddress)
	assert.Equal(t, common.HexToAddress(aliceAddress), *set.SenderAddress)

	out, err := run(t, "config", "set", "store", "sqlite")
	require.NoError(t, err, out)

	var shown usecase.ShowConfigResult
	runJSON(t, &shown, "config")
	assert.True(t, shown.Exists)
	assert.Equal(t, "alice", shown.Config.From)
	assert.Equal(t, "sqlite", shown.Effective.Store)
	require.NotNil(t, shown.Effective.SenderAddress)
	assert.Equal(t, common.HexToAddress(aliceAddress), *shown.Effective.SenderAddress)

	// flags still win over the stored defaults
	runJSON(t, &shown, "config", "--store", "badger")
	assert.Equal(t, "badger", shown.Effective.Store)

	_, err = run(t, "config", "remove", "store")
	require.NoError(t, err)
	var removed usecase.RemoveConfigResult
	runJSON(t, &removed, "config", "unset", "from")
	assert.Equal(t, "alice", removed.RemovedValue)
	assert.True(t, removed.FileRemoved)

	_, err = os.Stat(filepath.Join(".daovote", "config.local.json"))
	assert.True(t, os.IsNotExist(err))
}
