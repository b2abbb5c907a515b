package abi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/trebuchet-org/daovote/internal/chain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/governance"
)

// CallDecoder turns proposal call data into readable calls using the ABIs of
// known contracts
type CallDecoder struct {
	log    *slog.Logger
	labels map[common.Address]string
	abis   map[common.Address]*abi.ABI
}

// NewCallDecoder creates a decoder with no extra contracts registered
func NewCallDecoder(log *slog.Logger) *CallDecoder {
	return &CallDecoder{
		log:    log.With("component", "CallDecoder"),
		labels: make(map[common.Address]string),
		abis:   make(map[common.Address]*abi.ABI),
	}
}

// Register associates a label and ABI with an address outside the snapshot
func (d *CallDecoder) Register(address common.Address, label string, contractABI *abi.ABI) {
	d.labels[address] = label
	if contractABI != nil {
		d.abis[address] = contractABI
	}
}

// resolve finds the label and ABI for to, preferring contracts in the snapshot
func (d *CallDecoder) resolve(snapshot *models.Snapshot, to common.Address) (string, *abi.ABI) {
	if snapshot != nil {
		if to == snapshot.GovernanceAddress {
			return "Governance", &governance.ABI
		}
		if ledger, ok := snapshot.Tokens[to]; ok {
			label := ledger.Symbol
			if label == "" {
				label = "ERC20"
			}
			return label, &chain.ERC20ABI
		}
	}
	label, ok := d.labels[to]
	if !ok {
		label = to.Hex()
	}
	return label, d.abis[to]
}

// Decode decodes call data sent to to
func (d *CallDecoder) Decode(snapshot *models.Snapshot, to common.Address, data []byte) *models.DecodedCall {
	label, contractABI := d.resolve(snapshot, to)
	decoded := &models.DecodedCall{
		To:      to,
		Label:   label,
		RawData: hexutil.Encode(data),
	}

	if len(data) == 0 {
		decoded.Method = "(empty)"
		return decoded
	}

	if contractABI == nil || len(data) < 4 {
		decoded.Method = "unknown"
		return decoded
	}

	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		d.log.Debug("selector not found", "address", to.Hex(), "selector", hexutil.Encode(data[:4]))
		decoded.Method = "unknown"
		return decoded
	}
	decoded.Method = method.RawName
	decoded.Signature = method.Sig

	inputs, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		d.log.Debug("failed to unpack inputs", "method", method.Name, "err", err)
		return decoded
	}
	for i, input := range method.Inputs {
		if i < len(inputs) {
			decoded.Inputs = append(decoded.Inputs, models.DecodedInput{
				Name:  input.Name,
				Type:  input.Type.String(),
				Value: inputs[i],
			})
		}
	}
	return decoded
}

// FormatValue formats a decoded value for human display
func FormatValue(value any) string {
	switch v := value.(type) {
	case common.Address:
		return v.Hex()
	case *big.Int:
		return v.String()
	case []byte:
		if len(v) == 0 {
			return "0x"
		}
		if len(v) <= 32 {
			return hexutil.Encode(v)
		}
		return fmt.Sprintf("%s...(%d bytes)", hexutil.Encode(v[:16]), len(v))
	case string:
		if len(v) > 50 {
			return fmt.Sprintf("%.50s...(%d chars)", v, len(v))
		}
		return fmt.Sprintf(`"%s"`, v)
	case bool:
		return fmt.Sprintf("%t", v)
	case [32]byte:
		return hexutil.Encode(v[:])
	default:
		if jsonBytes, err := json.Marshal(v); err == nil {
			jsonStr := string(jsonBytes)
			if len(jsonStr) > 100 {
				return fmt.Sprintf("%.100s...(%d chars)", jsonStr, len(jsonStr))
			}
			return jsonStr
		}
		return fmt.Sprintf("%v", v)
	}
}

// FormatCompact renders a call as Label.method(args)
func FormatCompact(call *models.DecodedCall) string {
	var b strings.Builder
	b.WriteString(color.CyanString(call.Label))
	b.WriteString(".")

	if call.Method == "unknown" || call.Method == "(empty)" {
		b.WriteString(color.HiBlackString(call.Method))
		if call.Method == "unknown" {
			data := call.RawData
			if len(data) > 42 {
				data = data[:42] + "..."
			}
			b.WriteString(color.HiBlackString(" " + data))
		}
		return b.String()
	}

	b.WriteString(color.YellowString(call.Method))
	args := make([]string, 0, len(call.Inputs))
	for _, input := range call.Inputs {
		val := FormatValue(input.Value)
		if len(val) > 44 {
			val = val[:41] + "..."
		}
		args = append(args, val)
	}
	b.WriteString("(" + strings.Join(args, ", ") + ")")
	return b.String()
}
