package governance

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain"
)

// ABIJSON describes the methods the engine exposes to bundled calls
const ABIJSON = `[
	{
		"type": "function",
		"name": "changeChairman",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "newChairman", "type": "address"}],
		"outputs": []
	}
]`

const methodChangeChairman = "changeChairman"

// ABI is the parsed governance ABI
var ABI = mustParseABI(ABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid governance ABI: %v", err))
	}
	return parsed
}

// EncodeChangeChairman builds the call data a chairman election bundles
func EncodeChangeChairman(candidate common.Address) ([]byte, error) {
	return ABI.Pack(methodChangeChairman, candidate)
}

// DecodeChangeChairman extracts the candidate from changeChairman call data
func DecodeChangeChairman(data []byte) (common.Address, error) {
	method, args, err := decodeCall(data)
	if err != nil {
		return common.Address{}, err
	}
	if method.Name != methodChangeChairman {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, method.Name)
	}
	return args[0].(common.Address), nil
}

func decodeCall(data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: call data too short", domain.ErrUnknownMethod)
	}
	method, err := ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: selector %x", domain.ErrUnknownMethod, data[:4])
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}
