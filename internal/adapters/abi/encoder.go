package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// CallEncoder builds call data from a function signature and string arguments
type CallEncoder struct{}

// NewCallEncoder creates a new call encoder
func NewCallEncoder() *CallEncoder {
	return &CallEncoder{}
}

// Encode packs args for signature, e.g. "transfer(address,uint256)"
func (e *CallEncoder) Encode(signature string, args []string) ([]byte, error) {
	name, types, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(args) != len(types) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", name, len(types), len(args))
	}

	arguments := make(abi.Arguments, 0, len(types))
	values := make([]any, 0, len(types))
	canonical := make([]string, 0, len(types))
	for i, typ := range types {
		abiType, err := abi.NewType(typ, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid type %q: %w", typ, err)
		}
		value, err := parseArg(abiType, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, typ, err)
		}
		arguments = append(arguments, abi.Argument{Type: abiType})
		values = append(values, value)
		canonical = append(canonical, abiType.String())
	}

	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}

	selector := Selector(fmt.Sprintf("%s(%s)", name, strings.Join(canonical, ",")))
	return append(selector, packed...), nil
}

// Selector returns the 4-byte method id of a canonical signature
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// ParseSignature splits "name(type1,type2)" into its parts. Tuples are not supported.
func ParseSignature(signature string) (string, []string, error) {
	signature = strings.TrimSpace(signature)
	open := strings.Index(signature, "(")
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, fmt.Errorf("invalid function signature %q", signature)
	}
	name := signature[:open]
	inner := strings.TrimSpace(signature[open+1 : len(signature)-1])
	if strings.ContainsAny(inner, "()") {
		return "", nil, fmt.Errorf("tuple arguments are not supported in %q", signature)
	}
	if inner == "" {
		return name, nil, nil
	}

	var types []string
	for _, part := range strings.Split(inner, ",") {
		// allow "address to" style parameters
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("empty argument type in %q", signature)
		}
		types = append(types, canonicalType(fields[0]))
	}
	return name, types, nil
}

// canonicalType expands the uint and int aliases
func canonicalType(typ string) string {
	switch typ {
	case "uint":
		return "uint256"
	case "int":
		return "int256"
	}
	return typ
}

func parseArg(typ abi.Type, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("invalid address %q", raw)
		}
		return common.HexToAddress(raw), nil
	case abi.BoolTy:
		return strconv.ParseBool(raw)
	case abi.StringTy:
		return raw, nil
	case abi.BytesTy:
		return hexutil.Decode(raw)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, err
		}
		if len(b) > typ.Size {
			return nil, fmt.Errorf("value has %d bytes, type holds %d", len(b), typ.Size)
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		return parseInteger(typ, raw)
	default:
		return nil, fmt.Errorf("unsupported type %s", typ.String())
	}
}

func parseInteger(typ abi.Type, raw string) (any, error) {
	n, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", raw)
	}
	if typ.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for unsigned type", n)
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, typ.String())
		}
	} else if n.BitLen() > typ.Size-1 && !(n.Sign() < 0 && isMinInt(n, typ.Size)) {
		return nil, fmt.Errorf("value %s overflows %s", n, typ.String())
	}

	goType := typ.GetType()
	if goType == bigIntType {
		return n, nil
	}
	if typ.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

func isMinInt(n *big.Int, size int) bool {
	lowest := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(size-1)))
	return n.Cmp(lowest) == 0
}
