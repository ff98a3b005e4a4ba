package options

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"betScope/internal/model"
)

// optionTuple mirrors the contract's BetOption struct.
type optionTuple struct {
	Option      string
	TotalStaked *big.Int
}

// DecodeTuple decodes a single 0x-prefixed (string, uint256) encoding. Any
// failure yields an empty option with zero stake; callers drop those.
func DecodeTuple(hexStr string) model.CanonicalOption {
	option, staked, err := decodeTuple(hexStr)
	if err != nil {
		return emptyOption()
	}
	return model.CanonicalOption{Option: option, TotalStaked: staked}
}

// EncodeTuple is the inverse of DecodeTuple.
func EncodeTuple(option string, totalStaked *big.Int) (string, error) {
	args, err := tupleArguments()
	if err != nil {
		return "", err
	}
	if totalStaked == nil {
		totalStaked = big.NewInt(0)
	}
	data, err := args.Pack(option, totalStaked)
	if err != nil {
		return "", fmt.Errorf("pack option: %w", err)
	}
	return hexutil.Encode(data), nil
}

// EncodeTupleArray encodes options as tuple(string,uint256)[].
func EncodeTupleArray(options []model.CanonicalOption) (string, error) {
	args, err := tupleArrayArguments()
	if err != nil {
		return "", err
	}
	tuples := make([]optionTuple, 0, len(options))
	for _, option := range options {
		staked := option.TotalStaked
		if staked == nil {
			staked = big.NewInt(0)
		}
		tuples = append(tuples, optionTuple{Option: option.Option, TotalStaked: staked})
	}
	data, err := args.Pack(tuples)
	if err != nil {
		return "", fmt.Errorf("pack options: %w", err)
	}
	return hexutil.Encode(data), nil
}

func decodeTuple(hexStr string) (option string, staked *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode option: %v", r)
		}
	}()

	args, err := tupleArguments()
	if err != nil {
		return "", nil, err
	}
	data, err := hexutil.Decode(strings.TrimSpace(hexStr))
	if err != nil {
		return "", nil, fmt.Errorf("invalid option hex: %w", err)
	}
	values, err := args.Unpack(data)
	if err != nil {
		return "", nil, fmt.Errorf("unpack option: %w", err)
	}
	if len(values) != 2 {
		return "", nil, fmt.Errorf("unexpected option values: %d", len(values))
	}
	option, ok := values[0].(string)
	if !ok {
		return "", nil, fmt.Errorf("unsupported option type %T", values[0])
	}
	return option, ToBigInt(values[1]), nil
}

func decodeTupleArray(hexStr string) (out []model.CanonicalOption, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode options: %v", r)
		}
	}()

	args, err := tupleArrayArguments()
	if err != nil {
		return nil, err
	}
	data, err := hexutil.Decode(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid options hex: %w", err)
	}
	values, err := args.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack options: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected options values: %d", len(values))
	}

	// ConvertType panics on a shape mismatch; the deferred recover turns that
	// into an error.
	tuples := *abi.ConvertType(values[0], new([]optionTuple)).(*[]optionTuple)
	out = make([]model.CanonicalOption, 0, len(tuples))
	for _, tuple := range tuples {
		out = append(out, model.CanonicalOption{Option: tuple.Option, TotalStaked: ToBigInt(tuple.TotalStaked)})
	}
	return out, nil
}

func emptyOption() model.CanonicalOption {
	return model.CanonicalOption{Option: "", TotalStaked: big.NewInt(0)}
}

func isDegenerate(option model.CanonicalOption) bool {
	return option.Option == "" && (option.TotalStaked == nil || option.TotalStaked.Sign() == 0)
}
