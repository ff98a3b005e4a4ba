package options

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The indexer stores options exactly as the contract ABI-encodes them. The
// two pseudo-methods below only exist to describe those layouts.
const optionCodecABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "option", "type": "string"},
      {"internalType": "uint256", "name": "totalStaked", "type": "uint256"}
    ],
    "name": "encodeOption",
    "outputs": [],
    "stateMutability": "pure",
    "type": "function"
  },
  {
    "inputs": [
      {
        "components": [
          {"internalType": "string", "name": "option", "type": "string"},
          {"internalType": "uint256", "name": "totalStaked", "type": "uint256"}
        ],
        "internalType": "struct BetOption[]",
        "name": "options",
        "type": "tuple[]"
      }
    ],
    "name": "encodeOptions",
    "outputs": [],
    "stateMutability": "pure",
    "type": "function"
  }
]`

var (
	optionCodecABI     abi.ABI
	optionCodecABIOnce sync.Once
	optionCodecABIErr  error
)

// OptionCodecABI returns the parsed option layouts.
func OptionCodecABI() (abi.ABI, error) {
	optionCodecABIOnce.Do(func() {
		optionCodecABI, optionCodecABIErr = abi.JSON(strings.NewReader(optionCodecABIJSON))
	})
	return optionCodecABI, optionCodecABIErr
}

func tupleArguments() (abi.Arguments, error) {
	codec, err := OptionCodecABI()
	if err != nil {
		return nil, err
	}
	return codec.Methods["encodeOption"].Inputs, nil
}

func tupleArrayArguments() (abi.Arguments, error) {
	codec, err := OptionCodecABI()
	if err != nil {
		return nil, err
	}
	return codec.Methods["encodeOptions"].Inputs, nil
}
