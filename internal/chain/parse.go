package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseHash converts a 0x-prefixed 32-byte hex string into common.Hash.
func ParseHash(input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash: %s", input)
	}
	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash length: %s", input)
	}
	return common.BytesToHash(data), nil
}

// ParseWei parses a decimal or 0x-hex wei amount. Empty input is zero.
func ParseWei(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return big.NewInt(0), nil
	}
	var (
		value *big.Int
		ok    bool
	)
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		value, ok = new(big.Int).SetString(input[2:], 16)
	} else {
		value, ok = new(big.Int).SetString(input, 10)
	}
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount: %s", input)
	}
	return value, nil
}
