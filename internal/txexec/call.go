package txexec

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Call describes a contract method invocation.
type Call struct {
	Address      common.Address
	ABI          abi.ABI
	FunctionName string
	Args         []interface{}
	// Value is the wei attached to the call; nil means none.
	Value *big.Int
}

// Pack returns the calldata for the call.
func (c Call) Pack() ([]byte, error) {
	if _, ok := c.ABI.Methods[c.FunctionName]; !ok {
		return nil, fmt.Errorf("method %q not found in abi", c.FunctionName)
	}
	data, err := c.ABI.Pack(c.FunctionName, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", c.FunctionName, err)
	}
	return data, nil
}

func (c Call) value() *big.Int {
	if c.Value == nil {
		return big.NewInt(0)
	}
	return c.Value
}
