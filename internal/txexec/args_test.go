package txexec

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betScope/internal/contract"
)

const argsTestABI = `[{
  "inputs": [
    {"name": "small", "type": "uint8"},
    {"name": "signed", "type": "int64"},
    {"name": "odd", "type": "uint24"},
    {"name": "who", "type": "address"},
    {"name": "flag", "type": "bool"},
    {"name": "blob", "type": "bytes"},
    {"name": "key", "type": "bytes4"},
    {"name": "labels", "type": "string[]"},
    {"name": "pair", "type": "uint256[2]"}
  ],
  "name": "kitchenSink",
  "outputs": [],
  "stateMutability": "nonpayable",
  "type": "function"
}]`

func TestCoerceArgsPlaceBet(t *testing.T) {
	parsed, err := contract.BetManagerABI()
	require.NoError(t, err)

	args, err := CoerceArgs(parsed.Methods["placeBet"], json.RawMessage(`["12", 1]`))
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, big.NewInt(12), args[0])
	assert.Equal(t, big.NewInt(1), args[1])

	_, err = parsed.Pack("placeBet", args...)
	require.NoError(t, err)
}

func TestCoerceArgsTypes(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(argsTestABI))
	require.NoError(t, err)
	method := parsed.Methods["kitchenSink"]

	raw := json.RawMessage(`[
		255,
		"-9",
		"0x10",
		"0x00000000000000000000000000000000000000d5",
		"true",
		"0xdeadbeef",
		"0x01020304",
		["a", "b"],
		[1, "2"]
	]`)

	args, err := CoerceArgs(method, raw)
	require.NoError(t, err)

	assert.Equal(t, uint8(255), args[0])
	assert.Equal(t, int64(-9), args[1])
	assert.Equal(t, big.NewInt(16), args[2])
	assert.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000d5"), args[3])
	assert.Equal(t, true, args[4])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, args[5])
	assert.Equal(t, [4]byte{1, 2, 3, 4}, args[6])
	assert.Equal(t, []string{"a", "b"}, args[7])
	assert.Equal(t, [2]*big.Int{big.NewInt(1), big.NewInt(2)}, args[8])

	_, err = parsed.Pack("kitchenSink", args...)
	require.NoError(t, err)
}

func TestCoerceArgsErrors(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(argsTestABI))
	require.NoError(t, err)
	method := parsed.Methods["kitchenSink"]

	valid := []string{`255`, `"-9"`, `"0x10"`, `"0x00000000000000000000000000000000000000d5"`, `true`, `"0x"`, `"0x01020304"`, `[]`, `[1,2]`}
	build := func(index int, replacement string) json.RawMessage {
		items := append([]string(nil), valid...)
		items[index] = replacement
		return json.RawMessage("[" + strings.Join(items, ",") + "]")
	}

	_, err = CoerceArgs(method, build(0, "0"))
	require.NoError(t, err)

	cases := map[string]json.RawMessage{
		"uint8 overflow":   build(0, `256`),
		"negative uint":    build(0, `-1`),
		"fraction":         build(1, `1.5`),
		"bad address":      build(3, `"0x1234"`),
		"bad bool":         build(4, `"maybe"`),
		"bad hex":          build(5, `"zz"`),
		"short bytes4":     build(6, `"0x0102"`),
		"wrong array size": build(8, `[1]`),
		"not an array":     json.RawMessage(`{"a":1}`),
		"wrong count":      json.RawMessage(`[1]`),
	}
	for name, raw := range cases {
		_, err := CoerceArgs(method, raw)
		assert.Error(t, err, name)
	}
}

func TestCoerceArgsEmpty(t *testing.T) {
	parsed, err := contract.BetManagerABI()
	require.NoError(t, err)

	_, err = CoerceArgs(parsed.Methods["claimWinnings"], nil)
	assert.Error(t, err)

	method := abi.Method{Name: "noop"}
	args, err := CoerceArgs(method, nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}
