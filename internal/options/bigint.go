package options

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds scientific notation well past the uint256 range so a
// hostile "1e999999999" cannot force a huge allocation.
const maxExponent = 96

// ToBigInt coerces a numeric-like value into a non-negative integer. It never
// fails: fractions truncate toward zero, and anything that is not a usable
// non-negative number becomes 0.
func ToBigInt(value interface{}) *big.Int {
	out := asBigInt(value)
	if out == nil || out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}

func asBigInt(value interface{}) *big.Int {
	switch v := value.(type) {
	case nil:
		return nil
	case *big.Int:
		if v == nil {
			return nil
		}
		return new(big.Int).Set(v)
	case big.Int:
		return new(big.Int).Set(&v)
	case json.Number:
		return parseNumeric(v.String())
	case string:
		return parseNumeric(v)
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return big.NewInt(int64(v))
	case int8:
		return big.NewInt(int64(v))
	case int16:
		return big.NewInt(int64(v))
	case int32:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case uint:
		return new(big.Int).SetUint64(uint64(v))
	case uint8:
		return new(big.Int).SetUint64(uint64(v))
	case uint16:
		return new(big.Int).SetUint64(uint64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint64:
		return new(big.Int).SetUint64(v)
	default:
		return nil
	}
}

func fromFloat(f float64) *big.Int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	out, _ := big.NewFloat(math.Trunc(f)).Int(nil)
	return out
}

func parseNumeric(input string) *big.Int {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if hasHexPrefix(input) {
		out, ok := new(big.Int).SetString(input[2:], 16)
		if !ok {
			return nil
		}
		return out
	}

	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil
	}
	if d.Exponent() > maxExponent {
		return nil
	}
	if d.Exponent() < -maxExponent {
		// Fewer coefficient digits than the exponent means the value is below one.
		coef := d.Coefficient()
		if len(coef.Abs(coef).String()) <= -int(d.Exponent()) {
			return nil
		}
	}
	return d.Truncate(0).BigInt()
}

func hasHexPrefix(input string) bool {
	return len(input) >= 2 && input[0] == '0' && (input[1] == 'x' || input[1] == 'X')
}
