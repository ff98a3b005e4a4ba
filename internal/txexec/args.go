package txexec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// CoerceArgs converts a JSON array into Go values matching method's inputs,
// ready for abi.ABI.Pack. Integers may be JSON numbers or decimal/0x strings.
func CoerceArgs(method abi.Method, raw json.RawMessage) ([]interface{}, error) {
	var items []json.RawMessage
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("args must be a JSON array: %w", err)
		}
	}
	if len(items) != len(method.Inputs) {
		return nil, fmt.Errorf("%s expects %d args, got %d", method.Name, len(method.Inputs), len(items))
	}

	out := make([]interface{}, 0, len(items))
	for i, input := range method.Inputs {
		value, err := coerceValue(input.Type, items[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("arg %s (%s): %w", name, input.Type.String(), err)
		}
		out = append(out, value.Interface())
	}
	return out, nil
}

func coerceValue(t abi.Type, raw json.RawMessage) (reflect.Value, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return coerceInteger(t, raw)
	case abi.BoolTy:
		return coerceBool(raw)
	case abi.StringTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return reflect.Value{}, fmt.Errorf("expected string")
		}
		return reflect.ValueOf(s), nil
	case abi.AddressTy:
		s, err := jsonString(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("invalid address: %s", s)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil
	case abi.BytesTy:
		data, err := jsonHex(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(data), nil
	case abi.FixedBytesTy:
		data, err := jsonHex(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(data) != t.Size {
			return reflect.Value{}, fmt.Errorf("expected %d bytes, got %d", t.Size, len(data))
		}
		out := reflect.New(t.GetType()).Elem()
		reflect.Copy(out, reflect.ValueOf(data))
		return out, nil
	case abi.SliceTy, abi.ArrayTy:
		return coerceList(t, raw)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported argument type %s", t.String())
	}
}

func coerceList(t abi.Type, raw json.RawMessage) (reflect.Value, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return reflect.Value{}, fmt.Errorf("expected array")
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return reflect.Value{}, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		value, err := coerceValue(*t.Elem, item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(value)
	}
	return out, nil
}

func coerceInteger(t abi.Type, raw json.RawMessage) (reflect.Value, error) {
	n, err := jsonInteger(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return reflect.Value{}, fmt.Errorf("negative value for unsigned type")
	}
	limit := t.Size
	if t.T == abi.IntTy {
		limit--
	}
	if n.BitLen() > limit {
		return reflect.Value{}, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	goType := t.GetType()
	if goType == bigIntType {
		return reflect.ValueOf(n), nil
	}
	out := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out, nil
}

func coerceBool(raw json.RawMessage) (reflect.Value, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return reflect.ValueOf(b), nil
	}
	s, err := jsonString(raw)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("expected bool")
	}
	b, err = strconv.ParseBool(s)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("expected bool")
	}
	return reflect.ValueOf(b), nil
}

func jsonInteger(raw json.RawMessage) (*big.Int, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("expected integer")
		}
		text = num.String()
	}
	text = strings.TrimSpace(text)

	var (
		n  *big.Int
		ok bool
	)
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		n, ok = new(big.Int).SetString(text[2:], 16)
	} else {
		n, ok = new(big.Int).SetString(text, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid integer: %s", text)
	}
	return n, nil
}

func jsonString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected string")
	}
	return strings.TrimSpace(s), nil
}

func jsonHex(raw json.RawMessage) ([]byte, error) {
	s, err := jsonString(raw)
	if err != nil {
		return nil, err
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}
