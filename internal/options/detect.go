package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Encoding identifies which historical layout an options field uses.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	// EncodingObjectArray is a list of {option, totalStaked|odds} objects.
	EncodingObjectArray
	// EncodingHexArray is a list of hex strings, each one (string, uint256).
	EncodingHexArray
	// EncodingHexTupleArray is one hex string holding tuple(string,uint256)[].
	EncodingHexTupleArray
)

func (e Encoding) String() string {
	switch e {
	case EncodingObjectArray:
		return "object_array"
	case EncodingHexArray:
		return "hex_array"
	case EncodingHexTupleArray:
		return "hex_tuple_array"
	default:
		return "unknown"
	}
}

// Detection is the result of classifying an options field.
type Detection struct {
	Encoding Encoding
	// Items holds the array elements for the two array encodings.
	Items []interface{}
	// Hex holds the payload for EncodingHexTupleArray.
	Hex string
	// JSONEncoded is set when the array arrived wrapped in a JSON string.
	JSONEncoded bool
}

// Detect classifies a raw JSON options field. Missing, null and unparseable
// input is EncodingUnknown.
func Detect(raw json.RawMessage) Detection {
	value, ok := decodeJSON(raw)
	if !ok {
		return Detection{Encoding: EncodingUnknown}
	}
	return DetectValue(value)
}

// DetectValue classifies an already decoded options value.
func DetectValue(value interface{}) Detection {
	switch v := value.(type) {
	case []interface{}:
		return detectArray(v)
	case []string:
		items := make([]interface{}, 0, len(v))
		for _, item := range v {
			items = append(items, item)
		}
		return detectArray(items)
	case string:
		return detectString(v)
	default:
		return Detection{Encoding: EncodingUnknown}
	}
}

func detectArray(items []interface{}) Detection {
	if len(items) == 0 {
		return Detection{Encoding: EncodingHexArray, Items: items}
	}
	if first, ok := items[0].(map[string]interface{}); ok && first != nil {
		return Detection{Encoding: EncodingObjectArray, Items: items}
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok || !hasHexPrefix(strings.TrimSpace(s)) {
			return Detection{Encoding: EncodingUnknown}
		}
	}
	return Detection{Encoding: EncodingHexArray, Items: items}
}

func detectString(input string) Detection {
	input = strings.TrimSpace(input)
	if input == "" {
		return Detection{Encoding: EncodingUnknown}
	}

	if parsed, ok := decodeJSON([]byte(input)); ok {
		if items, isArray := parsed.([]interface{}); isArray {
			detection := detectArray(items)
			if detection.Encoding != EncodingUnknown {
				detection.JSONEncoded = true
				return detection
			}
		}
	}

	if hasHexPrefix(input) {
		return Detection{Encoding: EncodingHexTupleArray, Hex: input}
	}
	return Detection{Encoding: EncodingUnknown}
}

func decodeJSON(raw []byte) (interface{}, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return value, true
}
