package options

import (
	"encoding/json"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"betScope/internal/metrics"
	"betScope/internal/model"
)

// DefaultOptionLabel names the placeholder returned when nothing decodes.
const DefaultOptionLabel = "Default Option"

// DefaultOptions returns the single placeholder option.
func DefaultOptions() []model.CanonicalOption {
	return []model.CanonicalOption{{Option: DefaultOptionLabel, TotalStaked: big.NewInt(0)}}
}

// Normalizer turns any options field into a canonical option list. It is
// stateless and safe for concurrent use.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer builds a Normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize runs the default Normalizer.
func Normalize(raw json.RawMessage) []model.CanonicalOption {
	return defaultNormalizer.Normalize(raw)
}

// Normalize decodes a raw JSON options field. The result is never empty.
func (n *Normalizer) Normalize(raw json.RawMessage) []model.CanonicalOption {
	return n.normalize(Detect(raw))
}

// NormalizeValue decodes an options value that was already parsed from JSON.
func (n *Normalizer) NormalizeValue(value interface{}) []model.CanonicalOption {
	return n.normalize(DetectValue(value))
}

func (n *Normalizer) normalize(detection Detection) []model.CanonicalOption {
	options := n.decode(detection)
	fallback := len(options) == 0

	metrics.OptionsDecodeTotal.WithLabelValues(detection.Encoding.String(), strconv.FormatBool(fallback)).Inc()

	if fallback {
		n.logger.Debug("options fallback",
			zap.String("encoding", detection.Encoding.String()),
			zap.Bool("json_encoded", detection.JSONEncoded),
		)
		return DefaultOptions()
	}
	return options
}

func (n *Normalizer) decode(detection Detection) (options []model.CanonicalOption) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("options decode panic", zap.String("encoding", detection.Encoding.String()), zap.Any("panic", r))
			options = nil
		}
	}()

	switch detection.Encoding {
	case EncodingObjectArray:
		return decodeObjectArray(detection.Items)
	case EncodingHexArray:
		return decodeHexArray(detection.Items)
	case EncodingHexTupleArray:
		decoded, err := decodeTupleArray(detection.Hex)
		if err != nil {
			n.logger.Debug("options tuple array decode failed", zap.Error(err))
			return nil
		}
		return decoded
	default:
		return nil
	}
}

func decodeObjectArray(items []interface{}) []model.CanonicalOption {
	out := make([]model.CanonicalOption, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok || obj == nil {
			continue
		}
		staked, ok := obj["totalStaked"]
		if !ok || staked == nil {
			// Older markets recorded the stake under "odds".
			staked = obj["odds"]
		}
		out = append(out, model.CanonicalOption{
			Option:      optionLabel(obj["option"]),
			TotalStaked: ToBigInt(staked),
		})
	}
	return out
}

func decodeHexArray(items []interface{}) []model.CanonicalOption {
	out := make([]model.CanonicalOption, 0, len(items))
	for _, item := range items {
		hexStr, ok := item.(string)
		if !ok {
			continue
		}
		option := DecodeTuple(hexStr)
		if isDegenerate(option) {
			continue
		}
		out = append(out, option)
	}
	return out
}

func optionLabel(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
