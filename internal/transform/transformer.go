package transform

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"betScope/internal/metrics"
	"betScope/internal/model"
	"betScope/internal/options"
)

// DefaultBetDuration is added to createdAt when the indexer omits betDuration.
const DefaultBetDuration int64 = 86400

var statusByCode = map[string]model.BetStatus{
	"0": model.BetStatusOpen,
	"1": model.BetStatusClosed,
	"2": model.BetStatusResolved,
	"3": model.BetStatusCancelled,
}

var typeByCode = map[string]model.BetType{
	"0": model.BetTypeSingle,
	"1": model.BetTypeGroup,
}

// Transformer maps raw indexer records to canonical bets. It holds no mutable
// state and may be shared between goroutines.
type Transformer struct {
	now        func() time.Time
	normalizer *options.Normalizer
	logger     *zap.Logger
}

// Option customizes a Transformer.
type Option func(*Transformer)

// WithClock replaces the wall clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithNormalizer replaces the options normalizer.
func WithNormalizer(n *options.Normalizer) Option {
	return func(t *Transformer) {
		if n != nil {
			t.normalizer = n
		}
	}
}

// NewTransformer builds a Transformer.
func NewTransformer(logger *zap.Logger, opts ...Option) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Transformer{
		now:        time.Now,
		normalizer: options.NewNormalizer(logger),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform builds a fresh Bet from raw. It never fails; unparseable fields
// take their documented defaults.
func (t *Transformer) Transform(raw model.RawBetRecord) model.Bet {
	createdAt, ok := ParseInt(raw.CreatedAt.String())
	if !ok {
		createdAt = t.now().Unix()
	}
	updatedAt, ok := ParseInt(raw.UpdatedAt.String())
	if !ok {
		updatedAt = createdAt
	}
	betDuration, ok := ParseInt(raw.BetDuration.String())
	if !ok {
		betDuration = createdAt + DefaultBetDuration
	}
	result, ok := ParseInt(raw.Result.String())
	if !ok {
		result = model.ResultUnset
	}

	bet := model.Bet{
		ID:          raw.ID.String(),
		Options:     t.normalizer.Normalize(raw.Options),
		BetType:     MapBetType(raw.BetType.String()),
		Name:        raw.Name.String(),
		Description: raw.Description.String(),
		Image:       raw.Image.String(),
		Link:        raw.Link.String(),
		Owner:       raw.Owner.String(),
		Result:      result,
		Status:      MapStatus(raw.Status.String()),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		BetDuration: betDuration,
		PrivateBet:  ParseBool(raw.PrivateBet.String()),
	}

	metrics.BetsTransformedTotal.Inc()
	return bet
}

// TransformAll transforms records in order.
func (t *Transformer) TransformAll(records []model.RawBetRecord) []model.Bet {
	out := make([]model.Bet, 0, len(records))
	for _, raw := range records {
		out = append(out, t.Transform(raw))
	}
	return out
}

// MapStatus resolves an indexer status code. Unknown codes are OPEN.
func MapStatus(code string) model.BetStatus {
	if status, ok := statusByCode[strings.TrimSpace(code)]; ok {
		return status
	}
	return model.BetStatusOpen
}

// MapBetType resolves an indexer bet type code. Unknown codes are SINGLE.
func MapBetType(code string) model.BetType {
	if betType, ok := typeByCode[strings.TrimSpace(code)]; ok {
		return betType
	}
	return model.BetTypeSingle
}

// ParseBool accepts true, "true", "1" and 1 in any case.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true
	default:
		return false
	}
}
