package storage

import (
	"context"
	"fmt"

	"betScope/internal/metrics"
	"betScope/internal/model"
)

type namedSink struct {
	name string
	sink Storage
}

// Fanout writes every batch to each registered sink in order and stops at the
// first failure.
type Fanout struct {
	sinks []namedSink
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers sink under name, used in errors and metrics.
func (f *Fanout) Add(name string, sink Storage) *Fanout {
	if sink != nil {
		f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
	}
	return f
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) PutBetBatch(ctx context.Context, bets []model.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	for _, s := range f.sinks {
		if err := s.sink.PutBetBatch(ctx, bets); err != nil {
			return fmt.Errorf("%s sink: %w", s.name, err)
		}
		metrics.BetsStoredTotal.WithLabelValues(s.name).Add(float64(len(bets)))
	}
	return nil
}
