package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betScope/internal/model"
)

func sampleBets() []model.Bet {
	return []model.Bet{
		{
			ID:      "1",
			Options: []model.CanonicalOption{{Option: "Yes", TotalStaked: big.NewInt(5)}},
			BetType: model.BetTypeSingle,
			Status:  model.BetStatusOpen,
			Result:  model.ResultUnset,
		},
		{
			ID:      "2",
			Options: []model.CanonicalOption{{Option: "Default Option", TotalStaked: big.NewInt(0)}},
			BetType: model.BetTypeGroup,
			Status:  model.BetStatusResolved,
			Result:  1,
		},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bets.jsonl")
	sink := NewJsonlStorage(path)

	require.NoError(t, sink.PutBetBatch(context.Background(), sampleBets()))
	require.NoError(t, sink.PutBetBatch(context.Background(), sampleBets()[:1]))
	require.NoError(t, sink.PutBetBatch(context.Background(), nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []model.Bet
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var bet model.Bet
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &bet))
		lines = append(lines, bet)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3)
	assert.Equal(t, "2", lines[1].ID)
	assert.Equal(t, model.BetStatusResolved, lines[1].Status)
	assert.Equal(t, "5", lines[2].Options[0].TotalStaked.String())
}

type memorySink struct {
	batches [][]model.Bet
	err     error
}

func (m *memorySink) PutBetBatch(_ context.Context, bets []model.Bet) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, bets)
	return nil
}

func TestFanout(t *testing.T) {
	first := &memorySink{}
	second := &memorySink{}
	fanout := NewFanout().Add("first", first).Add("second", second).Add("none", nil)
	assert.Equal(t, 2, fanout.Len())

	require.NoError(t, fanout.PutBetBatch(context.Background(), sampleBets()))
	assert.Len(t, first.batches, 1)
	assert.Len(t, second.batches, 1)

	failing := &memorySink{err: errors.New("disk full")}
	after := &memorySink{}
	err := NewFanout().Add("failing", failing).Add("after", after).PutBetBatch(context.Background(), sampleBets())
	assert.ErrorContains(t, err, "failing sink")
	assert.Empty(t, after.batches)
}

func TestJsonlStorageCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJsonlStorage(path).PutBetBatch(ctx, sampleBets())
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
