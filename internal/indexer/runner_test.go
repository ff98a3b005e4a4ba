package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betScope/internal/model"
	"betScope/internal/subgraph"
)

type fakeSource struct {
	records  []model.RawBetRecord
	failures int
	pages    []subgraph.Page
}

func (f *fakeSource) FetchBets(_ context.Context, page subgraph.Page) ([]model.RawBetRecord, error) {
	f.pages = append(f.pages, page)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("temporary upstream error")
	}

	var matching []model.RawBetRecord
	for _, rec := range f.records {
		updated, _ := strconv.ParseInt(rec.UpdatedAt.String(), 10, 64)
		if updated >= page.UpdatedAfter {
			matching = append(matching, rec)
		}
	}
	if page.Skip >= len(matching) {
		return nil, nil
	}
	matching = matching[page.Skip:]
	if len(matching) > page.First {
		matching = matching[:page.First]
	}
	return matching, nil
}

type memoryStorage struct {
	bets []model.Bet
	err  error
}

func (m *memoryStorage) PutBetBatch(_ context.Context, bets []model.Bet) error {
	if m.err != nil {
		return m.err
	}
	m.bets = append(m.bets, bets...)
	return nil
}

func (m *memoryStorage) ids() []string {
	out := make([]string, 0, len(m.bets))
	for _, bet := range m.bets {
		out = append(out, bet.ID)
	}
	return out
}

func raw(id string, updatedAt int64) model.RawBetRecord {
	ts := model.FlexString(strconv.FormatInt(updatedAt, 10))
	return model.RawBetRecord{ID: model.FlexString(id), CreatedAt: ts, UpdatedAt: ts}
}

func TestRunnerPagesThroughTies(t *testing.T) {
	source := &fakeSource{records: []model.RawBetRecord{
		raw("a", 1), raw("b", 2), raw("c", 2), raw("d", 3), raw("e", 4),
	}}
	sink := &memoryStorage{}

	stats, err := NewRunner(RunConfig{PageSize: 2}, source, nil, sink, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, sink.ids())
	assert.Equal(t, 5, stats.Stored)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, int64(4), stats.Cursor)
	assert.Equal(t, subgraph.Page{First: 2, Skip: 1, UpdatedAfter: 2}, source.pages[1])
}

func TestRunnerFullPageOfTies(t *testing.T) {
	source := &fakeSource{records: []model.RawBetRecord{
		raw("a", 5), raw("b", 5), raw("c", 5), raw("d", 6),
	}}
	sink := &memoryStorage{}

	_, err := NewRunner(RunConfig{PageSize: 2, UpdatedAfter: 5}, source, nil, sink, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, sink.ids())
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	state := &FileStateStore{Path: filepath.Join(t.TempDir(), "state", "checkpoint.json")}
	require.NoError(t, state.Save(context.Background(), 3))

	source := &fakeSource{records: []model.RawBetRecord{
		raw("a", 1), raw("b", 2), raw("c", 3), raw("d", 4),
	}}
	sink := &memoryStorage{}

	stats, err := NewRunner(RunConfig{PageSize: 10}, source, nil, sink, state, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, sink.ids())
	assert.Equal(t, int64(4), stats.Cursor)

	saved, ok, err := state.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), saved)
}

func TestRunnerDedupesByID(t *testing.T) {
	source := &fakeSource{records: []model.RawBetRecord{
		raw("a", 1), raw("a", 1), raw("b", 1), raw("a", 2),
	}}
	sink := &memoryStorage{}

	stats, err := NewRunner(RunConfig{PageSize: 10}, source, nil, sink, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a"}, sink.ids())
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, int64(2), sink.bets[2].UpdatedAt)
}

func TestRunnerRetriesFetch(t *testing.T) {
	source := &fakeSource{records: []model.RawBetRecord{raw("a", 1)}, failures: 2}
	sink := &memoryStorage{}

	_, err := NewRunner(RunConfig{PageSize: 10, MaxRetries: 2, RetryBackoff: time.Millisecond}, source, nil, sink, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, source.pages, 3)
	assert.Equal(t, []string{"a"}, sink.ids())
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	source := &fakeSource{failures: 5}
	_, err := NewRunner(RunConfig{PageSize: 10, MaxRetries: 1, RetryBackoff: time.Millisecond}, source, nil, &memoryStorage{}, nil, nil).Run(context.Background())
	assert.ErrorContains(t, err, "temporary upstream error")
	assert.Len(t, source.pages, 2)
}

func TestRunnerStorageError(t *testing.T) {
	source := &fakeSource{records: []model.RawBetRecord{raw("a", 1)}}
	_, err := NewRunner(RunConfig{PageSize: 10}, source, nil, &memoryStorage{err: errors.New("disk full")}, nil, nil).Run(context.Background())
	assert.ErrorContains(t, err, "store bets")
}

func TestRunnerValidatesConfig(t *testing.T) {
	_, err := NewRunner(RunConfig{}, &fakeSource{}, nil, &memoryStorage{}, nil, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestFileStateStoreDisabled(t *testing.T) {
	var store *FileStateStore
	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, (&FileStateStore{}).Save(context.Background(), 9))
}
